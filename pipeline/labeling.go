package pipeline

// DefaultMinConfidence is the lowest confidence a label may have to be shown
const DefaultMinConfidence = 0.70

// BestLabel returns the most confident label with confidence of at least minConfidence.
// The first one wins on ties.
func BestLabel(labels []Label, minConfidence float64) (Label, bool) {
	best := Label{}
	found := false
	for _, label := range labels {
		if label.Confidence < minConfidence {
			continue
		}
		if !found || label.Confidence > best.Confidence {
			best = label
			found = true
		}
	}
	return best, found
}
