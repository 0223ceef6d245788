package focus

const (
	// DefaultSelectionCooldownFrames is number of frames the adopted object is kept unconditionally
	DefaultSelectionCooldownFrames = 15
	// DefaultSelectionHysteresis is how many times a challenger must outscore the current object to replace it
	DefaultSelectionHysteresis = 1.3
)

// Selector picks a single primary candidate per frame and keeps that choice stable across frames.
// It is not safe for concurrent use: each video stream needs its own instance.
type Selector struct {
	lastTrackedID        int
	hasLastTracked       bool
	framesSinceSelection int

	// Frames to keep adopted object before another one may replace it. Default is 15
	cooldownFrames int
	// Score multiplier a challenger must exceed. Default is 1.3
	hysteresis   float64
	centerWeight float64
	areaWeight   float64
}

// NewSelectorDefault creates default instance of Selector
func NewSelectorDefault() *Selector {
	return NewSelector(DefaultSelectionCooldownFrames, DefaultSelectionHysteresis, DefaultCenterWeight, DefaultAreaWeight)
}

// NewSelector creates new instance of Selector
func NewSelector(cooldownFrames int, hysteresis, centerWeight, areaWeight float64) *Selector {
	return &Selector{
		cooldownFrames: cooldownFrames,
		hysteresis:     hysteresis,
		centerWeight:   centerWeight,
		areaWeight:     areaWeight,
	}
}

// LastTrackedID returns tracking identifier of the object chosen on the previous frame
func (selector *Selector) LastTrackedID() (int, bool) {
	return selector.lastTrackedID, selector.hasLastTracked
}

// FramesSinceSelection returns number of frames since the current object was adopted
func (selector *Selector) FramesSinceSelection() int {
	return selector.framesSinceSelection
}

// Reset forgets the current object
func (selector *Selector) Reset() {
	selector.lastTrackedID = 0
	selector.hasLastTracked = false
	selector.framesSinceSelection = 0
}

// Select returns the primary candidate of the frame, if any.
// Must be called once per frame with positive image dimensions.
func (selector *Selector) Select(candidates []Candidate, imageWidth, imageHeight int) (Candidate, bool) {
	if len(candidates) == 0 {
		selector.lastTrackedID = 0
		selector.hasLastTracked = false
		return Candidate{}, false
	}

	selector.framesSinceSelection++

	trackedIdx := -1
	if selector.hasLastTracked {
		for i := range candidates {
			if candidates[i].Tracked && candidates[i].TrackingID == selector.lastTrackedID {
				trackedIdx = i
				break
			}
		}
	}

	reconsider := trackedIdx < 0 || selector.framesSinceSelection >= selector.cooldownFrames

	var chosen Candidate
	switch {
	case !reconsider:
		chosen = candidates[trackedIdx]
	case trackedIdx < 0:
		// Nothing to hold on to: initial selection
		selector.framesSinceSelection = 0
		chosen = selector.bestByScore(candidates, imageWidth, imageHeight).Candidate
	default:
		tracked := candidates[trackedIdx]
		best := selector.bestByScore(candidates, imageWidth, imageHeight)
		currentScore := selector.score(tracked, imageWidth, imageHeight)
		if best.Score > currentScore*selector.hysteresis {
			selector.framesSinceSelection = 0
			chosen = best.Candidate
		} else {
			chosen = tracked
		}
	}

	selector.lastTrackedID = chosen.TrackingID
	selector.hasLastTracked = chosen.Tracked
	return chosen, true
}

func (selector *Selector) score(candidate Candidate, imageWidth, imageHeight int) float64 {
	return ScoreWeighted(candidate, imageWidth, imageHeight, selector.centerWeight, selector.areaWeight)
}

// bestByScore returns the first candidate reaching the maximum score. Candidates must not be empty.
func (selector *Selector) bestByScore(candidates []Candidate, imageWidth, imageHeight int) ScoredCandidate {
	best := ScoredCandidate{
		Candidate: candidates[0],
		Score:     selector.score(candidates[0], imageWidth, imageHeight),
	}
	for _, candidate := range candidates[1:] {
		score := selector.score(candidate, imageWidth, imageHeight)
		if score > best.Score {
			best = ScoredCandidate{Candidate: candidate, Score: score}
		}
	}
	return best
}
