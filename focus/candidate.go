package focus

import "math"

// Candidate is a single object found by the detector on a frame.
type Candidate struct {
	BBox Rectangle
	// Detector-assigned identity, stable across frames for the same physical object.
	// Meaningful only when Tracked is true.
	TrackingID int
	Tracked    bool
}

// NewCandidate creates untracked candidate
func NewCandidate(bbox Rectangle) Candidate {
	return Candidate{BBox: bbox}
}

// NewTrackedCandidate creates candidate carrying detector's tracking identifier
func NewTrackedCandidate(bbox Rectangle, trackingID int) Candidate {
	return Candidate{
		BBox:       bbox,
		TrackingID: trackingID,
		Tracked:    true,
	}
}

// ScoredCandidate pairs a candidate with its selection score
type ScoredCandidate struct {
	Candidate Candidate
	Score     float64
}

const (
	// DefaultCenterWeight is contribution of proximity to the image center
	DefaultCenterWeight = 0.7
	// DefaultAreaWeight is contribution of the normalized box area
	DefaultAreaWeight = 0.3
)

// Score rates candidate with default weights. See ScoreWeighted.
func Score(candidate Candidate, imageWidth, imageHeight int) float64 {
	return ScoreWeighted(candidate, imageWidth, imageHeight, DefaultCenterWeight, DefaultAreaWeight)
}

// ScoreWeighted rates candidate by how close its center is to the image center and how much of the image it covers.
// Both imageWidth and imageHeight must be positive.
func ScoreWeighted(candidate Candidate, imageWidth, imageHeight int, centerWeight, areaWeight float64) float64 {
	w := float64(imageWidth)
	h := float64(imageHeight)
	center := candidate.BBox.Center()

	// Normalized distance to the image center, [0, ~0.707]
	distanceToCenter := math.Sqrt(
		math.Pow((center.X-w/2.0)/w, 2) + math.Pow((center.Y-h/2.0)/h, 2),
	)
	centerScore := clampFloat64(1.0-distanceToCenter, 0, 1)

	// Not clamped: only boxes sticking out of the image exceed 1
	normalizedArea := candidate.BBox.Area() / (w * h)

	return centerScore*centerWeight + normalizedArea*areaWeight
}
