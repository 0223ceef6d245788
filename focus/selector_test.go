package focus

import (
	"math"
	"testing"
)

const (
	testImageWidth  = 100
	testImageHeight = 100
)

// boxAt returns 10x10 box centered at (cx, cy)
func boxAt(cx, cy float64) Rectangle {
	return NewRect(cx-5, cy-5, 10, 10)
}

var (
	// score 0.7*1.0 + 0.3*0.01 = 0.703
	centered = NewTrackedCandidate(boxAt(50, 50), 2)
	// score 0.7*0.7 + 0.3*0.01 = 0.493
	offCenter = NewTrackedCandidate(boxAt(20, 50), 1)
	// score 0.7*0.9 + 0.3*0.01 = 0.633, below 0.493*1.3
	nearCenter = NewTrackedCandidate(boxAt(40, 50), 3)
)

func TestScore(t *testing.T) {
	cases := []struct {
		candidate Candidate
		expected  float64
	}{
		{centered, 0.703},
		{offCenter, 0.493},
		{nearCenter, 0.633},
		// Whole image: center score 1, area 1
		{NewCandidate(NewRect(0, 0, 100, 100)), 1.0},
		// Corner point: distance sqrt(0.5) ~ 0.707
		{NewCandidate(NewRect(0, 0, 0, 0)), 0.7 * (1 - math.Sqrt(0.5))},
	}
	for i, c := range cases {
		answer := Score(c.candidate, testImageWidth, testImageHeight)
		if math.Abs(answer-c.expected) > eps {
			t.Errorf("Case %d: expected score %f, got %f", i, c.expected, answer)
		}
	}
}

func TestScoreNonSquareImage(t *testing.T) {
	// Distances are normalized per axis
	candidate := NewCandidate(NewRect(0, 350, 20, 20))
	expectedDistance := math.Abs(10.0-640.0) / 1280.0
	expected := 0.7*(1-expectedDistance) + 0.3*(400.0/(1280.0*720.0))
	answer := Score(candidate, 1280, 720)
	if math.Abs(answer-expected) > eps {
		t.Errorf("Expected score %f, got %f", expected, answer)
	}
}

func TestSelectInitialPick(t *testing.T) {
	selector := NewSelectorDefault()
	chosen, ok := selector.Select([]Candidate{offCenter, centered}, testImageWidth, testImageHeight)
	if !ok {
		t.Fatal("Expected a candidate")
	}
	if chosen.TrackingID != centered.TrackingID {
		t.Errorf("Expected tracking id %d, got %d", centered.TrackingID, chosen.TrackingID)
	}
	if selector.FramesSinceSelection() != 0 {
		t.Errorf("Expected frame counter 0 after initial pick, got %d", selector.FramesSinceSelection())
	}
}

func TestSelectEmptyClearsTrack(t *testing.T) {
	selector := NewSelectorDefault()
	selector.Select([]Candidate{offCenter}, testImageWidth, testImageHeight)
	if id, ok := selector.LastTrackedID(); !ok || id != offCenter.TrackingID {
		t.Fatalf("Expected tracked id %d, got %d (%v)", offCenter.TrackingID, id, ok)
	}

	_, ok := selector.Select(nil, testImageWidth, testImageHeight)
	if ok {
		t.Error("Expected no candidate for empty frame")
	}
	if _, ok := selector.LastTrackedID(); ok {
		t.Error("Expected tracked id to be cleared")
	}

	// Next frame starts from scratch: the best one wins immediately
	chosen, _ := selector.Select([]Candidate{offCenter, centered}, testImageWidth, testImageHeight)
	if chosen.TrackingID != centered.TrackingID {
		t.Errorf("Expected tracking id %d, got %d", centered.TrackingID, chosen.TrackingID)
	}
}

func TestSelectStabilityThenSwitch(t *testing.T) {
	selector := NewSelectorDefault()
	chosen, _ := selector.Select([]Candidate{offCenter}, testImageWidth, testImageHeight)
	if chosen.TrackingID != offCenter.TrackingID {
		t.Fatalf("Expected tracking id %d, got %d", offCenter.TrackingID, chosen.TrackingID)
	}

	frame := []Candidate{offCenter, centered}
	for i := 1; i < DefaultSelectionCooldownFrames; i++ {
		chosen, _ = selector.Select(frame, testImageWidth, testImageHeight)
		if chosen.TrackingID != offCenter.TrackingID {
			t.Fatalf("Frame %d: expected to keep tracking id %d, got %d", i, offCenter.TrackingID, chosen.TrackingID)
		}
		if selector.FramesSinceSelection() != i {
			t.Fatalf("Frame %d: expected frame counter %d, got %d", i, i, selector.FramesSinceSelection())
		}
	}

	chosen, _ = selector.Select(frame, testImageWidth, testImageHeight)
	if chosen.TrackingID != centered.TrackingID {
		t.Errorf("Expected switch to tracking id %d, got %d", centered.TrackingID, chosen.TrackingID)
	}
	if selector.FramesSinceSelection() != 0 {
		t.Errorf("Expected frame counter reset to 0, got %d", selector.FramesSinceSelection())
	}
}

func TestSelectHysteresisBlocksSwitch(t *testing.T) {
	selector := NewSelectorDefault()
	selector.Select([]Candidate{offCenter}, testImageWidth, testImageHeight)

	frame := []Candidate{nearCenter, offCenter}
	for i := 1; i < 3*DefaultSelectionCooldownFrames; i++ {
		chosen, _ := selector.Select(frame, testImageWidth, testImageHeight)
		if chosen.TrackingID != offCenter.TrackingID {
			t.Fatalf("Frame %d: expected to keep tracking id %d, got %d", i, offCenter.TrackingID, chosen.TrackingID)
		}
	}
	// Counter keeps growing past the cooldown, so every frame is reconsidered
	if selector.FramesSinceSelection() != 3*DefaultSelectionCooldownFrames-1 {
		t.Errorf("Expected frame counter %d, got %d", 3*DefaultSelectionCooldownFrames-1, selector.FramesSinceSelection())
	}

	// Once a strong enough challenger shows up it wins on the very next frame
	chosen, _ := selector.Select([]Candidate{offCenter, centered}, testImageWidth, testImageHeight)
	if chosen.TrackingID != centered.TrackingID {
		t.Errorf("Expected switch to tracking id %d, got %d", centered.TrackingID, chosen.TrackingID)
	}
}

func TestSelectLostTrack(t *testing.T) {
	selector := NewSelectorDefault()
	selector.Select([]Candidate{offCenter}, testImageWidth, testImageHeight)
	selector.Select([]Candidate{offCenter}, testImageWidth, testImageHeight)

	chosen, _ := selector.Select([]Candidate{nearCenter}, testImageWidth, testImageHeight)
	if chosen.TrackingID != nearCenter.TrackingID {
		t.Errorf("Expected tracking id %d, got %d", nearCenter.TrackingID, chosen.TrackingID)
	}
	if selector.FramesSinceSelection() != 0 {
		t.Errorf("Expected frame counter 0 after adopting new object, got %d", selector.FramesSinceSelection())
	}
}

func TestSelectIdempotentSingleCandidate(t *testing.T) {
	selector := NewSelectorDefault()
	for i := 0; i < 4*DefaultSelectionCooldownFrames; i++ {
		chosen, ok := selector.Select([]Candidate{nearCenter}, testImageWidth, testImageHeight)
		if !ok || chosen != nearCenter {
			t.Fatalf("Frame %d: expected %v, got %v", i, nearCenter, chosen)
		}
		if id, ok := selector.LastTrackedID(); !ok || id != nearCenter.TrackingID {
			t.Fatalf("Frame %d: expected tracked id %d, got %d", i, nearCenter.TrackingID, id)
		}
	}
}

func TestSelectUntracked(t *testing.T) {
	selector := NewSelectorDefault()
	left := NewCandidate(boxAt(20, 50))
	right := NewCandidate(boxAt(60, 50))
	for i := 0; i < 3; i++ {
		chosen, ok := selector.Select([]Candidate{left, right}, testImageWidth, testImageHeight)
		if !ok || chosen != right {
			t.Errorf("Frame %d: expected %v, got %v", i, right, chosen)
		}
		if _, ok := selector.LastTrackedID(); ok {
			t.Errorf("Frame %d: untracked candidate must not be remembered", i)
		}
		// Without identity every frame is an initial selection
		if selector.FramesSinceSelection() != 0 {
			t.Errorf("Frame %d: expected frame counter 0, got %d", i, selector.FramesSinceSelection())
		}
	}
}

func TestSelectTieBreakFirstWins(t *testing.T) {
	left := NewTrackedCandidate(boxAt(40, 50), 10)
	right := NewTrackedCandidate(boxAt(60, 50), 20)

	selector := NewSelectorDefault()
	chosen, _ := selector.Select([]Candidate{left, right}, testImageWidth, testImageHeight)
	if chosen.TrackingID != left.TrackingID {
		t.Errorf("Expected first of equal candidates (%d), got %d", left.TrackingID, chosen.TrackingID)
	}

	selector = NewSelectorDefault()
	chosen, _ = selector.Select([]Candidate{right, left}, testImageWidth, testImageHeight)
	if chosen.TrackingID != right.TrackingID {
		t.Errorf("Expected first of equal candidates (%d), got %d", right.TrackingID, chosen.TrackingID)
	}
}

func TestSelectCustomCooldown(t *testing.T) {
	selector := NewSelector(2, DefaultSelectionHysteresis, DefaultCenterWeight, DefaultAreaWeight)
	selector.Select([]Candidate{offCenter}, testImageWidth, testImageHeight)

	frame := []Candidate{offCenter, centered}
	chosen, _ := selector.Select(frame, testImageWidth, testImageHeight)
	if chosen.TrackingID != offCenter.TrackingID {
		t.Errorf("Expected to keep tracking id %d, got %d", offCenter.TrackingID, chosen.TrackingID)
	}
	chosen, _ = selector.Select(frame, testImageWidth, testImageHeight)
	if chosen.TrackingID != centered.TrackingID {
		t.Errorf("Expected switch to tracking id %d, got %d", centered.TrackingID, chosen.TrackingID)
	}
}
