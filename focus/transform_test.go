package focus

import (
	"math"
	"testing"
)

func viewRectsEqual(a, b ViewRect) bool {
	return math.Abs(a.Left-b.Left) < 1e-3 &&
		math.Abs(a.Top-b.Top) < 1e-3 &&
		math.Abs(a.Right-b.Right) < 1e-3 &&
		math.Abs(a.Bottom-b.Bottom) < 1e-3
}

func TestTransform(t *testing.T) {
	cases := []struct {
		name                    string
		box                     Rectangle
		imageWidth, imageHeight int
		viewWidth, viewHeight   int
		expected                ViewRect
	}{
		{
			// scale 1280/720, x offset -(2275.56-720)/2: the corner box falls out of the view horizontally
			name:       "wide image corner box",
			box:        NewRectLTRB(0, 0, 100, 100),
			imageWidth: 1280, imageHeight: 720,
			viewWidth: 720, viewHeight: 1280,
			expected: ViewRect{Left: 0, Top: 0, Right: 0, Bottom: 177.7778},
		},
		{
			name:       "wide image centered box",
			box:        NewRectLTRB(540, 260, 740, 460),
			imageWidth: 1280, imageHeight: 720,
			viewWidth: 720, viewHeight: 1280,
			expected: ViewRect{Left: 182.2222, Top: 462.2222, Right: 537.7778, Bottom: 817.7778},
		},
		{
			// scale 1.5, y offset -(1920-1080)/2
			name:       "tall image",
			box:        NewRectLTRB(0, 280, 720, 1000),
			imageWidth: 720, imageHeight: 1280,
			viewWidth: 1080, viewHeight: 1080,
			expected: ViewRect{Left: 0, Top: 0, Right: 1080, Bottom: 1080},
		},
		{
			name:       "tall image clamped bottom",
			box:        NewRectLTRB(100, 1100, 200, 1280),
			imageWidth: 720, imageHeight: 1280,
			viewWidth: 1080, viewHeight: 1080,
			expected: ViewRect{Left: 150, Top: 1080, Right: 300, Bottom: 1080},
		},
		{
			name:       "same aspect",
			box:        NewRectLTRB(10, 20, 30, 40),
			imageWidth: 640, imageHeight: 480,
			viewWidth: 1280, viewHeight: 960,
			expected: ViewRect{Left: 20, Top: 40, Right: 60, Bottom: 80},
		},
	}
	for _, c := range cases {
		answer := Transform(c.box, c.imageWidth, c.imageHeight, c.viewWidth, c.viewHeight)
		if !viewRectsEqual(answer, c.expected) {
			t.Errorf("%s: expected %+v, got %+v", c.name, c.expected, answer)
		}
	}
}

func TestTransformStaysInsideView(t *testing.T) {
	boxes := []Rectangle{
		NewRectLTRB(-50, -50, 2000, 2000),
		NewRectLTRB(1200, 700, 1300, 800),
		NewRectLTRB(0, 0, 1280, 720),
	}
	for _, box := range boxes {
		answer := Transform(box, 1280, 720, 720, 1280)
		if answer.Left < 0 || answer.Right > 720 || answer.Top < 0 || answer.Bottom > 1280 {
			t.Errorf("Box %+v mapped outside of view: %+v", box, answer)
		}
	}
}
