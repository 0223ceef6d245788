package focus

import (
	"image"
	"math"
)

// Rectangle is an axis-aligned box in image space (pixels).
type Rectangle struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func NewRect(x, y, width, height float64) Rectangle {
	return Rectangle{
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
	}
}

// NewRectLTRB builds rectangle from its edges
func NewRectLTRB(left, top, right, bottom float64) Rectangle {
	return Rectangle{
		X:      left,
		Y:      top,
		Width:  right - left,
		Height: bottom - top,
	}
}

func (r Rectangle) Left() float64   { return r.X }
func (r Rectangle) Top() float64    { return r.Y }
func (r Rectangle) Right() float64  { return r.X + r.Width }
func (r Rectangle) Bottom() float64 { return r.Y + r.Height }

// Center returns geometric center of the rectangle
func (r Rectangle) Center() Point {
	return Point{
		X: r.X + r.Width/2.0,
		Y: r.Y + r.Height/2.0,
	}
}

func (r Rectangle) Area() float64 {
	return r.Width * r.Height
}

// ImageRect converts rectangle to integer pixel rectangle. Edges are truncated towards the inside.
func (r Rectangle) ImageRect() image.Rectangle {
	return image.Rect(
		int(math.Ceil(r.Left())),
		int(math.Ceil(r.Top())),
		int(math.Floor(r.Right())),
		int(math.Floor(r.Bottom())),
	)
}

type Point struct {
	X float64
	Y float64
}

// ViewRect is a box in view (screen) space given by its edges.
type ViewRect struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

func (v ViewRect) Width() float64 {
	return v.Right - v.Left
}

func (v ViewRect) Height() float64 {
	return v.Bottom - v.Top
}

func euclideanDistance(p1, p2 Point) float64 {
	return math.Sqrt(math.Pow(p1.X-p2.X, 2) + math.Pow(p1.Y-p2.Y, 2))
}

// IoU calculates Intersection over Union between two rectangles.
func IoU(r1, r2 Rectangle) float64 {
	xA := math.Max(r1.X, r2.X)
	yA := math.Max(r1.Y, r2.Y)
	xB := math.Min(r1.Right(), r2.Right())
	yB := math.Min(r1.Bottom(), r2.Bottom())

	interArea := math.Max(0, xB-xA) * math.Max(0, yB-yA)
	if interArea == 0 {
		return 0.0
	}
	return interArea / (r1.Area() + r2.Area() - interArea)
}

func clampFloat64(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
