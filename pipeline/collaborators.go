// Package pipeline wires frame analysis to the display cycle: it runs the external detector and
// classifier, picks the primary object and forwards the outcome to a focus.Controller.
package pipeline

import (
	"context"
	"image"
	"math"

	"github.com/LdDl/focus-go/focus"
)

// Frame is a single camera image
type Frame struct {
	Image image.Image
	// Rotation hint passed to the inference collaborators
	RotationDegrees int
}

// ObjectDetector finds objects on a frame. The returned order is kept by the selection tie-break.
type ObjectDetector interface {
	DetectObjects(ctx context.Context, img image.Image, rotationDegrees int) ([]focus.Candidate, error)
}

// Label is a classification of an image region
type Label struct {
	Text       string
	Confidence float64
}

// ImageClassifier labels an image region. All labels are returned, thresholding happens in the pipeline.
type ImageClassifier interface {
	Classify(ctx context.Context, img image.Image, rotationDegrees int) ([]Label, error)
}

// Overlay is what the presentation layer draws, box in view space
type Overlay struct {
	Label      string
	Confidence float64
	Box        focus.ViewRect
}

// Percent returns confidence as whole percents
func (overlay Overlay) Percent() int {
	return percent(overlay.Confidence)
}

func percent(confidence float64) int {
	return int(math.Round(confidence * 100))
}

// Presenter shows overlays. Hide may come at any moment.
type Presenter interface {
	Show(overlay Overlay)
	Hide()
}
