package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/LdDl/focus-go/focus"
)

// Driver feeds analysis results of every frame into the display cycle and forwards
// what is displayed to the presentation layer.
type Driver struct {
	analyzer   *Analyzer
	controller *focus.Controller
	viewWidth  int
	viewHeight int
	logger     *zap.SugaredLogger
}

// NewDriver creates new instance of Driver. View size must be positive.
func NewDriver(analyzer *Analyzer, controller *focus.Controller, viewWidth, viewHeight int, logger *zap.SugaredLogger) *Driver {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Driver{
		analyzer:   analyzer,
		controller: controller,
		viewWidth:  viewWidth,
		viewHeight: viewHeight,
		logger:     logger,
	}
}

// ProcessFrame analyzes a frame. A detection starts a display cycle (if the controller is idle),
// no detection clears the display. Cancellation is returned without touching the display.
func (driver *Driver) ProcessFrame(ctx context.Context, frame Frame) error {
	detection, ok, err := driver.analyzer.Analyze(ctx, frame)
	if err != nil {
		return err
	}
	if !ok {
		driver.controller.ClearDetection()
		return nil
	}
	if driver.controller.OnObjectDetected(detection) {
		driver.logger.Debugw("Display started", "label", detection.Label, "confidence", detection.Confidence)
	}
	return nil
}

// Run processes frames until the channel is closed or the context is done.
// Every call is a new stream: selection made on frames of earlier runs is forgotten.
// The camera side is expected to drop stale frames instead of queueing them.
func (driver *Driver) Run(ctx context.Context, frames <-chan Frame) error {
	driver.analyzer.Reset()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			if err := driver.ProcessFrame(ctx, frame); err != nil {
				return err
			}
		}
	}
}

// Present forwards display changes to the presenter until the context is done or the controller is closed
func (driver *Driver) Present(ctx context.Context, presenter Presenter) error {
	updates, unsubscribe := driver.controller.Subscribe()
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if !update.Visible {
				driver.logger.Debug("Display hidden")
				presenter.Hide()
				continue
			}
			overlay := driver.Overlay(update.Detection)
			driver.logger.Debugw("Display shown", "label", overlay.Label, "box", overlay.Box)
			presenter.Show(overlay)
		}
	}
}

// Overlay maps detection into view space
func (driver *Driver) Overlay(detection focus.Detection) Overlay {
	return Overlay{
		Label:      detection.Label,
		Confidence: detection.Confidence,
		Box:        focus.Transform(detection.BBox, detection.ImageWidth, detection.ImageHeight, driver.viewWidth, driver.viewHeight),
	}
}
