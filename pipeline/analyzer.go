package pipeline

import (
	"context"
	"io"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/LdDl/focus-go/config"
	"github.com/LdDl/focus-go/focus"
)

// Analyzer turns a frame into at most one labeled detection.
// It is not safe for concurrent use: frames of a stream must be analyzed one by one.
type Analyzer struct {
	detector      ObjectDetector
	classifier    ImageClassifier
	selector      *focus.Selector
	tracker       *focus.IoUTracker
	minConfidence float64
	logger        *zap.SugaredLogger
}

// NewAnalyzer creates new instance of Analyzer. Tracker is optional and only needed for detectors
// which do not assign tracking identifiers themselves. Nil logger disables logging.
func NewAnalyzer(detector ObjectDetector, classifier ImageClassifier, selector *focus.Selector, tracker *focus.IoUTracker, minConfidence float64, logger *zap.SugaredLogger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Analyzer{
		detector:      detector,
		classifier:    classifier,
		selector:      selector,
		tracker:       tracker,
		minConfidence: minConfidence,
		logger:        logger,
	}
}

// NewAnalyzerFromConfig creates Analyzer with selector, tracker and threshold taken from configuration
func NewAnalyzerFromConfig(cfg *config.Config, detector ObjectDetector, classifier ImageClassifier, logger *zap.SugaredLogger) *Analyzer {
	var trackerLogger *zap.Logger
	if logger != nil {
		trackerLogger = logger.Desugar()
	}
	return NewAnalyzer(detector, classifier, cfg.NewSelector(), cfg.NewTracker(focus.WithTrackerLogger(trackerLogger)), cfg.Labeling.MinConfidence, logger)
}

// Reset forgets the selected object and the tracks, so the next frame is treated as the start of a new stream
func (analyzer *Analyzer) Reset() {
	analyzer.selector.Reset()
	if analyzer.tracker != nil {
		analyzer.tracker.Reset()
	}
}

// Analyze returns the labeled primary object of the frame, if any.
// Collaborator failures are logged and reported as no detection. The only returned errors come
// from abandoned processing (context cancellation) and must be propagated by the caller.
func (analyzer *Analyzer) Analyze(ctx context.Context, frame Frame) (focus.Detection, bool, error) {
	if err := ctx.Err(); err != nil {
		return focus.Detection{}, false, err
	}
	if frame.Image == nil {
		analyzer.logger.Warnw("Skipping frame", "error", ErrInvalidFrame)
		return focus.Detection{}, false, nil
	}
	bounds := frame.Image.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		analyzer.logger.Warnw("Skipping frame", "error", ErrInvalidFrame, "width", width, "height", height)
		return focus.Detection{}, false, nil
	}

	candidates, err := analyzer.detector.DetectObjects(ctx, frame.Image, frame.RotationDegrees)
	if err != nil {
		if isCancellation(ctx, err) {
			return focus.Detection{}, false, err
		}
		analyzer.logger.Warnw("Object detection failed", "error", errors.Wrap(err, "detector"))
		return focus.Detection{}, false, nil
	}

	if analyzer.tracker != nil {
		// Identifiers are assigned even when a track filter fails
		candidates, err = analyzer.tracker.Assign(candidates)
		if err != nil {
			analyzer.logger.Warnw("Track update failed", "error", err)
		}
	}

	chosen, ok := analyzer.selector.Select(candidates, width, height)
	if !ok {
		return focus.Detection{}, false, nil
	}

	// Candidate coordinates are relative to the frame origin
	region := chosen.BBox.ImageRect().Add(bounds.Min).Intersect(bounds)
	if region.Empty() {
		analyzer.logger.Debugw("Chosen object is outside of the frame", "bbox", chosen.BBox)
		return focus.Detection{}, false, nil
	}
	cropped := imaging.Crop(frame.Image, region)

	labels, err := analyzer.classifier.Classify(ctx, cropped, frame.RotationDegrees)
	if err != nil {
		if isCancellation(ctx, err) {
			return focus.Detection{}, false, err
		}
		analyzer.logger.Warnw("Image labeling failed", "error", errors.Wrap(err, "classifier"))
		return focus.Detection{}, false, nil
	}
	label, ok := BestLabel(labels, analyzer.minConfidence)
	if !ok {
		return focus.Detection{}, false, nil
	}

	detection := focus.Detection{
		Label:       label.Text,
		Confidence:  label.Confidence,
		BBox:        chosen.BBox,
		ImageWidth:  width,
		ImageHeight: height,
	}
	analyzer.logger.Debugf("Detected: %s (%d%%)", detection.Label, percent(detection.Confidence))
	return detection, true, nil
}

// Close releases collaborators which hold resources
func (analyzer *Analyzer) Close() error {
	var err error
	if closer, ok := analyzer.detector.(io.Closer); ok {
		err = multierr.Append(err, errors.Wrap(closer.Close(), "close detector"))
	}
	if closer, ok := analyzer.classifier.(io.Closer); ok {
		err = multierr.Append(err, errors.Wrap(closer.Close(), "close classifier"))
	}
	return err
}
