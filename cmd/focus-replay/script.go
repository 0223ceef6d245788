package main

import (
	"bufio"
	"context"
	"encoding/json"
	"image"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/LdDl/focus-go/focus"
	"github.com/LdDl/focus-go/pipeline"
)

// scriptObject is a detector output: box edges plus optional tracking identifier
type scriptObject struct {
	Box        [4]float64 `json:"box"`
	TrackingID *int       `json:"tracking_id,omitempty"`
}

type scriptLabel struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// scriptEntry is one recorded frame
type scriptEntry struct {
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	Rotation int            `json:"rotation"`
	Delay    string         `json:"delay"`
	Objects  []scriptObject `json:"objects"`
	Labels   []scriptLabel  `json:"labels"`
	// Simulates inference failure of the detector
	Error string `json:"error,omitempty"`

	delay time.Duration
}

// readScript parses JSON lines. Empty lines and lines starting with '#' are skipped.
func readScript(r io.Reader) ([]scriptEntry, error) {
	entries := make([]scriptEntry, 0)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entry := scriptEntry{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
		if entry.Delay != "" {
			delay, err := time.ParseDuration(entry.Delay)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: delay", lineNo)
			}
			entry.delay = delay
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "can't read script")
	}
	return entries, nil
}

func (entry scriptEntry) candidates() []focus.Candidate {
	candidates := make([]focus.Candidate, 0, len(entry.Objects))
	for _, object := range entry.Objects {
		bbox := focus.NewRectLTRB(object.Box[0], object.Box[1], object.Box[2], object.Box[3])
		if object.TrackingID != nil {
			candidates = append(candidates, focus.NewTrackedCandidate(bbox, *object.TrackingID))
		} else {
			candidates = append(candidates, focus.NewCandidate(bbox))
		}
	}
	return candidates
}

func (entry scriptEntry) labels() []pipeline.Label {
	labels := make([]pipeline.Label, 0, len(entry.Labels))
	for _, label := range entry.Labels {
		labels = append(labels, pipeline.Label{Text: label.Text, Confidence: label.Confidence})
	}
	return labels
}

// scriptImage is a blank frame remembering the entry it was made from
type scriptImage struct {
	*image.NRGBA
	entry scriptEntry
}

func (entry scriptEntry) frame() pipeline.Frame {
	width, height := entry.Width, entry.Height
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return pipeline.Frame{
		Image: &scriptImage{
			NRGBA: image.NewNRGBA(image.Rect(0, 0, width, height)),
			entry: entry,
		},
		RotationDegrees: entry.Rotation,
	}
}

// replayModel plays back recorded inference results. The classifier answers with the labels
// of the frame last seen by the detector.
type replayModel struct {
	mu      sync.Mutex
	current scriptEntry
}

func (model *replayModel) DetectObjects(ctx context.Context, img image.Image, rotationDegrees int) ([]focus.Candidate, error) {
	frame, ok := img.(*scriptImage)
	if !ok {
		return nil, errors.Errorf("unexpected image type %T", img)
	}
	model.mu.Lock()
	model.current = frame.entry
	model.mu.Unlock()
	if frame.entry.Error != "" {
		return nil, errors.New(frame.entry.Error)
	}
	return frame.entry.candidates(), nil
}

func (model *replayModel) Classify(ctx context.Context, img image.Image, rotationDegrees int) ([]pipeline.Label, error) {
	model.mu.Lock()
	defer model.mu.Unlock()
	return model.current.labels(), nil
}
