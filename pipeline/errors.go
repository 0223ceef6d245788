package pipeline

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidFrame is reported for frames without pixels
	ErrInvalidFrame = errors.New("frame has non-positive dimensions")
)

// isCancellation reports whether err means the frame's processing was abandoned
func isCancellation(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
