package main

import (
	"fmt"
	"io"
	"time"

	"github.com/LdDl/focus-go/pipeline"
)

// textPresenter prints overlays as lines prefixed with time since start
type textPresenter struct {
	out   io.Writer
	start time.Time
}

func (presenter *textPresenter) Show(overlay pipeline.Overlay) {
	fmt.Fprintf(presenter.out, "%8.3fs show %s (%d%%) at (%.1f, %.1f) size %.1fx%.1f\n",
		time.Since(presenter.start).Seconds(), overlay.Label, overlay.Percent(),
		overlay.Box.Left, overlay.Box.Top, overlay.Box.Width(), overlay.Box.Height())
}

func (presenter *textPresenter) Hide() {
	fmt.Fprintf(presenter.out, "%8.3fs hide\n", time.Since(presenter.start).Seconds())
}
