// Command focus-replay plays a recorded detection script through the selection and display
// pipeline in real time and prints what the preview would show.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LdDl/focus-go/config"
	"github.com/LdDl/focus-go/focus"
	"github.com/LdDl/focus-go/pipeline"
)

func main() {
	app := &cli.App{
		Name:  "focus-replay",
		Usage: "replay recorded detections through the primary object display pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to JSON tuning file (defaults are used when empty)",
			},
			&cli.StringFlag{
				Name:     "script",
				Aliases:  []string{"s"},
				Usage:    "path to JSON lines detection script",
				Required: true,
			},
			&cli.DurationFlag{
				Name:  "linger",
				Usage: "how long to keep the display running after the last frame",
				Value: 6 * time.Second,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Action: replay,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "can't build logger")
	}
	return logger.Sugar(), nil
}

func replay(cliCtx *cli.Context) error {
	logger, err := newLogger(cliCtx.Bool("verbose"))
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	cfg := config.Default()
	if path := cliCtx.String("config"); path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}
	}

	file, err := os.Open(cliCtx.String("script"))
	if err != nil {
		return errors.Wrap(err, "can't open script")
	}
	entries, err := readScript(file)
	file.Close()
	if err != nil {
		return err
	}
	logger.Infow("Script loaded", "frames", len(entries), "tracking", cfg.Tracking.Enabled)

	model := &replayModel{}
	analyzer := pipeline.NewAnalyzerFromConfig(cfg, model, model, logger)
	defer analyzer.Close()
	controller := focus.NewController(nil, cfg.Lifecycle.DisplayDuration, cfg.Lifecycle.CooldownDuration)
	defer controller.Close()
	driver := pipeline.NewDriver(analyzer, controller, cfg.View.Width, cfg.View.Height, logger)

	ctx, stop := signal.NotifyContext(cliCtx.Context, os.Interrupt)
	defer stop()

	frames := make(chan pipeline.Frame)
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer close(frames)
		for _, entry := range entries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(entry.delay):
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case frames <- entry.frame():
			}
		}
		return nil
	})
	group.Go(func() error {
		if err := driver.Run(ctx, frames); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
		case <-time.After(cliCtx.Duration("linger")):
		}
		controller.Close()
		return nil
	})
	group.Go(func() error {
		return driver.Present(ctx, &textPresenter{out: os.Stdout, start: time.Now()})
	})

	err = group.Wait()
	if errors.Is(err, context.Canceled) {
		logger.Info("Replay interrupted")
		return nil
	}
	return err
}
