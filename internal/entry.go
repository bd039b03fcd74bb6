// Package internal wires configuration, trigger sources and the experiment runner
// into the commands exposed by the CLI.
package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/starford/onto16/internal/apperr"
	"github.com/starford/onto16/internal/experiment"
	"github.com/starford/onto16/internal/models"
	"github.com/starford/onto16/internal/storage"
	"github.com/starford/onto16/internal/trigger"
	"github.com/starford/onto16/internal/watch"
)

func newApplication(opts ...Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := app.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if app.out == nil {
		app.out = os.Stdout
	}
	if app.logger == nil {
		app.logger = newLogger(app.config.App, os.Stderr)
		slog.SetDefault(app.logger)
	}
	return app, nil
}

// RunExperiment applies the trigger file at triggerPath to the baseline profile
// and prints the phase-by-phase drift.
func RunExperiment(ctx context.Context, triggerPath string, opts ...Option) (*experiment.Report, error) {
	app, err := newApplication(opts...)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(triggerPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("trigger %s: %w", triggerPath, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("read trigger: %w", err)
	}
	trig, err := trigger.ParseFile(filepath.Base(triggerPath), data)
	if err != nil {
		return nil, err
	}

	base, err := app.baseProfile()
	if err != nil {
		return nil, err
	}

	report, err := experiment.NewRunner(app.config.Experiment.Params(), app.out, app.logger).Run(ctx, base, trig)
	if err != nil {
		return nil, err
	}
	if err := app.writeReport(report); err != nil {
		return nil, err
	}
	return report, nil
}

// RunBatch runs every trigger file in the configured directory, up to
// Batch.Concurrency at a time. Reports and output are in trigger path order.
func RunBatch(ctx context.Context, opts ...Option) ([]*experiment.Report, error) {
	app, err := newApplication(opts...)
	if err != nil {
		return nil, err
	}
	cfg := app.config

	store, err := storage.NewFS(cfg.Triggers.Dir)
	if err != nil {
		return nil, fmt.Errorf("init trigger storage: %w", err)
	}
	files, err := store.List("")
	if err != nil {
		return nil, err
	}
	base, err := app.baseProfile()
	if err != nil {
		return nil, err
	}

	app.logger.Info("Batch starting",
		slog.String("triggers_dir", cfg.Triggers.Dir),
		slog.Int("triggers", len(files)),
		slog.Int("concurrency", cfg.Batch.Concurrency))

	reports := make([]*experiment.Report, len(files))
	outputs := make([]bytes.Buffer, len(files))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Batch.Concurrency)
	for i, f := range files {
		g.Go(func() error {
			trig, err := loadTrigger(store, f.Path)
			if err != nil {
				return err
			}
			runner := experiment.NewRunner(cfg.Experiment.Params(), &outputs[i], app.logger)
			report, err := runner.Run(gCtx, base, trig)
			if err != nil {
				return fmt.Errorf("trigger %s: %w", f.Path, err)
			}
			reports[i] = report
			return app.writeReport(report)
		})
	}
	if err := g.Wait(); err != nil {
		app.logger.Error("Batch failed", slog.String("error", err.Error()))
		return nil, err
	}

	irreversible := 0
	for i := range files {
		_, _ = outputs[i].WriteTo(app.out)
		if reports[i].Irreversible {
			irreversible++
		}
	}
	_, _ = fmt.Fprintf(app.out, "%d trigger(s), %d irreversible\n", len(files), irreversible)

	return reports, nil
}

// RunWatch runs every trigger already in the configured directory, then re-runs
// triggers as they are created or changed, until ctx is done or SIGINT/SIGTERM.
func RunWatch(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger

	store, err := storage.NewFS(cfg.Triggers.Dir)
	if err != nil {
		return fmt.Errorf("init trigger storage: %w", err)
	}
	base, err := app.baseProfile()
	if err != nil {
		return err
	}
	runner := experiment.NewRunner(cfg.Experiment.Params(), app.out, logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	changed := make(chan string, 16)
	g, gCtx := errgroup.WithContext(ctx)

	// Watch the trigger directory.
	g.Go(func() error {
		w := watch.New(store.Root(), cfg.Watch.Debounce, logger)
		return w.Watch(gCtx, func(kind, path string) {
			logger.Info("Trigger changed", slog.String("path", path), slog.String("op", kind))
			select {
			case changed <- path:
			case <-gCtx.Done():
			}
		})
	})

	// Run existing triggers, then each change.
	g.Go(func() error {
		files, err := store.List("")
		if err != nil {
			return err
		}
		for _, f := range files {
			app.runStored(gCtx, runner, store, base, f.Path)
		}
		for {
			select {
			case <-gCtx.Done():
				return nil
			case path := <-changed:
				app.runStored(gCtx, runner, store, base, path)
			}
		}
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Watch error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Watch stopped")
	return nil
}

// runStored runs one trigger from store. Bad trigger files are logged and
// skipped so a single malformed file does not end watch mode.
func (a *application) runStored(ctx context.Context, runner *experiment.Runner, store storage.Provider, base models.Profile, path string) {
	trig, err := loadTrigger(store, path)
	if err != nil {
		a.logger.Warn("watch: skip trigger", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	report, err := runner.Run(ctx, base, trig)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			a.logger.Warn("watch: run failed", slog.String("path", path), slog.String("error", err.Error()))
		}
		return
	}
	if err := a.writeReport(report); err != nil {
		a.logger.Warn("watch: write report failed", slog.String("path", path), slog.String("error", err.Error()))
	}
}

func loadTrigger(store storage.Provider, path string) (*trigger.Trigger, error) {
	data, err := store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("trigger %s: %w", path, apperr.ErrNotFound)
		}
		return nil, err
	}
	return trigger.ParseFile(path, data)
}

// baseProfile returns the configured baseline, or the built-in one.
func (a *application) baseProfile() (models.Profile, error) {
	path := a.config.Experiment.BaseProfile
	if path == "" {
		return experiment.BaseProfile(), nil
	}
	return LoadProfile(path)
}

// writeReport stores report as <trigger>.report.json when reports are enabled.
func (a *application) writeReport(report *experiment.Report) error {
	if !a.config.Reports.Enabled() {
		return nil
	}
	dir := a.config.Reports.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create reports dir: %w", err)
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		return fmt.Errorf("init report storage: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	name := ReportName(report.Trigger)
	if err := store.Write(name, append(data, '\n')); err != nil {
		return err
	}
	a.logger.Debug("report written", slog.String("path", filepath.Join(dir, name)))
	return nil
}

// ReportName is the report file name for a trigger path.
func ReportName(triggerPath string) string {
	return filepath.ToSlash(triggerPath) + trigger.ReportSuffix
}
