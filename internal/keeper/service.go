package keeper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"notekeeper/internal/config"
	"notekeeper/internal/fs"
	"notekeeper/internal/walk"
)

// PassReport summarizes one full maintenance pass. It is written to the
// configured state file after every pass.
type PassReport struct {
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	Scanned         int       `json:"scanned"`
	Failed          int       `json:"failed"`
	DeletedUntitled int       `json:"deleted_untitled"`
	DryRun          bool      `json:"dry_run,omitempty"`
}

// Service runs maintenance passes over the note tree: the storage-path
// rule (plus the dates rule when enabled) for every note, followed by the
// untitled-note sweep.
type Service struct {
	cfg    config.Config
	log    *log.Logger
	fs     fs.FS
	keeper *Keeper
	walker *walk.Walker
}

// NewService wires a service from configuration. In dry-run mode every
// filesystem mutation is replaced with a log line.
// Panics if fsys or logger is nil.
func NewService(cfg config.Config, fsys fs.FS, logger *log.Logger) *Service {
	if fsys == nil {
		panic("fs is nil")
	}

	if logger == nil {
		panic("logger is nil")
	}

	if cfg.DryRun {
		fsys = fs.NewDryRun(fsys, logger)
	}

	k := New(fsys, logger, Options{
		Warehouse:      cfg.WarehouseDir,
		TrashDir:       cfg.TrashDir,
		UntitledPrefix: cfg.UntitledPrefix,
	})

	w := walk.NewWalker(fsys, logger, walk.Options{
		Limit:  int64(cfg.Concurrency),
		Suffix: noteSuffix,
	})

	return &Service{cfg: cfg, log: logger, fs: fsys, keeper: k, walker: w}
}

// Pass runs one full maintenance pass and writes the pass report.
//
// Per-note failures are isolated by the walker and only counted here; Pass
// fails only when the tree itself cannot be enumerated.
func (s *Service) Pass(ctx context.Context) (PassReport, error) {
	report := PassReport{StartedAt: time.Now(), DryRun: s.cfg.DryRun}

	stats, err := s.walker.Walk(ctx, s.cfg.DataDir, s.handle)
	if err != nil {
		return report, err
	}

	deleted, err := s.keeper.RemoveUntitled(s.cfg.DataDir)
	if err != nil {
		return report, err
	}

	report.FinishedAt = time.Now()
	report.Scanned = stats.Matched
	report.Failed = len(stats.Failures)
	report.DeletedUntitled = deleted

	s.writeReport(report)

	return report, nil
}

// Run repeats passes every configured interval until ctx is cancelled.
// With watch mode on, changes under the data dir also trigger an early
// pass after a short debounce.
func (s *Service) Run(ctx context.Context) error {
	s.log.Info("notekeeper started",
		"data_dir", s.cfg.DataDir,
		"interval", s.cfg.Interval(),
		"dry_run", s.cfg.DryRun)

	var wake <-chan struct{}

	if s.cfg.Watch {
		ch, err := watchChanges(ctx, s.cfg.DataDir, watchDebounce, s.log)
		if err != nil {
			return fmt.Errorf("watch %s: %w", s.cfg.DataDir, err)
		}

		wake = ch
	}

	ticker := time.NewTicker(s.cfg.Interval())
	defer ticker.Stop()

	for {
		report, err := s.Pass(ctx)

		switch {
		case errors.Is(err, context.Canceled):
			s.log.Info("notekeeper stopped")

			return nil
		case err != nil:
			s.log.Error("pass failed", "err", err)
		default:
			s.log.Info("pass complete",
				"scanned", report.Scanned,
				"failed", report.Failed,
				"deleted_untitled", report.DeletedUntitled,
				"took", report.FinishedAt.Sub(report.StartedAt))
		}

		if !s.wait(ctx, ticker.C, &wake) {
			s.log.Info("notekeeper stopped")

			return nil
		}
	}
}

// wait blocks until the next pass is due. Returns false on shutdown.
func (s *Service) wait(ctx context.Context, tick <-chan time.Time, wake *<-chan struct{}) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case <-tick:
			return true
		case _, ok := <-*wake:
			if !ok {
				// watcher shut down; fall back to the ticker alone
				*wake = nil

				continue
			}

			s.log.Debug("change detected, starting early pass")

			return true
		}
	}
}

// writeReport persists the pass report atomically. Report failures are
// logged, never fatal; the report is advisory.
func (s *Service) writeReport(report PassReport) {
	if s.cfg.StateFile == "" {
		return
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		s.log.Error("could not encode pass report", "err", err)

		return
	}

	err = s.fs.WriteFileAtomic(s.cfg.StateFile, append(data, '\n'), 0o644)
	if err != nil {
		s.log.Error("could not write pass report", "path", s.cfg.StateFile, "err", err)
	}
}

func (s *Service) handle(ctx context.Context, path string) error {
	err := s.keeper.EnsureStoragePath(ctx, path)
	if err != nil {
		return err
	}

	if s.cfg.SyncDates {
		return s.keeper.EnsureTimestamps(ctx, path)
	}

	return nil
}
