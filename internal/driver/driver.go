// Package driver orchestrates one run: it streams accumulated records from an
// NDJSON input, pushes each through the transform stages and the validating
// writer on a pool of workers, and decides skip-vs-abort per failure. The
// per-record core itself stays single-threaded and pure; everything shared
// across records lives in runstate.
package driver

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"medina/internal/ir"
	"medina/internal/runstate"
	"medina/internal/sink"
	"medina/internal/transform"
	"medina/internal/validate"
	"medina/internal/writer"
)

// lines longer than the default scanner buffer are routine for records with
// many web resources.
const maxLineBytes = 16 << 20

// Driver runs records through the pipeline.
type Driver struct {
	RunID   string
	Stages  []transform.StageSpec
	Base    *transform.Context // Source is overridden per record when __source is set
	Writer  *writer.Writer
	Workers int
	// SkipOnError records a failed record in the collector and continues;
	// otherwise the first failure aborts the run.
	SkipOnError bool

	Processed *runstate.Counter
	Written   *runstate.Counter
	Collector *runstate.Collector
	Report    *sink.ReportStore
	Logger    *zap.Logger
}

// Summary is the final tally of one run.
type Summary struct {
	Processed  int64
	Written    int64
	Failed     int64
	StartedAt  time.Time
	FinishedAt time.Time
}

// Run processes every line of in and returns the run summary. With abort
// policy the first per-record failure cancels outstanding workers and is
// returned; other failures are only visible through the collector.
func (d *Driver) Run(ctx context.Context, in io.Reader) (Summary, error) {
	started := time.Now()
	lines := make(chan []byte, d.workers())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 64<<10), maxLineBytes)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			if len(line) == 0 {
				continue
			}
			select {
			case lines <- line:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return scanner.Err()
	})

	for i := 0; i < d.workers(); i++ {
		g.Go(func() error {
			for line := range lines {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := d.processLine(gctx, line); err != nil {
					return err
				}
			}
			return nil
		})
	}

	err := g.Wait()
	if flushErr := d.Writer.Flush(); err == nil {
		err = flushErr
	}

	summary := Summary{
		Processed:  d.Processed.Value(),
		Written:    d.Written.Value(),
		Failed:     int64(d.Collector.Len()),
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if d.Report != nil {
		if repErr := d.Report.RunSummary(ctx, d.RunID, summary.Processed, summary.Written, summary.Failed, started, summary.FinishedAt); repErr != nil {
			d.logger().Warn("run summary not recorded", zap.Error(repErr))
		}
	}
	return summary, err
}

func (d *Driver) processLine(ctx context.Context, line []byte) error {
	d.Processed.Inc()

	var rec ir.Record
	if err := json.Unmarshal(line, &rec); err != nil {
		return d.recordFailure(ctx, ir.Record{}, fmt.Errorf("parse record: %w", err))
	}

	sctx := d.contextFor(rec)
	out, err := transform.Apply(rec, d.Stages, sctx)
	if err == nil {
		err = d.Writer.Write(out)
	}
	if err != nil {
		return d.recordFailure(ctx, rec, err)
	}
	d.Written.Inc()
	return nil
}

// recordFailure collects the failure and applies the run policy. Per-record
// errors (missing language tags, contract violations) honor SkipOnError;
// anything else aborts regardless.
func (d *Driver) recordFailure(ctx context.Context, rec ir.Record, err error) error {
	source := rec.Source()
	if source == "" {
		source = d.Base.Source
	}
	d.Collector.Append(runstate.Failure{RecordID: rec.ID(), Source: source, Err: err})
	d.logger().Error("record rejected",
		zap.String("record_id", rec.ID()),
		zap.String("source", source),
		zap.Error(err))

	if d.Report != nil {
		if repErr := d.Report.Rejection(ctx, d.RunID, rec.ID(), source, err.Error(), time.Now()); repErr != nil {
			d.logger().Warn("rejection not recorded", zap.Error(repErr))
		}
	}

	var langErr *transform.UnspecifiedLanguageError
	var valErr *validate.ValidationError
	perRecord := errors.As(err, &langErr) || errors.As(err, &valErr)
	if perRecord && d.SkipOnError {
		return nil
	}
	return err
}

func (d *Driver) contextFor(rec ir.Record) *transform.Context {
	if rec.Source() == "" {
		return d.Base
	}
	sctx := *d.Base
	sctx.Source = rec.Source()
	return &sctx
}

func (d *Driver) workers() int {
	if d.Workers < 1 {
		return 1
	}
	return d.Workers
}

func (d *Driver) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}
