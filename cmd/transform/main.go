package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"medina/internal/config"
	"medina/internal/driver"
	"medina/internal/ir"
	"medina/internal/langtag"
	"medina/internal/runstate"
	"medina/internal/sink"
	"medina/internal/transform"
	"medina/internal/validate"
	"medina/internal/writer"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	loader, err := langtag.NewLoader(cfg.ConfigDir)
	if err != nil {
		return err
	}
	profile, err := loader.Load()
	if err != nil {
		return err
	}

	stages, err := transform.Resolve(transform.Registry(), transform.DefaultOrder)
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(cfg.Input)
	if err != nil {
		return err
	}
	defer closeIn()

	out, outPath, closeOut, err := openOutput(cfg.Output)
	if err != nil {
		return err
	}
	defer closeOut()

	report, err := sink.NewReportStore(cfg.Report.DSN)
	if err != nil {
		return fmt.Errorf("open report store: %w", err)
	}
	defer func() { _ = report.Close() }()

	ctx := context.Background()
	runID := time.Now().UTC().Format("20060102T150405Z")

	d := &driver.Driver{
		RunID: runID,
		Stages: stages,
		Base: &transform.Context{
			Source:  cfg.Source,
			Fields:  ir.NormalizedFields(),
			Profile: profile,
			Logger:  logger,
		},
		Writer:      writer.New(out, validate.New(profile)),
		Workers:     cfg.Workers,
		SkipOnError: cfg.OnError == "skip",
		Processed:   &runstate.Counter{},
		Written:     &runstate.Counter{},
		Collector:   &runstate.Collector{},
		Report:      report,
		Logger:      logger,
	}

	summary, runErr := d.Run(ctx, in)
	logger.Info("run finished",
		zap.String("run_id", runID),
		zap.Int64("processed", summary.Processed),
		zap.Int64("written", summary.Written),
		zap.Int64("failed", summary.Failed),
		zap.Duration("elapsed", summary.FinishedAt.Sub(summary.StartedAt)))
	if runErr != nil {
		return runErr
	}

	if cfg.Upload.Enabled && outPath != "" {
		uploader, err := sink.NewS3Uploader(sink.S3Config{
			Endpoint:  cfg.Upload.Endpoint,
			Region:    cfg.Upload.Region,
			AccessKey: cfg.Upload.AccessKey,
			SecretKey: cfg.Upload.SecretKey,
			Bucket:    cfg.Upload.Bucket,
			UseSSL:    cfg.Upload.UseSSL,
		})
		if err != nil {
			return err
		}
		key := cfg.Upload.Key
		if key == "" {
			key = fmt.Sprintf("%s/%s.ndjson", runID, firstNonEmpty(cfg.Source, "batch"))
		}
		if err := uploader.UploadFile(ctx, key, outPath); err != nil {
			return err
		}
		logger.Info("batch uploaded", zap.String("bucket", cfg.Upload.Bucket), zap.String("key", key))
	}
	return nil
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func openOutput(path string) (io.Writer, string, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, "", func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, "", nil, err
	}
	return f, path, func() { _ = f.Close() }, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
