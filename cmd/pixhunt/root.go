package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pixhunt/internal/config"
	"pixhunt/internal/diskimage"
	"pixhunt/internal/export"
	"pixhunt/internal/logging"
	"pixhunt/internal/matchdb"
	"pixhunt/internal/refset"
	"pixhunt/internal/scanner"
)

// usageError marks failures that should print usage and exit 2:
// malformed options and missing required parameters.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

type scanFlags struct {
	imagePath  string
	refDir     string
	threshold  int
	exportDir  string
	configPath string
	journalDB  string
	logLevel   string
	logFormat  string
}

func newRootCommand() *cobra.Command {
	flags := &scanFlags{}

	long := "pixhunt walks the filesystem inside a raw disk image, compares every " +
		"image file it finds against a folder of reference images, and reports " +
		"candidates whose mean pixel difference falls under the threshold."

	cmd := &cobra.Command{
		Use:           "pixhunt -d <disk_image> -r <reference_folder> [-i <threshold>] [-o <output_folder>]",
		Short:         "Find visual matches of reference images inside a disk image",
		Long:          long,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.imagePath == "" || flags.refDir == "" {
				return &usageError{errors.New("missing required parameters")}
			}
			return runScan(cmd, flags)
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err}
	})

	cmd.Flags().StringVarP(&flags.imagePath, "image", "d", "", "Path to the raw disk image")
	cmd.Flags().StringVarP(&flags.refDir, "references", "r", "", "Folder of reference images to search for")
	cmd.Flags().IntVarP(&flags.threshold, "threshold", "i", config.DefaultThreshold, "Similarity threshold (mean pixel difference, strict upper bound)")
	cmd.Flags().StringVarP(&flags.exportDir, "export", "o", "", "Folder to copy matched images into (created if absent)")
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Configuration file path")
	cmd.Flags().StringVar(&flags.journalDB, "db", "", "SQLite match journal path")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, or error")
	cmd.Flags().StringVar(&flags.logFormat, "log-format", "", "Log format: console or json")

	return cmd
}

func runScan(cmd *cobra.Command, flags *scanFlags) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, _, _, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, flags, cfg)

	logger, logFile, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}

	image, err := diskimage.Open(flags.imagePath)
	if err != nil {
		return err
	}
	defer image.Close()
	logger.Info("filesystem opened",
		slog.String("image", image.Path()),
		slog.String("filesystem", image.FilesystemType()))

	refs, err := refset.Load(flags.refDir, logger)
	if err != nil {
		return err
	}
	logger.Info("references loaded",
		slog.String("folder", flags.refDir),
		slog.Int("count", refs.Len()))

	var exporter *export.Exporter
	if cfg.Export.Dir != "" {
		exporter, err = export.New(cfg.Export.Dir)
		if err != nil {
			return err
		}
		defer exporter.Close()
	}

	var journal *matchdb.Store
	if cfg.Journal.Path != "" {
		journal, err = matchdb.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer journal.Close()
	}

	scan, err := scanner.New(scanner.Options{
		Refs:          refs,
		Threshold:     float64(cfg.Scan.Threshold),
		Exporter:      exporter,
		ProgressEvery: cfg.Scan.ProgressEvery,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	startedAt := time.Now()
	set, stats, scanErr := scan.Scan(ctx, image.Root())
	if scanErr != nil && !errors.Is(scanErr, context.Canceled) {
		return scanErr
	}
	if errors.Is(scanErr, context.Canceled) {
		logger.Warn("scan interrupted, reporting partial results")
	}

	if journal != nil {
		run := matchdb.Run{
			ID:               scan.RunID(),
			ImagePath:        flags.imagePath,
			ReferenceDir:     flags.refDir,
			Threshold:        float64(cfg.Scan.Threshold),
			StartedAt:        startedAt,
			FinishedAt:       time.Now(),
			EntriesVisited:   stats.EntriesVisited,
			CandidatesScored: stats.CandidatesScored,
			SoftErrors:       stats.SoftErrors,
		}
		// Journal writes should not discard an otherwise complete scan.
		if err := journal.SaveRun(cmd.Context(), run, set); err != nil {
			logger.Error("write match journal", slog.Any("error", err))
		}
	}

	writeReport(cmd.OutOrStdout(), set)
	return scanErr
}

// applyFlagOverrides lets explicitly-set flags win over config values.
func applyFlagOverrides(cmd *cobra.Command, flags *scanFlags, cfg *config.Config) {
	if cmd.Flags().Changed("threshold") {
		cfg.Scan.Threshold = flags.threshold
	}
	if cmd.Flags().Changed("export") {
		cfg.Export.Dir = flags.exportDir
	}
	if cmd.Flags().Changed("db") {
		cfg.Journal.Path = flags.journalDB
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = flags.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Logging.Format = flags.logFormat
	}
}

func buildLogger(cfg *config.Config) (*slog.Logger, *os.File, error) {
	var output io.Writer = os.Stderr
	var logFile *os.File
	if cfg.Logging.File != "" {
		file, err := logging.OpenLogFile(cfg.Logging.File)
		if err != nil {
			return nil, nil, err
		}
		logFile = file
		output = io.MultiWriter(os.Stderr, file)
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: output,
	})
	if err != nil {
		if logFile != nil {
			_ = logFile.Close()
		}
		return nil, nil, err
	}
	return logger, logFile, nil
}
