// Package main implements the main entry point for the WonderSwan capture to MIDI converter
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vgm2midi/internal/cli"
	"github.com/retroenv/vgm2midi/internal/config"
	"github.com/retroenv/vgm2midi/internal/fileprocessor"
	"github.com/retroenv/vgm2midi/internal/pipeline"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, convOpts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	fileprocessor.PrintBanner(logger, opts, version, commit, date)

	fs := config.CreateFileSystem()
	files, err := fileprocessor.GetFilesToProcess(fs, &opts)
	if err != nil {
		logger.Fatal(err.Error())
	}
	if len(files) == 0 {
		logger.Warn("No files to process", log.String("pattern", opts.Batch))
		return
	}

	registry, err := config.OpenInstruments(logger, fs, opts.Instruments, nil)
	if err != nil {
		logger.Fatal(err.Error())
	}
	if err := fileprocessor.ResetReport(fs, opts.Log); err != nil {
		logger.Fatal(err.Error())
	}

	p := pipeline.New(logger, fs, registry)
	for _, file := range files {
		opts.Input = file
		if len(files) > 1 || opts.Output == "" {
			opts.Output = fileprocessor.GenerateOutputFilename(file)
		}

		if err := fileprocessor.ProcessFile(ctx, logger, p, opts, convOpts); err != nil {
			// Handle context cancellation (Ctrl+C) gracefully
			if errors.Is(err, context.Canceled) {
				logger.Info("Operation cancelled")
				return
			}
			logger.Error("Converting failed", log.Err(err))
		}
	}
}
