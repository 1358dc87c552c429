// Package fileprocessor handles file selection and processing operations
package fileprocessor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vgm2midi/internal/options"
	"github.com/retroenv/vgm2midi/internal/pipeline"
	"github.com/spf13/afero"
)

// ProcessFile converts a single capture file and logs a summary.
func ProcessFile(ctx context.Context, logger *log.Logger, p *pipeline.Pipeline,
	opts options.Program, convOpts options.Converter) error {

	result, err := p.Execute(ctx, opts, convOpts)
	if err != nil {
		return fmt.Errorf("converting '%s': %w", opts.Input, err)
	}

	var notes int
	for _, n := range result.Notes {
		notes += n
	}
	logger.Info("Conversion finished",
		log.String("output", opts.Output),
		log.Int("notes", notes),
		log.Int("new_instruments", len(result.Usage.NewInstruments())))
	return nil
}

// GetFilesToProcess returns list of files to process based on options
func GetFilesToProcess(fs afero.Fs, opts *options.Program) ([]string, error) {
	if opts.Batch != "" {
		matches, err := afero.Glob(fs, opts.Batch)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		return matches, nil
	}
	return []string{opts.Input}, nil
}

// GenerateOutputFilename generates output filename for a given input file
func GenerateOutputFilename(inputFile string) string {
	ext := filepath.Ext(inputFile)
	return inputFile[:len(inputFile)-len(ext)] + ".mid"
}

// ResetReport truncates the conversion log so that it only contains the
// files of the current run.
func ResetReport(fs afero.Fs, path string) error {
	if path == "" {
		return nil
	}
	if err := afero.WriteFile(fs, path, nil, 0o644); err != nil {
		return fmt.Errorf("resetting conversion log '%s': %w", path, err)
	}
	return nil
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info("vgm2midi", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}
