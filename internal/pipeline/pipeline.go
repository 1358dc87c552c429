// Package pipeline orchestrates the conversion workflow stages.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vgm2midi/internal/chip"
	"github.com/retroenv/vgm2midi/internal/detector"
	"github.com/retroenv/vgm2midi/internal/engine"
	"github.com/retroenv/vgm2midi/internal/instrument"
	"github.com/retroenv/vgm2midi/internal/loader"
	"github.com/retroenv/vgm2midi/internal/midi"
	"github.com/retroenv/vgm2midi/internal/options"
	"github.com/retroenv/vgm2midi/internal/usage"
	"github.com/retroenv/vgm2midi/internal/verification"
	"github.com/retroenv/vgm2midi/internal/vgm"
	"github.com/spf13/afero"
)

// Result describes a converted capture.
type Result struct {
	Tags    vgm.Tags
	Stats   vgm.Stats
	Samples uint64
	Ticks   uint32
	Notes   []int // started notes per channel
	Usage   *usage.Tracker
}

// Pipeline orchestrates the complete conversion workflow. The instrument
// registry is shared by all files converted with the same pipeline.
type Pipeline struct {
	logger   *log.Logger
	fs       afero.Fs
	detector *detector.Detector
	loader   *loader.Loader
	registry *instrument.Registry
	now      func() time.Time
}

// New creates a new conversion pipeline.
func New(logger *log.Logger, fs afero.Fs, registry *instrument.Registry) *Pipeline {
	return &Pipeline{
		logger:   logger,
		fs:       fs,
		detector: detector.New(logger),
		loader:   loader.New(fs),
		registry: registry,
		now:      time.Now,
	}
}

// Execute runs the complete conversion pipeline for the input file of the options.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, convOpts options.Converter) (*Result, error) {
	data, err := p.loader.Read(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("loading capture: %w", err)
	}

	format := p.detector.Detect(opts.Input, data)
	data, err = p.loader.Unpack(data, format)
	if err != nil {
		return nil, fmt.Errorf("unpacking capture: %w", err)
	}

	file, err := vgm.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing capture: %w", err)
	}

	return p.ExecuteWithCapture(ctx, file, opts, convOpts)
}

// ExecuteWithCapture runs the conversion pipeline with a parsed capture.
func (p *Pipeline) ExecuteWithCapture(ctx context.Context, file *vgm.File, opts options.Program,
	convOpts options.Converter) (*Result, error) {

	p.printInfo(opts, file)

	source := filepath.Base(opts.Input)
	tracker := usage.New()
	p.registry.SetReporter(tracker)
	defer p.registry.SetReporter(nil)

	seq := midi.NewSequence(chip.Channels, file.Tags.Title())
	eng := engine.New(p.logger, p.registry, tracker, seq, engine.Options{
		Source:           source,
		LoudnessExponent: convOpts.LoudnessExponent,
	})

	decoder := vgm.NewDecoder(p.logger, convOpts.Loops)
	stats, err := decoder.Run(ctx, file, eng)
	if err != nil {
		return nil, fmt.Errorf("decoding capture: %w", err)
	}
	eng.Finalize()

	p.logger.Debug("Decoded capture",
		log.Int("commands", stats.Commands),
		log.Int("register_writes", stats.RegisterWrites),
		log.Int("memory_writes", stats.MemoryWrites),
		log.Int("loops", stats.Loops))

	var buf bytes.Buffer
	if _, err := seq.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("serializing midi: %w", err)
	}
	if err := afero.WriteFile(p.fs, opts.Output, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("writing output file '%s': %w", opts.Output, err)
	}

	if err := p.appendReport(opts.Log, source, tracker); err != nil {
		return nil, err
	}

	result := &Result{
		Tags:    file.Tags,
		Stats:   stats,
		Samples: eng.Samples(),
		Ticks:   eng.Tick(),
		Notes:   seq.Notes(),
		Usage:   tracker,
	}

	if convOpts.Verify {
		if err := p.verify(buf.Bytes(), result.Notes); err != nil {
			return nil, fmt.Errorf("verification failed: %w", err)
		}
		p.logger.Info("Verification successful")
	}

	return result, nil
}

// appendReport appends the conversion log of a file to the report file.
func (p *Pipeline) appendReport(path, source string, tracker *usage.Tracker) error {
	if path == "" {
		return nil
	}

	f, err := p.fs.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening conversion log '%s': %w", path, err)
	}

	nameOf := func(label string) (string, bool) {
		entry, ok := p.registry.Lookup(label)
		return entry.Name, ok
	}
	err = tracker.WriteReport(f, source, p.now(), nameOf)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("writing conversion log '%s': %w", path, err)
	}
	return nil
}

func (p *Pipeline) verify(data []byte, notes []int) error {
	summary, err := verification.Verify(p.logger, bytes.NewReader(data), chip.Channels)
	if err != nil {
		return fmt.Errorf("reading back output: %w", err)
	}
	if err := verification.CompareNotes(summary, notes); err != nil {
		return fmt.Errorf("comparing notes: %w", err)
	}
	return nil
}

// printInfo prints information about the capture being processed.
func (p *Pipeline) printInfo(opts options.Program, file *vgm.File) {
	if opts.Quiet {
		return
	}

	p.logger.Info("Processing capture",
		log.String("file", opts.Input),
		log.String("version", file.VersionString()),
		log.String("title", file.Tags.Title()),
		log.String("game", file.Tags.Game()),
	)
	if file.WonderSwanClock == 0 {
		p.logger.Warn("Capture does not declare a WonderSwan clock, register writes may be missing")
	}
}
