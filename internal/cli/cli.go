// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/vgm2midi/internal/options"
)

// ParseFlags parses command line flags and returns program and converter options
func ParseFlags() (options.Program, options.Converter, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Input == "" && opts.Batch == "") {
		return opts, options.Converter{}, &UsageError{flags: flags}
	}

	if err := validateArgs(args, opts); err != nil {
		return opts, options.Converter{}, err
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, options.Converter{}, err
	}

	if len(args) > 0 {
		opts.Input = args[0]
	}
	if len(args) > 1 {
		opts.Output = args[1]
	}

	return opts, options.NewConverter(opts), nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: vgm2midi [options] <input.vgm> [output.mid]\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string, opts options.Program) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after file to convert, please pass the files as last arguments", arg),
			}
		}
	}
	if len(args) > 2 {
		return &UsageError{msg: "too many positional arguments, expected <input> [output]"}
	}
	if opts.Batch != "" && len(args) > 0 {
		return &UsageError{msg: "positional files can not be combined with batch mode"}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	if opts.Loops < 0 {
		return fmt.Errorf("invalid loop count %d, must not be negative", opts.Loops)
	}
	if opts.Curve <= 0 {
		return errors.New("curve exponent must be positive")
	}
	if opts.Instruments == "" {
		opts.Instruments = options.DefaultInstruments
	}
	if opts.Log == "" {
		opts.Log = options.DefaultLog
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input .vgm or .vgz capture file")
	flags.StringVar(&opts.Output, "o", "", "name of the output .mid file, derived from the input name if not given")
	flags.StringVar(&opts.Batch, "batch", "", "process a batch of given path and file mask and automatically .mid file naming, for example *.vgm")
	flags.StringVar(&opts.Instruments, "instruments", options.DefaultInstruments, "instrument table file that maps waveforms to MIDI programs")
	flags.StringVar(&opts.Log, "log", options.DefaultLog, "conversion log file that waveform usage is appended to")
	flags.IntVar(&opts.Loops, "l", options.DefaultLoops, "number of times the loop section of the capture is repeated")
	flags.Float64Var(&opts.Curve, "curve", options.DefaultCurve, "exponent of the volume to expression curve, 0.5 for a square root curve")
	flags.BoolVar(&opts.Verify, "verify", false, "verify the written MIDI file by reading it back")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
