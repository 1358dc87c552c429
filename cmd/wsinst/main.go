// Package main implements a maintenance tool for the instrument table
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vgm2midi/internal/config"
	"github.com/retroenv/vgm2midi/internal/fileprocessor"
	"github.com/retroenv/vgm2midi/internal/instrument"
	"github.com/retroenv/vgm2midi/internal/options"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

type optionFlags struct {
	instruments string
	threshold   int
	graphs      bool
	quiet       bool
	command     string
}

func main() {
	opts := readArguments()

	logger := config.CreateLogger(false, opts.quiet)
	fileprocessor.PrintBanner(logger, options.Program{Flags: options.Flags{Quiet: opts.quiet}}, version, commit, date)

	registry, err := config.OpenInstruments(logger, config.CreateFileSystem(), opts.instruments, nil)
	if err != nil {
		logger.Fatal(err.Error())
	}

	switch opts.command {
	case "list":
		listEntries(registry.Entries(), opts.graphs)

	case "sort":
		if err := registry.SortAndSave(opts.threshold); err != nil {
			logger.Fatal("Sorting instrument table failed", log.Err(err))
		}
		listEntries(registry.Cluster(opts.threshold), false)
	}
}

func readArguments() optionFlags {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	opts := optionFlags{}

	flags.StringVar(&opts.instruments, "instruments", options.DefaultInstruments, "instrument table file to maintain")
	flags.IntVar(&opts.threshold, "threshold", instrument.DefaultClusterThreshold, "maximum number of differing samples of similar waveforms")
	flags.BoolVar(&opts.graphs, "graph", false, "print the waveform graphs when listing entries")
	flags.BoolVar(&opts.quiet, "q", false, "perform operations quietly")

	err := flags.Parse(os.Args[1:])
	args := flags.Args()

	if err != nil || len(args) != 1 || (args[0] != "list" && args[0] != "sort") || opts.threshold < 0 {
		fmt.Printf("usage: wsinst [options] <list|sort>\n\n")
		flags.PrintDefaults()
		os.Exit(1)
	}
	opts.command = args[0]

	return opts
}

func listEntries(entries []instrument.Entry, graphs bool) {
	for _, entry := range entries {
		fmt.Printf("%-20s program %3d  %-10s %s\n", entry.Name, entry.Program, entry.Source, entry.Fingerprint)
		if graphs {
			fmt.Println(strings.TrimRight(entry.Graph, "\n"))
			fmt.Println()
		}
	}
}
