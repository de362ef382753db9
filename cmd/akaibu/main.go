// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

// akaibu decodes game-engine archive and image formats.
//
// Usage:
//
//	akaibu detect FILE
//	akaibu extract [-o DIR] [--scheme NAME] [--convert] ARCHIVE
//	akaibu convert [-o FILE] IMAGE
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/Forlos/akaibu/lib/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		printUsage()
		return fmt.Errorf("no command given")
	}

	switch args[0] {
	case "--help", "help", "-h":
		printUsage()
		return nil
	case "--version", "version":
		fmt.Printf("akaibu %s\n", version.Info())
		return nil
	case "detect":
		return detectCommand(args[1:])
	case "extract":
		return extractCommand(args[1:])
	case "convert":
		return convertCommand(args[1:])
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

// setupLogging installs the default slog handler at the requested
// verbosity. Decode libraries never log; everything below warn is
// this binary's own progress reporting.
func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// newFlagSet returns a flag set with the shared --verbose flag.
func newFlagSet(name string, verbose *bool) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.BoolVarP(verbose, "verbose", "v", false, "enable debug logging")
	return flags
}

func printUsage() {
	fmt.Print(`akaibu - decode game-engine archive and image formats

USAGE
    akaibu detect FILE
        Report which format scheme recognizes the file.

    akaibu extract [-o DIR] [--scheme NAME] [--convert] [--checksum-policy POLICY] [--jobs N] ARCHIVE
        Extract every archive entry into DIR (default: the archive
        name without its extension). --scheme skips detection,
        --convert additionally writes recognized images as PNG,
        --checksum-policy overrides the per-format default (fatal or
        warn).

    akaibu convert [-o FILE] IMAGE
        Decode an image file and write it as PNG. Sprite sheets
        produce one numbered PNG per sprite.
`)
}
