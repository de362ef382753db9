// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Forlos/akaibu/lib/bytesource"
	"github.com/Forlos/akaibu/lib/format"
)

func detectCommand(args []string) error {
	var verbose bool
	flags := newFlagSet("detect", &verbose)
	if err := flags.Parse(args); err != nil {
		return err
	}
	setupLogging(verbose)
	if flags.NArg() != 1 {
		return fmt.Errorf("usage: akaibu detect FILE")
	}

	src, closer, err := openSource(flags.Arg(0))
	if err != nil {
		return err
	}
	defer closer()

	scheme, err := format.DefaultRegistry().Resolve(src)
	if err != nil {
		return err
	}
	fmt.Println(scheme.ID())
	return nil
}

// openSource maps a file into a byte source. Small files are read
// whole; larger archives are served through io.ReaderAt so extraction
// does not hold the entire container in memory.
func openSource(path string) (*bytesource.Source, func(), error) {
	const inMemoryLimit = 64 << 20

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, err
	}
	if info.Size() <= inMemoryLimit {
		data := make([]byte, info.Size())
		if _, err := file.ReadAt(data, 0); err != nil && info.Size() > 0 {
			file.Close()
			return nil, nil, fmt.Errorf("reading %s: %w", path, err)
		}
		file.Close()
		return bytesource.New(data), func() {}, nil
	}
	return bytesource.NewReaderAt(file, info.Size()), func() { file.Close() }, nil
}

// parseSchemeName resolves a user-supplied scheme name like "ypf".
func parseSchemeName(name string) (format.SchemeID, error) {
	switch strings.ToLower(name) {
	case "g00":
		return format.SchemeG00, nil
	case "ycg":
		return format.SchemeYCG, nil
	case "pf8":
		return format.SchemePF8, nil
	case "gxp":
		return format.SchemeGXP, nil
	case "ypf":
		return format.SchemeYPF, nil
	case "libp":
		return format.SchemeLIBP, nil
	default:
		return 0, fmt.Errorf("unknown scheme %q (g00, ycg, pf8, gxp, ypf, libp)", name)
	}
}
