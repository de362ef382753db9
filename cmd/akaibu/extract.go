// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/Forlos/akaibu/lib/extract"
	"github.com/Forlos/akaibu/lib/format"
	"github.com/Forlos/akaibu/lib/integrity"
	"github.com/Forlos/akaibu/lib/pngenc"
)

func extractCommand(args []string) error {
	var (
		verbose    bool
		outputDir  string
		schemeName string
		policyName string
		convert    bool
		jobs       int
	)
	flags := newFlagSet("extract", &verbose)
	flags.StringVarP(&outputDir, "output", "o", "", "output directory (default: archive name without extension)")
	flags.StringVar(&schemeName, "scheme", "", "skip detection and decode with this scheme")
	flags.StringVar(&policyName, "checksum-policy", "", "override the checksum policy (fatal or warn)")
	flags.BoolVar(&convert, "convert", false, "also write recognized images as PNG")
	flags.IntVar(&jobs, "jobs", 0, "parallel extraction workers (default: one per CPU)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	setupLogging(verbose)
	if flags.NArg() != 1 {
		return fmt.Errorf("usage: akaibu extract [flags] ARCHIVE")
	}
	archivePath := flags.Arg(0)
	if outputDir == "" {
		outputDir = strings.TrimSuffix(archivePath, filepath.Ext(archivePath))
	}

	var opts []format.Option
	if schemeName != "" {
		id, err := parseSchemeName(schemeName)
		if err != nil {
			return err
		}
		opts = append(opts, format.WithScheme(id))
	}
	if policyName != "" {
		policy, err := integrity.ParsePolicy(policyName)
		if err != nil {
			return err
		}
		opts = append(opts, format.WithChecksumPolicy(policy))
	}

	src, closer, err := openSource(archivePath)
	if err != nil {
		return err
	}
	defer closer()

	result, err := format.DefaultRegistry().Decode(src, opts...)
	if err != nil {
		return err
	}
	for _, warning := range result.Warnings {
		slog.Warn("archive warning", "archive", archivePath, "warning", warning)
	}
	archive, ok := result.Resource.(*format.Archive)
	if !ok {
		return fmt.Errorf("%s decodes to an image, not an archive; use akaibu convert", archivePath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	extractor := &extract.Extractor{Parallelism: jobs, ConvertImages: convert}
	report, err := extractor.ExtractAll(ctx, archive)
	if err != nil {
		return err
	}

	written := 0
	for _, entry := range archive.Entries {
		entryResult, ok := report.Results[entry.Name]
		if !ok || entryResult.Err != nil {
			continue
		}
		path, err := entryPath(outputDir, entry.Name)
		if err != nil {
			slog.Warn("skipping entry", "entry", entry.Name, "error", err)
			continue
		}
		for _, warning := range entryResult.Warnings {
			slog.Warn("entry warning", "entry", entry.Name, "warning", warning)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, entryResult.Data, 0o644); err != nil {
			return err
		}
		written++
		if convert && entryResult.Resource != nil {
			if err := writeResourcePNG(path, entryResult.Resource); err != nil {
				slog.Warn("image conversion failed", "entry", entry.Name, "error", err)
			}
		}
	}

	if failed := report.Failed(); len(failed) > 0 {
		return fmt.Errorf("extracted %d of %d entries; failed: %s",
			written, len(archive.Entries), strings.Join(failed, ", "))
	}
	fmt.Printf("extracted %d entries to %s\n", written, outputDir)
	return nil
}

// entryPath joins an archive entry name onto the output directory,
// rejecting names that would escape it. Entry names come from
// untrusted containers.
func entryPath(outputDir, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if cleaned == "" || !filepath.IsLocal(cleaned) {
		return "", fmt.Errorf("entry name %q escapes the output directory", name)
	}
	return filepath.Join(outputDir, cleaned), nil
}

// writeResourcePNG writes a converted image next to the raw entry.
func writeResourcePNG(entryFile string, resource format.Resource) error {
	base := strings.TrimSuffix(entryFile, filepath.Ext(entryFile))
	switch res := resource.(type) {
	case *format.Image:
		data, err := pngenc.Encode(res)
		if err != nil {
			return err
		}
		return os.WriteFile(base+".png", data, 0o644)
	case *format.SpriteSheet:
		for i, sprite := range res.Sprites {
			data, err := pngenc.Encode(sprite.Image)
			if err != nil {
				return err
			}
			if err := os.WriteFile(fmt.Sprintf("%s_%03d.png", base, i), data, 0o644); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("resource %T is not an image", resource)
	}
}
