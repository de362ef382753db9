// Copyright 2026 The Akaibu Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Forlos/akaibu/lib/format"
	"github.com/Forlos/akaibu/lib/pngenc"
)

func convertCommand(args []string) error {
	var (
		verbose    bool
		outputFile string
		schemeName string
	)
	flags := newFlagSet("convert", &verbose)
	flags.StringVarP(&outputFile, "output", "o", "", "output PNG path (default: input name with .png)")
	flags.StringVar(&schemeName, "scheme", "", "skip detection and decode with this scheme")
	if err := flags.Parse(args); err != nil {
		return err
	}
	setupLogging(verbose)
	if flags.NArg() != 1 {
		return fmt.Errorf("usage: akaibu convert [flags] IMAGE")
	}
	imagePath := flags.Arg(0)
	if outputFile == "" {
		outputFile = strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + ".png"
	}

	var opts []format.Option
	if schemeName != "" {
		id, err := parseSchemeName(schemeName)
		if err != nil {
			return err
		}
		opts = append(opts, format.WithScheme(id))
	}

	src, closer, err := openSource(imagePath)
	if err != nil {
		return err
	}
	defer closer()

	result, err := format.DefaultRegistry().Decode(src, opts...)
	if err != nil {
		return err
	}

	switch res := result.Resource.(type) {
	case *format.Image:
		data, err := pngenc.Encode(res)
		if err != nil {
			return err
		}
		if err := os.WriteFile(outputFile, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outputFile)
		return nil
	case *format.SpriteSheet:
		base := strings.TrimSuffix(outputFile, filepath.Ext(outputFile))
		for i, sprite := range res.Sprites {
			data, err := pngenc.Encode(sprite.Image)
			if err != nil {
				return err
			}
			name := fmt.Sprintf("%s_%03d.png", base, i)
			if err := os.WriteFile(name, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", name)
		}
		return nil
	default:
		return fmt.Errorf("%s decodes to an archive, not an image; use akaibu extract", imagePath)
	}
}
