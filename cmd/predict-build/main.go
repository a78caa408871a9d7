// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main builds the index artifacts that predict serves.

Shortcode sources are JSON objects of shortcode to asset URL, like the
GitHub emoji API returns, or YAML mappings of the same shape. Later sources
override earlier ones. Word lists hold one word per line.

	predict-build -source emojis.json -source extra.yaml -dict words.txt -out data/

Inputs are sorted and deduplicated here, before building; the builders
themselves reject unsorted input.

Check existing artifacts without rebuilding:

	predict-build -out data/ -verify
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/bastiangx/predict/internal/logger"
	"github.com/bastiangx/predict/pkg/dictionary"
	"github.com/bastiangx/predict/pkg/source"
	"github.com/bastiangx/predict/pkg/suggest"
	"github.com/charmbracelet/log"
)

// sourceList collects repeated -source flags.
type sourceList []string

func (s *sourceList) String() string { return strings.Join(*s, ",") }

func (s *sourceList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

var l = logger.New("build")

func main() {
	var sources sourceList
	flag.Var(&sources, "source", "Shortcode source, .json or .yaml (repeatable)")
	dictFile := flag.String("dict", "", "Word list, one word per line")
	outDir := flag.String("out", "data", "Output directory for the artifacts")
	verify := flag.Bool("verify", false, "Load and check the artifacts in -out instead of building")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	flag.Parse()

	logger.Setup(*debugMode)
	l.SetLevel(log.GetLevel())

	if *verify {
		if err := verifyArtifacts(*outDir); err != nil {
			l.Fatalf("Verification failed: %v", err)
		}
		return
	}

	if len(sources) == 0 && *dictFile == "" {
		fmt.Fprintln(os.Stderr, "nothing to build: pass -source and/or -dict")
		flag.Usage()
		os.Exit(2)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		l.Fatalf("Failed to create output dir: %v", err)
	}
	paths := dictionary.ArtifactPaths(*outDir)

	if *dictFile != "" {
		if err := buildDictionary(*dictFile, paths.Dictionary); err != nil {
			l.Fatalf("Dictionary build failed: %v", err)
		}
	}
	if len(sources) > 0 {
		if err := buildSymbols(sources, paths); err != nil {
			l.Fatalf("Symbol build failed: %v", err)
		}
	}
}

func buildDictionary(wordFile, out string) error {
	words, err := source.ReadWordFile(wordFile)
	if err != nil {
		return err
	}
	words, dups := source.SortWords(words)
	if dups > 0 {
		l.Warnf("Dropped %d duplicate words", dups)
	}
	if err := dictionary.BuildDictionary(out, words); err != nil {
		return err
	}
	l.Infof("Wrote %s: %d words", out, len(words))
	return nil
}

func buildSymbols(sources []string, paths dictionary.Paths) error {
	loaded := make([]map[string]string, 0, len(sources))
	for _, path := range sources {
		records, err := source.LoadFile(path)
		if err != nil {
			return err
		}
		l.Debugf("Read %d records from %s", len(records), path)
		loaded = append(loaded, records)
	}

	pairs, rejected := source.Normalize(source.Merge(loaded...))
	for _, rerr := range rejected {
		l.Warn("Dropped record", "shortcode", rerr.Shortcode, "ref", rerr.Ref, "err", rerr.Err)
	}
	pairs, dups := source.SortPairs(pairs)
	if dups > 0 {
		l.Warnf("Dropped %d duplicate shortcodes", dups)
	}

	if err := dictionary.BuildSymbols(paths.Shortcodes, paths.Symbols, pairs); err != nil {
		return err
	}
	l.Infof("Wrote %s and %s: %d shortcodes, %d dropped", paths.Shortcodes, paths.Symbols, len(pairs), len(rejected))
	return nil
}

func verifyArtifacts(dir string) error {
	paths := dictionary.ArtifactPaths(dir)
	for _, path := range []string{paths.Dictionary, paths.Shortcodes, paths.Symbols} {
		format, err := dictionary.DetectFileFormat(path)
		if err != nil {
			return err
		}
		info, _ := dictionary.GetFormatInfo(format)
		if err := dictionary.ValidateFileFormat(path, format); err != nil {
			return err
		}
		l.Infof("%s: %s", path, info.Description)
	}

	engine, err := suggest.Load(dir, suggest.Limits{})
	if err != nil {
		return err
	}
	stats := engine.Stats()
	l.Infof("OK: %d words, %d shortcodes", stats["words"], stats["symbols"])
	return nil
}
