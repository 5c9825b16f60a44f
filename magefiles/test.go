//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"path/filepath"
	"strconv"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets (all, race, bench, cover).
type Test mg.Namespace

// All runs every test.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-v", "./...")
}

// Race runs every test with the race detector. The batch loader and the
// settings store are the concurrent parts.
func (Test) Race() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Bench runs benchmarks. Flags: --pkg (default ./...), --run (default .),
// --count (default 1).
func (Test) Bench() error {
	fs := flag.NewFlagSet("test:bench", flag.ContinueOnError)
	pkg := fs.String("pkg", "./...", "package pattern")
	run := fs.String("run", ".", "benchmark regexp")
	count := fs.Int("count", 1, "repetitions")
	parseTargetFlags(fs)

	return sh.RunV(binGo, "test", "-run", "^$", "-bench", *run, "-benchmem",
		"-count", strconv.Itoa(*count), *pkg)
}

// Cover writes a coverage profile to bin/coverage.out and prints the summary.
func (Test) Cover() error {
	mg.Deps(ensureBinDir)
	profile := filepath.Join(binaryDir, "coverage.out")
	if err := sh.RunV(binGo, "test", "-coverprofile", profile, "-coverpkg", modulePath+"/...", "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func", profile)
}
