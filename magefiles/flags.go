//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

// targetArgs holds command-line arguments that follow the mage target name.
// Mage only supports positional parameters, so init moves everything after
// the target into targetArgs for targets that parse named flags.
//
// Example: "mage test:bench --pkg ./internal/chum5" sets targetArgs to
// ["--pkg", "./internal/chum5"] and leaves os.Args as ["mage", "test:bench"].
var targetArgs []string

func init() {
	// Layout: [binary] [mage-flags...] [target] [target-args...]
	if len(os.Args) < 2 {
		return
	}

	targetIdx := -1
	for i := 1; i < len(os.Args); i++ {
		if os.Args[i] == "--" {
			break
		}
		if len(os.Args[i]) > 0 && os.Args[i][0] != '-' {
			targetIdx = i
			break
		}
	}

	if targetIdx < 0 || targetIdx+1 >= len(os.Args) {
		return
	}

	targetArgs = os.Args[targetIdx+1:]
	os.Args = os.Args[:targetIdx+1]
}

// parseTargetFlags parses targetArgs into fs. On --help it prints usage and
// exits cleanly. On other parse errors it prints the error and exits with 1.
func parseTargetFlags(fs *flag.FlagSet) {
	err := fs.Parse(targetArgs)
	if err == nil {
		return
	}
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
