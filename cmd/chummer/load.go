// Load command for the chummer CLI.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/chummer/pkg/chummer"
	"github.com/mesh-intelligence/chummer/pkg/types"
)

// loadResult is one row of load output.
type loadResult struct {
	File       string        `json:"file"`
	Usable     bool          `json:"usable"`
	GUID       string        `json:"guid,omitempty"`
	Name       string        `json:"name,omitempty"`
	Alias      string        `json:"alias,omitempty"`
	Metatype   string        `json:"metatype,omitempty"`
	AppVersion string        `json:"app_version,omitempty"`
	Karma      int           `json:"karma"`
	Essence    float64       `json:"essence"`
	Counts     *types.Counts `json:"counts,omitempty"`
	Error      string        `json:"error,omitempty"`
}

func newLoadCmd(a *app) *cobra.Command {
	var (
		keepGoing   bool
		concurrency int
		asJSON      bool
		compat      string
	)
	cmd := &cobra.Command{
		Use:   "load <file.chum5>...",
		Short: "Load and validate character documents",
		Long: `Load reads each character document, upgrades older formats and checks
referential integrity. By default the first failure stops the run; with
--keep-going every file is attempted and all failures are reported.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("compat") {
				compat = a.cfg.GetString(cfgKeyCompatibility)
			}
			mode, err := chummer.ParseCompatibilityMode(compat)
			if err != nil {
				return userError("load: %w", err)
			}
			if !cmd.Flags().Changed("concurrency") {
				concurrency = a.cfg.GetInt(cfgKeyLoadConcurrency)
			}

			loader := chummer.NewLoader(chummer.LoaderOptions{
				Compatibility: mode,
				Logger:        a.logger,
				Headless:      true,
			})
			chars, loadErr := loader.LoadAll(cmd.Context(), args, chummer.BatchOptions{
				Concurrency: concurrency,
				KeepGoing:   keepGoing,
			})

			results := make([]loadResult, len(chars))
			failures := failuresByFile(loadErr)
			for i, c := range chars {
				results[i] = resultFor(c, failures[c.FileName])
			}
			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
					return err
				}
			} else {
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "FILE\tNAME\tMETATYPE\tKARMA\tSTATUS")
				for _, r := range results {
					status := "ok"
					if !r.Usable {
						status = "failed"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.File, r.Name, r.Metatype, r.Karma, status)
				}
				if err := tw.Flush(); err != nil {
					return sysError("write output: %w", err)
				}
			}
			return classifyLoadError(loadErr)
		},
	}
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "load every file even after failures")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "parallel loads (default: load_concurrency from config, 0 = all CPUs)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	cmd.Flags().StringVar(&compat, "compat", "legacy", "compatibility mode for old documents: legacy or strict")
	return cmd
}

func resultFor(c *types.Character, err error) loadResult {
	r := loadResult{File: c.FileName, Usable: c.Usable()}
	if err != nil {
		r.Error = err.Error()
	}
	if !c.Usable() {
		return r
	}
	s := &c.Sheet
	counts := s.Counts()
	r.GUID = s.GUID
	r.Name = s.Name
	r.Alias = s.Alias
	r.Metatype = s.Metatype
	r.AppVersion = s.AppVersion
	r.Karma = s.Karma
	r.Essence = s.Essence
	r.Counts = &counts
	return r
}

// failuresByFile indexes per-file errors. A fail-fast run yields at most one.
func failuresByFile(err error) map[string]error {
	out := make(map[string]error)
	if err == nil {
		return out
	}
	failures := []error{err}
	var be *types.BatchError
	if errors.As(err, &be) {
		failures = be.Failures
	}
	for _, f := range failures {
		var le *types.LoadError
		var pe *fs.PathError
		switch {
		case errors.As(f, &le):
			out[le.File] = f
		case errors.As(f, &pe):
			out[pe.Path] = f
		}
	}
	return out
}

// classifyLoadError maps load failures to exit codes: bad documents and
// missing files are user errors, anything else is a system error.
func classifyLoadError(err error) error {
	if err == nil {
		return nil
	}
	var be *types.BatchError
	if errors.As(err, &be) {
		for _, f := range be.Failures {
			if ce := classifyLoadError(f); exitCode(ce) == exitSysError {
				return sysError("load: %w", err)
			}
		}
		return userError("load: %w", err)
	}
	switch {
	case errors.Is(err, types.ErrMalformedStream),
		errors.Is(err, types.ErrValidation),
		errors.Is(err, types.ErrNoFileName),
		errors.Is(err, fs.ErrNotExist):
		return userError("load: %w", err)
	}
	return sysError("load: %w", err)
}
