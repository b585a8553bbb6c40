// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/jdconv/pkg/config"
	"github.com/walteh/jdconv/pkg/log"
	"github.com/walteh/jdconv/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// Handler holds the parsed flags of one invocation
type Handler struct {
	configFile string
	debug      bool
	extensions []string
	ignore     []string
	dryRun     bool
	atomic     bool
	backup     bool
	jobs       int
	jobsSet    bool

	console io.Writer
}

// newRootCmd creates the jdconv command tree
func newRootCmd() *cobra.Command {
	h := &Handler{}

	cmd := &cobra.Command{
		Use:   "jdconv [flags] <root>",
		Short: "Convert Javadoc comments in C# sources to XML doc comments",
		Long: `jdconv walks <root> and rewrites every .cs file in place, turning
Javadoc-style comments (/** ... */, {@code}, {@link}, @param, <p>, <pre>)
into C# XML documentation comments (/// <summary> ...).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			h.jobsSet = cmd.Flags().Changed("jobs")
			h.console = cmd.OutOrStdout()

			logger := setupLogging(h.debug)
			ctx := logger.WithContext(cmd.Context())

			return h.Run(ctx, args[0])
		},
	}

	addRootFlags(cmd, h)
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// addRootFlags adds the conversion flags to the root command
func addRootFlags(cmd *cobra.Command, h *Handler) {
	cmd.PersistentFlags().StringVarP(&h.configFile, "config", "c", "", "config file path (.hcl, .yaml, .yml, .json)")
	cmd.PersistentFlags().BoolVarP(&h.debug, "debug", "d", false, "enable debug logging")
	cmd.Flags().StringSliceVar(&h.extensions, "ext", nil, "file extensions to convert (default .cs, overrides config)")
	cmd.Flags().StringSliceVar(&h.ignore, "ignore", nil, "doublestar globs to skip, relative to root (added to config)")
	cmd.Flags().BoolVar(&h.dryRun, "dry-run", false, "print diffs instead of writing files")
	cmd.Flags().BoolVar(&h.atomic, "atomic", false, "write through a temp file and rename")
	cmd.Flags().BoolVar(&h.backup, "backup", false, "keep the original as <file>.bak")
	cmd.Flags().IntVarP(&h.jobs, "jobs", "j", 1, "number of files converted in parallel")
}

// setupLogging builds the structured logger; console output goes elsewhere
func setupLogging(debug bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// Run loads the config, applies flag overrides and converts root
func (h *Handler) Run(ctx context.Context, root string) error {
	logger := zerolog.Ctx(ctx)

	cfg, err := h.loadConfig(ctx)
	if err != nil {
		return err
	}
	logger.Debug().Str("config", cfg.String()).Msg("resolved configuration")

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return errors.Errorf("resolving root: %w", err)
	}

	console := h.console
	if console == nil {
		console = os.Stdout
	}

	op, err := operation.NewConvertOperation(operation.Options{
		Root:   absRoot,
		Config: cfg,
		Logger: log.New(console, *logger),
	})
	if err != nil {
		return errors.Errorf("creating convert operation: %w", err)
	}

	if err := op.Execute(ctx); err != nil {
		return errors.Errorf("converting %s: %w", root, err)
	}
	return nil
}

// loadConfig reads the config file, if any, and layers the flags on top
func (h *Handler) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg := config.Default()
	if h.configFile != "" {
		loaded, err := config.Load(ctx, h.configFile)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	if len(h.extensions) > 0 {
		cfg.Extensions = h.extensions
	}
	cfg.Ignore = append(cfg.Ignore, h.ignore...)
	cfg.DryRun = cfg.DryRun || h.dryRun
	cfg.Atomic = cfg.Atomic || h.atomic
	cfg.Backup = cfg.Backup || h.backup
	if h.jobsSet {
		cfg.Jobs = h.jobs
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating flags: %w", err)
	}
	return cfg, nil
}
