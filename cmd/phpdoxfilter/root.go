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

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/phpdoxfilter/pkg/config"
	"github.com/walteh/phpdoxfilter/pkg/filter"
	"github.com/walteh/phpdoxfilter/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// rootOpts holds the shared flags and lazily built dependencies
type rootOpts struct {
	configFile string
	debug      bool
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *rootOpts) {
	cmd.PersistentFlags().StringVarP(&o.configFile, "config", "c", "", "config file path (.hcl, .yaml, .yml or .json)")
	cmd.PersistentFlags().BoolVarP(&o.debug, "debug", "d", false, "enable debug logging")
}

// setupLogging puts a logger for the configured level on the command context
func (o *rootOpts) setupLogging(cmd *cobra.Command) {
	level := zerolog.InfoLevel
	if o.debug {
		level = zerolog.DebugLevel
	}
	logger := log.New(cmd.ErrOrStderr(), cmd.OutOrStdout(), level)
	cmd.SetContext(log.NewContext(cmd.Context(), logger))
}

// newFilter loads the config, when one is given, and builds the filter
func (o *rootOpts) newFilter(ctx context.Context) (*filter.Filter, error) {
	cfg := config.Default()
	if o.configFile != "" {
		loaded, err := config.LoadConfig(ctx, o.configFile)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	f, err := filter.New(cfg)
	if err != nil {
		return nil, errors.Errorf("creating filter: %w", err)
	}
	return f, nil
}

// newRootCmd creates the root command. Run with a single path it acts as a
// Doxygen INPUT_FILTER.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	o := &rootOpts{}

	cmd := &cobra.Command{
		Use:   "phpdoxfilter [flags] <path>",
		Short: "Rewrite PHP doc comments so Doxygen understands them",
		Long: `phpdoxfilter reads a PHP source file and writes it to stdout with its phpdoc
comments rewritten into Doxygen's dialect. Use it as Doxygen's INPUT_FILTER:

  INPUT_FILTER = phpdoxfilter

Language packs, CLI scripts and front-end scripts are skipped: nothing is
written to stdout and a notice is written to stderr.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			o.setupLogging(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.filterFile(cmd, args[0])
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	addRootFlags(cmd, o)

	cmd.AddCommand(
		newExplainCmd(o),
		newVersionCmd(),
	)

	return cmd
}

// filterFile runs one file through the filter and writes the result to stdout
func (o *rootOpts) filterFile(cmd *cobra.Command, path string) error {
	ctx := cmd.Context()

	f, err := o.newFilter(ctx)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Errorf("reading %s: %w", path, err)
	}

	res := f.Run(ctx, path, string(content))
	if res.Skipped != nil {
		log.FromContext(ctx).Notice(path, res.Skipped.Message)
		return nil
	}

	if _, err := io.WriteString(cmd.OutOrStdout(), res.Text); err != nil {
		return errors.Errorf("writing output: %w", err)
	}
	return nil
}
