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
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/walteh/phpdoxfilter/pkg/filter"
	"github.com/walteh/phpdoxfilter/pkg/log"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// newExplainCmd creates the explain command
func newExplainCmd(o *rootOpts) *cobra.Command {
	var jobs int

	cmd := &cobra.Command{
		Use:   "explain [flags] <path>...",
		Short: "Show which rules rewrite each file",
		Long: `Explain runs every file through the filter and reports, per file:
1. Whether the file was skipped, and why
2. Which rewrite rules fired
3. How many rewrites each rule made`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := o.newFilter(ctx)
			if err != nil {
				return err
			}

			reports, err := explainFiles(ctx, f, args, jobs)
			if err != nil {
				return err
			}

			logger := log.FromContext(ctx)
			logger.Header(pluralFiles(len(reports)))

			skipped, failed := 0, 0
			for _, r := range reports {
				logger.LogFileReport(ctx, r)
				switch {
				case r.Err != nil:
					failed++
				case r.Skipped:
					skipped++
				}
			}
			logger.Summary(len(reports), skipped, failed)

			if failed > 0 {
				return errors.Errorf("%d of %d files could not be read", failed, len(reports))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "number of files to process concurrently")

	return cmd
}

// explainFiles filters paths concurrently and returns one report per path, in order
func explainFiles(ctx context.Context, f *filter.Filter, paths []string, jobs int) ([]log.FileReport, error) {
	if jobs < 1 {
		jobs = 1
	}

	reports := make([]log.FileReport, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports[i] = explainFile(ctx, f, path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Errorf("explaining files: %w", err)
	}
	return reports, nil
}

func explainFile(ctx context.Context, f *filter.Filter, path string) log.FileReport {
	report := log.FileReport{Path: path}

	content, err := os.ReadFile(path)
	if err != nil {
		report.Err = errors.Errorf("reading file: %w", err)
		return report
	}

	res := f.Run(ctx, path, string(content))
	if res.Skipped != nil {
		report.Skipped = true
		report.Reason = res.Skipped.Message
		return report
	}

	for _, hit := range res.Hits {
		report.Rules = append(report.Rules, log.RuleCount{Rule: hit.Rule, Count: hit.Count})
	}
	return report
}

func pluralFiles(n int) string {
	if n == 1 {
		return "explaining 1 file"
	}
	return fmt.Sprintf("explaining %d files", n)
}
