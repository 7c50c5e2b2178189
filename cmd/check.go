/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/databridger/databridger/internal/quality"
	"github.com/databridger/databridger/internal/table"
)

var issuesOut string

var checkCmd = &cobra.Command{
	Use:   "check <table>",
	Short: "Run data-quality checks over a table",
	Long: `check materializes one table and reports mixed-type columns, missing
values and duplicate rows. With --export-issues each finding is also filed
as an open issue and the issue log written as CSV.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()
		if cfg.Database.QueryTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Database.QueryTimeout)
			defer cancel()
		}

		report, err := db.Check(ctx, args[0])
		if err != nil {
			return err
		}
		printReport(cmd, report)

		if issuesOut != "" {
			tracker := quality.NewTracker()
			tracker.RecordReport(report)
			f, err := os.Create(issuesOut)
			if err != nil {
				return fmt.Errorf("failed to create issue log %q: %w", issuesOut, err)
			}
			defer f.Close()
			if err := tracker.ExportCSV(f); err != nil {
				return fmt.Errorf("failed to write issue log: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "issue log written to %s\n", issuesOut)
		}
		return nil
	},
}

func printReport(cmd *cobra.Command, report *quality.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "table: %s\n", report.Table)

	if len(report.MixedTypeColumns) == 0 {
		fmt.Fprintln(out, "mixed types: none")
	} else {
		fmt.Fprintln(out, "mixed types:")
		for _, col := range sortedColumns(report.MixedTypeColumns) {
			fmt.Fprintf(out, "  %s: %v\n", col, report.MixedTypeColumns[col])
		}
	}

	anyMissing := false
	for _, col := range sortedColumns(report.Missing) {
		mc := report.Missing[col]
		if mc.Count == 0 {
			continue
		}
		if !anyMissing {
			fmt.Fprintln(out, "missing values:")
			anyMissing = true
		}
		fmt.Fprintf(out, "  %s: %d rows %v\n", col, mc.Count, mc.RowIndices)
	}
	if !anyMissing {
		fmt.Fprintln(out, "missing values: none")
	}

	if len(report.DuplicateGroups) == 0 {
		fmt.Fprintln(out, "duplicate rows: none")
		return
	}
	fmt.Fprintln(out, "duplicate rows:")
	for _, g := range report.DuplicateGroups {
		fmt.Fprintf(out, "  rows %v share key %s\n", g.Rows, formatKey(g.Key))
	}
}

func sortedColumns[V any](m map[string]V) []string {
	cols := make([]string, 0, len(m))
	for col := range m {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func formatKey(key []table.Value) string {
	parts := make([]string, len(key))
	for i, v := range key {
		if v.IsNull() {
			parts[i] = "<null>"
			continue
		}
		parts[i] = v.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func init() {
	checkCmd.Flags().StringVar(&issuesOut, "export-issues", "", "File to write the issue log CSV to")
}
