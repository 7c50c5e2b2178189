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
	"strings"

	"github.com/spf13/cobra"

	"github.com/databridger/databridger/internal/query"
	"github.com/databridger/databridger/internal/table"
)

var (
	queryColumns []string
	queryFilters []string
	queryLimit   int
	queryExecute bool
)

var queryCmd = &cobra.Command{
	Use:   "query <table>",
	Short: "Build (and optionally run) a filtered SELECT against a table",
	Long: `query renders a parameterized SELECT from column and filter flags.
Filters take the form column:operator:value, e.g. --filter "amount:>:100".
Values are bound as placeholders, never inlined. Requires a SQL source.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(queryFilters)
		if err != nil {
			return err
		}

		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		spec := query.Spec{
			Table:   args[0],
			Op:      query.OpCustom,
			Columns: queryColumns,
			Filters: filters,
			Limit:   queryLimit,
		}

		ctx := cmd.Context()
		if cfg.Database.QueryTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Database.QueryTimeout)
			defer cancel()
		}

		if !queryExecute {
			sqlStr, queryArgs, err := db.Build(ctx, spec)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sqlStr)
			if len(queryArgs) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "-- args: %v\n", queryArgs)
			}
			return nil
		}

		result, err := db.Query(ctx, spec)
		if err != nil {
			return err
		}
		return printTable(cmd.OutOrStdout(), result)
	},
}

// parseFilters converts column:operator:value strings into typed filters.
// The value's type is detected the same way file cells are.
func parseFilters(raw []string) ([]query.Filter, error) {
	filters := make([]query.Filter, 0, len(raw))
	for _, f := range raw {
		parts := strings.SplitN(f, ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid filter %q: want column:operator:value", f)
		}
		filters = append(filters, query.Filter{
			Column:   parts[0],
			Operator: parts[1],
			Value:    table.Detect(parts[2]),
		})
	}
	return filters, nil
}

func init() {
	queryCmd.Flags().StringSliceVar(&queryColumns, "columns", nil, "Columns to select (default all)")
	queryCmd.Flags().StringArrayVar(&queryFilters, "filter", nil, "Filter as column:operator:value (repeatable)")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "Row cap for the result (0 disables)")
	queryCmd.Flags().BoolVar(&queryExecute, "execute", false, "Run the generated SQL instead of printing it")
}
