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

	"github.com/spf13/cobra"

	"github.com/databridger/databridger/internal/query"
)

var (
	profileOp      string
	profileColumns []string
	profileExecute bool
)

var profileCmd = &cobra.Command{
	Use:   "profile <table>",
	Short: "Generate (and optionally run) profiling SQL for a table",
	Long: `profile renders a diagnostic query for one table from the catalog
schema. By default the SQL is printed; with --execute it is run against the
connected database and the result rows are printed instead. Requires a SQL
source.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		spec := query.Spec{
			Table:   args[0],
			Op:      query.Operation(profileOp),
			Columns: profileColumns,
		}

		ctx := cmd.Context()
		if cfg.Database.QueryTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Database.QueryTimeout)
			defer cancel()
		}

		if !profileExecute {
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

func init() {
	profileCmd.Flags().StringVar(&profileOp, "op", string(query.OpProfile),
		"Operation to render (profile, basic_stats, distinct_count, null_count)")
	profileCmd.Flags().StringSliceVar(&profileColumns, "columns", nil,
		"Columns to profile (default all)")
	profileCmd.Flags().BoolVar(&profileExecute, "execute", false,
		"Run the generated SQL instead of printing it")
}
