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
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var inferKeys bool

var schemaCmd = &cobra.Command{
	Use:   "schema <table>",
	Short: "Show the inferred or declared schema of a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()
		if inferKeys {
			if err := db.InferKeys(ctx); err != nil {
				return err
			}
		}

		schema, err := db.Schema(ctx, args[0])
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "column\ttype\tnullable")
		for _, col := range schema.Columns {
			fmt.Fprintf(tw, "%s\t%s\t%t\n", col.Name, col.Type, col.Nullable)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		if len(schema.PrimaryKeyCandidates) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "primary key candidates: %v\n", schema.PrimaryKeyCandidates)
		}
		for col, ref := range schema.ForeignKeyCandidates {
			fmt.Fprintf(cmd.OutOrStdout(), "foreign key candidate: %s -> %s\n", col, ref)
		}
		return nil
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&inferKeys, "infer-keys", false, "Run the heuristic key inference pass first")
}
