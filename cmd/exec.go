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

	"github.com/databridger/databridger/internal/utils"
)

var execFile string

var execCmd = &cobra.Command{
	Use:   "exec [statement]",
	Short: "Run a raw SQL statement or script against the connected database",
	Long: `exec runs one statement given as an argument, or every statement of a
script file given with --file, printing each result. Requires a SQL source.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var statements []string
		switch {
		case execFile != "":
			read, err := utils.ReadSQLStatements(execFile)
			if err != nil {
				return err
			}
			statements = read
		case len(args) == 1:
			statements = args
		default:
			return fmt.Errorf("provide a statement argument or --file")
		}

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

		for _, stmt := range statements {
			result, err := db.Execute(ctx, stmt)
			if err != nil {
				return err
			}
			if err := printTable(cmd.OutOrStdout(), result); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	execCmd.Flags().StringVar(&execFile, "file", "", "SQL script file to run statement by statement")
}
