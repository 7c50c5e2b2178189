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
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/databridger/databridger/internal/bridge"
	"github.com/databridger/databridger/internal/config"
	"github.com/databridger/databridger/internal/source/file"
	"github.com/databridger/databridger/internal/source/sqldb"
	_ "github.com/databridger/databridger/internal/source/sqldb/mysql"
	_ "github.com/databridger/databridger/internal/source/sqldb/postgres"
	_ "github.com/databridger/databridger/internal/source/sqldb/sqlserver"
)

var (
	cfgFile string
	verbose bool

	// Delimited-file source flags
	csvDir     string
	delimiter  string
	fileEnc    string
	sampleSize int

	// Database connection flags
	dialect  string
	host     string
	port     int
	username string
	password string
	dbName   string
	dbSchema string
	sslMode  string

	// Shared query behavior
	queryTimeout time.Duration
	maxRows      int

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "databridger",
	Short: "A unified access layer for delimited files and SQL databases",
	Long: `databridger exposes a directory of delimited files or a relational
database through one table abstraction, generates profiling SQL from the
catalog, and runs data-quality checks over loaded tables.`,
	PersistentPreRunE: initConfig,
	SilenceUsage:      true,
}

// initConfig loads configuration and layers changed flag values on top.
func initConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	flags := cmd.Flags()
	if flags.Changed("csv-dir") {
		cfg.Source.Dir = csvDir
	}
	if flags.Changed("delimiter") {
		cfg.Source.Delimiter = delimiter
	}
	if flags.Changed("encoding") {
		cfg.Source.Encoding = fileEnc
	}
	if flags.Changed("sample-size") {
		cfg.Source.SampleSize = sampleSize
	}
	if flags.Changed("dialect") {
		cfg.Database.Dialect = dialect
	}
	if flags.Changed("host") {
		cfg.Database.Host = host
	}
	if flags.Changed("port") {
		cfg.Database.Port = port
	}
	if flags.Changed("username") {
		cfg.Database.User = username
	}
	if flags.Changed("password") {
		cfg.Database.Password = password
	}
	if flags.Changed("database") {
		cfg.Database.DBName = dbName
	}
	if flags.Changed("db-schema") {
		cfg.Database.Schema = dbSchema
	}
	if flags.Changed("sslmode") {
		cfg.Database.SSLMode = sslMode
	}
	if flags.Changed("timeout") {
		cfg.Database.QueryTimeout = queryTimeout
	}
	if flags.Changed("max-rows") {
		cfg.Database.MaxRows = maxRows
	}

	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	return nil
}

// openDatabase binds a Database to the configured source: the CSV directory
// when one is set, otherwise the SQL connection.
func openDatabase() (*bridge.Database, error) {
	if cfg.Source.Dir != "" {
		delim, err := cfg.Source.DelimiterRune()
		if err != nil {
			return nil, err
		}
		adapter, err := file.New(cfg.Source.Dir, file.Options{
			Delimiter:  delim,
			Encoding:   cfg.Source.Encoding,
			NullTokens: cfg.Source.NullTokens,
			SampleSize: cfg.Source.SampleSize,
		}, logger)
		if err != nil {
			return nil, err
		}
		return bridge.New(adapter, logger)
	}

	if cfg.Database.DBName == "" {
		return nil, fmt.Errorf("no source configured: set --csv-dir or the database connection flags")
	}
	adapter, err := sqldb.New(sqldb.Config{
		Dialect:        cfg.Database.Dialect,
		Host:           cfg.Database.Host,
		Port:           cfg.Database.Port,
		User:           cfg.Database.User,
		Password:       cfg.Database.Password,
		DBName:         cfg.Database.DBName,
		Schema:         cfg.Database.Schema,
		SSLMode:        cfg.Database.SSLMode,
		ConnectTimeout: cfg.Database.ConnectTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	return bridge.New(adapter, logger)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to a config file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.PersistentFlags().StringVar(&csvDir, "csv-dir", "", "Directory of delimited files to use as the source")
	rootCmd.PersistentFlags().StringVar(&delimiter, "delimiter", ",", "Field delimiter for delimited files")
	rootCmd.PersistentFlags().StringVar(&fileEnc, "encoding", "utf-8", "Character encoding of delimited files")
	rootCmd.PersistentFlags().IntVar(&sampleSize, "sample-size", 1000, "Rows sampled for schema inference")

	rootCmd.PersistentFlags().StringVar(&dialect, "dialect", "postgres", "Database dialect (postgres, mysql, sqlserver)")
	rootCmd.PersistentFlags().StringVar(&host, "host", "localhost", "Database host")
	rootCmd.PersistentFlags().IntVar(&port, "port", 5432, "Database port")
	rootCmd.PersistentFlags().StringVar(&username, "username", "", "Database username")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "Database password")
	rootCmd.PersistentFlags().StringVar(&dbName, "database", "", "Database name")
	rootCmd.PersistentFlags().StringVar(&dbSchema, "db-schema", "", "Database schema/namespace (dialect default when empty)")
	rootCmd.PersistentFlags().StringVar(&sslMode, "sslmode", "disable", "SSL mode for postgres connections")

	rootCmd.PersistentFlags().DurationVar(&queryTimeout, "timeout", 0, "Per-operation timeout (0 disables)")
	rootCmd.PersistentFlags().IntVar(&maxRows, "max-rows", 0, "Row cap for table materialization (0 disables)")

	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(execCmd)
}
