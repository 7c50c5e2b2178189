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

// Package config loads application configuration from an optional config
// file and DATABRIDGER_* environment variables, with flag values applied on
// top by the commands.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Source   SourceConfig   `mapstructure:"source"`
	Database DatabaseConfig `mapstructure:"database"`
}

// SourceConfig configures a delimited-file source directory.
type SourceConfig struct {
	Dir        string   `mapstructure:"dir"`
	Delimiter  string   `mapstructure:"delimiter"`
	Encoding   string   `mapstructure:"encoding"`
	NullTokens []string `mapstructure:"null_tokens"`
	SampleSize int      `mapstructure:"sample_size"`
}

// DelimiterRune returns the configured delimiter as a rune; multi-rune
// values are rejected.
func (s SourceConfig) DelimiterRune() (rune, error) {
	runes := []rune(s.Delimiter)
	if len(runes) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s.Delimiter)
	}
	return runes[0], nil
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Dialect        string        `mapstructure:"dialect"`
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	DBName         string        `mapstructure:"dbname"`
	Schema         string        `mapstructure:"schema"`
	SSLMode        string        `mapstructure:"sslmode"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout"`
	MaxRows        int           `mapstructure:"max_rows"`
}

// Load reads configuration with defaults, an optional config file and
// environment overrides, in that precedence order.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("source.delimiter", ",")
	v.SetDefault("source.encoding", "utf-8")
	v.SetDefault("source.null_tokens", []string{"", "NA", "NULL"})
	v.SetDefault("source.sample_size", 1000)

	v.SetDefault("database.dialect", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.connect_timeout", 10*time.Second)
	v.SetDefault("database.query_timeout", time.Duration(0))
	v.SetDefault("database.max_rows", 0)

	v.SetEnvPrefix("DATABRIDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
