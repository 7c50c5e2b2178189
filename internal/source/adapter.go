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

// Package source defines the capability set shared by every tabular data
// source and the error taxonomy adapters surface to callers.
package source

import (
	"context"
	"time"

	"github.com/databridger/databridger/internal/query"
	"github.com/databridger/databridger/internal/table"
)

// Kind identifies the origin of a source, carried on every adapter error so
// callers can tell a bad CSV directory from a rejected database query.
type Kind string

const (
	KindFile Kind = "file"
	KindSQL  Kind = "sql"
)

// LoadOptions bound a single table load. The zero value loads everything
// with inference enabled and no deadline.
type LoadOptions struct {
	// MaxRows caps materialization; 0 means unbounded.
	MaxRows int

	// Timeout applies a deadline to the load on top of the caller's context.
	// On expiry the load fails with *TimeoutError and the adapter stays
	// usable for subsequent calls.
	Timeout time.Duration

	// DeclaredSchema pins cell parsing to a known schema, skipping
	// inference. Column order and names must match the underlying data.
	DeclaredSchema *table.Schema

	// Filters restrict the load to matching rows. SQL sources render them
	// through the query builder's parameterized path; file sources reject
	// them.
	Filters []query.Filter
}

// Adapter is the capability set common to all sources.
type Adapter interface {
	// Kind reports the source origin.
	Kind() Kind

	// ListTables enumerates the logical table names of the source.
	ListTables(ctx context.Context) ([]string, error)

	// InferSchema derives the schema of one table from a bounded sample.
	InferSchema(ctx context.Context, name string) (table.Schema, error)

	// LoadTable materializes one table. Every call returns an independent
	// copy; adapters never share row storage between loads.
	LoadTable(ctx context.Context, name string, opts LoadOptions) (*table.Table, error)

	Close() error
}

// Executor is implemented only by SQL-backed adapters. It runs a pre-built
// statement; building SQL is the query package's job, never the adapter's.
type Executor interface {
	Adapter
	Execute(ctx context.Context, query string, args ...interface{}) (*table.Table, error)
}
