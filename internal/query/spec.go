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

// Package query renders reusable diagnostic and profiling SQL from a
// language-neutral spec. Build is a pure function of (schema, spec); the
// adapters execute its output but never construct statements themselves.
package query

import "github.com/databridger/databridger/internal/table"

// Operation selects what a spec asks for.
type Operation string

const (
	// OpProfile emits per-column non-null, null, distinct counts and
	// min/max/avg (string length bounds for text columns).
	OpProfile Operation = "profile"
	// OpBasicStats emits per-column min/max/avg plus value and row counts.
	OpBasicStats Operation = "basic_stats"
	// OpDistinctCount emits per-column distinct counts.
	OpDistinctCount Operation = "distinct_count"
	// OpNullCount emits per-column null counts.
	OpNullCount Operation = "null_count"
	// OpCustom emits a SELECT with caller-supplied filters, rendered with
	// parameter placeholders.
	OpCustom Operation = "custom"
)

// Filter is one (column, operator, value) predicate of a custom spec.
// Values always render as placeholders, never inline.
type Filter struct {
	Column   string
	Operator string
	Value    table.Value
}

// Spec is the intermediate description of a query intent. It is created and
// consumed within one Build call and has no persistence.
type Spec struct {
	Table string
	Op    Operation

	// Columns scopes the operation; empty or ["*"] means every schema
	// column, in schema order.
	Columns []string

	// Filters apply to OpCustom only, in the given order.
	Filters []Filter

	// Limit caps the row count of OpCustom output; 0 means no cap.
	Limit int
}
