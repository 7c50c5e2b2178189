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

// Package table holds the in-memory tabular model shared by every source
// adapter: typed values, column specs, schemas and materialized tables.
package table

import (
	"fmt"
	"strconv"
	"strings"
)

// TypeTag is the declared or inferred type of a column.
type TypeTag string

const (
	TypeText    TypeTag = "text"
	TypeInteger TypeTag = "integer"
	TypeFloat   TypeTag = "float"
	TypeBoolean TypeTag = "boolean"
	TypeDate    TypeTag = "date"
	TypeUnknown TypeTag = "unknown"
)

// IsNumeric reports whether the tag supports numeric aggregation (MIN/MAX/AVG).
func (t TypeTag) IsNumeric() bool {
	return t == TypeInteger || t == TypeFloat
}

// ColumnSpec describes a single column of a table schema.
type ColumnSpec struct {
	Name     string
	Type     TypeTag
	Nullable bool
}

// Schema is an ordered sequence of column specs plus best-effort key hints.
// Column names within one schema are unique.
type Schema struct {
	Columns []ColumnSpec

	// PrimaryKeyCandidates holds columns whose sampled values were unique and
	// non-null. ForeignKeyCandidates maps a column name to "table.column" of
	// the primary-key candidate it appears to reference. Both are naming and
	// sampling heuristics, not authoritative constraint metadata.
	PrimaryKeyCandidates []string
	ForeignKeyCandidates map[string]string
}

// NewSchema builds a schema from column specs, rejecting duplicate names.
func NewSchema(cols []ColumnSpec) (Schema, error) {
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if c.Name == "" {
			return Schema{}, fmt.Errorf("column name cannot be empty")
		}
		if _, dup := seen[c.Name]; dup {
			return Schema{}, fmt.Errorf("duplicate column name %q", c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return Schema{Columns: cols}, nil
}

// ColumnNames returns the column names in declared order.
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column, or -1.
func (s Schema) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the spec of the named column.
func (s Schema) Column(name string) (ColumnSpec, bool) {
	if i := s.ColumnIndex(name); i >= 0 {
		return s.Columns[i], true
	}
	return ColumnSpec{}, false
}

// Clone returns a deep copy so catalog snapshots never alias caller state.
func (s Schema) Clone() Schema {
	out := Schema{Columns: append([]ColumnSpec(nil), s.Columns...)}
	out.PrimaryKeyCandidates = append([]string(nil), s.PrimaryKeyCandidates...)
	if s.ForeignKeyCandidates != nil {
		out.ForeignKeyCandidates = make(map[string]string, len(s.ForeignKeyCandidates))
		for k, v := range s.ForeignKeyCandidates {
			out.ForeignKeyCandidates[k] = v
		}
	}
	return out
}

// Row is one materialized row, with exactly one value per schema column, in
// schema order.
type Row []Value

// Table is a fully materialized table. Each load produces an independent
// copy; the core never shares row storage between callers.
type Table struct {
	Name   string
	Schema Schema
	Rows   []Row
}

// Value returns the value at the given row for the named column.
func (t *Table) Value(row int, column string) (Value, error) {
	if row < 0 || row >= len(t.Rows) {
		return Null(), fmt.Errorf("row %d out of range for table %q", row, t.Name)
	}
	idx := t.Schema.ColumnIndex(column)
	if idx < 0 {
		return Null(), fmt.Errorf("no column %q in table %q", column, t.Name)
	}
	return t.Rows[row][idx], nil
}

// Column returns all values of the named column in row order.
func (t *Table) Column(name string) ([]Value, error) {
	idx := t.Schema.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("no column %q in table %q", name, t.Name)
	}
	out := make([]Value, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[idx]
	}
	return out, nil
}

// NumRows returns the number of materialized rows.
func (t *Table) NumRows() int { return len(t.Rows) }

// String renders a short human-readable summary, not the data itself.
func (t *Table) String() string {
	return fmt.Sprintf("table %q (%d columns, %d rows)", t.Name, len(t.Schema.Columns), len(t.Rows))
}

// RowKey builds a stable composite key over the given column indices of a
// row, used for exact-tuple duplicate grouping. Each cell key is length
// prefixed so no payload byte can shift value bytes across a cell boundary.
func RowKey(r Row, indices []int) string {
	var b strings.Builder
	for _, idx := range indices {
		k := r[idx].Key()
		b.WriteString(strconv.Itoa(len(k)))
		b.WriteByte(':')
		b.WriteString(k)
	}
	return b.String()
}
