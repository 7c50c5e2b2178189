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
package query

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/databridger/databridger/internal/table"
)

// allowedOperators are the filter operators a custom spec may use.
var allowedOperators = map[string]struct{}{
	"=": {}, "!=": {}, "<>": {}, "<": {}, "<=": {}, ">": {}, ">=": {}, "LIKE": {},
}

// Builder renders specs for one dialect. It carries no mutable state;
// Build is a pure function and its output is byte-identical for identical
// (schema, spec) input.
type Builder struct {
	d dialect
}

// NewBuilder returns a builder for the named dialect.
func NewBuilder(dialectName string) (*Builder, error) {
	d, err := dialectFor(dialectName)
	if err != nil {
		return nil, err
	}
	return &Builder{d: d}, nil
}

// Dialect returns the dialect tag this builder renders for.
func (b *Builder) Dialect() string { return b.d.name }

// Build renders the spec against the schema. Identifiers are validated
// before being embedded; values of custom filters come back as args for
// parameter placeholders.
func (b *Builder) Build(schema table.Schema, spec Spec) (string, []interface{}, error) {
	cols, err := b.resolveColumns(schema, spec)
	if err != nil {
		return "", nil, err
	}

	switch spec.Op {
	case OpProfile:
		return b.unionPerColumn(spec.Table, cols, b.profileArm), nil, nil
	case OpBasicStats:
		return b.unionPerColumn(spec.Table, cols, b.basicStatsArm), nil, nil
	case OpDistinctCount:
		return b.unionPerColumn(spec.Table, cols, b.distinctCountArm), nil, nil
	case OpNullCount:
		return b.unionPerColumn(spec.Table, cols, b.nullCountArm), nil, nil
	case OpCustom:
		return b.custom(schema, spec, cols)
	default:
		return "", nil, fmt.Errorf("unsupported operation %q", spec.Op)
	}
}

// resolveColumns expands "*"/empty to the full schema and validates every
// named column against it.
func (b *Builder) resolveColumns(schema table.Schema, spec Spec) ([]table.ColumnSpec, error) {
	wantAll := len(spec.Columns) == 0 || (len(spec.Columns) == 1 && spec.Columns[0] == "*")
	if wantAll {
		return schema.Columns, nil
	}

	cols := make([]table.ColumnSpec, 0, len(spec.Columns))
	for _, name := range spec.Columns {
		col, ok := schema.Column(name)
		if !ok {
			return nil, &UnknownColumnError{Table: spec.Table, Column: name}
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// unionPerColumn renders one SELECT arm per column, in the given order,
// joined by UNION ALL. This is the shape all profiling operations share.
func (b *Builder) unionPerColumn(tbl string, cols []table.ColumnSpec, arm func(string, table.ColumnSpec) string) string {
	arms := make([]string, len(cols))
	for i, col := range cols {
		arms[i] = arm(tbl, col)
	}
	return strings.Join(arms, "\nUNION ALL\n")
}

func (b *Builder) nullText() string {
	return b.d.castText("NULL")
}

func (b *Builder) profileArm(tbl string, col table.ColumnSpec) string {
	qc := b.d.quote(col.Name)

	minVal, maxVal, avgVal := b.nullText(), b.nullText(), b.nullText()
	switch {
	case col.Type.IsNumeric():
		minVal = b.d.castText(fmt.Sprintf("MIN(%s)", qc))
		maxVal = b.d.castText(fmt.Sprintf("MAX(%s)", qc))
		avgVal = b.d.castText(fmt.Sprintf("AVG(%s)", qc))
	case col.Type == table.TypeDate:
		minVal = b.d.castText(fmt.Sprintf("MIN(%s)", qc))
		maxVal = b.d.castText(fmt.Sprintf("MAX(%s)", qc))
	case col.Type == table.TypeText:
		minVal = b.d.castText(fmt.Sprintf("MIN(%s(%s))", b.d.lengthFn, qc))
		maxVal = b.d.castText(fmt.Sprintf("MAX(%s(%s))", b.d.lengthFn, qc))
	}

	return fmt.Sprintf(
		"SELECT %s AS column_name, COUNT(%s) AS non_null_count, SUM(CASE WHEN %s IS NULL THEN 1 ELSE 0 END) AS null_count, COUNT(DISTINCT %s) AS distinct_count, %s AS min_value, %s AS max_value, %s AS avg_value FROM %s",
		stringLiteral(col.Name), qc, qc, qc, minVal, maxVal, avgVal, b.d.quote(tbl))
}

func (b *Builder) basicStatsArm(tbl string, col table.ColumnSpec) string {
	qc := b.d.quote(col.Name)

	minVal, maxVal, avgVal := b.nullText(), b.nullText(), b.nullText()
	if col.Type.IsNumeric() || col.Type == table.TypeDate {
		minVal = b.d.castText(fmt.Sprintf("MIN(%s)", qc))
		maxVal = b.d.castText(fmt.Sprintf("MAX(%s)", qc))
	}
	if col.Type.IsNumeric() {
		avgVal = b.d.castText(fmt.Sprintf("AVG(%s)", qc))
	}

	return fmt.Sprintf(
		"SELECT %s AS column_name, %s AS min_value, %s AS max_value, %s AS avg_value, COUNT(%s) AS value_count, COUNT(*) AS row_count FROM %s",
		stringLiteral(col.Name), minVal, maxVal, avgVal, qc, b.d.quote(tbl))
}

func (b *Builder) distinctCountArm(tbl string, col table.ColumnSpec) string {
	qc := b.d.quote(col.Name)
	return fmt.Sprintf(
		"SELECT %s AS column_name, COUNT(DISTINCT %s) AS distinct_count FROM %s",
		stringLiteral(col.Name), qc, b.d.quote(tbl))
}

func (b *Builder) nullCountArm(tbl string, col table.ColumnSpec) string {
	qc := b.d.quote(col.Name)
	return fmt.Sprintf(
		"SELECT %s AS column_name, SUM(CASE WHEN %s IS NULL THEN 1 ELSE 0 END) AS null_count FROM %s",
		stringLiteral(col.Name), qc, b.d.quote(tbl))
}

// custom renders a filtered SELECT. Filter values never appear in the SQL
// text; they come back as args for the dialect's placeholder format.
func (b *Builder) custom(schema table.Schema, spec Spec, cols []table.ColumnSpec) (string, []interface{}, error) {
	selected := make([]string, len(cols))
	for i, col := range cols {
		selected[i] = b.d.quote(col.Name)
	}

	builder := sq.Select(selected...).From(b.d.quote(spec.Table))

	builder, err := b.applyFilters(builder, spec.Table, schema, spec.Filters)
	if err != nil {
		return "", nil, err
	}

	builder = b.applyLimit(builder, spec.Limit)

	sqlStr, args, err := builder.PlaceholderFormat(b.d.placeholder).ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to render custom query: %w", err)
	}
	return sqlStr, args, nil
}

// applyFilters renders filter predicates as placeholder expressions,
// validating columns against the schema and operators against the allowed
// set.
func (b *Builder) applyFilters(builder sq.SelectBuilder, tbl string, schema table.Schema, filters []Filter) (sq.SelectBuilder, error) {
	for _, f := range filters {
		if _, ok := schema.Column(f.Column); !ok {
			return builder, &UnknownColumnError{Table: tbl, Column: f.Column}
		}
		op := strings.ToUpper(strings.TrimSpace(f.Operator))
		if _, ok := allowedOperators[op]; !ok {
			return builder, fmt.Errorf("unsupported filter operator %q on column %q", f.Operator, f.Column)
		}
		builder = builder.Where(sq.Expr(
			fmt.Sprintf("%s %s ?", b.d.quote(f.Column), op), f.Value.Arg()))
	}
	return builder, nil
}

// applyLimit renders a row cap in the dialect's syntax.
func (b *Builder) applyLimit(builder sq.SelectBuilder, limit int) sq.SelectBuilder {
	if limit <= 0 {
		return builder
	}
	if b.d.name == "sqlserver" {
		return builder.Options(fmt.Sprintf("TOP %d", limit))
	}
	return builder.Limit(uint64(limit))
}

// SelectAll renders the plain materialization SELECT used by table loads,
// with an optional row cap. The table name is expected to come from the
// catalog, so only quoting happens here.
func SelectAll(dialectName, tbl string, limit int) (string, error) {
	sqlStr, _, err := SelectFiltered(dialectName, tbl, table.Schema{}, nil, limit)
	return sqlStr, err
}

// SelectFiltered renders the materialization SELECT with optional filter
// predicates, validated against the schema. Filter values come back as args
// for the dialect's placeholder format, never inlined.
func SelectFiltered(dialectName, tbl string, schema table.Schema, filters []Filter, limit int) (string, []interface{}, error) {
	d, err := dialectFor(dialectName)
	if err != nil {
		return "", nil, err
	}
	b := Builder{d: d}

	builder, err := b.applyFilters(sq.Select("*").From(d.quote(tbl)), tbl, schema, filters)
	if err != nil {
		return "", nil, err
	}
	sqlStr, args, err := b.applyLimit(builder, limit).PlaceholderFormat(d.placeholder).ToSql()
	if err != nil {
		return "", nil, err
	}
	return sqlStr, args, nil
}
