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

// Package quality runs source-independent data-quality checks over
// materialized tables: mixed column types, missing values and duplicate
// rows. All checks are read-only and single-pass.
package quality

import (
	"fmt"
	"sort"

	"github.com/databridger/databridger/internal/table"
)

// MissingColumn summarizes the null cells of one column.
type MissingColumn struct {
	Count      int
	RowIndices []int
}

// DuplicateGroup is one set of rows equal under the duplicate key, with the
// shared key values. Groups always have at least two members.
type DuplicateGroup struct {
	Rows []int
	Key  []table.Value
}

// Report aggregates the three checks for one table. It is plain data,
// immutable once produced, for callers to display or discard.
type Report struct {
	Table            string
	MixedTypeColumns map[string][]string
	Missing          map[string]MissingColumn
	DuplicateGroups  []DuplicateGroup
}

// CheckTypes returns, per column, the sorted set of type tags observed
// among its non-null values — but only for columns where at least two
// distinct tags occur. A uniformly typed column, even a uniformly unknown
// one, is not mixed; unknown counts only when it co-occurs with a
// recognized type.
func CheckTypes(t *table.Table) map[string][]string {
	observed := make([]map[table.TypeTag]struct{}, len(t.Schema.Columns))
	for i := range observed {
		observed[i] = make(map[table.TypeTag]struct{})
	}

	for _, row := range t.Rows {
		for i, v := range row {
			if v.IsNull() {
				continue
			}
			observed[i][v.Kind().TypeTag()] = struct{}{}
		}
	}

	mixed := make(map[string][]string)
	for i, col := range t.Schema.Columns {
		if len(observed[i]) < 2 {
			continue
		}
		tags := make([]string, 0, len(observed[i]))
		for tag := range observed[i] {
			tags = append(tags, string(tag))
		}
		sort.Strings(tags)
		mixed[col.Name] = tags
	}
	return mixed
}

// CheckMissing returns, per column, the count and row indices of null
// cells. Missing means null under the table representation; false and zero
// are values, never missing.
func CheckMissing(t *table.Table) map[string]MissingColumn {
	result := make(map[string]MissingColumn, len(t.Schema.Columns))
	for i, col := range t.Schema.Columns {
		var mc MissingColumn
		for rowIdx, row := range t.Rows {
			if row[i].IsNull() {
				mc.Count++
				mc.RowIndices = append(mc.RowIndices, rowIdx)
			}
		}
		result[col.Name] = mc
	}
	return result
}

// CheckDuplicates groups rows by exact value-tuple equality over the key
// columns, or over all columns when none are given. Groups of size one are
// excluded; output order follows each group's first occurrence.
func CheckDuplicates(t *table.Table, keyColumns ...string) ([]DuplicateGroup, error) {
	indices := make([]int, 0, len(t.Schema.Columns))
	if len(keyColumns) == 0 {
		for i := range t.Schema.Columns {
			indices = append(indices, i)
		}
	} else {
		for _, name := range keyColumns {
			idx := t.Schema.ColumnIndex(name)
			if idx < 0 {
				return nil, fmt.Errorf("unknown key column %q in table %q", name, t.Name)
			}
			indices = append(indices, idx)
		}
	}

	groups := make(map[string]*DuplicateGroup)
	var order []string
	for rowIdx, row := range t.Rows {
		key := table.RowKey(row, indices)
		g, seen := groups[key]
		if !seen {
			key2 := make([]table.Value, len(indices))
			for i, idx := range indices {
				key2[i] = row[idx]
			}
			groups[key] = &DuplicateGroup{Rows: []int{rowIdx}, Key: key2}
			order = append(order, key)
			continue
		}
		g.Rows = append(g.Rows, rowIdx)
	}

	var result []DuplicateGroup
	for _, key := range order {
		if g := groups[key]; len(g.Rows) > 1 {
			result = append(result, *g)
		}
	}
	return result, nil
}

// Run executes all three checks over the table.
func Run(t *table.Table) (*Report, error) {
	dups, err := CheckDuplicates(t)
	if err != nil {
		return nil, err
	}
	return &Report{
		Table:            t.Name,
		MixedTypeColumns: CheckTypes(t),
		Missing:          CheckMissing(t),
		DuplicateGroups:  dups,
	}, nil
}
