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
package catalog

import (
	"context"

	"github.com/databridger/databridger/internal/source"
	"github.com/databridger/databridger/internal/table"
)

// keySampleSize bounds how many rows per table the key heuristic inspects.
const keySampleSize = 1000

// InferKeys runs the heuristic key pass over sampled data: a column whose
// sampled values are unique and non-null becomes a primary-key candidate; a
// column whose name equals a primary-key candidate of another table becomes
// a foreign-key candidate pointing there. This is best-effort naming and
// sampling evidence, not constraint truth, and it never overwrites hints a
// dialect already read from real constraint metadata.
func (c *Catalog) InferKeys(ctx context.Context, adapter source.Adapter) error {
	pkByTable := make(map[string][]string, len(c.snap.names))

	for _, name := range c.snap.names {
		schema := c.snap.schemas[name]
		if len(schema.PrimaryKeyCandidates) > 0 {
			pkByTable[name] = schema.PrimaryKeyCandidates
			continue
		}

		declared := schema
		tbl, err := adapter.LoadTable(ctx, name, source.LoadOptions{
			MaxRows:        keySampleSize,
			DeclaredSchema: &declared,
		})
		if err != nil {
			return err
		}

		var candidates []string
		for i, col := range schema.Columns {
			if uniqueNonNull(tbl, i) {
				candidates = append(candidates, col.Name)
			}
		}
		if len(candidates) > 0 {
			schema.PrimaryKeyCandidates = candidates
			c.snap.schemas[name] = schema
			pkByTable[name] = candidates
		}
	}

	// Second pass: match column names against other tables' primary-key
	// candidates.
	for _, name := range c.snap.names {
		schema := c.snap.schemas[name]
		for _, col := range schema.Columns {
			if schema.ForeignKeyCandidates != nil {
				if _, declared := schema.ForeignKeyCandidates[col.Name]; declared {
					continue
				}
			}
			for _, other := range c.snap.names {
				if other == name {
					continue
				}
				if containsName(pkByTable[other], col.Name) {
					if schema.ForeignKeyCandidates == nil {
						schema.ForeignKeyCandidates = make(map[string]string)
					}
					schema.ForeignKeyCandidates[col.Name] = other + "." + col.Name
					break
				}
			}
		}
		c.snap.schemas[name] = schema
	}
	return nil
}

// uniqueNonNull reports whether every sampled value of the column is
// non-null and distinct. Empty tables yield no candidates.
func uniqueNonNull(tbl *table.Table, colIdx int) bool {
	if len(tbl.Rows) == 0 {
		return false
	}
	seen := make(map[string]struct{}, len(tbl.Rows))
	for _, row := range tbl.Rows {
		v := row[colIdx]
		if v.IsNull() {
			return false
		}
		key := v.Key()
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
	}
	return true
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
