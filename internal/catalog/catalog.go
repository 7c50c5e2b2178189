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

// Package catalog keeps the structural metadata snapshot of one source:
// every known table and its schema, plus heuristic key hints.
package catalog

import (
	"context"
	"fmt"

	"github.com/databridger/databridger/internal/source"
	"github.com/databridger/databridger/internal/table"
)

// UnknownTableError reports a catalog lookup miss.
type UnknownTableError struct {
	Table string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("unknown table %q", e.Table)
}

// snapshot is one immutable catalog state. Refresh builds a complete new
// snapshot before it replaces the old one, so callers never observe a
// partially rebuilt catalog.
type snapshot struct {
	names   []string
	schemas map[string]table.Schema
}

// Catalog is the schema snapshot of a source. It is built once, lazily, and
// stays immutable until an explicit refresh; it does not track concurrent
// external schema changes.
type Catalog struct {
	snap snapshot
}

// Build derives a fresh catalog from the adapter.
func Build(ctx context.Context, adapter source.Adapter) (*Catalog, error) {
	snap, err := buildSnapshot(ctx, adapter)
	if err != nil {
		return nil, err
	}
	return &Catalog{snap: snap}, nil
}

func buildSnapshot(ctx context.Context, adapter source.Adapter) (snapshot, error) {
	names, err := adapter.ListTables(ctx)
	if err != nil {
		return snapshot{}, err
	}

	snap := snapshot{
		names:   names,
		schemas: make(map[string]table.Schema, len(names)),
	}
	for _, name := range names {
		if _, dup := snap.schemas[name]; dup {
			return snapshot{}, fmt.Errorf("source lists table %q twice", name)
		}
		schema, err := adapter.InferSchema(ctx, name)
		if err != nil {
			return snapshot{}, err
		}
		snap.schemas[name] = schema
	}
	return snap, nil
}

// TableNames returns the known table names in source order.
func (c *Catalog) TableNames() []string {
	return append([]string(nil), c.snap.names...)
}

// Schema returns a copy of the named table's schema.
func (c *Catalog) Schema(name string) (table.Schema, error) {
	schema, ok := c.snap.schemas[name]
	if !ok {
		return table.Schema{}, &UnknownTableError{Table: name}
	}
	return schema.Clone(), nil
}

// Has reports whether the catalog knows the table.
func (c *Catalog) Has(name string) bool {
	_, ok := c.snap.schemas[name]
	return ok
}

// Refresh re-derives every schema and swaps the snapshot atomically. On
// error the previous snapshot stays in place.
func (c *Catalog) Refresh(ctx context.Context, adapter source.Adapter) error {
	snap, err := buildSnapshot(ctx, adapter)
	if err != nil {
		return err
	}
	c.snap = snap
	return nil
}
