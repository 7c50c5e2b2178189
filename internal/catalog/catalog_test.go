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
	"errors"
	"fmt"
	"testing"

	"github.com/databridger/databridger/internal/source"
	"github.com/databridger/databridger/internal/table"
)

// mockAdapter is an in-memory source for catalog tests.
type mockAdapter struct {
	tables map[string]*table.Table
	order  []string

	listErr  error
	inferErr map[string]error

	listCalls  int
	inferCalls int
	loadCalls  int
}

func (m *mockAdapter) Kind() source.Kind { return source.KindFile }

func (m *mockAdapter) ListTables(ctx context.Context) ([]string, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]string(nil), m.order...), nil
}

func (m *mockAdapter) InferSchema(ctx context.Context, name string) (table.Schema, error) {
	m.inferCalls++
	if err := m.inferErr[name]; err != nil {
		return table.Schema{}, err
	}
	tbl, ok := m.tables[name]
	if !ok {
		return table.Schema{}, fmt.Errorf("no table %q", name)
	}
	return tbl.Schema.Clone(), nil
}

func (m *mockAdapter) LoadTable(ctx context.Context, name string, opts source.LoadOptions) (*table.Table, error) {
	m.loadCalls++
	tbl, ok := m.tables[name]
	if !ok {
		return nil, fmt.Errorf("no table %q", name)
	}
	rows := tbl.Rows
	if opts.MaxRows > 0 && len(rows) > opts.MaxRows {
		rows = rows[:opts.MaxRows]
	}
	return &table.Table{Name: name, Schema: tbl.Schema.Clone(), Rows: rows}, nil
}

func (m *mockAdapter) Close() error { return nil }

func newMockAdapter() *mockAdapter {
	customers := &table.Table{
		Name: "customers",
		Schema: table.Schema{Columns: []table.ColumnSpec{
			{Name: "customer_id", Type: table.TypeInteger},
			{Name: "name", Type: table.TypeText},
		}},
		Rows: []table.Row{
			{table.Int(1), table.Text("ada")},
			{table.Int(2), table.Text("grace")},
			{table.Int(3), table.Text("ada")},
		},
	}
	orders := &table.Table{
		Name: "orders",
		Schema: table.Schema{Columns: []table.ColumnSpec{
			{Name: "order_id", Type: table.TypeInteger},
			{Name: "customer_id", Type: table.TypeInteger},
		}},
		Rows: []table.Row{
			{table.Int(10), table.Int(1)},
			{table.Int(11), table.Int(1)},
		},
	}
	return &mockAdapter{
		tables: map[string]*table.Table{"customers": customers, "orders": orders},
		order:  []string{"customers", "orders"},
	}
}

func TestBuild(t *testing.T) {
	adapter := newMockAdapter()
	cat, err := Build(context.Background(), adapter)
	if err != nil {
		t.Fatal(err)
	}

	names := cat.TableNames()
	if len(names) != 2 || names[0] != "customers" || names[1] != "orders" {
		t.Errorf("TableNames() = %v", names)
	}
	if !cat.Has("orders") || cat.Has("ghost") {
		t.Error("Has() answers wrong")
	}

	schema, err := cat.Schema("customers")
	if err != nil {
		t.Fatal(err)
	}
	if len(schema.Columns) != 2 || schema.Columns[0].Name != "customer_id" {
		t.Errorf("Schema(customers) = %+v", schema)
	}
}

func TestBuildPropagatesErrors(t *testing.T) {
	adapter := newMockAdapter()
	adapter.listErr = fmt.Errorf("unreachable")
	if _, err := Build(context.Background(), adapter); err == nil {
		t.Fatal("expected ListTables error to propagate")
	}

	adapter = newMockAdapter()
	adapter.inferErr = map[string]error{"orders": fmt.Errorf("boom")}
	if _, err := Build(context.Background(), adapter); err == nil {
		t.Fatal("expected InferSchema error to propagate")
	}
}

func TestSchemaUnknownTable(t *testing.T) {
	cat, err := Build(context.Background(), newMockAdapter())
	if err != nil {
		t.Fatal(err)
	}

	_, err = cat.Schema("ghost")
	var unknown *UnknownTableError
	if !errors.As(err, &unknown) {
		t.Fatalf("want UnknownTableError, got %v", err)
	}
	if unknown.Table != "ghost" {
		t.Errorf("error table = %q", unknown.Table)
	}
}

func TestSchemaReturnsCopies(t *testing.T) {
	cat, err := Build(context.Background(), newMockAdapter())
	if err != nil {
		t.Fatal(err)
	}

	first, _ := cat.Schema("customers")
	first.Columns[0].Name = "mutated"

	second, _ := cat.Schema("customers")
	if second.Columns[0].Name != "customer_id" {
		t.Error("Schema() result aliases catalog state")
	}
}

func TestRefreshKeepsOldSnapshotOnError(t *testing.T) {
	adapter := newMockAdapter()
	cat, err := Build(context.Background(), adapter)
	if err != nil {
		t.Fatal(err)
	}

	adapter.listErr = fmt.Errorf("gone away")
	if err := cat.Refresh(context.Background(), adapter); err == nil {
		t.Fatal("expected refresh error")
	}

	// Failed refresh leaves the previous snapshot usable.
	if len(cat.TableNames()) != 2 {
		t.Errorf("TableNames() after failed refresh = %v", cat.TableNames())
	}
}

func TestRefreshPicksUpChanges(t *testing.T) {
	adapter := newMockAdapter()
	cat, err := Build(context.Background(), adapter)
	if err != nil {
		t.Fatal(err)
	}

	adapter.order = []string{"customers"}
	delete(adapter.tables, "orders")
	if err := cat.Refresh(context.Background(), adapter); err != nil {
		t.Fatal(err)
	}
	if cat.Has("orders") {
		t.Error("refreshed catalog still lists a dropped table")
	}
}

func TestBuildRejectsDuplicateTables(t *testing.T) {
	adapter := newMockAdapter()
	adapter.order = []string{"customers", "customers"}
	if _, err := Build(context.Background(), adapter); err == nil {
		t.Fatal("expected error for duplicate table listing")
	}
}

func TestInferKeys(t *testing.T) {
	adapter := newMockAdapter()
	cat, err := Build(context.Background(), adapter)
	if err != nil {
		t.Fatal(err)
	}

	if err := cat.InferKeys(context.Background(), adapter); err != nil {
		t.Fatal(err)
	}

	customers, _ := cat.Schema("customers")
	// customer_id is unique and non-null; name repeats.
	if len(customers.PrimaryKeyCandidates) != 1 || customers.PrimaryKeyCandidates[0] != "customer_id" {
		t.Errorf("customers PK candidates = %v", customers.PrimaryKeyCandidates)
	}

	orders, _ := cat.Schema("orders")
	// orders.customer_id matches the customers primary-key candidate by name.
	if got := orders.ForeignKeyCandidates["customer_id"]; got != "customers.customer_id" {
		t.Errorf("orders FK candidate = %q, want customers.customer_id", got)
	}
}

func TestInferKeysRespectsDeclaredConstraints(t *testing.T) {
	adapter := newMockAdapter()
	// Simulate a dialect that already read constraint metadata.
	declared := adapter.tables["customers"].Schema
	declared.PrimaryKeyCandidates = []string{"customer_id"}
	adapter.tables["customers"].Schema = declared

	cat, err := Build(context.Background(), adapter)
	if err != nil {
		t.Fatal(err)
	}
	loadsBefore := adapter.loadCalls
	if err := cat.InferKeys(context.Background(), adapter); err != nil {
		t.Fatal(err)
	}

	// Tables with declared keys are not re-sampled.
	if adapter.loadCalls != loadsBefore+1 {
		t.Errorf("loadCalls = %d, want %d (orders only)", adapter.loadCalls, loadsBefore+1)
	}
}

func TestInferKeysEmptyTable(t *testing.T) {
	adapter := newMockAdapter()
	adapter.tables["customers"].Rows = nil

	cat, err := Build(context.Background(), adapter)
	if err != nil {
		t.Fatal(err)
	}
	if err := cat.InferKeys(context.Background(), adapter); err != nil {
		t.Fatal(err)
	}

	customers, _ := cat.Schema("customers")
	if len(customers.PrimaryKeyCandidates) != 0 {
		t.Errorf("empty table produced PK candidates %v", customers.PrimaryKeyCandidates)
	}
}
