package bridge

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databridger/databridger/internal/catalog"
	"github.com/databridger/databridger/internal/query"
	"github.com/databridger/databridger/internal/source"
	"github.com/databridger/databridger/internal/table"
)

// fileMock is a file-kind adapter with fixed contents.
type fileMock struct {
	tables map[string]*table.Table
	order  []string

	listCalls int
	closed    bool
}

func (m *fileMock) Kind() source.Kind { return source.KindFile }

func (m *fileMock) ListTables(ctx context.Context) ([]string, error) {
	m.listCalls++
	return append([]string(nil), m.order...), nil
}

func (m *fileMock) InferSchema(ctx context.Context, name string) (table.Schema, error) {
	tbl, ok := m.tables[name]
	if !ok {
		return table.Schema{}, fmt.Errorf("no table %q", name)
	}
	return tbl.Schema.Clone(), nil
}

func (m *fileMock) LoadTable(ctx context.Context, name string, opts source.LoadOptions) (*table.Table, error) {
	tbl, ok := m.tables[name]
	if !ok {
		return nil, fmt.Errorf("no table %q", name)
	}
	return &table.Table{Name: name, Schema: tbl.Schema.Clone(), Rows: tbl.Rows}, nil
}

func (m *fileMock) Close() error {
	m.closed = true
	return nil
}

// sqlMock extends fileMock with the SQL-only surface.
type sqlMock struct {
	fileMock
	executed []string
	result   *table.Table
}

func (m *sqlMock) Kind() source.Kind { return source.KindSQL }

func (m *sqlMock) Dialect() string { return "postgres" }

func (m *sqlMock) Execute(ctx context.Context, q string, args ...interface{}) (*table.Table, error) {
	m.executed = append(m.executed, q)
	if m.result != nil {
		return m.result, nil
	}
	return &table.Table{Name: "result"}, nil
}

func newFileMock() *fileMock {
	return &fileMock{
		tables: map[string]*table.Table{
			"people": {
				Name: "people",
				Schema: table.Schema{Columns: []table.ColumnSpec{
					{Name: "id", Type: table.TypeInteger},
					{Name: "name", Type: table.TypeText},
				}},
				Rows: []table.Row{
					{table.Int(1), table.Text("ada")},
					{table.Int(1), table.Text("ada")},
				},
			},
		},
		order: []string{"people"},
	}
}

func TestDatabaseOverFileSource(t *testing.T) {
	adapter := newFileMock()
	db, err := New(adapter, nil)
	require.NoError(t, err)

	ctx := context.Background()
	assert.Equal(t, source.KindFile, db.SourceKind())

	names, err := db.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"people"}, names)

	schema, err := db.Schema(ctx, "people")
	require.NoError(t, err)
	assert.Len(t, schema.Columns, 2)

	// SQL-only operations fail cleanly on a file source.
	_, _, err = db.Build(ctx, query.Spec{Table: "people", Op: query.OpProfile})
	assert.ErrorIs(t, err, ErrNotSQLSource)
	_, err = db.Query(ctx, query.Spec{Table: "people", Op: query.OpProfile})
	assert.ErrorIs(t, err, ErrNotSQLSource)
	_, err = db.Execute(ctx, "SELECT 1")
	assert.ErrorIs(t, err, ErrNotSQLSource)

	require.NoError(t, db.Close())
	assert.True(t, adapter.closed)
}

func TestCatalogIsLazyAndCached(t *testing.T) {
	adapter := newFileMock()
	db, err := New(adapter, nil)
	require.NoError(t, err)

	assert.Zero(t, adapter.listCalls, "catalog must not build before first use")

	ctx := context.Background()
	_, err = db.Tables(ctx)
	require.NoError(t, err)
	_, err = db.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, adapter.listCalls, "snapshot is reused across calls")

	require.NoError(t, db.Refresh(ctx))
	assert.Equal(t, 2, adapter.listCalls)
}

func TestRefreshColdBuildsOnce(t *testing.T) {
	adapter := newFileMock()
	db, err := New(adapter, nil)
	require.NoError(t, err)

	require.NoError(t, db.Refresh(context.Background()))
	assert.Equal(t, 1, adapter.listCalls, "a cold refresh builds the snapshot exactly once")

	names, err := db.Tables(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, names)
	assert.Equal(t, 1, adapter.listCalls)
}

func TestSchemaUnknownTable(t *testing.T) {
	db, err := New(newFileMock(), nil)
	require.NoError(t, err)

	_, err = db.Schema(context.Background(), "ghost")
	var unknown *catalog.UnknownTableError
	assert.ErrorAs(t, err, &unknown)
}

func TestLoadPinsCatalogSchema(t *testing.T) {
	adapter := newFileMock()
	db, err := New(adapter, nil)
	require.NoError(t, err)

	tbl, err := db.Load(context.Background(), "people", source.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, table.TypeInteger, tbl.Schema.Columns[0].Type)
}

func TestBuildAndQueryOverSQLSource(t *testing.T) {
	adapter := &sqlMock{fileMock: *newFileMock()}
	db, err := New(adapter, nil)
	require.NoError(t, err)

	ctx := context.Background()
	sqlStr, args, err := db.Build(ctx, query.Spec{Table: "people", Op: query.OpNullCount, Columns: []string{"id"}})
	require.NoError(t, err)
	assert.Empty(t, args)
	assert.Equal(t, `SELECT 'id' AS column_name, SUM(CASE WHEN "id" IS NULL THEN 1 ELSE 0 END) AS null_count FROM "people"`, sqlStr)

	_, err = db.Query(ctx, query.Spec{Table: "people", Op: query.OpNullCount})
	require.NoError(t, err)
	require.Len(t, adapter.executed, 1)
	assert.Contains(t, adapter.executed[0], "UNION ALL")
}

func TestBuildUnknownTable(t *testing.T) {
	adapter := &sqlMock{fileMock: *newFileMock()}
	db, err := New(adapter, nil)
	require.NoError(t, err)

	_, _, err = db.Build(context.Background(), query.Spec{Table: "ghost", Op: query.OpProfile})
	var unknown *catalog.UnknownTableError
	assert.ErrorAs(t, err, &unknown)
}

func TestCheck(t *testing.T) {
	adapter := newFileMock()
	db, err := New(adapter, nil)
	require.NoError(t, err)

	report, err := db.Check(context.Background(), "people")
	require.NoError(t, err)
	assert.Equal(t, "people", report.Table)
	require.Len(t, report.DuplicateGroups, 1)
	assert.Equal(t, []int{0, 1}, report.DuplicateGroups[0].Rows)
}

func TestIndependentDatabases(t *testing.T) {
	first, err := New(newFileMock(), nil)
	require.NoError(t, err)
	second, err := New(newFileMock(), nil)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = first.Tables(ctx)
	require.NoError(t, err)

	// Closing one database never affects the other.
	require.NoError(t, first.Close())
	_, err = second.Tables(ctx)
	assert.NoError(t, err)
}
