// Package bridge exposes the single entry point over a tabular source: one
// Database owns one adapter and one lazily-built catalog snapshot, and
// routes query building, execution and quality checks through them.
package bridge

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/databridger/databridger/internal/catalog"
	"github.com/databridger/databridger/internal/query"
	"github.com/databridger/databridger/internal/quality"
	"github.com/databridger/databridger/internal/source"
	"github.com/databridger/databridger/internal/table"
)

// ErrNotSQLSource is returned when a SQL-only operation is requested on a
// file-backed database.
var ErrNotSQLSource = errors.New("operation requires a SQL source")

// dialectNamer is implemented by adapters bound to a SQL dialect.
type dialectNamer interface {
	Dialect() string
}

// Database is the façade over one source. Instances are independent: no
// catalog or connection state is shared between them, so multiple databases
// in one process never interfere.
type Database struct {
	adapter source.Adapter
	builder *query.Builder
	cat     *catalog.Catalog
	logger  *zap.Logger
}

// New wraps an adapter. For SQL sources a query builder for the adapter's
// dialect is attached; file sources get none, and SQL-only operations fail
// with ErrNotSQLSource.
func New(adapter source.Adapter, logger *zap.Logger) (*Database, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db := &Database{
		adapter: adapter,
		logger:  logger.Named("bridge"),
	}

	if dn, ok := adapter.(dialectNamer); ok {
		builder, err := query.NewBuilder(dn.Dialect())
		if err != nil {
			return nil, err
		}
		db.builder = builder
	}
	return db, nil
}

// ensureCatalog builds the catalog snapshot on first use.
func (d *Database) ensureCatalog(ctx context.Context) (*catalog.Catalog, error) {
	if d.cat != nil {
		return d.cat, nil
	}
	cat, err := catalog.Build(ctx, d.adapter)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("catalog built", zap.Int("tables", len(cat.TableNames())))
	d.cat = cat
	return cat, nil
}

// SourceKind reports the origin of the underlying source.
func (d *Database) SourceKind() source.Kind { return d.adapter.Kind() }

// Tables lists the source's logical tables.
func (d *Database) Tables(ctx context.Context) ([]string, error) {
	cat, err := d.ensureCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return cat.TableNames(), nil
}

// Schema returns the cached schema of a table.
func (d *Database) Schema(ctx context.Context, name string) (table.Schema, error) {
	cat, err := d.ensureCatalog(ctx)
	if err != nil {
		return table.Schema{}, err
	}
	return cat.Schema(name)
}

// Refresh re-derives the whole catalog, atomically replacing the snapshot.
// A cold database builds the snapshot once instead of building and
// immediately rebuilding it.
func (d *Database) Refresh(ctx context.Context) error {
	if d.cat == nil {
		_, err := d.ensureCatalog(ctx)
		return err
	}
	return d.cat.Refresh(ctx, d.adapter)
}

// InferKeys runs the heuristic key pass over the catalog.
func (d *Database) InferKeys(ctx context.Context) error {
	cat, err := d.ensureCatalog(ctx)
	if err != nil {
		return err
	}
	return cat.InferKeys(ctx, d.adapter)
}

// Load materializes a table. The catalog schema pins cell parsing unless
// the caller declared one; every call returns an independent copy.
func (d *Database) Load(ctx context.Context, name string, opts source.LoadOptions) (*table.Table, error) {
	cat, err := d.ensureCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if opts.DeclaredSchema == nil {
		schema, err := cat.Schema(name)
		if err != nil {
			return nil, err
		}
		opts.DeclaredSchema = &schema
	}
	return d.adapter.LoadTable(ctx, name, opts)
}

// Build renders a query spec against the catalog schema of its target
// table. SQL sources only.
func (d *Database) Build(ctx context.Context, spec query.Spec) (string, []interface{}, error) {
	if d.builder == nil {
		return "", nil, ErrNotSQLSource
	}
	cat, err := d.ensureCatalog(ctx)
	if err != nil {
		return "", nil, err
	}
	schema, err := cat.Schema(spec.Table)
	if err != nil {
		return "", nil, err
	}
	return d.builder.Build(schema, spec)
}

// Query builds a spec and executes it against the live connection.
func (d *Database) Query(ctx context.Context, spec query.Spec) (*table.Table, error) {
	executor, ok := d.adapter.(source.Executor)
	if !ok {
		return nil, ErrNotSQLSource
	}
	sqlStr, args, err := d.Build(ctx, spec)
	if err != nil {
		return nil, err
	}
	return executor.Execute(ctx, sqlStr, args...)
}

// Execute runs a pre-built statement against the live connection.
func (d *Database) Execute(ctx context.Context, sqlStr string, args ...interface{}) (*table.Table, error) {
	executor, ok := d.adapter.(source.Executor)
	if !ok {
		return nil, ErrNotSQLSource
	}
	return executor.Execute(ctx, sqlStr, args...)
}

// Check loads a table and runs all quality checks over it.
func (d *Database) Check(ctx context.Context, name string) (*quality.Report, error) {
	tbl, err := d.Load(ctx, name, source.LoadOptions{})
	if err != nil {
		return nil, err
	}
	return quality.Run(tbl)
}

// Close releases the underlying source.
func (d *Database) Close() error {
	return d.adapter.Close()
}
