// Package sqldb implements the relational variant of source.Adapter. One
// adapter owns one connection pool; dialect-specific behavior lives in
// registered DialectHandler implementations.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/databridger/databridger/internal/query"
	"github.com/databridger/databridger/internal/source"
	"github.com/databridger/databridger/internal/table"
)

// DefaultConnectTimeout bounds the initial reachability check so a bad host
// fails fast instead of hanging.
const DefaultConnectTimeout = 10 * time.Second

// Config holds the connection parameters for one database source.
type Config struct {
	Dialect        string
	Host           string
	Port           int
	User           string
	Password       string
	DBName         string
	Schema         string // namespace; empty means the dialect's default
	SSLMode        string
	ConnectTimeout time.Duration
}

// ColumnInfo is one column row from the dialect's information-schema
// equivalent.
type ColumnInfo struct {
	Name     string
	DataType string
	Nullable bool
}

// ForeignKeyRef is a declared foreign-key constraint read from catalog
// metadata.
type ForeignKeyRef struct {
	Column           string
	ReferencedTable  string
	ReferencedColumn string
}

// DialectHandler is the per-dialect extension point: pool creation, catalog
// introspection and native-type mapping.
type DialectHandler interface {
	CreatePool(cfg Config) (*sql.DB, error)
	ListTables(ctx context.Context, pool *sql.DB, schema string) ([]string, error)
	ListColumns(ctx context.Context, pool *sql.DB, schema, tableName string) ([]ColumnInfo, error)
	MapType(dbType string) table.TypeTag
	DefaultSchema() string
}

// KeyIntrospector is implemented by handlers whose dialect exposes key
// constraints through catalog metadata.
type KeyIntrospector interface {
	PrimaryKey(ctx context.Context, pool *sql.DB, schema, tableName string) ([]string, error)
	ForeignKeys(ctx context.Context, pool *sql.DB, schema, tableName string) ([]ForeignKeyRef, error)
}

var (
	dialectHandlers = make(map[string]DialectHandler)
	mu              sync.RWMutex
)

// RegisterDialectHandler installs a handler for a dialect tag. Dialect
// packages call this from init.
func RegisterDialectHandler(dialect string, handler DialectHandler) {
	mu.Lock()
	defer mu.Unlock()
	dialectHandlers[dialect] = handler
}

// GetDialectHandler resolves a dialect tag to its registered handler.
func GetDialectHandler(dialect string) (DialectHandler, error) {
	mu.RLock()
	defer mu.RUnlock()
	handler, ok := dialectHandlers[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported database dialect: %s", dialect)
	}
	return handler, nil
}

// Adapter is the SQL-backed source. It serializes nothing itself; the
// *sql.DB pool provides whatever concurrency the driver supports.
type Adapter struct {
	pool    *sql.DB
	handler DialectHandler
	cfg     Config
	schema  string
	logger  *zap.Logger
}

var _ source.Executor = (*Adapter)(nil)

// New opens a pool for the configured dialect and verifies reachability
// within the connect timeout. An unreachable or auth-rejected database
// surfaces ConnectionError immediately; there is no automatic retry.
func New(cfg Config, logger *zap.Logger) (*Adapter, error) {
	handler, err := GetDialectHandler(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}

	pool, err := handler.CreatePool(cfg)
	if err != nil {
		return nil, &source.ConnectionError{Dialect: cfg.Dialect, Host: cfg.Host, Err: err}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, &source.ConnectionError{Dialect: cfg.Dialect, Host: cfg.Host, Err: err}
	}

	schema := cfg.Schema
	if schema == "" {
		schema = handler.DefaultSchema()
	}

	return &Adapter{
		pool:    pool,
		handler: handler,
		cfg:     cfg,
		schema:  schema,
		logger:  logger.Named("sqldb"),
	}, nil
}

func (a *Adapter) Kind() source.Kind { return source.KindSQL }

// Dialect returns the configured dialect tag.
func (a *Adapter) Dialect() string { return a.cfg.Dialect }

func (a *Adapter) Close() error {
	if a.pool == nil {
		return nil
	}
	return a.pool.Close()
}

// ListTables queries the dialect's information-schema equivalent.
func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	names, err := a.handler.ListTables(ctx, a.pool, a.schema)
	if err != nil {
		return nil, a.wrapErr("list_tables", "", err)
	}
	return names, nil
}

// InferSchema reads declared column types from catalog metadata and maps
// them onto the shared type tags.
func (a *Adapter) InferSchema(ctx context.Context, name string) (table.Schema, error) {
	cols, err := a.handler.ListColumns(ctx, a.pool, a.schema, name)
	if err != nil {
		return table.Schema{}, a.wrapErr("infer_schema", name, err)
	}
	if len(cols) == 0 {
		return table.Schema{}, &source.QueryExecutionError{
			Table: name,
			Err:   fmt.Errorf("table %q not found in schema %q", name, a.schema),
		}
	}

	specs := make([]table.ColumnSpec, len(cols))
	for i, c := range cols {
		specs[i] = table.ColumnSpec{
			Name:     c.Name,
			Type:     a.handler.MapType(c.DataType),
			Nullable: c.Nullable,
		}
	}
	schema, err := table.NewSchema(specs)
	if err != nil {
		return table.Schema{}, &source.QueryExecutionError{Table: name, Err: err}
	}

	if ki, ok := a.handler.(KeyIntrospector); ok {
		a.attachKeyHints(ctx, ki, name, &schema)
	}
	return schema, nil
}

// attachKeyHints decorates a schema with declared constraints where the
// dialect exposes them. Failures here degrade to no hints.
func (a *Adapter) attachKeyHints(ctx context.Context, ki KeyIntrospector, name string, schema *table.Schema) {
	if pk, err := ki.PrimaryKey(ctx, a.pool, a.schema, name); err == nil && len(pk) > 0 {
		schema.PrimaryKeyCandidates = pk
	} else if err != nil {
		a.logger.Debug("primary key introspection failed", zap.String("table", name), zap.Error(err))
	}
	if fks, err := ki.ForeignKeys(ctx, a.pool, a.schema, name); err == nil && len(fks) > 0 {
		schema.ForeignKeyCandidates = make(map[string]string, len(fks))
		for _, fk := range fks {
			schema.ForeignKeyCandidates[fk.Column] = fk.ReferencedTable + "." + fk.ReferencedColumn
		}
	} else if err != nil {
		a.logger.Debug("foreign key introspection failed", zap.String("table", name), zap.Error(err))
	}
}

// LoadTable materializes one table via a generated SELECT, with an optional
// row cap and optional filter predicates. The statement itself is rendered
// by the query package; the adapter never concatenates SQL.
func (a *Adapter) LoadTable(ctx context.Context, name string, opts source.LoadOptions) (*table.Table, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var schema table.Schema
	if opts.DeclaredSchema != nil {
		schema = opts.DeclaredSchema.Clone()
	} else {
		inferred, err := a.InferSchema(ctx, name)
		if err != nil {
			return nil, err
		}
		schema = inferred
	}

	stmt, args, err := query.SelectFiltered(a.cfg.Dialect, name, schema, opts.Filters, opts.MaxRows)
	if err != nil {
		return nil, err
	}

	tbl, err := a.execute(ctx, name, stmt, args...)
	if err != nil {
		return nil, err
	}
	tbl.Name = name
	// Keep the declared types and key hints from the catalog pass; the
	// driver result only carries its own column metadata.
	if sameColumns(tbl.Schema, schema) {
		tbl.Schema = schema
	}
	return tbl, nil
}

func sameColumns(a, b table.Schema) bool {
	if len(a.Columns) != len(b.Columns) {
		return false
	}
	for i := range a.Columns {
		if a.Columns[i].Name != b.Columns[i].Name {
			return false
		}
	}
	return true
}

// Execute runs a pre-built statement and materializes the result.
func (a *Adapter) Execute(ctx context.Context, q string, args ...interface{}) (*table.Table, error) {
	return a.execute(ctx, "", q, args...)
}

func (a *Adapter) execute(ctx context.Context, name, q string, args ...interface{}) (*table.Table, error) {
	start := time.Now()

	rows, err := a.pool.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, a.wrapErr("execute", name, err)
	}
	defer rows.Close()

	tbl, err := a.materialize(name, rows)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("executed query",
		zap.String("table", name),
		zap.Int("rows", len(tbl.Rows)),
		zap.Duration("elapsed", time.Since(start)))
	return tbl, nil
}

func (a *Adapter) materialize(name string, rows *sql.Rows) (*table.Table, error) {
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, a.wrapErr("execute", name, err)
	}

	specs := make([]table.ColumnSpec, len(colTypes))
	for i, ct := range colTypes {
		nullable, _ := ct.Nullable()
		specs[i] = table.ColumnSpec{
			Name:     ct.Name(),
			Type:     a.handler.MapType(ct.DatabaseTypeName()),
			Nullable: nullable,
		}
	}
	schema, err := table.NewSchema(specs)
	if err != nil {
		// Generated result sets may repeat column labels; fall back to
		// positional names rather than failing the whole read.
		for i := range specs {
			specs[i].Name = fmt.Sprintf("column_%d", i+1)
		}
		schema = table.Schema{Columns: specs}
	}

	tbl := &table.Table{Name: name, Schema: schema}
	scan := make([]interface{}, len(specs))
	for rows.Next() {
		holders := make([]interface{}, len(specs))
		for i := range holders {
			scan[i] = &holders[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, a.wrapErr("execute", name, err)
		}
		row := make(table.Row, len(specs))
		for i, h := range holders {
			row[i] = decodeDriverValue(h, specs[i].Type)
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, a.wrapErr("execute", name, err)
	}
	return tbl, nil
}

// decodeDriverValue converts a driver-provided Go value into the tagged
// cell representation. Text that should be another type per the column tag
// is parsed; failures keep the original bytes as raw.
func decodeDriverValue(v interface{}, tag table.TypeTag) table.Value {
	switch val := v.(type) {
	case nil:
		return table.Null()
	case int64:
		return table.Int(val)
	case float64:
		return table.Float(val)
	case bool:
		return table.Bool(val)
	case time.Time:
		return table.Date(val)
	case []byte:
		return decodeText(string(val), tag)
	case string:
		return decodeText(val, tag)
	default:
		return table.Raw(fmt.Sprintf("%v", val))
	}
}

func decodeText(s string, tag table.TypeTag) table.Value {
	switch tag {
	case table.TypeText, table.TypeUnknown:
		return table.Text(s)
	default:
		if v, ok := table.Parse(tag, s); ok {
			return v
		}
		return table.Raw(s)
	}
}

// wrapErr classifies an adapter failure: deadline expiry becomes
// TimeoutError, everything else QueryExecutionError. The pool resets the
// underlying connection itself after a cancelled query, so subsequent calls
// keep working.
func (a *Adapter) wrapErr(op, name string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &source.TimeoutError{Source: source.KindSQL, Operation: op, Table: name, Err: err}
	}
	return &source.QueryExecutionError{Table: name, Err: err}
}
