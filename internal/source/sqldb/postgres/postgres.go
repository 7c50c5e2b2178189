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
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"github.com/databridger/databridger/internal/source/sqldb"
	"github.com/databridger/databridger/internal/table"
)

// postgresHandler implements sqldb.DialectHandler for PostgreSQL.
type postgresHandler struct{}

var _ sqldb.DialectHandler = (*postgresHandler)(nil)
var _ sqldb.KeyIntrospector = (*postgresHandler)(nil)

func (h postgresHandler) CreatePool(cfg sqldb.Config) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslMode(cfg.SSLMode),
		int(cfg.ConnectTimeout.Seconds()),
	)

	pool, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	return pool, nil
}

func sslMode(mode string) string {
	if mode == "" {
		return "disable"
	}
	return mode
}

func (h postgresHandler) DefaultSchema() string { return "public" }

// ListTables for PostgreSQL, base tables only, excluding views.
func (h postgresHandler) ListTables(ctx context.Context, pool *sql.DB, schema string) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1
		AND table_type = 'BASE TABLE'
		ORDER BY table_name;`

	rows, err := pool.QueryContext(ctx, query, schema)
	if err != nil {
		return nil, fmt.Errorf("error querying tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, fmt.Errorf("error scanning table name: %w", err)
		}
		tables = append(tables, tableName)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating table rows: %w", err)
	}
	return tables, nil
}

// ListColumns for PostgreSQL, in ordinal position order.
func (h postgresHandler) ListColumns(ctx context.Context, pool *sql.DB, schema, tableName string) ([]sqldb.ColumnInfo, error) {
	query := `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = $1
		AND table_name = $2
		ORDER BY ordinal_position;`

	rows, err := pool.QueryContext(ctx, query, schema, tableName)
	if err != nil {
		return nil, fmt.Errorf("error querying columns for table %s: %w", tableName, err)
	}
	defer rows.Close()

	var columns []sqldb.ColumnInfo
	for rows.Next() {
		var col sqldb.ColumnInfo
		var nullable string
		if err := rows.Scan(&col.Name, &col.DataType, &nullable); err != nil {
			return nil, fmt.Errorf("error scanning column info: %w", err)
		}
		col.Nullable = strings.EqualFold(nullable, "YES")
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column rows: %w", err)
	}
	return columns, nil
}

// PrimaryKey reads declared primary-key columns from constraint metadata.
func (h postgresHandler) PrimaryKey(ctx context.Context, pool *sql.DB, schema, tableName string) ([]string, error) {
	query := `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
			AND tc.table_schema = $1
			AND tc.table_name = $2
		ORDER BY kcu.ordinal_position;`

	rows, err := pool.QueryContext(ctx, query, schema, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query primary key for %s: %w", tableName, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, fmt.Errorf("failed to scan primary key column: %w", err)
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

// ForeignKeys reads declared foreign-key constraints from constraint
// metadata.
func (h postgresHandler) ForeignKeys(ctx context.Context, pool *sql.DB, schema, tableName string) ([]sqldb.ForeignKeyRef, error) {
	query := `
		SELECT
			kcu.column_name,
			ccu.table_name AS ref_table,
			ccu.column_name AS ref_column
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = $1
			AND kcu.table_name = $2`

	rows, err := pool.QueryContext(ctx, query, schema, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to execute foreign key detection query: %w", err)
	}
	defer rows.Close()

	var fks []sqldb.ForeignKeyRef
	for rows.Next() {
		var fk sqldb.ForeignKeyRef
		if err := rows.Scan(&fk.Column, &fk.ReferencedTable, &fk.ReferencedColumn); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key info: %w", err)
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}

// MapType maps a PostgreSQL type name (information_schema spelling or the
// driver's uppercase DatabaseTypeName) onto the shared type tags.
func (h postgresHandler) MapType(dbType string) table.TypeTag {
	switch t := strings.ToLower(dbType); {
	case t == "smallint", t == "integer", t == "bigint",
		t == "int2", t == "int4", t == "int8", t == "serial", t == "bigserial":
		return table.TypeInteger
	case t == "real", t == "double precision", t == "numeric", t == "decimal",
		t == "float4", t == "float8", t == "money":
		return table.TypeFloat
	case t == "boolean", t == "bool":
		return table.TypeBoolean
	case t == "date", strings.HasPrefix(t, "timestamp"):
		return table.TypeDate
	case t == "text", t == "uuid", t == "name",
		strings.HasPrefix(t, "char"), strings.HasPrefix(t, "varchar"),
		strings.HasPrefix(t, "character"):
		return table.TypeText
	default:
		return table.TypeUnknown
	}
}

func init() {
	sqldb.RegisterDialectHandler("postgres", postgresHandler{})
}
