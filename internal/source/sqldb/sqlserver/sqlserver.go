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
package sqlserver

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/denisenkom/go-mssqldb"

	"github.com/databridger/databridger/internal/source/sqldb"
	"github.com/databridger/databridger/internal/table"
)

// sqlServerHandler implements sqldb.DialectHandler for SQL Server.
type sqlServerHandler struct{}

var _ sqldb.DialectHandler = (*sqlServerHandler)(nil)

func (h sqlServerHandler) CreatePool(cfg sqldb.Config) (*sql.DB, error) {
	port := cfg.Port
	if port == 0 {
		port = 1433 // Default SQL Server port
	}
	connStr := fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s&dial+timeout=%d",
		cfg.User, cfg.Password, cfg.Host, port, cfg.DBName, int(cfg.ConnectTimeout.Seconds()))

	pool, err := sql.Open("sqlserver", connStr)
	if err != nil {
		return nil, fmt.Errorf("sql.Open (sqlserver): %w", err)
	}
	return pool, nil
}

func (h sqlServerHandler) DefaultSchema() string { return "dbo" }

func (h sqlServerHandler) ListTables(ctx context.Context, pool *sql.DB, schema string) ([]string, error) {
	query := `
		SELECT TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = @p1
		AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME;`

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

func (h sqlServerHandler) ListColumns(ctx context.Context, pool *sql.DB, schema, tableName string) ([]sqldb.ColumnInfo, error) {
	query := `
		SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = @p1
		AND TABLE_NAME = @p2
		ORDER BY ORDINAL_POSITION;`

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

// MapType maps a SQL Server type name onto the shared type tags.
func (h sqlServerHandler) MapType(dbType string) table.TypeTag {
	switch t := strings.ToLower(dbType); {
	case t == "bit":
		return table.TypeBoolean
	case t == "tinyint", t == "smallint", t == "int", t == "bigint":
		return table.TypeInteger
	case t == "decimal", t == "numeric", t == "float", t == "real",
		t == "money", t == "smallmoney":
		return table.TypeFloat
	case t == "date", t == "datetime", t == "datetime2", t == "smalldatetime",
		t == "datetimeoffset":
		return table.TypeDate
	case strings.Contains(t, "char"), strings.Contains(t, "text"),
		t == "uniqueidentifier":
		return table.TypeText
	default:
		return table.TypeUnknown
	}
}

func init() {
	sqldb.RegisterDialectHandler("sqlserver", sqlServerHandler{})
}
