package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/databridger/databridger/internal/source/sqldb"
	"github.com/databridger/databridger/internal/table"
)

// mysqlHandler implements sqldb.DialectHandler for MySQL.
type mysqlHandler struct{}

var _ sqldb.DialectHandler = (*mysqlHandler)(nil)

func (h mysqlHandler) CreatePool(cfg sqldb.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&timeout=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, cfg.ConnectTimeout)

	pool, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	return pool, nil
}

// DefaultSchema is empty for MySQL: the schema and the database are the
// same namespace, so introspection queries use DATABASE().
func (h mysqlHandler) DefaultSchema() string { return "" }

func schemaExpr(schema string) (string, []interface{}) {
	if schema == "" {
		return "DATABASE()", nil
	}
	return "?", []interface{}{schema}
}

func (h mysqlHandler) ListTables(ctx context.Context, pool *sql.DB, schema string) ([]string, error) {
	expr, args := schemaExpr(schema)
	query := fmt.Sprintf(
		"SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = %s AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME",
		expr)

	rows, err := pool.QueryContext(ctx, query, args...)
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

func (h mysqlHandler) ListColumns(ctx context.Context, pool *sql.DB, schema, tableName string) ([]sqldb.ColumnInfo, error) {
	expr, args := schemaExpr(schema)
	query := fmt.Sprintf(`
		SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE
		  FROM information_schema.COLUMNS
		 WHERE TABLE_SCHEMA = %s AND TABLE_NAME = ?
		 ORDER BY ORDINAL_POSITION`, expr)
	args = append(args, tableName)

	rows, err := pool.QueryContext(ctx, query, args...)
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

// MapType maps a MySQL type name onto the shared type tags. TINYINT(1) is
// the conventional boolean spelling.
func (h mysqlHandler) MapType(dbType string) table.TypeTag {
	switch t := strings.ToLower(dbType); {
	case t == "tinyint(1)", t == "bool", t == "boolean":
		return table.TypeBoolean
	case strings.HasPrefix(t, "tinyint"), strings.HasPrefix(t, "smallint"),
		strings.HasPrefix(t, "mediumint"), strings.HasPrefix(t, "bigint"),
		strings.HasPrefix(t, "int"), t == "unsigned bigint", t == "year":
		return table.TypeInteger
	case strings.HasPrefix(t, "decimal"), strings.HasPrefix(t, "numeric"),
		strings.HasPrefix(t, "float"), strings.HasPrefix(t, "double"):
		return table.TypeFloat
	case t == "date", t == "datetime", t == "timestamp":
		return table.TypeDate
	case strings.HasPrefix(t, "char"), strings.HasPrefix(t, "varchar"),
		strings.HasSuffix(t, "text"), t == "enum", t == "set":
		return table.TypeText
	default:
		return table.TypeUnknown
	}
}

func init() {
	sqldb.RegisterDialectHandler("mysql", mysqlHandler{})
}
