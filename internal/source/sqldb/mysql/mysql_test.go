package mysql

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/databridger/databridger/internal/table"
)

func TestMySQLListTablesDefaultSchema(t *testing.T) {
	pool, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}
	defer pool.Close()

	// Empty schema introspects against DATABASE(), with no bind args.
	rows := sqlmock.NewRows([]string{"TABLE_NAME"}).AddRow("orders")
	mock.ExpectQuery("SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = DATABASE").
		WillReturnRows(rows)

	handler := mysqlHandler{}
	got, err := handler.ListTables(context.Background(), pool, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "orders" {
		t.Errorf("ListTables() = %v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestMySQLListTablesExplicitSchema(t *testing.T) {
	pool, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	rows := sqlmock.NewRows([]string{"TABLE_NAME"}).AddRow("orders")
	mock.ExpectQuery("SELECT TABLE_NAME FROM information_schema.TABLES").
		WithArgs("shop").
		WillReturnRows(rows)

	handler := mysqlHandler{}
	if _, err := handler.ListTables(context.Background(), pool, "shop"); err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestMySQLListColumns(t *testing.T) {
	pool, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	rows := sqlmock.NewRows([]string{"COLUMN_NAME", "DATA_TYPE", "IS_NULLABLE"}).
		AddRow("id", "int", "NO").
		AddRow("flag", "tinyint(1)", "YES")
	mock.ExpectQuery("SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE").
		WithArgs("shop", "orders").
		WillReturnRows(rows)

	handler := mysqlHandler{}
	got, err := handler.ListColumns(context.Background(), pool, "shop", "orders")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Nullable || !got[1].Nullable {
		t.Errorf("ListColumns() = %+v", got)
	}
}

func TestMySQLMapType(t *testing.T) {
	handler := mysqlHandler{}

	tests := []struct {
		in   string
		want table.TypeTag
	}{
		{"tinyint(1)", table.TypeBoolean},
		{"tinyint", table.TypeInteger},
		{"int", table.TypeInteger},
		{"bigint", table.TypeInteger},
		{"decimal(10,2)", table.TypeFloat},
		{"double", table.TypeFloat},
		{"datetime", table.TypeDate},
		{"varchar(255)", table.TypeText},
		{"longtext", table.TypeText},
		{"enum", table.TypeText},
		{"blob", table.TypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := handler.MapType(tt.in); got != tt.want {
				t.Errorf("MapType(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
