package sqlserver

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/databridger/databridger/internal/table"
)

func TestSQLServerListTables(t *testing.T) {
	pool, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}
	defer pool.Close()

	rows := sqlmock.NewRows([]string{"TABLE_NAME"}).
		AddRow("Invoices").
		AddRow("Vendors")
	mock.ExpectQuery("SELECT TABLE_NAME").
		WithArgs("dbo").
		WillReturnRows(rows)

	handler := sqlServerHandler{}
	got, err := handler.ListTables(context.Background(), pool, "dbo")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "Invoices" {
		t.Errorf("ListTables() = %v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSQLServerListColumns(t *testing.T) {
	pool, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	rows := sqlmock.NewRows([]string{"COLUMN_NAME", "DATA_TYPE", "IS_NULLABLE"}).
		AddRow("InvoiceID", "int", "NO").
		AddRow("Paid", "bit", "YES")
	mock.ExpectQuery("SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE").
		WithArgs("dbo", "Invoices").
		WillReturnRows(rows)

	handler := sqlServerHandler{}
	got, err := handler.ListColumns(context.Background(), pool, "dbo", "Invoices")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Nullable || !got[1].Nullable {
		t.Errorf("ListColumns() = %+v", got)
	}
}

func TestSQLServerMapType(t *testing.T) {
	handler := sqlServerHandler{}

	tests := []struct {
		in   string
		want table.TypeTag
	}{
		{"bit", table.TypeBoolean},
		{"int", table.TypeInteger},
		{"bigint", table.TypeInteger},
		{"decimal", table.TypeFloat},
		{"money", table.TypeFloat},
		{"datetime2", table.TypeDate},
		{"nvarchar", table.TypeText},
		{"uniqueidentifier", table.TypeText},
		{"varbinary", table.TypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := handler.MapType(tt.in); got != tt.want {
				t.Errorf("MapType(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
