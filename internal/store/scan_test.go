package store

import (
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestScanRowsBuildsRowMaps(t *testing.T) {
	db, mock := newSQLMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT name, price FROM product`)).WillReturnRows(
		sqlmock.NewRows([]string{"name", "price"}).
			AddRow([]byte("Laptop"), 999.99).
			AddRow([]byte("Mouse"), 29.99),
	)

	rows, err := db.Query(`SELECT name, price FROM product`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	defer func() { _ = rows.Close() }()

	result, err := ScanRows(rows)
	if err != nil {
		t.Fatalf("ScanRows() error = %v", err)
	}
	if len(result.Columns) != 2 || result.Columns[0] != "name" || result.Columns[1] != "price" {
		t.Fatalf("Columns = %v", result.Columns)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("row count = %d", len(result.Rows))
	}
	if result.Rows[0]["name"] != "Laptop" {
		t.Fatalf("Rows[0][name] = %v, want byte slice normalized to string", result.Rows[0]["name"])
	}
	if result.Rows[1]["price"] != 29.99 {
		t.Fatalf("Rows[1][price] = %v", result.Rows[1]["price"])
	}
	assertSQLMock(t, mock)
}

func TestScanRowsEmptyResult(t *testing.T) {
	db, mock := newSQLMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM seller`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rows, err := db.Query(`SELECT id FROM seller`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	defer func() { _ = rows.Close() }()

	result, err := ScanRows(rows)
	if err != nil {
		t.Fatalf("ScanRows() error = %v", err)
	}
	if result.Rows == nil {
		t.Fatal("Rows should be an empty slice, not nil")
	}
	if len(result.Rows) != 0 {
		t.Fatalf("row count = %d", len(result.Rows))
	}
	assertSQLMock(t, mock)
}

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func assertSQLMock(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sql expectations: %v", err)
	}
}
