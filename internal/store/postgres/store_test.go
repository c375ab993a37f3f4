package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestOpenRequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), Config{})
	if err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

func TestQueryReturnsDriverErrorUnwrapped(t *testing.T) {
	db, mock := newSQLMock(t)
	s := NewWithDB(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM foo`)).
		WillReturnError(errors.New(`relation "foo" does not exist`))

	_, err := s.Query(context.Background(), `SELECT * FROM foo`)
	if err == nil {
		t.Fatal("expected query error")
	}
	if err.Error() != `relation "foo" does not exist` {
		t.Fatalf("error = %q, want original driver message", err.Error())
	}
	assertSQLMock(t, mock)
}

func TestTablesGroupsColumnsByTable(t *testing.T) {
	db, mock := newSQLMock(t)
	s := NewWithDB(db)

	mock.ExpectQuery(`information_schema\.columns`).WillReturnRows(
		sqlmock.NewRows([]string{"table_name", "column_name", "data_type"}).
			AddRow("customer", "id", "integer").
			AddRow("customer", "name", "character varying").
			AddRow("seller", "id", "integer"),
	)

	tables, err := s.Tables(context.Background())
	if err != nil {
		t.Fatalf("Tables() error = %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("table count = %d", len(tables))
	}
	if tables[0].Name != "customer" || len(tables[0].Columns) != 2 {
		t.Fatalf("tables[0] = %+v", tables[0])
	}
	if tables[0].Columns[1].Name != "name" || tables[0].Columns[1].Type != "character varying" {
		t.Fatalf("tables[0].Columns[1] = %+v", tables[0].Columns[1])
	}
	if tables[1].Name != "seller" || len(tables[1].Columns) != 1 {
		t.Fatalf("tables[1] = %+v", tables[1])
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
