package duckdb

import (
	"context"
	"testing"
)

func TestQueryAgainstInMemoryDatabase(t *testing.T) {
	s, err := Open("")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	if _, err := s.DB().ExecContext(ctx, `CREATE TABLE seller (id INTEGER PRIMARY KEY, name VARCHAR NOT NULL)`); err != nil {
		t.Fatalf("create table failed: %v", err)
	}
	if _, err := s.DB().ExecContext(ctx, `INSERT INTO seller VALUES (1, 'John Smith'), (2, 'Maria Garcia')`); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	result, err := s.Query(ctx, `SELECT id, name FROM seller ORDER BY id`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(result.Columns) != 2 || result.Columns[1] != "name" {
		t.Fatalf("Columns = %v", result.Columns)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("row count = %d", len(result.Rows))
	}
	if result.Rows[0]["name"] != "John Smith" {
		t.Fatalf("Rows[0][name] = %v", result.Rows[0]["name"])
	}
}

func TestTablesListsSchema(t *testing.T) {
	s, err := Open("")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	if _, err := s.DB().ExecContext(ctx, `CREATE TABLE product (id INTEGER PRIMARY KEY, name VARCHAR NOT NULL, price DECIMAL(10,2) NOT NULL)`); err != nil {
		t.Fatalf("create table failed: %v", err)
	}

	tables, err := s.Tables(ctx)
	if err != nil {
		t.Fatalf("Tables() error = %v", err)
	}
	if len(tables) != 1 || tables[0].Name != "product" {
		t.Fatalf("tables = %+v", tables)
	}
	if len(tables[0].Columns) != 3 {
		t.Fatalf("column count = %d", len(tables[0].Columns))
	}
	if tables[0].Columns[2].Name != "price" {
		t.Fatalf("Columns[2] = %+v", tables[0].Columns[2])
	}
}

func TestPing(t *testing.T) {
	s, err := Open("")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}
