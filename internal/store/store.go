package store

import "context"

type Result struct {
	Columns []string
	Rows    []map[string]any
}

type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

type Store interface {
	Query(ctx context.Context, sqlText string) (Result, error)
	Tables(ctx context.Context) ([]Table, error)
	Ping(ctx context.Context) error
}
