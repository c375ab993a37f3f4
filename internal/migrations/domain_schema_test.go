package migrations

import (
	"strings"
	"testing"
)

func TestDomainMigrationContainsRequiredTablesAndIndexes(t *testing.T) {
	body, err := embeddedFS.ReadFile("sql/000001_domain_schema.up.sql")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	sql := string(body)
	requiredSnippets := []string{
		"CREATE TABLE seller",
		"CREATE TABLE customer",
		"CREATE TABLE product",
		`CREATE TABLE "order"`,
		"CREATE TABLE order_product",
		"CREATE INDEX idx_customer_seller",
		"CREATE INDEX idx_order_seller",
		"CREATE INDEX idx_order_customer",
		"CREATE INDEX idx_order_date",
		"PRIMARY KEY (order_id, product_id)",
	}

	for _, snippet := range requiredSnippets {
		if !strings.Contains(sql, snippet) {
			t.Fatalf("migration missing required snippet: %s", snippet)
		}
	}
}

func TestHistoryMigrationContainsRequiredColumns(t *testing.T) {
	body, err := embeddedFS.ReadFile("sql/000002_query_history.up.sql")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	sql := string(body)
	requiredSnippets := []string{
		"CREATE TABLE query_history",
		"question TEXT NOT NULL",
		"sql_query TEXT NOT NULL",
		"success BOOLEAN NOT NULL",
		"row_count INTEGER",
		"retry_count INTEGER",
		"execution_ms BIGINT",
		"error_message TEXT",
		"created_at TIMESTAMPTZ",
	}

	for _, snippet := range requiredSnippets {
		if !strings.Contains(sql, snippet) {
			t.Fatalf("migration missing required snippet: %s", snippet)
		}
	}
}
