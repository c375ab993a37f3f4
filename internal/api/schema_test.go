package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/insightsales/insightsales/internal/store"
)

func TestSchemaEndpointFiltersInternalTables(t *testing.T) {
	cfg := testConfig(t)
	schema := &fakeSchemaSource{tables: []store.Table{
		{Name: "seller", Columns: []store.Column{{Name: "id", Type: "bigint"}, {Name: "name", Type: "text"}}},
		{Name: "query_history", Columns: []store.Column{{Name: "id", Type: "bigint"}}},
		{Name: "insightsales_schema_migrations", Columns: []store.Column{{Name: "version", Type: "bigint"}}},
		{Name: "customer", Columns: []store.Column{{Name: "id", Type: "bigint"}}},
	}}

	h := NewHandler(cfg, Dependencies{Schema: schema})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/schema", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var body struct {
		Tables []store.Table `json:"tables"`
		Count  int           `json:"count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if body.Count != 2 || len(body.Tables) != 2 {
		t.Fatalf("count = %d, tables = %d", body.Count, len(body.Tables))
	}
	for _, table := range body.Tables {
		if table.Name == "query_history" || table.Name == "insightsales_schema_migrations" {
			t.Fatalf("internal table %q leaked into schema listing", table.Name)
		}
	}
}

func TestSchemaEndpointReportsErrors(t *testing.T) {
	cfg := testConfig(t)
	schema := &fakeSchemaSource{err: errors.New("db down")}

	h := NewHandler(cfg, Dependencies{Schema: schema})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/schema", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestSchemaEndpointNotConfigured(t *testing.T) {
	cfg := testConfig(t)
	h := NewHandler(cfg, Dependencies{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/schema", nil))

	if rr.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d", rr.Code)
	}
}

type fakeSchemaSource struct {
	tables []store.Table
	err    error
}

func (f *fakeSchemaSource) Tables(_ context.Context) ([]store.Table, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tables, nil
}
