package api

import (
	"net/http"

	"github.com/insightsales/insightsales/internal/store"
)

// Bookkeeping tables stay out of the schema listing so clients and prompt
// builders only see the sales domain.
var internalTables = map[string]struct{}{
	"insightsales_schema_migrations": {},
	"query_history":                  {},
}

func handleSchema(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Schema == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "SCHEMA_NOT_CONFIGURED", "schema source is not configured", false, nil)
		return
	}

	tables, err := deps.Schema.Tables(r.Context())
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "SCHEMA_ERROR", "failed to load schema", true, map[string]any{"details": err.Error()})
		return
	}

	visible := make([]store.Table, 0, len(tables))
	for _, table := range tables {
		if _, hidden := internalTables[table.Name]; hidden {
			continue
		}
		visible = append(visible, table)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tables": visible,
		"count":  len(visible),
	})
}
