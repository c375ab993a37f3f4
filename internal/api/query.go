package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/insightsales/insightsales/internal/archive"
	"github.com/insightsales/insightsales/internal/history"
	"github.com/insightsales/insightsales/internal/nlquery"
	"github.com/insightsales/insightsales/internal/observability"
)

type queryRequest struct {
	Question string `json:"question"`
}

type queryResponse struct {
	Question      string           `json:"question"`
	SQLQuery      string           `json:"sql_query"`
	Columns       []string         `json:"columns"`
	Results       []map[string]any `json:"results"`
	RowCount      int              `json:"row_count"`
	ExecutionTime float64          `json:"execution_time"`
	RetryCount    int              `json:"retry_count"`
	Success       bool             `json:"success"`
	ErrorMessage  string           `json:"error_message,omitempty"`
}

// handleQuery answers natural-language questions. A query that exhausts its
// retries is still a well-formed response (success=false), not an HTTP error;
// error statuses are reserved for malformed requests and missing wiring.
func handleQuery(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Orchestrator == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "QUERY_NOT_CONFIGURED", "query orchestrator is not configured", false, nil)
		return
	}

	var request queryRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid query request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(request.Question) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "QUESTION_REQUIRED", "question is required", false, nil)
		return
	}

	outcome := deps.Orchestrator.Run(r.Context(), request.Question)
	observeQueryOutcome(outcome)
	persistQueryOutcome(r, deps, outcome)

	columns := outcome.Columns
	if columns == nil {
		columns = []string{}
	}
	results := outcome.Rows
	if results == nil {
		results = []map[string]any{}
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Question:      outcome.Question,
		SQLQuery:      outcome.SQL,
		Columns:       columns,
		Results:       results,
		RowCount:      len(results),
		ExecutionTime: outcome.Elapsed.Seconds(),
		RetryCount:    outcome.AttemptsUsed,
		Success:       outcome.Success,
		ErrorMessage:  outcome.ErrorMessage,
	})
}

func observeQueryOutcome(outcome nlquery.Outcome) {
	observability.ObserveQueryProcessed(outcome.Success, len(outcome.Attempts), outcome.Elapsed)
	for _, attempt := range outcome.Attempts {
		switch {
		case attempt.Candidate == "" && attempt.Failure != "":
			observability.IncrementGenerationFailure()
		case attempt.Validation != nil && !attempt.Validation.Passed:
			observability.IncrementValidationFailure(string(attempt.Validation.Stage))
		case attempt.Execution != nil && !attempt.Execution.Success:
			observability.IncrementExecutionFailure()
		}
	}
}

// persistQueryOutcome records history and archives successful result sets.
// Both are best-effort: a failing sink must not fail the query response.
func persistQueryOutcome(r *http.Request, deps Dependencies, outcome nlquery.Outcome) {
	if deps.History != nil {
		if _, err := deps.History.Record(r.Context(), history.RecordInput{
			Question:     outcome.Question,
			SQLQuery:     outcome.SQL,
			Success:      outcome.Success,
			RowCount:     len(outcome.Rows),
			RetryCount:   outcome.AttemptsUsed,
			ExecutionMs:  outcome.Elapsed.Milliseconds(),
			ErrorMessage: outcome.ErrorMessage,
		}); err != nil && deps.Logger != nil {
			deps.Logger.WarnContext(r.Context(), "record query history failed",
				slog.String("trace_id", observability.TraceIDFromContext(r.Context())),
				slog.Any("error", err),
			)
		}
	}

	if deps.Archiver != nil && outcome.Success && len(outcome.Rows) > 0 {
		if _, err := deps.Archiver.Archive(r.Context(), archive.Input{
			Question:    outcome.Question,
			SQLQuery:    outcome.SQL,
			Rows:        outcome.Rows,
			ExecutionMs: outcome.Elapsed.Milliseconds(),
		}); err != nil && deps.Logger != nil {
			deps.Logger.WarnContext(r.Context(), "archive query result failed",
				slog.String("trace_id", observability.TraceIDFromContext(r.Context())),
				slog.Any("error", err),
			)
		}
	}
}
