package sqlexec

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/insightsales/insightsales/internal/store"
)

type Outcome struct {
	Columns  []string         `json:"columns,omitempty"`
	Rows     []map[string]any `json:"rows,omitempty"`
	RowCount int              `json:"row_count"`
	Elapsed  time.Duration    `json:"elapsed"`
	Success  bool             `json:"success"`
	Err      string           `json:"error,omitempty"`
}

type QueryStore interface {
	Query(ctx context.Context, sqlText string) (store.Result, error)
}

type Gateway struct {
	Store QueryStore
}

func NewGateway(s QueryStore) *Gateway {
	return &Gateway{Store: s}
}

func (g *Gateway) Execute(ctx context.Context, sqlText string, maxRows int) Outcome {
	statement := applyRowCap(sqlText, maxRows)

	start := time.Now()
	result, err := g.Store.Query(ctx, statement)
	elapsed := time.Since(start)

	if err != nil {
		return Outcome{Elapsed: elapsed, Err: classifyError(err)}
	}
	return Outcome{
		Columns:  result.Columns,
		Rows:     result.Rows,
		RowCount: len(result.Rows),
		Elapsed:  elapsed,
		Success:  true,
	}
}

func applyRowCap(sqlText string, maxRows int) string {
	if maxRows <= 0 || strings.Contains(strings.ToUpper(sqlText), "LIMIT") {
		return sqlText
	}
	return fmt.Sprintf("%s LIMIT %d;", stripTrailingSemicolons(sqlText), maxRows)
}

func classifyError(err error) string {
	message := err.Error()
	switch {
	case strings.Contains(message, "relation") && strings.Contains(message, "does not exist"):
		return "Table not found. Check the table name."
	case strings.Contains(message, "column") && strings.Contains(message, "does not exist"):
		return "Column not found. Check the column names."
	default:
		return "Query execution error: " + message
	}
}

func stripTrailingSemicolons(sqlText string) string {
	trimmed := strings.TrimSpace(sqlText)
	for strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
	}
	return trimmed
}
