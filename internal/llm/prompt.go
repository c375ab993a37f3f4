package llm

import (
	"fmt"
	"strings"

	"github.com/insightsales/insightsales/internal/store"
)

// BuildSchemaPrompt renders the introspected schema into a system prompt
// for models that were not fine-tuned with the schema baked in.
func BuildSchemaPrompt(tables []store.Table) string {
	var b strings.Builder
	b.WriteString("You convert natural language questions about a sales database into a single PostgreSQL SELECT query.\n")
	b.WriteString("\nSchema:\n")
	for _, table := range tables {
		columns := make([]string, 0, len(table.Columns))
		for _, column := range table.Columns {
			columns = append(columns, column.Name+" "+column.Type)
		}
		fmt.Fprintf(&b, "- %s (%s)\n", table.Name, strings.Join(columns, ", "))
	}
	b.WriteString("\nRules:\n")
	b.WriteString("- Use only the listed tables and columns.\n")
	b.WriteString("- Output exactly one SELECT statement.\n")
	b.WriteString("- Return ONLY SQL. No markdown, no explanation.")
	return b.String()
}
