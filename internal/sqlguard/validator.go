package sqlguard

import (
	"regexp"
	"strings"
)

type Stage string

const (
	StageSecurity Stage = "security"
	StageSyntax   Stage = "syntax"
)

type Outcome struct {
	Stage  Stage  `json:"stage"`
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"`
}

var blockedKeywords = []string{
	"DROP", "DELETE", "UPDATE", "INSERT", "ALTER", "CREATE",
	"TRUNCATE", "GRANT", "REVOKE", "EXEC", "EXECUTE", "CALL",
}

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	selectKeyword  = regexp.MustCompile(`(?i)\bSELECT\b`)
)

type Validator struct{}

func (Validator) ValidateSecurity(sqlText string) Outcome {
	problems := make([]string, 0, 2)

	upper := strings.ToUpper(sqlText)
	if strings.TrimSpace(sqlText) == "" {
		problems = append(problems, "Empty SQL query")
	}
	if !strings.HasPrefix(strings.TrimSpace(upper), "SELECT") {
		problems = append(problems, "Only SELECT queries are allowed")
	}
	for _, keyword := range blockedKeywords {
		if strings.Contains(upper, keyword) {
			problems = append(problems, "Operation not allowed: "+keyword)
		}
	}
	statements := strings.Split(sqlText, ";")
	if len(statements) > 2 || (len(statements) == 2 && strings.TrimSpace(statements[1]) != "") {
		problems = append(problems, "Multiple queries are not allowed")
	}

	if len(problems) > 0 {
		return Outcome{Stage: StageSecurity, Reason: strings.Join(problems, "; ")}
	}
	return Outcome{Stage: StageSecurity, Passed: true}
}

func (Validator) ValidateSyntax(sqlText string) Outcome {
	if !strings.Contains(strings.ToUpper(sqlText), "FROM") {
		return Outcome{Stage: StageSyntax, Reason: "Query incomplete: missing FROM clause"}
	}
	return Outcome{Stage: StageSyntax, Passed: true}
}

func (Validator) Sanitize(sqlText string) string {
	cleaned := strings.TrimSpace(whitespaceRuns.ReplaceAllString(sqlText, " "))
	if loc := selectKeyword.FindStringIndex(cleaned); loc != nil {
		cleaned = cleaned[loc[0]:]
	}
	if !strings.HasSuffix(cleaned, ";") {
		cleaned += ";"
	}
	return cleaned
}
