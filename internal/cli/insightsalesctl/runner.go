package insightsalesctl

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

// maxDisplayRows caps how many rows the ask command prints in full.
const maxDisplayRows = 10

type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Stdout     io.Writer
	Stderr     io.Writer
}

func Run(ctx context.Context, args []string, defaults Options) int {
	stdout := defaults.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := defaults.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("insightsalesctl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	baseURL := fs.String("base-url", firstNonEmpty(defaults.BaseURL, "http://localhost:8080"), "InsightSales API base URL")
	apiKey := fs.String("api-key", defaults.APIKey, "API key for authenticated requests")
	limit := fs.Int("limit", 0, "Maximum history entries to fetch (history command)")
	timeout := fs.Duration("timeout", durationOr(defaults.Timeout, 2*time.Minute), "HTTP timeout (e.g. 90s)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		writeUsage(stderr)
		return 2
	}

	client := defaults.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: *timeout}
	}

	command := strings.TrimSpace(fs.Arg(0))
	method := http.MethodGet
	path := ""
	switch command {
	case "health":
		path = "/v1/health"
	case "ready":
		path = "/v1/ready"
	case "schema":
		path = "/v1/schema"
	case "history":
		path = "/v1/history"
		if *limit > 0 {
			path += "?limit=" + strconv.Itoa(*limit)
		}
	case "retention-run":
		method, path = http.MethodPost, "/v1/retention/run"
	case "ask":
		question := strings.TrimSpace(strings.Join(fs.Args()[1:], " "))
		if question == "" {
			_, _ = fmt.Fprintln(stderr, "ask requires a question, e.g.: insightsalesctl ask which seller sold the most")
			return 2
		}
		return runAsk(ctx, client, *baseURL, *apiKey, question, stdout, stderr)
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n", command)
		writeUsage(stderr)
		return 2
	}

	endpoint := strings.TrimRight(*baseURL, "/") + path
	code, responseBody, err := doRequest(ctx, client, method, endpoint, *apiKey, nil)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "request failed: %v\n", err)
		return 1
	}

	if code >= 400 {
		_, _ = fmt.Fprintf(stderr, "http %d: %s\n", code, strings.TrimSpace(string(responseBody)))
		return 1
	}

	if pretty, ok := prettyJSON(responseBody); ok {
		_, _ = fmt.Fprintln(stdout, pretty)
		return 0
	}
	if len(responseBody) > 0 {
		_, _ = fmt.Fprintln(stdout, string(responseBody))
	}
	return 0
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Question      string           `json:"question"`
	SQLQuery      string           `json:"sql_query"`
	Columns       []string         `json:"columns"`
	Results       []map[string]any `json:"results"`
	RowCount      int              `json:"row_count"`
	ExecutionTime float64          `json:"execution_time"`
	RetryCount    int              `json:"retry_count"`
	Success       bool             `json:"success"`
	ErrorMessage  string           `json:"error_message"`
}

func runAsk(ctx context.Context, client *http.Client, baseURL, apiKey, question string, stdout, stderr io.Writer) int {
	endpoint := strings.TrimRight(baseURL, "/") + "/v1/query"
	code, responseBody, err := doRequest(ctx, client, http.MethodPost, endpoint, apiKey, askRequest{Question: question})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "request failed: %v\n", err)
		return 1
	}
	if code >= 400 {
		_, _ = fmt.Fprintf(stderr, "http %d: %s\n", code, strings.TrimSpace(string(responseBody)))
		return 1
	}

	var response askResponse
	if err := json.Unmarshal(responseBody, &response); err != nil {
		_, _ = fmt.Fprintf(stderr, "decode response: %v\n", err)
		return 1
	}

	if !response.Success {
		_, _ = fmt.Fprintf(stderr, "query failed after %d attempt(s): %s\n", response.RetryCount, response.ErrorMessage)
		return 1
	}

	_, _ = fmt.Fprintf(stdout, "SQL: %s\n\n", response.SQLQuery)
	_, _ = fmt.Fprintln(stdout, formatResults(response.Columns, response.Results))
	_, _ = fmt.Fprintf(stdout, "\n%d row(s) in %.2fs, %d retr%s\n",
		response.RowCount, response.ExecutionTime, response.RetryCount, pluralRetry(response.RetryCount))
	return 0
}

// formatResults renders up to ten rows, one line per column, the way the
// service's consumers expect result sets to read.
func formatResults(columns []string, results []map[string]any) string {
	if len(results) == 0 {
		return "No results found."
	}
	if len(columns) == 0 {
		columns = make([]string, 0, len(results[0]))
		for column := range results[0] {
			columns = append(columns, column)
		}
		sort.Strings(columns)
	}

	lines := []string{fmt.Sprintf("Total results: %d\n", len(results))}
	for i, row := range results {
		if i >= maxDisplayRows {
			break
		}
		lines = append(lines, fmt.Sprintf("Result %d:", i+1))
		for _, column := range columns {
			lines = append(lines, fmt.Sprintf("  %s: %v", column, row[column]))
		}
		lines = append(lines, "")
	}
	if len(results) > maxDisplayRows {
		lines = append(lines, fmt.Sprintf("... and %d more results", len(results)-maxDisplayRows))
	}
	return strings.Join(lines, "\n")
}

func pluralRetry(count int) string {
	if count == 1 {
		return "y"
	}
	return "ies"
}

func doRequest(ctx context.Context, client *http.Client, method, url, apiKey string, requestBody any) (int, []byte, error) {
	var payload io.Reader
	if requestBody != nil {
		raw, err := json.Marshal(requestBody)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request body: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if requestBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(apiKey) != "" {
		req.Header.Set("X-API-Key", strings.TrimSpace(apiKey))
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

func prettyJSON(raw []byte) (string, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", false
	}
	var anyValue any
	if err := json.Unmarshal(raw, &anyValue); err != nil {
		return "", false
	}
	formatted, err := json.MarshalIndent(anyValue, "", "  ")
	if err != nil {
		return "", false
	}
	return string(formatted), true
}

func writeUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: insightsalesctl [flags] <command> [args]")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "commands:")
	_, _ = fmt.Fprintln(w, "  health           GET /v1/health")
	_, _ = fmt.Fprintln(w, "  ready            GET /v1/ready")
	_, _ = fmt.Fprintln(w, "  schema           GET /v1/schema")
	_, _ = fmt.Fprintln(w, "  history          GET /v1/history (use -limit to cap entries)")
	_, _ = fmt.Fprintln(w, "  retention-run    POST /v1/retention/run")
	_, _ = fmt.Fprintln(w, "  ask <question>   POST /v1/query and print the result set")
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
