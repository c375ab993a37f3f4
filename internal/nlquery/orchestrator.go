package nlquery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/insightsales/insightsales/internal/llm"
	"github.com/insightsales/insightsales/internal/sqlexec"
	"github.com/insightsales/insightsales/internal/sqlguard"
)

// Validator screens one candidate SQL string and normalizes accepted ones.
type Validator interface {
	ValidateSecurity(sqlText string) sqlguard.Outcome
	ValidateSyntax(sqlText string) sqlguard.Outcome
	Sanitize(sqlText string) string
}

// Executor runs a sanitized statement against the relational store. It
// reports failures as outcome values, never as errors.
type Executor interface {
	Execute(ctx context.Context, sqlText string, maxRows int) sqlexec.Outcome
}

// Attempt records one generate -> validate -> execute cycle. Each stage
// fills its own field exactly once; an attempt is never modified after it
// has been appended to the run history.
type Attempt struct {
	Index      int
	Candidate  string
	Sanitized  string
	Validation *sqlguard.Outcome
	Execution  *sqlexec.Outcome
	Failure    string
}

// Outcome is the terminal result of a bounded retry run, derived by folding
// over the attempt history.
type Outcome struct {
	Question     string
	SQL          string
	Columns      []string
	Rows         []map[string]any
	Elapsed      time.Duration
	AttemptsUsed int
	Success      bool
	ErrorMessage string
	Attempts     []Attempt
}

type Orchestrator struct {
	Generator  llm.Generator
	Validator  Validator
	Executor   Executor
	MaxRetries int
	MaxRows    int
	Logger     *slog.Logger
}

const (
	defaultMaxRetries = 3
	defaultMaxRows    = 1000
)

// Run drives the generate -> validate -> execute -> repair loop for one
// question. Every failure kind (generation, security, syntax, execution) is
// handled as a repair trigger; the loop halts at the first successful
// execution or after MaxRetries attempts.
func (o *Orchestrator) Run(ctx context.Context, question string) Outcome {
	maxRetries := o.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	maxRows := o.MaxRows
	if maxRows <= 0 {
		maxRows = defaultMaxRows
	}

	conversation := []llm.Message{{Role: llm.RoleUser, Content: question}}
	attempts := make([]Attempt, 0, maxRetries)

	for {
		attempt := o.runAttempt(ctx, len(attempts), conversation, maxRows)
		attempts = append(attempts, attempt)

		if attempt.Execution != nil && attempt.Execution.Success {
			break
		}
		if o.Logger != nil {
			o.Logger.WarnContext(ctx, "query attempt failed",
				slog.Int("attempt", attempt.Index),
				slog.String("error", attempt.Failure),
			)
		}
		if len(attempts) >= maxRetries {
			break
		}
		// A generation failure leaves no SQL to correct, so the
		// conversation is carried forward unchanged.
		if attempt.Candidate != "" {
			conversation = append(conversation,
				llm.Message{Role: llm.RoleAssistant, Content: attempt.Candidate},
				llm.Message{Role: llm.RoleUser, Content: repairInstruction(attempt.Failure)},
			)
		}
	}

	return foldOutcome(question, attempts)
}

func (o *Orchestrator) runAttempt(ctx context.Context, index int, conversation []llm.Message, maxRows int) Attempt {
	attempt := Attempt{Index: index}

	candidate, err := o.Generator.Generate(ctx, conversation)
	if err != nil {
		attempt.Failure = "SQL generation failed: " + err.Error()
		return attempt
	}
	attempt.Candidate = candidate

	security := o.Validator.ValidateSecurity(candidate)
	if !security.Passed {
		attempt.Validation = &security
		attempt.Failure = "Security validation failed: " + security.Reason
		return attempt
	}
	syntax := o.Validator.ValidateSyntax(candidate)
	attempt.Validation = &syntax
	if !syntax.Passed {
		attempt.Failure = "Syntax validation failed: " + syntax.Reason
		return attempt
	}

	attempt.Sanitized = o.Validator.Sanitize(candidate)
	execution := o.Executor.Execute(ctx, attempt.Sanitized, maxRows)
	attempt.Execution = &execution
	if !execution.Success {
		attempt.Failure = execution.Err
	}
	return attempt
}

func repairInstruction(reason string) string {
	return fmt.Sprintf("The above SQL is incorrect. Error: %s. Please fix it.", reason)
}

// foldOutcome derives the terminal outcome from the attempt history. On
// success the executed statement and its result carry over; on exhaustion
// the outcome reports the last failure and the most recent candidate, with
// no rows and zero elapsed time.
func foldOutcome(question string, attempts []Attempt) Outcome {
	outcome := Outcome{Question: question, Attempts: attempts}
	if len(attempts) == 0 {
		return outcome
	}

	last := attempts[len(attempts)-1]
	if last.Execution != nil && last.Execution.Success {
		outcome.SQL = last.Sanitized
		outcome.Columns = last.Execution.Columns
		outcome.Rows = last.Execution.Rows
		outcome.Elapsed = last.Execution.Elapsed
		outcome.AttemptsUsed = len(attempts) - 1
		outcome.Success = true
		return outcome
	}

	outcome.AttemptsUsed = len(attempts)
	outcome.ErrorMessage = last.Failure
	for i := len(attempts) - 1; i >= 0; i-- {
		if attempts[i].Candidate != "" {
			outcome.SQL = attempts[i].Candidate
			break
		}
	}
	return outcome
}
