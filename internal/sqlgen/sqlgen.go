// Package sqlgen defines the contract for turning a natural language
// question into one SQL statement.
package sqlgen

import (
	"context"
	"fmt"
	"strings"
)

// ErrorPrefix marks a generator reply that carries a failure instead of SQL
const ErrorPrefix = "-- ERROR:"

// Generator produces SQL for question given the schema context. The reply
// may be wrapped in markdown fences or be an ErrorPrefix line.
type Generator interface {
	Generate(ctx context.Context, question, schemaContext string) (string, error)
}

// Func adapts a function to Generator
type Func func(ctx context.Context, question, schemaContext string) (string, error)

func (f Func) Generate(ctx context.Context, question, schemaContext string) (string, error) {
	return f(ctx, question, schemaContext)
}

// GenerationError is a failure reported in-band by the generator
type GenerationError struct {
	Reason string
}

func (e *GenerationError) Error() string {
	return "sql generation failed: " + e.Reason
}

// Clean strips markdown code fences and surrounding space
func Clean(raw string) string {
	s := strings.ReplaceAll(raw, "```sql", "")
	s = strings.ReplaceAll(s, "```SQL", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// Resolve cleans a generator reply and turns an ErrorPrefix reply into a
// *GenerationError
func Resolve(raw string) (string, error) {
	sql := Clean(raw)
	if strings.HasPrefix(sql, ErrorPrefix) {
		return "", &GenerationError{Reason: strings.TrimSpace(strings.TrimPrefix(sql, ErrorPrefix))}
	}
	if sql == "" {
		return "", &GenerationError{Reason: "empty reply"}
	}
	return sql, nil
}

// Generate asks g for SQL and resolves the reply
func Generate(ctx context.Context, g Generator, question, schemaContext string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("question is empty")
	}
	raw, err := g.Generate(ctx, question, schemaContext)
	if err != nil {
		return "", err
	}
	return Resolve(raw)
}

// BuildPrompt lays out the schema, instructions and question the way
// generators expect them
func BuildPrompt(schemaContext, systemPrompt, question string) string {
	var b strings.Builder
	b.WriteString("Schema:\n")
	b.WriteString(schemaContext)
	b.WriteString("\n\nSystem instructions:\n")
	b.WriteString(systemPrompt)
	b.WriteString("\n\nQuestion:\n")
	b.WriteString(question)
	b.WriteString("\n\nReturn only the SQL statement (no explanation). Make sure SQL is syntactically correct.\n")
	return b.String()
}

// DefaultSystemPrompt is the instruction block passed to generators
const DefaultSystemPrompt = `Given a natural language question and a database schema, generate a single SQL statement that retrieves or modifies data to answer it.
Use UPPER() on both sides of string comparisons.
If the data source is a spreadsheet, still return standard SQL (SELECT/INSERT/UPDATE/DELETE) using sheet names as table names.
Return only the final SQL statement with no prose, explanation or markdown.`
