// Package summarize produces {summary, points, keywords} for document text.
//
// Two implementations exist: Heuristic, which is deterministic and never fails,
// and LLM, which asks a provider for strict JSON and falls back to a wrapped
// Summarizer on any error. The choice is made once at startup.
package summarize

import (
	"context"
	"strings"
)

// MinContentLength is the shortest trimmed text worth summarizing.
const MinContentLength = 10

// Result is the structured summary. Fields are never empty.
type Result struct {
	Summary  string   `json:"summary"`
	Points   []string `json:"points"`
	Keywords []string `json:"keywords"`
}

// Summarizer turns document text into a Result.
type Summarizer interface {
	Summarize(ctx context.Context, text, title string) (Result, error)
	Name() string
}

// HasContent reports whether text is long enough to summarize.
func HasContent(text string) bool {
	return len([]rune(strings.TrimSpace(text))) >= MinContentLength
}
