package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"workspace-backend/internal/llm"
	"workspace-backend/internal/shared/metrics"
	"workspace-backend/internal/shared/telemetry"
)

// MaxLLMInput bounds the characters sent to the provider.
const MaxLLMInput = 8000

// LLM asks a provider for a JSON summary and delegates to fallback when the call
// or the parse fails.
type LLM struct {
	client   llm.Client
	fallback Summarizer
}

// NewLLM wraps fallback. A nil fallback uses Heuristic.
func NewLLM(client llm.Client, fallback Summarizer) *LLM {
	if fallback == nil {
		fallback = Heuristic{}
	}
	return &LLM{client: client, fallback: fallback}
}

// Name identifies the implementation in logs.
func (s *LLM) Name() string { return "llm" }

// Summarize only returns an error if the fallback does.
func (s *LLM) Summarize(ctx context.Context, text, title string) (Result, error) {
	res, err := s.complete(ctx, text, title)
	if err == nil {
		return s.backfill(ctx, res, text, title)
	}

	metrics.IncSummarizeFallback()
	telemetry.Warn("summarize.llm_fallback", map[string]any{
		"title": title,
		"error": err,
	})
	return s.fallback.Summarize(ctx, text, title)
}

func (s *LLM) complete(ctx context.Context, text, title string) (Result, error) {
	raw, err := s.client.Complete(ctx, llm.SummarizePrompt(title, Truncate(text, MaxLLMInput)))
	if err != nil {
		return Result{}, err
	}
	return ParseResult(raw)
}

// backfill fills empty list fields from the fallback so callers never see them empty.
func (s *LLM) backfill(ctx context.Context, res Result, text, title string) (Result, error) {
	if len(res.Points) > 0 && len(res.Keywords) > 0 {
		return res, nil
	}
	fb, err := s.fallback.Summarize(ctx, text, title)
	if err != nil {
		return Result{}, err
	}
	if len(res.Points) == 0 {
		res.Points = fb.Points
	}
	if len(res.Keywords) == 0 {
		res.Keywords = fb.Keywords
	}
	return res, nil
}

var errEmptySummary = errors.New("llm response missing summary")

// ParseResult decodes a provider response, tolerating a markdown code fence.
func ParseResult(raw string) (Result, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	}

	var res Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return Result{}, fmt.Errorf("decode llm summary: %w", err)
	}
	res.Summary = strings.TrimSpace(res.Summary)
	if res.Summary == "" {
		return Result{}, errEmptySummary
	}
	res.Points = compact(res.Points)
	res.Keywords = compact(res.Keywords)
	return res, nil
}

// Truncate returns at most n characters of text.
func Truncate(text string, n int) string {
	if len(text) <= n {
		return text
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

var _ Summarizer = (*LLM)(nil)
