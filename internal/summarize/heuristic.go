package summarize

import (
	"context"
	"fmt"
	"strings"
)

const (
	minSentenceLength = 20
	summarySentences  = 3
	maxPoints         = 7
	minPoints         = 3
	maxKeywords       = 8
)

var importanceWords = []string{
	"important", "key", "must", "should", "required",
	"essential", "critical", "main", "primary",
}

// Heuristic summarizes without any external call.
type Heuristic struct{}

// NewHeuristic returns the deterministic summarizer.
func NewHeuristic() Heuristic { return Heuristic{} }

// Name identifies the implementation in logs.
func (Heuristic) Name() string { return "heuristic" }

// Summarize never returns an error.
func (Heuristic) Summarize(_ context.Context, text, _ string) (Result, error) {
	sentences := Sentences(text)

	summary := summaryFrom(sentences, text)
	points := pointsFrom(sentences)
	if len(points) == 0 {
		points = []string{summary}
	}

	keywords := TopKeywords(text, maxKeywords)
	if len(keywords) == 0 {
		keywords = append([]string(nil), DefaultKeywords...)
	}

	return Result{Summary: summary, Points: points, Keywords: keywords}, nil
}

// Sentences splits on . ! ? and keeps trimmed fragments of at least 20 characters.
func Sentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Join(strings.Fields(p), " ")
		if len([]rune(p)) >= minSentenceLength {
			out = append(out, p)
		}
	}
	return out
}

func summaryFrom(sentences []string, text string) string {
	if len(sentences) == 0 {
		fragments := strings.FieldsFunc(text, func(r rune) bool {
			return r == '.' || r == '!' || r == '?'
		})
		count := 0
		for _, f := range fragments {
			if strings.TrimSpace(f) != "" {
				count++
			}
		}
		return fmt.Sprintf("This document contains %d sentences and %d words.", count, len(strings.Fields(text)))
	}

	n := summarySentences
	if n > len(sentences) {
		n = len(sentences)
	}
	return strings.Join(sentences[:n], ". ") + "."
}

func pointsFrom(sentences []string) []string {
	points := make([]string, 0, maxPoints)
	picked := make(map[int]bool, maxPoints)
	for i, s := range sentences {
		if len(points) == maxPoints {
			break
		}
		if mentionsImportance(s) {
			points = append(points, s)
			picked[i] = true
		}
	}

	if len(points) >= minPoints {
		return points
	}
	for i, s := range sentences {
		if len(points) == maxPoints {
			break
		}
		if !picked[i] {
			points = append(points, s)
		}
	}
	return points
}

func mentionsImportance(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, w := range importanceWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

var _ Summarizer = Heuristic{}
