package summarize

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleText = "Machine learning models require careful evaluation. " +
	"It is important to validate data pipelines before training! Short one. " +
	"Teams should monitor drift in production systems? " +
	"Another plain sentence without markers here."

func TestHeuristicSummarize(t *testing.T) {
	res, err := Heuristic{}.Summarize(context.Background(), sampleText, "ML notes")
	require.NoError(t, err)

	assert.Equal(t, "Machine learning models require careful evaluation. "+
		"It is important to validate data pipelines before training. "+
		"Teams should monitor drift in production systems.", res.Summary)

	assert.Equal(t, []string{
		"It is important to validate data pipelines before training",
		"Teams should monitor drift in production systems",
		"Machine learning models require careful evaluation",
		"Another plain sentence without markers here",
	}, res.Points)

	assert.Equal(t, []string{
		"machine", "learning", "models", "require",
		"careful", "evaluation", "important", "validate",
	}, res.Keywords)
}

func TestHeuristicCapsPointsAtSeven(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 10; i++ {
		b.WriteString("This is a critical requirement for rollout. ")
	}
	res, err := Heuristic{}.Summarize(context.Background(), b.String(), "")
	require.NoError(t, err)
	assert.Len(t, res.Points, 7)
}

func TestHeuristicTemplatedSummaryWhenNoSentencesQualify(t *testing.T) {
	res, err := Heuristic{}.Summarize(context.Background(), "Too short. Tiny!", "")
	require.NoError(t, err)
	assert.Equal(t, "This document contains 2 sentences and 3 words.", res.Summary)
	assert.Equal(t, []string{res.Summary}, res.Points)
	assert.Equal(t, []string{"short", "tiny"}, res.Keywords)
}

func TestHeuristicNeverReturnsEmptyFields(t *testing.T) {
	inputs := []string{
		"a an the of to",
		"!!!???...",
		"1234567890",
		strings.Repeat("word ", 50),
	}
	for _, in := range inputs {
		res, err := Heuristic{}.Summarize(context.Background(), in, "")
		require.NoError(t, err)
		assert.NotEmpty(t, res.Summary, in)
		assert.NotEmpty(t, res.Points, in)
		assert.NotEmpty(t, res.Keywords, in)
	}

	res, _ := Heuristic{}.Summarize(context.Background(), "a an the of to", "")
	assert.Equal(t, DefaultKeywords, res.Keywords)
}

func TestTopKeywordsFrequencyThenFirstOccurrence(t *testing.T) {
	text := "Database tuning: database index, index INDEX query planner."
	assert.Equal(t, []string{"index", "database", "tuning"}, TopKeywords(text, 3))
	assert.Equal(t, TopKeywords(text, 5), TopKeywords(text, 5))
}

func TestTokenizeDropsStopWordsAndShortTokens(t *testing.T) {
	assert.Equal(t, []string{"kubernetes", "cluster", "nodes"},
		Tokenize("The Kubernetes cluster has about ten nodes, and that is ok."))
}

func TestHasContent(t *testing.T) {
	assert.False(t, HasContent("   short   "))
	assert.True(t, HasContent("ten chars!"))
}
