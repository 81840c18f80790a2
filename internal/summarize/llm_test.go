package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspace-backend/internal/llm"
)

type fakeClient struct {
	out    string
	err    error
	prompt llm.Prompt
}

func (f *fakeClient) Complete(_ context.Context, p llm.Prompt) (string, error) {
	f.prompt = p
	return f.out, f.err
}

func TestLLMUsesProviderResult(t *testing.T) {
	client := &fakeClient{out: `{"summary":" Plan for Q3. ","points":["Ship search"," "],"keywords":["search","roadmap"]}`}
	s := NewLLM(client, nil)

	res, err := s.Summarize(context.Background(), sampleText, "Roadmap")
	require.NoError(t, err)
	assert.Equal(t, Result{
		Summary:  "Plan for Q3.",
		Points:   []string{"Ship search"},
		Keywords: []string{"search", "roadmap"},
	}, res)
	assert.Contains(t, client.prompt.User, "Title: Roadmap")
}

func TestLLMFallsBackOnError(t *testing.T) {
	s := NewLLM(&fakeClient{err: errors.New("provider down")}, Heuristic{})
	want, _ := Heuristic{}.Summarize(context.Background(), sampleText, "")

	res, err := s.Summarize(context.Background(), sampleText, "")
	require.NoError(t, err)
	assert.Equal(t, want, res)
}

func TestLLMFallsBackOnBadJSON(t *testing.T) {
	for _, out := range []string{"not json", `{"summary":""}`, `["a"]`} {
		s := NewLLM(&fakeClient{out: out}, nil)
		res, err := s.Summarize(context.Background(), sampleText, "")
		require.NoError(t, err, out)
		assert.True(t, strings.HasPrefix(res.Summary, "Machine learning models"), out)
	}
}

func TestLLMBackfillsEmptyLists(t *testing.T) {
	s := NewLLM(&fakeClient{out: `{"summary":"Fine.","points":[],"keywords":[]}`}, nil)
	res, err := s.Summarize(context.Background(), sampleText, "")
	require.NoError(t, err)
	assert.Equal(t, "Fine.", res.Summary)
	assert.NotEmpty(t, res.Points)
	assert.NotEmpty(t, res.Keywords)
}

func TestLLMTruncatesInput(t *testing.T) {
	client := &fakeClient{out: `{"summary":"ok","points":["a"],"keywords":["b"]}`}
	long := strings.Repeat("x", MaxLLMInput) + "TAIL"
	_, err := NewLLM(client, nil).Summarize(context.Background(), long, "t")
	require.NoError(t, err)
	assert.Contains(t, client.prompt.User, strings.Repeat("x", MaxLLMInput))
	assert.NotContains(t, client.prompt.User, "TAIL")
}

func TestParseResultStripsFence(t *testing.T) {
	res, err := ParseResult("```json\n{\"summary\":\"s\",\"points\":[\"p\"],\"keywords\":[\"k\"]}\n```")
	require.NoError(t, err)
	assert.Equal(t, "s", res.Summary)
}

func TestTruncateCountsRunes(t *testing.T) {
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "abc", Truncate("abc", 10))
}
