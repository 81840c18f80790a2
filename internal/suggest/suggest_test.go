package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagsDeterministicTopFive(t *testing.T) {
	title := "Postgres indexing"
	content := "Indexing strategies for postgres. Postgres planner picks indexing paths; btree indexing beats scans. Planner statistics matter for planner choices."

	first := Tags(title, content)
	assert.Equal(t, []string{"indexing", "postgres", "planner", "strategies", "picks"}, first)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Tags(title, content))
	}
}

func TestCategoryPicksHighestScore(t *testing.T) {
	got := Category("Docker deploy notes", "kubernetes pipeline with terraform", nil)
	assert.Equal(t, "DevOps", got)

	got = Category("Weekly groceries", "eggs, milk, bread", nil)
	assert.Equal(t, DefaultCategory, got)
}

func TestCategoryUsesTags(t *testing.T) {
	assert.Equal(t, "Security", Category("Notes", "things to remember", []string{"encryption", "xss"}))
}

func TestCategoryAlwaysKnownLabel(t *testing.T) {
	labels := map[string]bool{}
	for _, l := range Labels() {
		labels[l] = true
	}
	inputs := []string{"", "react frontend", "sql query", "python algorithm", "flutter mobile app", "pandas dataset"}
	for _, in := range inputs {
		assert.True(t, labels[Category(in, in, nil)], in)
	}
}

func TestSuggestNeverNilTags(t *testing.T) {
	res := Suggest("", "a an the", nil)
	assert.NotNil(t, res.Tags)
	assert.Equal(t, DefaultCategory, res.Category)
}
