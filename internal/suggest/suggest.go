// Package suggest derives tags and a category for new content from its text.
package suggest

import (
	"strings"

	"workspace-backend/internal/summarize"
)

const (
	// MaxTags bounds the number of suggested tags.
	MaxTags = 5
	// DefaultCategory is used when no dictionary keyword matches.
	DefaultCategory = "General"
)

type category struct {
	label    string
	keywords []string
}

// categories is scanned in order; earlier labels win ties.
var categories = []category{
	{"AI & ML", []string{"machine learning", "neural", "deep learning", "model", "training", "ai", "llm", "nlp", "artificial intelligence"}},
	{"Web Development", []string{"html", "css", "javascript", "react", "frontend", "backend", "http", "api", "browser", "web"}},
	{"Database", []string{"sql", "database", "query", "index", "postgres", "mongodb", "schema", "table", "transaction"}},
	{"DevOps", []string{"docker", "kubernetes", "deploy", "pipeline", "ci/cd", "terraform", "infrastructure", "monitoring"}},
	{"Mobile Development", []string{"android", "ios", "mobile", "swift", "kotlin", "flutter", "react native"}},
	{"Security", []string{"security", "encryption", "vulnerability", "authentication", "authorization", "xss", "csrf", "password"}},
	{"Data Science", []string{"data", "analysis", "statistics", "visualization", "pandas", "dataset", "regression"}},
	{"Programming", []string{"algorithm", "function", "code", "programming", "variable", "compiler", "debug", "golang", "python"}},
}

// Labels returns every category label Category can produce, DefaultCategory last.
func Labels() []string {
	out := make([]string, 0, len(categories)+1)
	for _, c := range categories {
		out = append(out, c.label)
	}
	return append(out, DefaultCategory)
}

// Tags returns the top keywords of title and content, most frequent first.
func Tags(title, content string) []string {
	return summarize.TopKeywords(title+" "+content, MaxTags)
}

// Category scores every label by substring hits in title, content and tags.
func Category(title, content string, tags []string) string {
	haystack := strings.ToLower(title + " " + content + " " + strings.Join(tags, " "))

	best, bestScore := DefaultCategory, 0
	for _, c := range categories {
		score := 0
		for _, kw := range c.keywords {
			if strings.Contains(haystack, kw) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = c.label, score
		}
	}
	return best
}

// Result is the payload of a suggestion request.
type Result struct {
	Tags     []string `json:"suggested_tags"`
	Category string   `json:"suggested_category"`
}

// Suggest combines Tags and Category.
func Suggest(title, content string, existingTags []string) Result {
	tags := Tags(title, content)
	if tags == nil {
		tags = []string{}
	}
	return Result{Tags: tags, Category: Category(title, content, existingTags)}
}
