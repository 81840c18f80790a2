package llm

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/summarize_system.txt
	summarizeSystem string
	//go:embed prompts/summarize_user.txt
	summarizeUser string
)

// SummarizePrompt fills the summarization template with a document title and text.
func SummarizePrompt(title, text string) Prompt {
	if strings.TrimSpace(title) == "" {
		title = "Untitled"
	}
	replacer := strings.NewReplacer(
		"{{TITLE}}", title,
		"{{TEXT}}", text,
	)
	return Prompt{
		System: strings.TrimSpace(summarizeSystem),
		User:   replacer.Replace(summarizeUser),
	}
}
