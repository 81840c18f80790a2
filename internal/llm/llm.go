package llm

import "context"

// Prompt is a single chat exchange sent to a provider.
type Prompt struct {
	System string
	User   string
}

// Client abstracts LLM providers that answer with a JSON object.
type Client interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}
