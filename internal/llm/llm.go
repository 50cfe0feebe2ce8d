package llm

import "context"

// Client abstracts LLM providers for status-update analysis.
type Client interface {
	AnalyzeUpdate(ctx context.Context, input AnalyzeInput) (string, error)
}

// AnalyzeInput captures the inputs for one analysis call.
type AnalyzeInput struct {
	SystemPrompt string
	Content      string
}
