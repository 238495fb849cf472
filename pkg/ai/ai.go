package ai

import (
	"context"
)

// GenerateOptions holds configuration for AI generation requests.
type GenerateOptions struct {
	Model         string   // Model identifier to use for generation
	SystemPrompts []string // System prompts prepended to the request
	Temperature   float64  // Sampling temperature (0.0-2.0)
}

// GenerateOption is a functional option for configuring AI generation requests.
type GenerateOption func(*GenerateOptions)

// WithModel returns a GenerateOption that sets the model to use for generation.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithSystemPrompts returns a GenerateOption that sets the system prompts
// to prepend to the generation request.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = prompts
	}
}

// WithTemperature returns a GenerateOption that sets the sampling temperature.
// Lower values (e.g., 0.0) make outputs more focused and deterministic; SQL
// generation runs at 0, extraction near 0.1.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// ModelMetrics contains performance metrics from AI model operations.
type ModelMetrics struct {
	InputTokens  int   `json:"input_tokens"`
	OutputTokens int   `json:"output_tokens"`
	TotalTokens  int   `json:"total_tokens"`
	DurationMs   int64 `json:"duration_ms"`
}

// Client defines the interface for the text-completion and embedding
// capabilities used by the graph and SQL engines. Implementations are
// remote calls and may be slow or fail; callers treat them as the sole
// suspension points of a request.
type Client interface {
	// Complete sends a single-turn prompt and returns the generated text.
	Complete(
		ctx context.Context,
		prompt string,
		opts ...GenerateOption,
	) (string, error)

	// CompleteWithFormat sends a prompt and unmarshals the structured JSON
	// response into out, using a JSON schema derived from out's type.
	CompleteWithFormat(
		ctx context.Context,
		name string,
		description string,
		prompt string,
		out any,
		opts ...GenerateOption,
	) error

	// Embed computes an embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch computes embeddings for multiple texts in one request.
	// The result preserves input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
