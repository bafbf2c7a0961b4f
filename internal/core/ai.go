package core

import "context"

type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// TextExtractor turns a file on disk into plain text. Implementations never
// fail: unsupported types and parser errors come back as marker text so the
// pipeline downstream always has something to work with.
type TextExtractor interface {
	Extract(path string, fileType string) string
}
