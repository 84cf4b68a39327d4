package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// EmbeddingsClient generates text embeddings via an OpenAI-compatible API.
type EmbeddingsClient struct {
	client       *openai.Client
	model        string
	expectedSize int
}

// NewEmbeddingsClient creates a new embeddings client. All embeddings returned
// by EmbedTexts are validated against expectedSize, which must match the
// vector size of the Qdrant collections.
func NewEmbeddingsClient(apiKey, baseURL, model string, expectedSize int) *EmbeddingsClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &EmbeddingsClient{
		client:       openai.NewClientWithConfig(cfg),
		model:        model,
		expectedSize: expectedSize,
	}
}

// EmbedTexts generates embeddings for the given texts, one vector per input.
func (c *EmbeddingsClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.model),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	result := make([][]float32, len(resp.Data))
	for i, datum := range resp.Data {
		if c.expectedSize > 0 && len(datum.Embedding) != c.expectedSize {
			return nil, fmt.Errorf("embedding %d has size %d, expected %d", i, len(datum.Embedding), c.expectedSize)
		}
		result[i] = datum.Embedding
	}

	return result, nil
}
