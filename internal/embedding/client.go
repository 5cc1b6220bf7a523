package embedding

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ErrDimensionMismatch means the model returned a vector of a different
// length than the similarity index was created with. That is a deployment
// configuration fault, not a per-request failure.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Embedder converts summary text into a fixed-length vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Client generates embeddings via the OpenAI embeddings API
type Client struct {
	client     *openai.Client
	model      string
	dimensions int
	logger     *zap.Logger
}

// NewClient creates an embedding client. dimensions must match the vector
// column of the similarity index.
func NewClient(client *openai.Client, model string, dimensions int, logger *zap.Logger) *Client {
	return &Client{
		client:     client,
		model:      model,
		dimensions: dimensions,
		logger:     logger,
	}
}

// Embed returns the embedding vector for the given text
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model:      openai.EmbeddingModel(c.model),
		Input:      []string{text},
		Dimensions: c.dimensions,
	})
	if err != nil {
		c.logger.Error("Embedding API call failed", zap.Error(err))
		return nil, fmt.Errorf("embedding call failed: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	vec := resp.Data[0].Embedding
	if len(vec) != c.dimensions {
		return nil, fmt.Errorf("%w: got %d, index expects %d",
			ErrDimensionMismatch, len(vec), c.dimensions)
	}

	return vec, nil
}
