package extraction

import (
	"context"
	"encoding/base64"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Client extracts bill data from page images using a multimodal model
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// NewClient creates an extraction client
func NewClient(client *openai.Client, model string, temperature float32, maxTokens int, logger *zap.Logger) *Client {
	return &Client{
		client:      client,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logger,
	}
}

// Extract sends the pages to the vision model and decodes the structured
// response. Page order is preserved; an answer with zero line items is
// reported as ErrNothingExtracted.
func (c *Client) Extract(ctx context.Context, pages []Page) (*Result, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	contentParts := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: extractionPrompt,
		},
	}

	for i, page := range pages {
		encoded := base64.StdEncoding.EncodeToString(page.Data)
		contentParts = append(contentParts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    fmt.Sprintf("data:%s;base64,%s", page.MIMEType, encoded),
				Detail: openai.ImageURLDetailHigh,
			},
		})
		c.logger.Debug("Added page to extraction request",
			zap.Int("page", i+1),
			zap.Int("size_bytes", len(page.Data)))
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: contentParts,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		c.logger.Error("Extraction API call failed", zap.Error(err))
		return nil, fmt.Errorf("extraction call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from extraction model")
	}

	content := resp.Choices[0].Message.Content
	result, err := decodeResult([]byte(content))
	if err != nil {
		c.logger.Error("Failed to decode extraction response",
			zap.Error(err),
			zap.String("content", content))
		return nil, err
	}

	if len(result.LineItems) == 0 {
		c.logger.Warn("Oracle returned no line items",
			zap.String("vendor", result.VendorName))
		return nil, ErrNothingExtracted
	}

	c.logger.Info("Bill data extracted",
		zap.String("vendor", result.VendorName),
		zap.String("bill_number", result.BillNumber),
		zap.String("total", result.TotalAmount),
		zap.Int("line_items", len(result.LineItems)))

	return result, nil
}
