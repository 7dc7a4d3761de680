// Package gemini implements extract.Extractor using Google Gemini.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/avelichko/receipty/internal/extract"
)

// Client wraps a Gemini generative model for multi-image extraction.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *slog.Logger
}

// NewClient connects to Gemini. modelName defaults to gemini-2.5-pro.
func NewClient(ctx context.Context, apiKey, modelName string, maxTokens int, logger *slog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-pro"
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	if maxTokens > 0 {
		model.SetMaxOutputTokens(int32(maxTokens))
	}

	return &Client{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// Extract sends all photos plus the prompt in a single request and joins the
// text parts of the first candidate.
func (c *Client) Extract(ctx context.Context, photos [][]byte, prompt string) (string, error) {
	start := time.Now()

	// genai.ImageData expects the format suffix (e.g. "jpeg"), not a MIME type.
	parts := make([]genai.Part, 0, len(photos)+1)
	for _, photo := range photos {
		parts = append(parts, genai.ImageData(extract.DetectImageFormat(photo), photo))
	}
	parts = append(parts, genai.Text(prompt))

	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		c.logger.Error("llm.extract.http_error",
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		c.logger.Error("llm.extract.no_candidates",
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("no response from gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	out := strings.TrimSpace(sb.String())
	c.logger.Info("llm.extract.ok",
		"photos", len(photos),
		"content_len", len(out),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// Close releases the underlying API connection.
func (c *Client) Close() error {
	return c.client.Close()
}
