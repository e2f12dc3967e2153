// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reading

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAICompleter implements [Completer] against an OpenAI-compatible
// chat completions endpoint.
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

// NewOpenAICompleter creates a completer. baseURL includes the version
// segment, e.g. "https://api.openai.com/v1". A nil httpClient uses the
// library default.
func NewOpenAICompleter(apiKey, baseURL, model string, httpClient *http.Client) *OpenAICompleter {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if httpClient != nil {
		config.HTTPClient = httpClient
	}

	return &OpenAICompleter{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Complete sends one system and one user message and returns the content
// of the first choice.
func (c *OpenAICompleter) Complete(ctx context.Context, request CompletionRequest) (string, error) {
	response, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: request.System},
			{Role: openai.ChatMessageRoleUser, Content: request.User},
		},
		MaxTokens:   request.MaxTokens,
		Temperature: request.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("completion_request_failed: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	return response.Choices[0].Message.Content, nil
}
