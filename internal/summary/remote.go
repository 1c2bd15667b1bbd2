package summary

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// RemoteClient wraps an OpenAI-compatible chat-completions endpoint used for
// comment summarization.
type RemoteClient struct {
	api   *openai.Client
	model string
}

// NewRemote creates a remote summarization client.
func NewRemote(baseURL, apiKey, modelName string) *RemoteClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &RemoteClient{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
	}
}

const summaryInstruction = "You summarize anonymous student feedback about a classroom session. " +
	"Reply with a single short sentence capturing the overall sentiment and the main recurring points. " +
	"Do not list individual comments and do not add preamble."

// Summarize sends the joined comment text to the model and returns its
// one-sentence summary. Any failure (timeout, non-2xx status, empty
// response) is returned as an error; the caller selects a local fallback.
func (c *RemoteClient) Summarize(ctx context.Context, commentText string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summaryInstruction},
			{Role: openai.ChatMessageRoleUser, Content: commentText},
		},
		MaxTokens:   80,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("summarization API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
