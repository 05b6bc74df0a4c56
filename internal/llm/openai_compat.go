package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAICompatClient implements Client for chat-completion APIs that follow the
// OpenAI wire format (Perplexity, Groq).
type OpenAICompatClient struct {
	client *openai.Client
	config *Config

	// newBackOff builds the retry schedule for one Complete call
	newBackOff func() backoff.BackOff
}

// NewOpenAICompatClient creates a client for an OpenAI-compatible provider
func NewOpenAICompatClient(config *Config, apiKey string) (*OpenAICompatClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil || config.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = config.BaseURL
	clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}

	return &OpenAICompatClient{
		client:     openai.NewClientWithConfig(clientConfig),
		config:     config,
		newBackOff: defaultBackOff,
	}, nil
}

// defaultBackOff waits roughly 1s, 2s, 4s between attempts
func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.Multiplier = 2
	b.MaxElapsedTime = 0
	return b
}

// Complete sends a chat completion request and returns the first choice.
// Rate-limited and server-side failures are retried up to Config.MaxRetries times.
func (c *OpenAICompatClient) Complete(ctx context.Context, req Request) (string, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = c.config.GetModel(req.Tier)
	}
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", req.Tier)
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       modelName,
		Temperature: req.temperature(),
		MaxTokens:   4096,
	}
	if req.SystemPrompt != "" {
		chatReq.Messages = append(chatReq.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt})
	}
	chatReq.Messages = append(chatReq.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt})
	// Perplexity only accepts json_schema formats, so JSON mode is Groq-only
	if req.JSON && c.config.Provider == ProviderGroq {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	retries := c.config.MaxRetries
	if retries < 0 {
		retries = 0
	}
	schedule := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(retries)), ctx)

	var text string
	err := backoff.Retry(func() error {
		out, err := c.send(ctx, chatReq)
		if err != nil {
			var apiErr *APICallError
			if errors.As(err, &apiErr) && apiErr.Retryable() {
				return err
			}
			return backoff.Permanent(err)
		}
		text = out
		return nil
	}, schedule)
	if err != nil {
		var apiErr *APICallError
		if !errors.As(err, &apiErr) {
			err = &APICallError{Provider: c.config.Provider, Model: modelName, Cause: err}
		}
		return "", err
	}
	return text, nil
}

func (c *OpenAICompatClient) send(ctx context.Context, chatReq openai.ChatCompletionRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", c.wrapError(chatReq.Model, err)
	}
	if len(resp.Choices) == 0 {
		return "", &APICallError{Provider: c.config.Provider, Model: chatReq.Model, Message: "no completion returned"}
	}
	return resp.Choices[0].Message.Content, nil
}

// wrapError keeps the HTTP status of provider errors so retries can be decided
func (c *OpenAICompatClient) wrapError(modelName string, err error) error {
	callErr := &APICallError{Provider: c.config.Provider, Model: modelName, Cause: err}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		callErr.StatusCode = apiErr.HTTPStatusCode
		callErr.Message = apiErr.Message
		callErr.Cause = nil
	case errors.As(err, &reqErr):
		callErr.StatusCode = reqErr.HTTPStatusCode
		callErr.Message = "request failed"
	default:
		callErr.Message = "request failed"
	}
	return callErr
}

// GetModel returns the model name for a tier
func (c *OpenAICompatClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the HTTP client holds no per-client resources
func (c *OpenAICompatClient) Close() error {
	return nil
}
