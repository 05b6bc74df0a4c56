package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, provider Provider, handler http.HandlerFunc) *OpenAICompatClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config, err := ConfigFor(provider)
	require.NoError(t, err)
	config.BaseURL = server.URL

	client, err := NewOpenAICompatClient(config, "test-key")
	require.NoError(t, err)
	client.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return client
}

func TestOpenAICompatClient_Complete(t *testing.T) {
	var captured openai.ChatCompletionRequest
	client := newTestClient(t, ProviderGroq, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"ok\": true}"}}]}`))
	})

	text, err := client.Complete(context.Background(), Request{
		SystemPrompt: "You are an analyst.",
		UserPrompt:   "Analyze Acme",
		Tier:         TierAdvanced,
		Temperature:  0.7,
		JSON:         true,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, text)
	assert.Equal(t, "llama-3.3-70b-versatile", captured.Model)
	assert.InDelta(t, 0.7, captured.Temperature, 1e-6)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, captured.Messages[0].Role)
	assert.Equal(t, "Analyze Acme", captured.Messages[1].Content)
	require.NotNil(t, captured.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, captured.ResponseFormat.Type)
}

func TestOpenAICompatClient_PerplexityOmitsResponseFormat(t *testing.T) {
	var captured openai.ChatCompletionRequest
	client := newTestClient(t, ProviderPerplexity, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"done"}}]}`))
	})

	_, err := client.Complete(context.Background(), Request{UserPrompt: "hi", JSON: true})

	require.NoError(t, err)
	assert.Nil(t, captured.ResponseFormat)
	assert.Equal(t, "sonar", captured.Model, "empty tier falls back to standard")
	assert.InDelta(t, float64(DefaultTemperature), float64(captured.Temperature), 1e-6)
	assert.Len(t, captured.Messages, 1)
}

func TestOpenAICompatClient_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, ProviderGroq, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`rate limited`))
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"second try"}}]}`))
	})

	text, err := client.Complete(context.Background(), Request{UserPrompt: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "second try", text)
	assert.Equal(t, int32(2), calls.Load())
}

func TestOpenAICompatClient_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, ProviderGroq, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	})

	_, err := client.Complete(context.Background(), Request{UserPrompt: "hi"})

	var apiErr *APICallError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "overloaded")
	assert.Equal(t, int32(DefaultGroqConfig().MaxRetries+1), calls.Load())
}

func TestOpenAICompatClient_AuthFailureNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, ProviderPerplexity, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid key"}}`))
	})

	_, err := client.Complete(context.Background(), Request{UserPrompt: "hi"})

	var apiErr *APICallError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, ProviderPerplexity, apiErr.Provider)
	assert.Contains(t, err.Error(), "status 401")
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenAICompatClient_EmptyChoices(t *testing.T) {
	client := newTestClient(t, ProviderGroq, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.Complete(context.Background(), Request{UserPrompt: "hi"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no completion returned")
}

func TestOpenAICompatClient_ContextTimeout(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, ProviderGroq, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Complete(ctx, Request{UserPrompt: "hi"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestNewOpenAICompatClient_Validation(t *testing.T) {
	_, err := NewOpenAICompatClient(DefaultGroqConfig(), "")
	assert.Error(t, err)

	_, err = NewOpenAICompatClient(&Config{Provider: ProviderGroq}, "key")
	assert.Error(t, err)
}

func TestNewClient_UnsupportedProvider(t *testing.T) {
	_, err := NewClient(context.Background(), &Config{Provider: "openai"}, "key")
	assert.Error(t, err)
}

func TestNewClient_OpenAICompat(t *testing.T) {
	client, err := NewClient(context.Background(), DefaultGroqConfig(), "key")
	require.NoError(t, err)
	defer client.Close()

	_, ok := client.(*OpenAICompatClient)
	assert.True(t, ok)
	assert.Equal(t, "llama-3.1-8b-instant", client.GetModel(TierLite))
}

func TestAPICallError_Retryable(t *testing.T) {
	assert.True(t, (&APICallError{StatusCode: 429}).Retryable())
	assert.True(t, (&APICallError{StatusCode: 503}).Retryable())
	assert.False(t, (&APICallError{StatusCode: 400}).Retryable())

	cause := errors.New("boom")
	err := &APICallError{Provider: ProviderGroq, Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "groq API call failed: boom", err.Error())
}
