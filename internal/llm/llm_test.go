package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedback-insights-go/internal/types"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"azure missing endpoint", Config{Provider: ProviderAzure, APIKey: "k", Deployment: "d", APIVersion: "v"}, "llm.endpoint"},
		{"azure missing key", Config{Provider: ProviderAzure, Endpoint: "e", Deployment: "d", APIVersion: "v"}, "llm.api_key"},
		{"azure missing deployment", Config{Provider: ProviderAzure, Endpoint: "e", APIKey: "k", APIVersion: "v"}, "llm.deployment"},
		{"azure missing version", Config{Provider: ProviderAzure, Endpoint: "e", APIKey: "k", Deployment: "d"}, "llm.api_version"},
		{"openai missing key", Config{Provider: ProviderOpenAI}, "llm.api_key"},
		{"anthropic missing key", Config{Provider: ProviderAnthropic}, "llm.api_key"},
		{"unknown", Config{Provider: "bard"}, "llm.provider"},
		{"negative max tokens", Config{Provider: ProviderMock, MaxTokens: -1}, "llm.max_tokens"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			var cfgErr *types.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}

	assert.NoError(t, Config{Provider: ProviderMock}.Validate())
	assert.NoError(t, Config{Provider: ProviderAzure, Endpoint: "e", APIKey: "k", Deployment: "d", APIVersion: "v"}.Validate())
}

func TestNew_SelectsProvider(t *testing.T) {
	c, err := New(Config{Provider: ProviderMock})
	require.NoError(t, err)
	assert.IsType(t, &Mock{}, c)

	c, err = New(Config{Provider: ProviderOpenAI, APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, c)

	c, err = New(Config{Provider: ProviderAnthropic, APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &Anthropic{}, c)

	_, err = New(Config{Provider: ProviderOpenAI})
	assert.Error(t, err)
}

func TestRetryableStatus(t *testing.T) {
	for code, want := range map[int]bool{
		400: false, 401: false, 403: false, 404: false,
		408: true, 409: true, 429: true, 500: true, 503: true,
	} {
		assert.Equal(t, want, RetryableStatus(code), "status %d", code)
	}
}

func TestWrapTransport(t *testing.T) {
	assert.ErrorIs(t, wrapTransport(context.Canceled, 0), context.Canceled)
	_, isTransport := wrapTransport(context.DeadlineExceeded, 0).(*TransportError)
	assert.False(t, isTransport)

	var te *TransportError
	require.True(t, errors.As(wrapTransport(errors.New("conn reset"), 0), &te))
	assert.True(t, te.Retryable)

	require.True(t, errors.As(wrapTransport(errors.New("denied"), 401), &te))
	assert.False(t, te.Retryable)
	assert.Equal(t, 401, te.StatusCode)
}

func TestMock_Deterministic(t *testing.T) {
	m := NewMock()
	p := Prompt{System: "sys", User: "Terrible support and slow delivery"}

	a, err := m.Send(context.Background(), p)
	require.NoError(t, err)
	b, err := m.Send(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	require.NotNil(t, a.Usage)
	assert.Positive(t, a.Usage.PromptTokens)

	var reply map[string]any
	require.NoError(t, json.Unmarshal([]byte(a.Text), &reply))
	assert.Equal(t, "Negative", reply["sentiment"])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Send(ctx, p)
	assert.ErrorIs(t, err, context.Canceled)
}

const chatCompletionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{"index": 0, "finish_reason": "stop",
    "message": {"role": "assistant", "content": "{\"sentiment\":\"Positive\",\"themes\":[]}"}}],
  "usage": {"prompt_tokens": 42, "completion_tokens": 7, "total_tokens": 49}
}`

func TestOpenAI_Send(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, chatCompletionBody)
	}))
	defer srv.Close()

	c := NewOpenAI(Config{Provider: ProviderOpenAI, APIKey: "test-key", BaseURL: srv.URL + "/"})
	out, err := c.Send(context.Background(), Prompt{System: "sys", User: "hello"})
	require.NoError(t, err)

	assert.Equal(t, `{"sentiment":"Positive","themes":[]}`, out.Text)
	require.NotNil(t, out.Usage)
	assert.Equal(t, int64(42), out.Usage.PromptTokens)
	assert.Equal(t, int64(7), out.Usage.CompletionTokens)
	assert.Equal(t, "gpt-4o-mini", gotBody["model"])
	assert.Equal(t, "json_object", gotBody["response_format"].(map[string]any)["type"])
}

func TestClients_CarryComponentLogger(t *testing.T) {
	o := NewOpenAI(Config{Provider: ProviderOpenAI, APIKey: "k"})
	require.NotNil(t, o.log)
	assert.Equal(t, "llm-openai", o.log.Data["component"])
	assert.Equal(t, defaultOpenAIModel, o.log.Data["model"])

	az := NewOpenAI(Config{Provider: ProviderAzure, APIKey: "k", Endpoint: "https://example.openai.azure.com", APIVersion: "2024-06-01", Deployment: "feedback-dep"})
	assert.Equal(t, "feedback-dep", az.log.Data["model"])

	an := NewAnthropic(Config{Provider: ProviderAnthropic, APIKey: "k"})
	require.NotNil(t, an.log)
	assert.Equal(t, "llm-anthropic", an.log.Data["component"])
	assert.Equal(t, defaultAnthropicModel, an.log.Data["model"])
}

func TestOpenAI_Azure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/openai/deployments/feedback-dep/chat/completions")
		assert.Equal(t, "2024-06-01", r.URL.Query().Get("api-version"))
		assert.Equal(t, "azure-key", r.Header.Get("Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, chatCompletionBody)
	}))
	defer srv.Close()

	c := NewOpenAI(Config{
		Provider:   ProviderAzure,
		Endpoint:   srv.URL,
		APIKey:     "azure-key",
		Deployment: "feedback-dep",
		APIVersion: "2024-06-01",
	})
	out, err := c.Send(context.Background(), Prompt{System: "sys", User: "hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Text)
}

func TestOpenAI_StatusErrors(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{http.StatusUnauthorized, false},
		{http.StatusTooManyRequests, true},
		{http.StatusBadGateway, true},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tt.status)
			_, _ = io.WriteString(w, `{"error":{"message":"nope","type":"invalid_request_error"}}`)
		}))
		c := NewOpenAI(Config{Provider: ProviderOpenAI, APIKey: "k", BaseURL: srv.URL + "/"})
		_, err := c.Send(context.Background(), Prompt{User: "x"})
		srv.Close()

		var te *TransportError
		require.True(t, errors.As(err, &te), "status %d: %v", tt.status, err)
		assert.Equal(t, tt.status, te.StatusCode)
		assert.Equal(t, tt.retryable, te.Retryable)
	}
}

func TestAnthropic_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"), r.URL.Path)
		assert.Equal(t, "anth-key", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
		  "id": "msg_1", "type": "message", "role": "assistant", "model": "claude-test",
		  "content": [{"type": "text", "text": "{\"sentiment\":\"Negative\"}"}],
		  "stop_reason": "end_turn",
		  "usage": {"input_tokens": 30, "output_tokens": 5}
		}`)
	}))
	defer srv.Close()

	c := NewAnthropic(Config{Provider: ProviderAnthropic, APIKey: "anth-key", Model: "claude-test", BaseURL: srv.URL + "/"})
	out, err := c.Send(context.Background(), Prompt{System: "sys", User: "hello"})
	require.NoError(t, err)
	assert.Equal(t, `{"sentiment":"Negative"}`, out.Text)
	require.NotNil(t, out.Usage)
	assert.Equal(t, int64(30), out.Usage.PromptTokens)
	assert.Equal(t, int64(5), out.Usage.CompletionTokens)
}
