package openrouter_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commit-analyzer/internal/openrouter"
	"commit-analyzer/internal/provider"
)

type capturedRequest struct {
	method        string
	path          string
	authorization string
	contentType   string
	body          map[string]any
}

func newServer(t *testing.T, status int, reply string, captured *capturedRequest) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			captured.method = r.Method
			captured.path = r.URL.Path
			captured.authorization = r.Header.Get("Authorization")
			captured.contentType = r.Header.Get("Content-Type")
			if r.Body != nil && r.Method == http.MethodPost {
				_ = json.NewDecoder(r.Body).Decode(&captured.body)
			}
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCompleteSendsChatRequestAndTrimsReply(t *testing.T) {
	var captured capturedRequest
	server := newServer(t, http.StatusOK, `{"choices":[{"message":{"content":" foo bar "}}]}`, &captured)

	client := openrouter.NewClient(server.URL, "secret", 0, nil)
	summary, err := client.Complete(t.Context(), "", "summarize this")
	require.NoError(t, err)
	assert.Equal(t, "foo bar", summary)

	assert.Equal(t, http.MethodPost, captured.method)
	assert.Equal(t, "/chat/completions", captured.path)
	assert.Equal(t, "Bearer secret", captured.authorization)
	assert.Equal(t, "application/json", captured.contentType)
	assert.Equal(t, map[string]any{
		"model": openrouter.DefaultModel,
		"messages": []any{
			map[string]any{"role": "user", "content": "summarize this"},
		},
	}, captured.body)
}

func TestCompleteUsesRequestedModel(t *testing.T) {
	var captured capturedRequest
	server := newServer(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`, &captured)

	client := openrouter.NewClient(server.URL, "secret", 0, nil)
	_, err := client.Complete(t.Context(), "anthropic/claude-3-haiku", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-3-haiku", captured.body["model"])
}

func TestCompleteReportsRemoteServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		reply      string
		wantStatus int
		wantErr    error
	}{
		{name: "bad status", status: http.StatusUnauthorized, reply: `{"error":"no key"}`, wantStatus: http.StatusUnauthorized},
		{name: "server error", status: http.StatusBadGateway, reply: "upstream", wantStatus: http.StatusBadGateway},
		{name: "not json", status: http.StatusOK, reply: "<html>", wantStatus: http.StatusOK, wantErr: provider.ErrMalformedResponse},
		{name: "no choices key", status: http.StatusOK, reply: `{"id":"x"}`, wantStatus: http.StatusOK, wantErr: provider.ErrMalformedResponse},
		{name: "empty choices", status: http.StatusOK, reply: `{"choices":[]}`, wantStatus: http.StatusOK, wantErr: provider.ErrMalformedResponse},
		{name: "missing message", status: http.StatusOK, reply: `{"choices":[{}]}`, wantStatus: http.StatusOK, wantErr: provider.ErrMalformedResponse},
		{name: "missing content", status: http.StatusOK, reply: `{"choices":[{"message":{"role":"assistant"}}]}`, wantStatus: http.StatusOK, wantErr: provider.ErrMalformedResponse},
		{name: "blank content", status: http.StatusOK, reply: `{"choices":[{"message":{"content":"   "}}]}`, wantStatus: http.StatusOK, wantErr: provider.ErrEmptyResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newServer(t, tt.status, tt.reply, nil)

			client := openrouter.NewClient(server.URL, "secret", 0, nil)
			_, err := client.Complete(t.Context(), "", "prompt")

			var remoteErr *provider.RemoteServiceError
			require.ErrorAs(t, err, &remoteErr)
			assert.Equal(t, tt.wantStatus, remoteErr.StatusCode)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCompleteReportsTransportFailure(t *testing.T) {
	server := newServer(t, http.StatusOK, "", nil)
	url := server.URL
	server.Close()

	client := openrouter.NewClient(url, "secret", 0, nil)
	_, err := client.Complete(t.Context(), "", "prompt")

	var remoteErr *provider.RemoteServiceError
	require.ErrorAs(t, err, &remoteErr)
	assert.Zero(t, remoteErr.StatusCode)
}

func TestListModels(t *testing.T) {
	var captured capturedRequest
	server := newServer(t, http.StatusOK, `{"data":[{"id":"openai/gpt-3.5-turbo"},{"id":"meta-llama/llama-3-8b-instruct"}]}`, &captured)

	client := openrouter.NewClient(server.URL, "secret", 0, nil)
	models, err := client.ListModels(t.Context())
	require.NoError(t, err)

	assert.Equal(t, "/models", captured.path)
	assert.Equal(t, []provider.Model{
		{Name: "openai/gpt-3.5-turbo"},
		{Name: "meta-llama/llama-3-8b-instruct"},
	}, models)
}

func TestNewClientDefaults(t *testing.T) {
	client := openrouter.NewClient("", "  key  ", 0, nil)
	assert.Equal(t, openrouter.DefaultBaseURL, client.BaseURL)
	assert.Equal(t, "key", client.APIKey)
	assert.Equal(t, openrouter.DefaultTimeout, client.Client.Timeout)
}
