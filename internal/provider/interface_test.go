package provider_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"commit-analyzer/internal/provider"
)

func TestRemoteServiceErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *provider.RemoteServiceError
		want string
	}{
		{
			name: "status only",
			err:  &provider.RemoteServiceError{Provider: "openrouter", StatusCode: 401, Body: "no auth"},
			want: "openrouter: unexpected status code 401: no auth",
		},
		{
			name: "status and cause",
			err:  &provider.RemoteServiceError{Provider: "openrouter", StatusCode: 200, Err: provider.ErrMalformedResponse},
			want: "openrouter: status 200: malformed response",
		},
		{
			name: "transport",
			err:  &provider.RemoteServiceError{Provider: "ollama", Err: errors.New("connection refused")},
			want: "ollama: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestRemoteServiceErrorUnwraps(t *testing.T) {
	err := fmt.Errorf("summarize: %w", &provider.RemoteServiceError{Provider: "openrouter", Err: provider.ErrEmptyResponse})

	var remoteErr *provider.RemoteServiceError
	assert.ErrorAs(t, err, &remoteErr)
	assert.ErrorIs(t, err, provider.ErrEmptyResponse)
}
