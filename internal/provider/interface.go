package provider

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrMalformedResponse marks a reply that lacks choices[0].message.content or is not JSON.
	ErrMalformedResponse = errors.New("malformed response")
	ErrEmptyResponse     = errors.New("empty response from model")
)

// Model represents a language model available from a provider
type Model struct {
	Name       string `json:"name"`
	ModifiedAt string `json:"modified_at,omitempty"`
	Size       int64  `json:"size,omitempty"`
}

// Provider defines the interface that all LLM providers must implement
type Provider interface {
	// Complete sends a single user prompt to model and returns the trimmed reply text
	Complete(ctx context.Context, model, prompt string) (string, error)

	// ListModels returns a list of available models from the provider
	ListModels(ctx context.Context) ([]Model, error)
}

// RemoteServiceError reports a transport failure, a non-success status or a
// reply whose shape does not match the chat-completion contract.
type RemoteServiceError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *RemoteServiceError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err == nil:
		return fmt.Sprintf("%s: unexpected status code %d: %s", e.Provider, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	}
}

func (e *RemoteServiceError) Unwrap() error {
	return e.Err
}
