// Package upstream handles communication with backend chat-completion
// providers. The gateway forwards payloads byte-for-byte; it never reshapes
// or validates what a backend returns beyond requiring valid JSON.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single forwarded chat-completion call. Chat
// backends can be slow; the limit exists so an abandoned call is reclaimed.
const DefaultTimeout = 5 * time.Minute

// Client issues outbound chat-completion calls. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
}

// NewClient creates an upstream client with the given request timeout.
// A zero timeout selects DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// TransportError wraps a connection-level failure reaching the backend
// (refused connection, timeout, DNS). The backend never produced a response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// BadResponseError indicates the backend responded but the body was not JSON.
type BadResponseError struct {
	Err error
}

func (e *BadResponseError) Error() string { return e.Err.Error() }
func (e *BadResponseError) Unwrap() error { return e.Err }

// ForwardChatCompletion posts payload to {backendURL}/chat/completions and
// returns the backend's status code and JSON body. The caller's Authorization
// header is forwarded verbatim when non-empty. The request is bound to ctx,
// so a disconnected caller cancels the outbound call.
func (c *Client) ForwardChatCompletion(ctx context.Context, backendURL string, payload []byte, authHeader string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, backendURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return 0, nil, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &TransportError{Err: err}
	}

	if !json.Valid(body) {
		return 0, nil, &BadResponseError{Err: fmt.Errorf("backend returned non-JSON body (%d bytes)", len(body))}
	}

	return resp.StatusCode, body, nil
}
