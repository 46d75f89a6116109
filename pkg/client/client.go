// Package client is a Go client for the event API. It keeps the logged-in
// user and token in a durable Session and attaches the token to every
// request.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
	Errors  []string
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("%d: %s (%s)", e.Status, e.Message, strings.Join(e.Errors, "; "))
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Client provides a client to the event API.
//
// Don't construct a Client directly. Use New() instead.
type Client struct {
	// HTTP is the underlying HTTP client used send requests.
	HTTP *http.Client
	// BaseURL is the API origin, without the /api prefix.
	BaseURL string
	// Session supplies the bearer token and receives new ones on login.
	Session *Session

	Auth   *AuthClient
	Events *EventsClient
}

// New constructs a new Client. session may be nil for anonymous use.
func New(baseURL string, session *Session) *Client {
	client := &Client{
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		BaseURL: strings.TrimRight(baseURL, "/"),
		Session: session,
	}

	client.Auth = &AuthClient{client}
	client.Events = &EventsClient{client}

	return client
}

func (c *Client) doJSON(ctx context.Context, method, path string, req any, resp any) error {
	var reqBody io.Reader
	if req != nil {
		reqJS, err := json.Marshal(req)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(reqJS)
	}

	r, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return err
	}
	if req != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	r.Header.Set("Accept", "application/json")

	if c.Session != nil {
		if token := c.Session.Token(); token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
	}

	w, err := c.HTTP.Do(r)
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode < 200 || w.StatusCode > 299 {
		apiErr := &APIError{Status: w.StatusCode}
		var body struct {
			Message string   `json:"message"`
			Errors  []string `json:"errors"`
		}
		if err := json.NewDecoder(w.Body).Decode(&body); err == nil && body.Message != "" {
			apiErr.Message, apiErr.Errors = body.Message, body.Errors
		} else {
			apiErr.Message = http.StatusText(w.StatusCode)
		}
		return apiErr
	}

	if resp != nil {
		if err := json.NewDecoder(w.Body).Decode(resp); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}

	return nil
}
