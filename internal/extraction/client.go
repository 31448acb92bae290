// Package extraction calls the external voice extraction service that
// converts a spoken task description into a structured task projection.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"time"
)

// Client posts voice notes plus directory context to the extraction
// endpoint and returns the loosely-typed projection it responds with.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Config holds extraction client settings.
type Config struct {
	Endpoint       string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// NewClient creates an extraction client. Connect and read timeouts fall
// back to 10s/60s when unset.
func NewClient(cfg Config) *Client {
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 60 * time.Second
	}

	return &Client{
		endpoint: cfg.Endpoint,
		httpClient: &http.Client{
			Timeout: readTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
			},
		},
	}
}

// UserRef is the sanitized user projection sent as extraction context.
// No password or contact fields leave the process.
type UserRef struct {
	UserID    int64  `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// SprintRef is the sanitized sprint projection sent as extraction context.
type SprintRef struct {
	SprintID int64  `json:"sprint_id"`
	Name     string `json:"name"`
}

// Context is the reference data the extraction service matches spoken
// names against.
type Context struct {
	Usuarios []UserRef   `json:"usuarios"`
	Sprints  []SprintRef `json:"sprints"`
}

// Extract uploads the audio bytes and context snapshot as one multipart
// request and returns the parsed projection.
func (c *Client) Extract(ctx context.Context, audio []byte, refCtx Context) (Projection, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("extraction endpoint not configured")
	}

	contextJSON, err := json.Marshal(refCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal context: %w", err)
	}

	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)

	part, err := writer.CreateFormFile("file", "voice.oga")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("failed to write audio to form: %w", err)
	}

	if err := writer.WriteField("context", string(contextJSON)); err != nil {
		return nil, fmt.Errorf("failed to write context field: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call extraction service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extraction service error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var projection Projection
	if err := json.Unmarshal(respBody, &projection); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}

	return projection, nil
}
