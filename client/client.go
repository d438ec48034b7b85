// Package client talks to the HTTP front end started with -serve.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"thought_leadership_workflow/job"
	"thought_leadership_workflow/publisher"
)

// DefaultPollInterval is the reference status polling cadence.
const DefaultPollInterval = 2 * time.Second

// SubmitRequest mirrors the POST /api/jobs body. A zero NumPosts lets the
// server apply its default.
type SubmitRequest struct {
	Context      string   `json:"context"`
	NumPosts     int      `json:"num_posts,omitempty"`
	LinkedInURLs []string `json:"linkedin_urls,omitempty"`
	XURLs        []string `json:"x_urls,omitempty"`
	XSearchTerms []string `json:"x_search_terms,omitempty"`
	XHandles     []string `json:"x_handles,omitempty"`
}

// RejectedError is returned when the server refuses a submission.
type RejectedError struct {
	StatusCode int
	Reason     string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("job rejected (%d): %s", e.StatusCode, e.Reason)
}

// Unwrap maps the HTTP status back onto the job package sentinels.
func (e *RejectedError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusConflict:
		return job.ErrJobInProgress
	case http.StatusBadRequest:
		return job.ErrInvalidSpec
	}
	return nil
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: u.String(), http: httpClient}, nil
}

// Submit posts a job and returns its run id.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/jobs", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("submit job: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		Accepted bool   `json:"accepted"`
		RunID    string `json:"run_id"`
		Reason   string `json:"reason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode submit response (%d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusAccepted || !out.Accepted {
		return "", &RejectedError{StatusCode: resp.StatusCode, Reason: out.Reason}
	}
	return out.RunID, nil
}

// Status fetches the current job snapshot.
func (c *Client) Status(ctx context.Context) (job.Status, error) {
	var st job.Status
	body, err := c.get(ctx, "/api/status")
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(body, &st); err != nil {
		return st, fmt.Errorf("decode status: %w", err)
	}
	return st, nil
}

// Output downloads a persisted artifact. format is "" (plain text), "html"
// or "pdf".
func (c *Client) Output(ctx context.Context, stamp, format string) ([]byte, error) {
	path := "/api/outputs/" + url.PathEscape(stamp)
	if format != "" {
		path += "?format=" + url.QueryEscape(format)
	}
	return c.get(ctx, path)
}

// Upload extracts text from a document on the server.
func (c *Client) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("document", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	body, err := c.do(req)
	if err != nil {
		return "", err
	}
	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	return out.Text, nil
}

// Wait polls Status every interval until the job is terminal.
func (c *Client) Wait(ctx context.Context, interval time.Duration) (job.Status, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		st, err := c.Status(ctx)
		if err != nil {
			return st, err
		}
		if st.State.Terminal() {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", req.URL.Path, publisher.ErrNotFound)
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, errorText(body))
	}
	return body, nil
}

func errorText(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}
