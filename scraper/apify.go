package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultApifyBaseURL = "https://api.apify.com/v2"
	defaultPollInterval   = 3 * time.Second
	defaultRunTimeout     = 5 * time.Minute
	defaultRequestTimeout = 30 * time.Second
)

// Logger is the minimal logging surface used by this package.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Settings configures the Apify REST client. Timeout bounds a whole actor
// run: start, every poll and the dataset download.
type Settings struct {
	Token        string
	BaseURL      string
	PollInterval time.Duration
	Timeout      time.Duration
}

// ApifyClient runs Apify actors over the REST API: start a run, poll it
// until it finishes, then download the default dataset.
type ApifyClient struct {
	token        string
	baseURL      string
	pollInterval time.Duration
	runTimeout   time.Duration
	client       *http.Client
	logger       Logger
}

func NewApifyClient(s Settings, logger Logger) (*ApifyClient, error) {
	if strings.TrimSpace(s.Token) == "" {
		return nil, errors.New("apify api token not configured")
	}
	base := strings.TrimRight(s.BaseURL, "/")
	if base == "" {
		base = DefaultApifyBaseURL
	}
	poll := s.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultRunTimeout
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &ApifyClient{
		token:        s.Token,
		baseURL:      base,
		pollInterval: poll,
		runTimeout:   timeout,
		client:       &http.Client{Timeout: min(timeout, defaultRequestTimeout)},
		logger:       logger,
	}, nil
}

// RunActor executes actorID (either "user/name" or an internal id) with the
// given input and returns the raw JSON array of dataset items.
func (c *ApifyClient) RunActor(ctx context.Context, actorID string, input map[string]any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.runTimeout)
	defer cancel()

	runID, err := c.startRun(ctx, actorID, input)
	if err != nil {
		return nil, fmt.Errorf("start actor %s: %w", actorID, err)
	}
	c.logger.Printf("[apify] actor %s started run %s", actorID, runID)

	datasetID, err := c.waitForRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("actor run %s: %w", runID, err)
	}
	items, err := c.datasetItems(ctx, datasetID)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", datasetID, err)
	}
	return items, nil
}

func (c *ApifyClient) endpoint(path string) string {
	return fmt.Sprintf("%s%s?token=%s", c.baseURL, path, url.QueryEscape(c.token))
}

func (c *ApifyClient) startRun(ctx context.Context, actorID string, input map[string]any) (string, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return "", err
	}
	// The REST API addresses named actors as "user~name".
	path := "/acts/" + strings.ReplaceAll(actorID, "/", "~") + "/runs"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.Data.ID == "" {
		return "", errors.New("response carried no run id")
	}
	return result.Data.ID, nil
}

func (c *ApifyClient) waitForRun(ctx context.Context, runID string) (string, error) {
	statusURL := c.endpoint("/actor-runs/" + runID)

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
		if err != nil {
			return "", err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return "", err
		}

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return "", fmt.Errorf("status %d, body: %s", resp.StatusCode, string(respBody))
		}

		var status struct {
			Data struct {
				Status           string `json:"status"`
				DefaultDatasetID string `json:"defaultDatasetId"`
			} `json:"data"`
		}
		err = json.NewDecoder(resp.Body).Decode(&status)
		resp.Body.Close()
		if err != nil {
			return "", err
		}

		switch status.Data.Status {
		case "SUCCEEDED":
			return status.Data.DefaultDatasetID, nil
		case "FAILED", "ABORTED", "TIMED-OUT":
			return "", fmt.Errorf("finished with status %s", status.Data.Status)
		case "READY", "RUNNING", "TIMING-OUT", "ABORTING":
		default:
			return "", fmt.Errorf("unexpected run status %q", status.Data.Status)
		}
	}
}

func (c *ApifyClient) datasetItems(ctx context.Context, datasetID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/datasets/"+datasetID+"/items"), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
