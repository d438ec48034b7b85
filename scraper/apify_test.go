package scraper

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newApifyStub(t *testing.T, finalStatus string) (*httptest.Server, *map[string]any) {
	t.Helper()
	var polls int32
	var input map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/acts/supreme_coder~linkedin-post/runs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Query().Get("token") != "secret" {
			t.Errorf("missing token")
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &input)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"run-1"}}`))
	})
	mux.HandleFunc("/actor-runs/run-1", func(w http.ResponseWriter, r *http.Request) {
		status := "RUNNING"
		if atomic.AddInt32(&polls, 1) > 1 {
			status = finalStatus
		}
		_, _ = w.Write([]byte(`{"data":{"status":"` + status + `","defaultDatasetId":"ds-1"}}`))
	})
	mux.HandleFunc("/datasets/ds-1/items", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"text":"A LinkedIn post that is long enough to keep.","author":{"name":"Ada"},"url":"https://li/1"},{"text":"short"}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &input
}

func TestApifyClientRunActorPollsUntilSucceeded(t *testing.T) {
	srv, input := newApifyStub(t, "SUCCEEDED")
	client, err := NewApifyClient(Settings{Token: "secret", BaseURL: srv.URL, PollInterval: time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	src := &LinkedInSource{Runner: client, LimitPerSource: 7}
	out := src.Fetch(context.Background(), Query{URLs: []string{"https://www.linkedin.com/company/acme"}})
	if out.Kind != OutcomeExamples {
		t.Fatalf("expected examples outcome, got %s (%v)", out.Kind, out.Err)
	}
	if len(out.Examples) != 1 || out.Examples[0].Author != "Ada" {
		t.Fatalf("unexpected examples: %+v", out.Examples)
	}
	if got := (*input)["limitPerSource"]; got != float64(7) {
		t.Fatalf("expected limitPerSource 7, got %v", got)
	}
}

func TestApifyClientReportsFailedRun(t *testing.T) {
	srv, _ := newApifyStub(t, "FAILED")
	client, _ := NewApifyClient(Settings{Token: "secret", BaseURL: srv.URL, PollInterval: time.Millisecond}, nil)
	src := &LinkedInSource{Runner: client}
	out := src.Fetch(context.Background(), Query{URLs: []string{"https://www.linkedin.com/company/acme"}})
	if out.Kind != OutcomeFailed || out.Err == nil {
		t.Fatalf("expected failed outcome, got %+v", out)
	}
}

func TestNewApifyClientRequiresToken(t *testing.T) {
	if _, err := NewApifyClient(Settings{}, nil); err == nil {
		t.Fatalf("expected error without token")
	}
}

func newRunOnlyStub(t *testing.T, status http.HandlerFunc) (*httptest.Server, *int32) {
	t.Helper()
	var polls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/acts/supreme_coder~linkedin-post/runs", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"run1"}}`))
	})
	mux.HandleFunc("/actor-runs/run1", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&polls, 1)
		status(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &polls
}

func TestApifyClientStopsOnRejectedStatusPoll(t *testing.T) {
	srv, polls := newRunOnlyStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"token-not-valid","message":"Authentication token is not valid."}}`))
	})
	client, _ := NewApifyClient(Settings{Token: "bad", BaseURL: srv.URL, PollInterval: 10 * time.Millisecond}, nil)

	_, err := client.RunActor(context.Background(), LinkedInActor, map[string]any{})
	if err == nil || !strings.Contains(err.Error(), "status 401") {
		t.Fatalf("expected 401 error, got %v", err)
	}
	if n := atomic.LoadInt32(polls); n != 1 {
		t.Fatalf("expected a single poll, got %d", n)
	}
}

func TestApifyClientRunTimeout(t *testing.T) {
	srv, _ := newRunOnlyStub(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"status":"RUNNING"}}`))
	})
	client, _ := NewApifyClient(Settings{
		Token:        "secret",
		BaseURL:      srv.URL,
		PollInterval: 5 * time.Millisecond,
		Timeout:      50 * time.Millisecond,
	}, nil)

	start := time.Now()
	out := (&LinkedInSource{Runner: client}).Fetch(context.Background(), Query{URLs: []string{"https://www.linkedin.com/company/acme"}})
	if out.Kind != OutcomeFailed {
		t.Fatalf("expected failed outcome, got %+v", out)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("run timeout not enforced, took %s", elapsed)
	}
}

func TestApifyClientRejectsUnknownRunStatus(t *testing.T) {
	srv, _ := newRunOnlyStub(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	})
	client, _ := NewApifyClient(Settings{Token: "secret", BaseURL: srv.URL, PollInterval: time.Millisecond}, nil)
	if _, err := client.RunActor(context.Background(), LinkedInActor, nil); err == nil {
		t.Fatalf("expected error for empty run status")
	}
}
