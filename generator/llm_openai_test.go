package generator

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOpenAILLMRequiresKeyAndModel(t *testing.T) {
	if _, err := NewOpenAILLMFromConfig(nil); err == nil {
		t.Fatalf("expected error for nil settings")
	}
	if _, err := NewOpenAILLMFromConfig(&LLMSettings{Model: "gpt-4o"}); err == nil {
		t.Fatalf("expected error without api key")
	}
	if _, err := NewOpenAILLMFromConfig(&LLMSettings{APIKey: "k"}); err == nil {
		t.Fatalf("expected error without model")
	}
}

func TestOpenAILLMCompleteAgainstCompatibleEndpoint(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("authorization = %q", auth)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"deepseek-chat",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  ---\nPost 1\nHello\n---  "}}]}`)
	}))
	defer srv.Close()

	llm, err := NewOpenAILLMFromConfig(&LLMSettings{
		Provider: "deepseek",
		Model:    "deepseek-chat",
		APIKey:   "test-key",
		BaseURL:  srv.URL + "/v1/",
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	out, err := llm.Complete(context.Background(), Prompt{System: "be brief", User: "Generate 1 unique X posts"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "---\nPost 1\nHello\n---" {
		t.Fatalf("content = %q", out)
	}
	if got.Model != "deepseek-chat" || len(got.Messages) != 2 {
		t.Fatalf("request = %+v", got)
	}
	if got.Messages[0].Role != "system" || got.Messages[1].Content != "Generate 1 unique X posts" {
		t.Fatalf("messages = %+v", got.Messages)
	}
}
