package generator

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type recordingLLM struct {
	reply   string
	err     error
	prompts []Prompt
}

func (r *recordingLLM) Complete(_ context.Context, p Prompt) (string, error) {
	r.prompts = append(r.prompts, p)
	return r.reply, r.err
}

func TestAgentGenerateBuildsPromptAndParses(t *testing.T) {
	llm := &recordingLLM{reply: "---\nPost 1\nA\n---\nPost 2\nB\n---"}
	agent, err := NewAgent(llm, LinkedInRole)
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	posts, err := agent.Generate(context.Background(), Request{
		Context:  "Acme launches a new analytics tool",
		Examples: []string{"LinkedIn Example 1:\n\"hello\""},
		Count:    2,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(posts) != 2 || posts[0] != "A" || posts[1] != "B" {
		t.Fatalf("unexpected posts: %q", posts)
	}
	if len(llm.prompts) != 1 {
		t.Fatalf("expected exactly one completion call, got %d", len(llm.prompts))
	}
	p := llm.prompts[0]
	if p.System != LinkedInRole.System {
		t.Fatalf("expected linkedin system prompt")
	}
	for _, want := range []string{"Generate 2 unique LinkedIn posts", "Acme launches a new analytics tool", "LinkedIn Example 1", "150 and 300 words"} {
		if !strings.Contains(p.User, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p.User)
		}
	}
}

func TestAgentUsesFallbackExampleWhenNoneScraped(t *testing.T) {
	llm := &recordingLLM{reply: "one"}
	agent, _ := NewAgent(llm, XRole)
	if _, err := agent.Generate(context.Background(), Request{Context: "ctx", Count: 1}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(llm.prompts[0].User, XRole.FallbackExample) {
		t.Fatalf("expected fallback example in prompt")
	}
}

func TestAgentPropagatesClientFailure(t *testing.T) {
	boom := errors.New("quota exceeded")
	agent, _ := NewAgent(&recordingLLM{err: boom}, XRole)
	_, err := agent.Generate(context.Background(), Request{Context: "ctx", Count: 1})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped client error, got %v", err)
	}
}

func TestNewAgentRequiresPlatform(t *testing.T) {
	if _, err := NewAgent(&recordingLLM{}, ValidatorRole); err == nil {
		t.Fatalf("expected error for role without platform")
	}
}

func TestValidatorDescribesMissingPlatform(t *testing.T) {
	llm := &recordingLLM{reply: " Looks good. "}
	v, err := NewValidator(llm, ValidatorRole)
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	summary, err := v.Assess(context.Background(), Review{
		Context:     "ctx",
		X:           []string{"x post"},
		LinkedInErr: "linkedin generation: timeout",
	})
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if summary != "Looks good." {
		t.Fatalf("unexpected summary %q", summary)
	}
	user := llm.prompts[0].User
	if !strings.Contains(user, "not generated: linkedin generation: timeout") {
		t.Fatalf("expected missing platform note:\n%s", user)
	}
	if strings.Index(user, "LINKEDIN POSTS") > strings.Index(user, "X POSTS") {
		t.Fatalf("expected LinkedIn block before X block")
	}
}

func TestValidatorEmptyReplyIsFailure(t *testing.T) {
	v, _ := NewValidator(&recordingLLM{reply: "   "}, ValidatorRole)
	if _, err := v.Assess(context.Background(), Review{Context: "ctx"}); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestMockLLMHonorsRequestedCount(t *testing.T) {
	agent, _ := NewAgent(MockLLM{}, XRole)
	posts, err := agent.Generate(context.Background(), Request{Context: "ctx", Count: 3})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("expected 3 mock posts, got %d", len(posts))
	}
}
