package scraper

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeRunner struct {
	actor string
	input map[string]any
	raw   []byte
	err   error
	calls int
}

func (f *fakeRunner) RunActor(_ context.Context, actor string, input map[string]any) ([]byte, error) {
	f.calls++
	f.actor = actor
	f.input = input
	return f.raw, f.err
}

func TestSourcesSkipEmptyQueries(t *testing.T) {
	runner := &fakeRunner{}
	if out := (&LinkedInSource{Runner: runner}).Fetch(context.Background(), Query{SearchTerms: []string{"ai"}}); out.Kind != OutcomeEmpty {
		t.Fatalf("linkedin without urls should be empty, got %s", out.Kind)
	}
	if out := (&XSource{Runner: runner}).Fetch(context.Background(), Query{URLs: []string{"  "}}); out.Kind != OutcomeEmpty {
		t.Fatalf("blank x query should be empty, got %s", out.Kind)
	}
	if runner.calls != 0 {
		t.Fatalf("expected no remote calls, got %d", runner.calls)
	}
}

func TestXSourceBuildsInputAndFilters(t *testing.T) {
	runner := &fakeRunner{raw: []byte(`[
		{"text":"Data beats opinions every single time.","author":{"userName":"acme"}},
		{"full_text":"Analytics is a team sport, not a dashboard.","author":"plain"},
		{"text":"RT @someone: reposted content here"},
		{"text":"tiny"}
	]`)}
	src := &XSource{Runner: runner, MaxItems: 15}
	out := src.Fetch(context.Background(), Query{SearchTerms: []string{"analytics"}})
	if out.Kind != OutcomeExamples {
		t.Fatalf("expected examples, got %s", out.Kind)
	}
	if runner.actor != XActor {
		t.Fatalf("unexpected actor %s", runner.actor)
	}
	if runner.input["maxItems"] != 15 || runner.input["sort"] != "Latest" || runner.input["tweetLanguage"] != "en" {
		t.Fatalf("unexpected input %+v", runner.input)
	}
	if _, ok := runner.input["startUrls"]; ok {
		t.Fatalf("startUrls should be omitted when empty")
	}
	if len(out.Examples) != 2 {
		t.Fatalf("expected 2 usable examples, got %+v", out.Examples)
	}
	if out.Examples[0].Author != "@acme" || out.Examples[1].Author != "plain" {
		t.Fatalf("unexpected authors %+v", out.Examples)
	}
}

func TestXSourceSkipsOversizedPosts(t *testing.T) {
	long := strings.Repeat("a", maxXChars+1)
	runner := &fakeRunner{raw: []byte(`[{"text":"` + long + `"}]`)}
	out := (&XSource{Runner: runner}).Fetch(context.Background(), Query{Handles: []string{"acme"}})
	if out.Kind != OutcomeEmpty {
		t.Fatalf("expected empty outcome, got %s", out.Kind)
	}
}

func TestSourceFailureIsTagged(t *testing.T) {
	boom := errors.New("quota")
	out := (&XSource{Runner: &fakeRunner{err: boom}}).Fetch(context.Background(), Query{Handles: []string{"acme"}})
	if out.Kind != OutcomeFailed || !errors.Is(out.Err, boom) {
		t.Fatalf("expected failed outcome, got %+v", out)
	}
	if len(out.Examples) != 0 {
		t.Fatalf("failed outcome must carry no examples")
	}
}

func TestFormatExamples(t *testing.T) {
	got := FormatExamples("LinkedIn", []Example{{Text: "hello world"}, {Text: "second", Author: "Ada"}})
	want := []string{
		"LinkedIn Example 1:\n\"hello world\"\n(Author: Unknown Author)",
		"LinkedIn Example 2:\n\"second\"\n(Author: Ada)",
	}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("unexpected formatting: %q", got)
	}
}
