package scraper

import (
	"context"
	"fmt"
	"strings"
)

// OutcomeKind tags the result of a best-effort fetch.
type OutcomeKind string

const (
	OutcomeExamples OutcomeKind = "examples"
	OutcomeEmpty    OutcomeKind = "empty"
	OutcomeFailed   OutcomeKind = "failed"
)

// Example is one scraped post usable as style reference.
type Example struct {
	Text   string `json:"text"`
	Author string `json:"author,omitempty"`
	URL    string `json:"url,omitempty"`
}

// Outcome distinguishes "nothing found" from "the call errored". Callers
// treat both as an empty example set.
type Outcome struct {
	Kind     OutcomeKind
	Examples []Example
	Err      error
}

func Found(examples []Example) Outcome {
	if len(examples) == 0 {
		return Empty()
	}
	return Outcome{Kind: OutcomeExamples, Examples: examples}
}

func Empty() Outcome { return Outcome{Kind: OutcomeEmpty} }

func Failed(err error) Outcome { return Outcome{Kind: OutcomeFailed, Err: err} }

// Query lists the seeds for one platform. Any combination may be set.
type Query struct {
	URLs        []string
	SearchTerms []string
	Handles     []string
}

// IsZero reports whether the query has nothing to scrape.
func (q Query) IsZero() bool {
	return len(nonEmpty(q.URLs)) == 0 && len(nonEmpty(q.SearchTerms)) == 0 && len(nonEmpty(q.Handles)) == 0
}

// Source fetches example posts for one platform.
type Source interface {
	Fetch(ctx context.Context, q Query) Outcome
}

// FormatExamples renders examples the way agents expect them in prompts.
func FormatExamples(label string, examples []Example) []string {
	out := make([]string, 0, len(examples))
	for i, ex := range examples {
		author := ex.Author
		if author == "" {
			author = "Unknown Author"
		}
		out = append(out, fmt.Sprintf("%s Example %d:\n\"%s\"\n(Author: %s)", label, i+1, ex.Text, author))
	}
	return out
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
