package scraper

import (
	"context"
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	LinkedInActor = "supreme_coder/linkedin-post"
	XActor        = "apidojo/tweet-scraper"

	minLinkedInChars = 20
	minXChars        = 10
	maxXChars        = 400
)

// ActorRunner executes an actor and returns its dataset items as a JSON array.
type ActorRunner interface {
	RunActor(ctx context.Context, actorID string, input map[string]any) ([]byte, error)
}

// LinkedInSource scrapes LinkedIn posts from post, profile, company or
// search URLs.
type LinkedInSource struct {
	Runner         ActorRunner
	Actor          string
	LimitPerSource int
	Logger         Logger
}

func (s *LinkedInSource) Fetch(ctx context.Context, q Query) Outcome {
	urls := nonEmpty(q.URLs)
	if len(urls) == 0 {
		return Empty()
	}
	if s.Runner == nil {
		return Failed(errors.New("linkedin scraper not configured"))
	}
	limit := s.LimitPerSource
	if limit <= 0 {
		limit = 5
	}
	raw, err := s.Runner.RunActor(ctx, orDefault(s.Actor, LinkedInActor), map[string]any{
		"urls":           urls,
		"limitPerSource": limit,
	})
	if err != nil {
		logf(s.Logger, "[scrape] linkedin failed: %v", err)
		return Failed(err)
	}
	examples := ParseLinkedInItems(raw)
	logf(s.Logger, "[scrape] linkedin returned %d usable examples", len(examples))
	return Found(examples)
}

// XSource scrapes X posts from URLs, search terms or handles.
type XSource struct {
	Runner   ActorRunner
	Actor    string
	MaxItems int
	Sort     string
	Language string
	Logger   Logger
}

func (s *XSource) Fetch(ctx context.Context, q Query) Outcome {
	if q.IsZero() {
		return Empty()
	}
	if s.Runner == nil {
		return Failed(errors.New("x scraper not configured"))
	}
	input := map[string]any{
		"maxItems":      positiveOr(s.MaxItems, 20),
		"sort":          orDefault(s.Sort, "Latest"),
		"tweetLanguage": orDefault(s.Language, "en"),
	}
	if urls := nonEmpty(q.URLs); len(urls) > 0 {
		input["startUrls"] = urls
	}
	if terms := nonEmpty(q.SearchTerms); len(terms) > 0 {
		input["searchTerms"] = terms
	}
	if handles := nonEmpty(q.Handles); len(handles) > 0 {
		input["twitterHandles"] = handles
	}
	raw, err := s.Runner.RunActor(ctx, orDefault(s.Actor, XActor), input)
	if err != nil {
		logf(s.Logger, "[scrape] x failed: %v", err)
		return Failed(err)
	}
	examples := ParseXItems(raw)
	logf(s.Logger, "[scrape] x returned %d usable examples", len(examples))
	return Found(examples)
}

// ParseLinkedInItems extracts usable posts from a LinkedIn dataset.
func ParseLinkedInItems(raw []byte) []Example {
	var out []Example
	for _, item := range gjson.ParseBytes(raw).Array() {
		text := strings.TrimSpace(item.Get("text").String())
		if len(text) < minLinkedInChars {
			continue
		}
		out = append(out, Example{
			Text:   text,
			Author: item.Get("author.name").String(),
			URL:    item.Get("url").String(),
		})
	}
	return out
}

// ParseXItems extracts usable posts from a tweet dataset, skipping retweets
// and oversized entries that carry quoted text.
func ParseXItems(raw []byte) []Example {
	var out []Example
	for _, item := range gjson.ParseBytes(raw).Array() {
		text := item.Get("text").String()
		if text == "" {
			text = item.Get("full_text").String()
		}
		text = strings.TrimSpace(text)
		if len(text) < minXChars || len(text) > maxXChars || strings.HasPrefix(text, "RT @") {
			continue
		}
		out = append(out, Example{
			Text:   text,
			Author: xAuthor(item.Get("author")),
			URL:    item.Get("url").String(),
		})
	}
	return out
}

func xAuthor(author gjson.Result) string {
	if !author.Exists() {
		return ""
	}
	if author.IsObject() {
		if name := author.Get("userName").String(); name != "" {
			return "@" + name
		}
		return author.Get("name").String()
	}
	return author.String()
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func positiveOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func logf(l Logger, format string, args ...any) {
	if l == nil {
		return
	}
	l.Printf(format, args...)
}
