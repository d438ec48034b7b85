package publisher

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func sampleInput() CompileInput {
	return CompileInput{
		RunID:          "run-1",
		Context:        "Acme launches a new analytics tool",
		RequestedPosts: 2,
		LinkedIn:       []string{"li one", "li two"},
		X:              []string{"x one", "x two"},
		Assessment:     "All good.",
		Agents:         []string{"LinkedIn Content Creator", "X Content Creator"},
		StartedAt:      time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
		CompletedAt:    time.Date(2026, 10, 19, 9, 1, 30, 0, time.UTC),
	}
}

func TestRenderOrdersLinkedInXAssessmentMetadata(t *testing.T) {
	doc := Render(Compile(sampleInput()))
	order := []string{"li one", "li two", "x one", "x two", "All good.", "- Run: run-1"}
	last := -1
	for _, marker := range order {
		idx := strings.Index(doc, marker)
		if idx < 0 {
			t.Fatalf("missing %q in:\n%s", marker, doc)
		}
		if idx < last {
			t.Fatalf("%q out of order in:\n%s", marker, doc)
		}
		last = idx
	}
}

func TestCompileRecordsFailuresWithoutFabricating(t *testing.T) {
	in := sampleInput()
	in.LinkedIn = nil
	in.LinkedInErr = errors.New("linkedin generation: timeout")
	in.AssessmentErr = errors.New("validation: quota")
	out := Compile(in)
	if len(out.LinkedIn.Posts) != 0 || out.Metadata.LinkedInCount != 0 {
		t.Fatalf("expected no linkedin posts, got %+v", out.LinkedIn)
	}
	if out.LinkedIn.Error == "" {
		t.Fatalf("expected linkedin failure text")
	}
	if out.ValidationAvailable {
		t.Fatalf("expected validation unavailable")
	}
	if !strings.HasPrefix(out.Assessment, "Validation unavailable") {
		t.Fatalf("unexpected assessment %q", out.Assessment)
	}
	if !strings.Contains(Render(out), "_No posts generated: linkedin generation: timeout_") {
		t.Fatalf("expected failure note in rendered output")
	}
}

func TestCompileTruncatesContextPreview(t *testing.T) {
	in := sampleInput()
	in.Context = strings.Repeat("a", 150)
	out := Compile(in)
	if out.Metadata.Context != strings.Repeat("a", 100)+"..." {
		t.Fatalf("unexpected preview %q", out.Metadata.Context)
	}
}

func TestCompileDoesNotAliasInput(t *testing.T) {
	in := sampleInput()
	out := Compile(in)
	in.LinkedIn[0] = "mutated"
	if out.LinkedIn.Posts[0] != "li one" {
		t.Fatalf("compiled output shares memory with input")
	}
}

func TestFileStoreNeverOverwrites(t *testing.T) {
	store := NewFileStore(t.TempDir())
	at := time.Date(2026, 10, 19, 9, 1, 30, 0, time.UTC)
	first, err := store.Save(context.Background(), Artifact{CompletedAt: at, Body: []byte("first")})
	if err != nil {
		t.Fatalf("save first: %v", err)
	}
	second, err := store.Save(context.Background(), Artifact{CompletedAt: at, Body: []byte("second")})
	if err != nil {
		t.Fatalf("save second: %v", err)
	}
	if first != "20261019_090130" || second != "20261019_090130-2" {
		t.Fatalf("unexpected stamps %q %q", first, second)
	}
	if _, err := os.Stat(store.Path(first)); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}
	data, err := store.Load(context.Background(), first)
	if err != nil || string(data) != "first" {
		t.Fatalf("load first: %q %v", data, err)
	}
	data, err = store.Load(context.Background(), second)
	if err != nil || string(data) != "second" {
		t.Fatalf("load second: %q %v", data, err)
	}
}

func TestFileStoreLoadErrors(t *testing.T) {
	store := NewFileStore(t.TempDir())
	if _, err := store.Load(context.Background(), "20261019_090130"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Load(context.Background(), "../etc/passwd"); !errors.Is(err, ErrInvalidStamp) {
		t.Fatalf("expected ErrInvalidStamp, got %v", err)
	}
}

func TestRenderHTML(t *testing.T) {
	page, err := RenderHTML([]byte(Render(Compile(sampleInput()))))
	if err != nil {
		t.Fatalf("render html: %v", err)
	}
	html := string(page)
	for _, want := range []string{"<h2>LinkedIn Posts</h2>", "<h3>Post 1</h3>", "<p>x two</p>"} {
		if !strings.Contains(html, want) {
			t.Fatalf("html missing %q:\n%s", want, html)
		}
	}
}

func TestRedisStoreKey(t *testing.T) {
	store := NewRedisStore(nil, "", 0)
	if got := store.Key("20261019_090130"); got != "tlw:output:20261019_090130" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestRenderPDF(t *testing.T) {
	page, err := RenderPDF([]byte(Render(Compile(sampleInput()))))
	if err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	if !bytes.HasPrefix(page, []byte("%PDF-")) {
		t.Fatalf("output is not a pdf: %q", page[:min(len(page), 16)])
	}
	if !bytes.Contains(page, []byte("%%EOF")) {
		t.Fatalf("pdf is not terminated")
	}
}
