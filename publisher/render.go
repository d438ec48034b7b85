package publisher

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
)

// Render produces the persisted plain-text document. It is valid Markdown so
// the same bytes can be rendered to HTML.
func Render(c CompiledOutput) string {
	var b strings.Builder
	b.WriteString("# Thought Leadership Content\n\n")

	writeSection(&b, "LinkedIn Posts", c.LinkedIn)
	writeSection(&b, "X Posts", c.X)

	b.WriteString("## Validation Summary\n\n")
	b.WriteString(strings.TrimSpace(c.Assessment))
	b.WriteString("\n\n")

	m := c.Metadata
	b.WriteString("## Run Metadata\n\n")
	b.WriteString(fmt.Sprintf("- Run: %s\n", m.RunID))
	b.WriteString(fmt.Sprintf("- Context: %s\n", m.Context))
	b.WriteString(fmt.Sprintf("- Requested posts per platform: %d\n", m.RequestedPosts))
	b.WriteString(fmt.Sprintf("- LinkedIn posts: %d\n", m.LinkedInCount))
	b.WriteString(fmt.Sprintf("- X posts: %d\n", m.XCount))
	if len(m.Agents) > 0 {
		b.WriteString(fmt.Sprintf("- Agents: %s\n", strings.Join(m.Agents, ", ")))
	}
	b.WriteString(fmt.Sprintf("- Started: %s\n", m.StartedAt.UTC().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("- Completed: %s\n", m.CompletedAt.UTC().Format(time.RFC3339)))
	return b.String()
}

func writeSection(b *strings.Builder, title string, s PlatformSection) {
	b.WriteString(fmt.Sprintf("## %s\n\n", title))
	if len(s.Posts) == 0 {
		if s.Error != "" {
			b.WriteString(fmt.Sprintf("_No posts generated: %s_\n\n", s.Error))
		} else {
			b.WriteString("_No posts generated._\n\n")
		}
		return
	}
	for i, p := range s.Posts {
		b.WriteString(fmt.Sprintf("### Post %d\n\n", i+1))
		b.WriteString(strings.TrimSpace(p))
		b.WriteString("\n\n")
	}
}

// RenderHTML converts a persisted artifact to a standalone HTML page.
func RenderHTML(artifact []byte) ([]byte, error) {
	var body bytes.Buffer
	if err := goldmark.Convert(artifact, &body); err != nil {
		return nil, err
	}
	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Thought Leadership Content</title></head><body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body></html>\n")
	return page.Bytes(), nil
}
