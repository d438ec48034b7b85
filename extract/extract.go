// Package extract turns uploaded documents into plain text that can be used
// as job context.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var (
	ErrUnsupported = errors.New("unsupported document type")
	ErrNoText      = errors.New("document contains no text")
)

// Supported lists the accepted file extensions.
var Supported = []string{".pdf", ".txt", ".md", ".markdown"}

// Text extracts plain text from a document, choosing the decoder by the
// file extension of name.
func Text(name string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	var out string
	switch ext {
	case ".pdf":
		body, err := pdfText(data)
		if err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		out = body
	case ".txt":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%s: %w: not valid UTF-8", name, ErrUnsupported)
		}
		out = string(data)
	case ".md", ".markdown":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%s: %w: not valid UTF-8", name, ErrUnsupported)
		}
		out = markdownText(data)
	default:
		return "", fmt.Errorf("%s: %w %q", name, ErrUnsupported, ext)
	}
	out = normalize(out)
	if out == "" {
		return "", fmt.Errorf("%s: %w", name, ErrNoText)
	}
	return out, nil
}

// pdfText concatenates the text of every page. Malformed files can make the
// parser panic; that is reported as a read error.
func pdfText(data []byte) (plain string, err error) {
	defer func() {
		if r := recover(); r != nil {
			plain, err = "", fmt.Errorf("read pdf: malformed document: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	content, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(content); err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	return buf.String(), nil
}

func markdownText(src []byte) string {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	var buf bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock && n.Kind() != ast.KindDocument {
				buf.WriteByte('\n')
			}
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(node.Value)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(src))
			}
			return ast.WalkSkipChildren, nil
		case *ast.AutoLink:
			buf.Write(node.URL(src))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// normalize trims each line and collapses runs of blank lines.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
