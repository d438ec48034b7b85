package publisher

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// RenderPDF lays a persisted artifact out as an A4 document. Headings keep
// their Markdown level; everything else is flowed as body text.
func RenderPDF(artifact []byte) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Thought Leadership Content", true)
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()
	// Core fonts are cp1252; the translator maps UTF-8 input onto it.
	tr := doc.UnicodeTranslatorFromDescriptor("")

	for _, line := range strings.Split(strings.ReplaceAll(string(artifact), "\r\n", "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "### "):
			doc.SetFont("Helvetica", "B", 12)
			doc.MultiCell(0, 6, tr(strings.TrimPrefix(line, "### ")), "", "L", false)
		case strings.HasPrefix(line, "## "):
			doc.Ln(2)
			doc.SetFont("Helvetica", "B", 14)
			doc.MultiCell(0, 7, tr(strings.TrimPrefix(line, "## ")), "", "L", false)
		case strings.HasPrefix(line, "# "):
			doc.SetFont("Helvetica", "B", 18)
			doc.MultiCell(0, 9, tr(strings.TrimPrefix(line, "# ")), "", "L", false)
		case strings.TrimSpace(line) == "":
			doc.Ln(3)
		default:
			doc.SetFont("Helvetica", "", 11)
			doc.MultiCell(0, 5, tr(strings.Trim(line, "_")), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
