package ingest

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"edumate/internal/domain"
)

func TestIngestPlainText(t *testing.T) {
	r := NewRegistry(10 << 20)

	text, err := r.Ingest("notes.txt", "text/plain", []byte("Water cycles through evaporation.\r\nThen condensation.  \n\n\n\nThen precipitation."))
	if err != nil {
		t.Fatal(err)
	}

	if strings.Contains(text, "\r") {
		t.Error("CRLF not folded to LF")
	}
	if strings.Contains(text, "\n\n\n") {
		t.Error("blank line runs not collapsed")
	}
	if !strings.Contains(text, "Then condensation.\n") && !strings.HasSuffix(text, "Then condensation.") {
		t.Error("trailing whitespace not trimmed per line")
	}
}

func TestIngestUnsupportedFormat(t *testing.T) {
	r := NewRegistry(10 << 20)

	_, err := r.Ingest("slides.pptx", "application/vnd.ms-powerpoint", []byte("x"))
	if !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestIngestSizeCap(t *testing.T) {
	r := NewRegistry(16)

	_, err := r.Ingest("big.txt", "text/plain", bytes.Repeat([]byte("a"), 32))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for oversized file, got %v", err)
	}
}

func TestIngestEmptyDocument(t *testing.T) {
	r := NewRegistry(10 << 20)

	_, err := r.Ingest("empty.txt", "text/plain", []byte("   \n\t\n  "))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty document, got %v", err)
	}
}

func TestIngestMarkdown(t *testing.T) {
	r := NewRegistry(10 << 20)

	md := "# The Water Cycle\n\nWater **evaporates** from oceans.\n\n- condensation\n- precipitation\n\n```\nH2O\n```\n"
	text, err := r.Ingest("cycle.md", "text/markdown", []byte(md))
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"The Water Cycle", "Water evaporates from oceans.", "condensation", "H2O"} {
		if !strings.Contains(text, want) {
			t.Errorf("markdown text missing %q:\n%s", want, text)
		}
	}
	for _, markup := range []string{"#", "**", "```"} {
		if strings.Contains(text, markup) {
			t.Errorf("markdown markup %q not stripped:\n%s", markup, text)
		}
	}
}

func TestIngestDocx(t *testing.T) {
	r := NewRegistry(10 << 20)

	text, err := r.Ingest("notes.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", buildDocx(t,
		"Photosynthesis happens in chloroplasts.",
		"It produces glucose and oxygen.",
	))
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(text, "Photosynthesis happens in chloroplasts.") {
		t.Errorf("first paragraph missing: %q", text)
	}
	if !strings.Contains(text, "It produces glucose and oxygen.") {
		t.Errorf("second paragraph missing: %q", text)
	}
}

func TestIngestDocxCorrupt(t *testing.T) {
	r := NewRegistry(10 << 20)

	_, err := r.Ingest("broken.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", []byte("not a zip archive"))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for corrupt docx, got %v", err)
	}
}

func TestMIMEForSource(t *testing.T) {
	r := NewRegistry(10 << 20)

	tests := []struct {
		source string
		want   string
	}{
		{"a.txt", "text/plain"},
		{"b.MD", "text/markdown"},
		{"c.pdf", "application/pdf"},
		{"d.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"e.pptx", ""},
		{"noext", ""},
	}

	for _, tt := range tests {
		if got := r.MIMEForSource(tt.source); got != tt.want {
			t.Errorf("MIMEForSource(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}

// buildDocx assembles a minimal valid .docx archive with one w:p per
// paragraph.
func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>`)
		body.WriteString(p)
		body.WriteString(`</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte(body.String())); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
