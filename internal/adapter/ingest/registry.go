// Package ingest converts raw study material into normalised plain text.
// Each document format has a normaliser registered by MIME type; unknown
// types are rejected rather than silently producing empty text.
package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"edumate/internal/domain"
	"edumate/internal/port"
)

// Registry dispatches raw documents to format normalisers by MIME type.
type Registry struct {
	normalisers  map[string]port.Normaliser
	maxFileBytes int64
}

// NewRegistry creates a registry with all built-in normalisers.
func NewRegistry(maxFileBytes int64) *Registry {
	r := &Registry{
		normalisers:  make(map[string]port.Normaliser),
		maxFileBytes: maxFileBytes,
	}
	r.Register(NewPlainText())
	r.Register(NewMarkdown())
	r.Register(NewPDF())
	r.Register(NewDocx())
	return r
}

// Register adds a normaliser for each MIME type it reports.
func (r *Registry) Register(n port.Normaliser) {
	for _, mime := range n.MIMETypes() {
		r.normalisers[mime] = n
	}
}

// Ingest converts raw file bytes of the declared MIME type to normalised
// plain text.
func (r *Registry) Ingest(sourceName, mimeType string, data []byte) (string, error) {
	if r.maxFileBytes > 0 && int64(len(data)) > r.maxFileBytes {
		return "", fmt.Errorf("%w: %s exceeds the %d byte limit", domain.ErrInvalidInput, sourceName, r.maxFileBytes)
	}

	n, ok := r.normalisers[mimeType]
	if !ok {
		return "", fmt.Errorf("%w: %s (%s)", domain.ErrUnsupportedFormat, mimeType, sourceName)
	}

	text, err := n.Normalise(sourceName, data)
	if err != nil {
		return "", err
	}

	text = normaliseText(text)
	if text == "" {
		return "", fmt.Errorf("%w: no text content found in %s", domain.ErrInvalidInput, sourceName)
	}
	return text, nil
}

// MIMEForSource infers a MIME type from the source name extension. Unknown
// extensions map to an empty string, which Ingest rejects.
func (r *Registry) MIMEForSource(sourceName string) string {
	switch strings.ToLower(filepath.Ext(sourceName)) {
	case ".txt", ".text":
		return "text/plain"
	case ".md", ".markdown":
		return "text/markdown"
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return ""
	}
}

// normaliseText folds CRLF to LF, trims trailing whitespace per line, and
// collapses runs of blank lines. Chunk offsets index into the normalised
// form, not the raw file bytes.
func normaliseText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blanks := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			blanks++
			if blanks > 1 {
				continue
			}
		} else {
			blanks = 0
		}
		out = append(out, line)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}
