package ingest

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"edumate/internal/domain"
	"edumate/internal/port"
)

var _ port.Normaliser = (*PDF)(nil)

// PDF extracts plain text from PDF documents.
type PDF struct{}

func NewPDF() *PDF {
	return &PDF{}
}

func (n *PDF) MIMETypes() []string {
	return []string{"application/pdf"}
}

func (n *PDF) Normalise(sourceName string, data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: cannot read PDF %s: %v", domain.ErrInvalidInput, sourceName, err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: cannot extract text from PDF %s: %v", domain.ErrInvalidInput, sourceName, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("%w: cannot extract text from PDF %s: %v", domain.ErrInvalidInput, sourceName, err)
	}

	return buf.String(), nil
}
