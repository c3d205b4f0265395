package ingest

import (
	"fmt"
	"unicode/utf8"

	"edumate/internal/domain"
	"edumate/internal/port"
)

var _ port.Normaliser = (*PlainText)(nil)

// PlainText handles plain text documents.
type PlainText struct{}

func NewPlainText() *PlainText {
	return &PlainText{}
}

func (n *PlainText) MIMETypes() []string {
	return []string{"text/plain"}
}

func (n *PlainText) Normalise(sourceName string, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8 text", domain.ErrInvalidInput, sourceName)
	}
	return string(data), nil
}
