package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"edumate/internal/domain"
	"edumate/internal/port"
)

var _ port.Normaliser = (*Docx)(nil)

// Docx extracts paragraph text from Word documents. A .docx file is a zip
// archive; the text lives in word/document.xml as w:t runs grouped into
// w:p paragraphs.
type Docx struct{}

func NewDocx() *Docx {
	return &Docx{}
}

func (n *Docx) MIMETypes() []string {
	return []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"}
}

func (n *Docx) Normalise(sourceName string, data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: cannot open DOCX %s: %v", domain.ErrInvalidInput, sourceName, err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("%w: %s has no word/document.xml", domain.ErrInvalidInput, sourceName)
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("%w: cannot open DOCX %s: %v", domain.ErrInvalidInput, sourceName, err)
	}
	defer rc.Close()

	return extractDocxText(rc, sourceName)
}

func extractDocxText(r io.Reader, sourceName string) (string, error) {
	dec := xml.NewDecoder(r)
	var buf strings.Builder

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: malformed DOCX %s: %v", domain.ErrInvalidInput, sourceName, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				var s string
				if err := dec.DecodeElement(&s, &t); err != nil {
					return "", fmt.Errorf("%w: malformed DOCX %s: %v", domain.ErrInvalidInput, sourceName, err)
				}
				buf.WriteString(s)
			case "tab":
				buf.WriteByte('\t')
			case "br":
				buf.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				buf.WriteByte('\n')
			}
		}
	}

	return buf.String(), nil
}
