package port

// Normaliser converts one document format to plain text.
type Normaliser interface {
	// MIMETypes returns the MIME types this normaliser handles.
	MIMETypes() []string

	// Normalise extracts normalised plain text from raw file bytes.
	Normalise(sourceName string, data []byte) (string, error)
}

// Ingestor resolves a normaliser by MIME type and produces plain text.
type Ingestor interface {
	// Ingest converts raw file bytes of the declared MIME type to
	// normalised plain text.
	Ingest(sourceName, mimeType string, data []byte) (string, error)

	// MIMEForSource infers a MIME type from the source name extension.
	MIMEForSource(sourceName string) string
}
