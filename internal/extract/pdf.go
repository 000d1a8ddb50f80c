package extract

import (
	"bytes"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

// PDFStrategy extracts the embedded text layer of a PDF. Scanned PDFs have
// no text layer and yield an empty string, which sends the file to the
// generic fallback.
type PDFStrategy struct{}

// Name returns the strategy name.
func (s *PDFStrategy) Name() string {
	return "pdf"
}

// Extract reads the PDF text layer. Non-PDF files are skipped.
func (s *PDFStrategy) Extract(path string, mime *mimetype.MIME) (string, error) {
	if mime == nil || !mime.Is("application/pdf") {
		return "", nil
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", err
	}

	return buf.String(), nil
}
