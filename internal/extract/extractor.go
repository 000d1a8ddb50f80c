// Package extract produces plain text from uploaded files. A dedicated PDF
// text-layer strategy runs first, then a generic multi-format strategy;
// every failure degrades to an empty string so the caller decides whether
// empty text is fatal.
package extract

import (
	"context"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/korventis/sitedocs/internal/logger"
)

// Strategy is one extraction attempt. Returning an empty string with a nil
// error means "not mine, try the next one".
type Strategy interface {
	Name() string
	Extract(path string, mime *mimetype.MIME) (string, error)
}

// Extractor runs an ordered chain of extraction strategies over a file,
// short-circuiting on the first non-blank result.
type Extractor struct {
	strategies []Strategy
}

// New creates an extractor with the default strategy chain.
func New() *Extractor {
	return &Extractor{
		strategies: []Strategy{
			&PDFStrategy{},
			&GenericStrategy{},
		},
	}
}

// NewWithStrategies creates an extractor with an explicit chain, mostly for
// tests.
func NewWithStrategies(strategies ...Strategy) *Extractor {
	return &Extractor{strategies: strategies}
}

// Extract returns the plain text of the file at path, or an empty string
// when nothing could be extracted. It never fails.
func (e *Extractor) Extract(ctx context.Context, path string) string {
	mime, err := mimetype.DetectFile(path)
	if err != nil {
		logger.Error("Failed to detect MIME type for %s: %v", path, err)
		mime = nil
	} else {
		logger.Debug("Detected MIME type for %s: %s", path, mime.String())
	}

	for _, strategy := range e.strategies {
		if ctx.Err() != nil {
			return ""
		}

		text, err := strategy.Extract(path, mime)
		if err != nil {
			logger.Warn("%s extraction failed for %s: %v", strategy.Name(), path, err)
			continue
		}
		if strings.TrimSpace(text) != "" {
			logger.Info("%s extracted %d characters from %s", strategy.Name(), len(text), path)
			return text
		}
	}

	logger.Warn("No text extracted from %s", path)
	return ""
}

// mimeIsText reports whether the detected type descends from text/plain.
func mimeIsText(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}
