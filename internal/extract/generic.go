package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"html"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// GenericStrategy handles office documents, markup and plain-text formats.
// Unknown binary formats yield an empty string rather than an error.
type GenericStrategy struct{}

// Name returns the strategy name.
func (s *GenericStrategy) Name() string {
	return "generic"
}

// Extract dispatches on the sniffed MIME type.
func (s *GenericStrategy) Extract(path string, mime *mimetype.MIME) (string, error) {
	switch {
	case mime == nil:
		return "", nil

	case mime.Is(docxMIME) || mime.Is("application/zip"):
		// Office archives occasionally sniff as bare zip; extractDOCX
		// returns empty when word/document.xml is absent.
		return extractDOCX(path)

	case mime.Is("text/html") || mime.Is("application/xhtml+xml") || mime.Is("text/xml"):
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return stripHTML(string(data)), nil

	case mimeIsText(mime) || mime.Is("application/json"):
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil

	default:
		// Unsupported binary format; the caller treats blank text as
		// the terminal outcome.
		return "", nil
	}
}

// documentXML mirrors the parts of word/document.xml we read.
type documentXML struct {
	Body struct {
		Paragraphs []struct {
			Runs []struct {
				Text []struct {
					Content string `xml:",chardata"`
				} `xml:"t"`
			} `xml:"r"`
		} `xml:"p"`
	} `xml:"body"`
}

// extractDOCX pulls paragraph text out of the DOCX archive.
func extractDOCX(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", err
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", err
		}

		return parseDocumentXML(content), nil
	}

	return "", nil
}

// parseDocumentXML joins the text runs of each paragraph, one paragraph per
// line.
func parseDocumentXML(content []byte) string {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return ""
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, run := range para.Runs {
			for _, text := range run.Text {
				result.WriteString(text.Content)
			}
		}
	}

	return strings.TrimSpace(result.String())
}

// Pre-compiled regular expressions for HTML stripping.
var (
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	headTag       = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements = regexp.MustCompile(`(?i)</?(p|div|br|hr|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	multiSpaces   = regexp.MustCompile(`[ \t]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// stripHTML removes markup and keeps readable text, block boundaries
// becoming newlines.
func stripHTML(content string) string {
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = headTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")
	content = blockElements.ReplaceAllString(content, "\n")
	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = multiSpaces.ReplaceAllString(content, " ")
	content = multiNewlines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
