// Package chunk splits extracted document text into overlapping segments
// sized for embedding and retrieval.
package chunk

import (
	"strings"

	"github.com/korventis/sitedocs/internal/logger"
)

// DefaultMaxSize is the default maximum chunk length in characters.
const DefaultMaxSize = 800

// DefaultOverlap is the default number of characters carried over between
// consecutive chunks.
const DefaultOverlap = 150

// DefaultMaxChunks is the safety valve on the character-stride path.
const DefaultMaxChunks = 1000

// Config tunes the splitter. Zero values fall back to the defaults.
type Config struct {
	MaxSize   int
	Overlap   int
	MaxChunks int
}

// Splitter splits text into chunks. Paragraph boundaries are preferred,
// oversized paragraphs are split on sentences, and text without any
// structure falls back to fixed-stride character windows.
type Splitter struct {
	maxSize   int
	overlap   int
	maxChunks int
}

// New creates a splitter from the given configuration.
func New(cfg Config) *Splitter {
	s := &Splitter{
		maxSize:   cfg.MaxSize,
		overlap:   cfg.Overlap,
		maxChunks: cfg.MaxChunks,
	}
	if s.maxSize <= 0 {
		s.maxSize = DefaultMaxSize
	}
	if s.overlap <= 0 {
		s.overlap = DefaultOverlap
	}
	// Overlap must leave room for the window to advance.
	if s.overlap >= s.maxSize {
		s.overlap = s.maxSize / 4
	}
	if s.maxChunks <= 0 {
		s.maxChunks = DefaultMaxChunks
	}
	return s
}

// Split returns the ordered chunks of text. A chunk may exceed the maximum
// size only when a single sentence is itself oversized; data loss takes
// priority over strict sizing.
func (s *Splitter) Split(text string) []string {
	// Short text is a single chunk, overlap logic never runs.
	if len(text) <= s.maxSize {
		return []string{text}
	}

	paragraphs := strings.Split(text, "\n\n")
	logger.Debug("Splitting %d characters: %d paragraphs, max %d, overlap %d",
		len(text), len(paragraphs), s.maxSize, s.overlap)

	// A single wall of text that still carries sentence delimiters is
	// split on sentences, not characters.
	if len(paragraphs) > 1 || strings.Contains(text, ". ") {
		return s.splitParagraphs(paragraphs)
	}

	return s.splitByStride(text)
}

// splitParagraphs greedily accumulates paragraphs into chunks, reseeding
// each new chunk with the tail of the previous one so that information
// spanning a boundary stays retrievable.
func (s *Splitter) splitParagraphs(paragraphs []string) []string {
	var chunks []string
	var buf strings.Builder

	for _, paragraph := range paragraphs {
		if buf.Len()+len(paragraph) > s.maxSize && buf.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(buf.String()))
			buf.Reset()

			// Seed the new chunk with the overlap tail of the one
			// just flushed.
			last := chunks[len(chunks)-1]
			start := len(last) - s.overlap
			if start < 0 {
				start = 0
			}
			buf.WriteString(last[start:])
			buf.WriteString(" ")
		}

		if len(paragraph) > s.maxSize {
			// Oversized paragraph: fall back to sentence boundaries.
			// Overlap is not reseeded inside this sub-split.
			for _, sentence := range strings.Split(paragraph, ". ") {
				if buf.Len()+len(sentence) > s.maxSize && buf.Len() > 0 {
					chunks = append(chunks, strings.TrimSpace(buf.String()))
					buf.Reset()
				}
				buf.WriteString(sentence)
				buf.WriteString(". ")
			}
		} else {
			buf.WriteString(paragraph)
			buf.WriteString("\n\n")
		}
	}

	if buf.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(buf.String()))
	}

	return chunks
}

// splitByStride cuts fixed-size character windows for text without any
// paragraph or sentence structure.
func (s *Splitter) splitByStride(text string) []string {
	var chunks []string
	position := 0
	count := 0

	for position < len(text) {
		end := position + s.maxSize
		if end > len(text) {
			end = len(text)
		}

		// Prefer cutting at a space, looking back at most 100 characters
		// from the window end.
		if end < len(text) {
			searchStart := end - 100
			if searchStart < position {
				searchStart = position
			}
			if lastSpace := strings.LastIndexByte(text[:end+1], ' '); lastSpace > searchStart {
				end = lastSpace + 1 // keep the space with the left chunk
			}
		}

		if chunk := strings.TrimSpace(text[position:end]); chunk != "" {
			chunks = append(chunks, chunk)
			count++
		}

		next := end - s.overlap
		// The space search can pull end back near the start; force
		// advancement so the loop always terminates.
		if next <= position {
			next = end
		}
		position = next

		if count > s.maxChunks {
			logger.Error("Chunk count exceeded %d, stopping stride split early", s.maxChunks)
			break
		}
	}

	return chunks
}
