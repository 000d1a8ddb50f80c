package qa

import (
	"context"
	"fmt"
	"strings"

	"github.com/korventis/sitedocs/internal/core"
	"github.com/korventis/sitedocs/internal/logger"
)

// contextSeparator divides document excerpts inside the prompt context.
const contextSeparator = "\n\n---\n\n"

// promptTemplate instructs the model to answer only from the supplied
// documents and to say so plainly when the answer is not in them.
const promptTemplate = `Βασιζόμενος στα παρακάτω έγγραφα, απάντησε στην ερώτηση του χρήστη.
Αν η απάντηση δεν βρίσκεται στα έγγραφα, πες το ξεκάθαρα.

ΕΓΓΡΑΦΑ:
%s

ΕΡΩΤΗΣΗ:
%s

ΑΠΑΝΤΗΣΗ:
`

// Answerer turns retrieved chunks into a grounded natural-language answer
// via a single chat completion.
type Answerer struct {
	chat core.ChatService
}

// NewAnswerer wraps a chat service.
func NewAnswerer(chat core.ChatService) *Answerer {
	return &Answerer{chat: chat}
}

// Answer builds a grounded prompt from the chunks and returns the model's
// reply verbatim.
func (a *Answerer) Answer(ctx context.Context, question string, chunks []core.SearchResult) (string, error) {
	docContext := buildContext(chunks)
	logger.Info("Context built: %d characters from %d chunks", len(docContext), len(chunks))

	prompt := fmt.Sprintf(promptTemplate, docContext, question)

	response, err := a.chat.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	return response, nil
}

// buildContext renders each chunk as an excerpt attributed to its source
// document.
func buildContext(chunks []core.SearchResult) string {
	blocks := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		title := chunk.Metadata[core.MetaTitle]
		blocks = append(blocks, fmt.Sprintf("Από έγγραφο '%s':\n%s", title, chunk.Content))
	}
	return strings.Join(blocks, contextSeparator)
}
