package qa

import (
	"context"
	"errors"

	"github.com/korventis/sitedocs/internal/core"
	"github.com/korventis/sitedocs/internal/logger"
)

// Fixed user-facing replies for the two empty-retrieval outcomes.
const (
	MsgNoResults       = "Δεν βρέθηκαν σχετικά έγγραφα για την ερώτησή σας."
	MsgNoScopedResults = "Δεν βρέθηκαν σχετικά έγγραφα για το συγκεκριμένο έργο."
)

// Service is the question-answering entry point: retrieve relevant chunks,
// then synthesize an answer. Empty retrievals short-circuit to fixed
// messages without calling the model.
type Service struct {
	retriever *Retriever
	answerer  *Answerer
}

// NewService wires retrieval and answering together.
func NewService(retriever *Retriever, answerer *Answerer) *Service {
	return &Service{retriever: retriever, answerer: answerer}
}

// Ask answers a question from the indexed documents, optionally scoped to
// one project. The returned string is always user-facing: either the
// model's answer or a fixed no-results message.
func (s *Service) Ask(ctx context.Context, question, projectID string) (string, error) {
	logger.Info("Processing question: %q (project=%q)", question, projectID)

	chunks, err := s.retriever.Retrieve(ctx, question, projectID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNoScopedResults):
			logger.Warn("No documents found after project filter")
			return MsgNoScopedResults, nil
		case errors.Is(err, core.ErrNoResults):
			logger.Warn("No relevant documents found for question")
			return MsgNoResults, nil
		default:
			return "", err
		}
	}

	return s.answerer.Answer(ctx, question, chunks)
}
