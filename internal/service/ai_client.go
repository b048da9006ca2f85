package service

import (
	"context"

	"core/internal/model"
)

// AIClient is the language-model boundary. Two call shapes exist:
// structured extraction (ParseIntent) and free-text generation (Summarize,
// AnswerGeneral); both validate output shape before returning. Embeddings
// serve the entity resolver.
type AIClient interface {
	// ParseIntent extracts a structured intent from the utterance, with the
	// conversation history as read-only context.
	ParseIntent(ctx context.Context, utterance string, history []model.ChatTurn) (*model.StructuredIntent, error)

	// Summarize generates a grounded comparison over the given records.
	// Every factual claim must come from the records themselves.
	Summarize(ctx context.Context, question string, records []model.PhoneRecord, totalMatches int) (string, error)

	// AnswerGeneral answers a general mobile-technology question without
	// touching the phone catalog.
	AnswerGeneral(ctx context.Context, question string) (string, error)

	// CreateEmbedding embeds a single short text (a brand or model token).
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)

	// IsEnabled reports whether the client is configured and ready.
	IsEnabled() bool
}

// Ensure OpenAIClient implements AIClient
var _ AIClient = (*OpenAIClient)(nil)
