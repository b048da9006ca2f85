package service

import (
	"context"
	"errors"
	"io"

	"core/internal/model"
	"core/internal/repository"

	"github.com/sirupsen/logrus"
)

// mockAI is a programmable AIClient. Unset functions fail loudly so a
// test exercising one path cannot silently wander into another.
type mockAI struct {
	enabled bool

	parseFn     func(ctx context.Context, utterance string, history []model.ChatTurn) (*model.StructuredIntent, error)
	summarizeFn func(ctx context.Context, question string, records []model.PhoneRecord, totalMatches int) (string, error)
	generalFn   func(ctx context.Context, question string) (string, error)
	embedFn     func(ctx context.Context, text string) ([]float32, error)

	parseCalls     int
	summarizeCalls int
	generalCalls   int
	embedCalls     int
}

func (m *mockAI) ParseIntent(ctx context.Context, utterance string, history []model.ChatTurn) (*model.StructuredIntent, error) {
	m.parseCalls++
	if m.parseFn == nil {
		return nil, errors.New("unexpected ParseIntent call")
	}
	return m.parseFn(ctx, utterance, history)
}

func (m *mockAI) Summarize(ctx context.Context, question string, records []model.PhoneRecord, totalMatches int) (string, error) {
	m.summarizeCalls++
	if m.summarizeFn == nil {
		return "", errors.New("unexpected Summarize call")
	}
	return m.summarizeFn(ctx, question, records, totalMatches)
}

func (m *mockAI) AnswerGeneral(ctx context.Context, question string) (string, error) {
	m.generalCalls++
	if m.generalFn == nil {
		return "", errors.New("unexpected AnswerGeneral call")
	}
	return m.generalFn(ctx, question)
}

func (m *mockAI) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	m.embedCalls++
	if m.embedFn == nil {
		return nil, errors.New("unexpected CreateEmbedding call")
	}
	return m.embedFn(ctx, text)
}

func (m *mockAI) IsEnabled() bool { return m.enabled }

// mockIndex is a programmable NameIndex.
type mockIndex struct {
	nearestFn func(ctx context.Context, embedding []float32, kind, companyScope string) (*repository.NameMatch, error)
	calls     []string // kind + "/" + companyScope, in call order
}

func (m *mockIndex) Nearest(ctx context.Context, embedding []float32, kind, companyScope string) (*repository.NameMatch, error) {
	m.calls = append(m.calls, kind+"/"+companyScope)
	if m.nearestFn == nil {
		return nil, errors.New("unexpected Nearest call")
	}
	return m.nearestFn(ctx, embedding, kind, companyScope)
}

// mockCatalog serves canonical names for the lexical fallback.
type mockCatalog struct {
	companies []string
	models    []model.PhoneSelection
}

func (m *mockCatalog) Companies(ctx context.Context) ([]string, error) {
	return m.companies, nil
}

func (m *mockCatalog) ModelNames(ctx context.Context) ([]model.PhoneSelection, error) {
	return m.models, nil
}

// mockStore is a programmable Store.
type mockStore struct {
	searchFn func(ctx context.Context, q model.SafeQuery) (model.QueryResult, error)
	queries  []model.SafeQuery
}

func (m *mockStore) Search(ctx context.Context, q model.SafeQuery) (model.QueryResult, error) {
	m.queries = append(m.queries, q)
	if m.searchFn == nil {
		return model.QueryResult{}, errors.New("unexpected Search call")
	}
	return m.searchFn(ctx, q)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func fptr(v float64) *float64 { return &v }

func sptr(s string) *string { return &s }
