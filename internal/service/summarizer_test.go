package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"core/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecords() []model.PhoneRecord {
	return []model.PhoneRecord{
		{
			ID:         1,
			Company:    "Samsung",
			Model:      "Galaxy S24",
			Price:      fptr(79999),
			BatteryMAh: fptr(4000),
			CameraMP:   fptr(50),
			RAMGB:      fptr(8),
			StorageGB:  fptr(256),
			UserRating: fptr(4.5),
		},
		{
			ID:      2,
			Company: "OnePlus",
			Model:   "12R",
			Price:   fptr(39999),
		},
	}
}

func TestSummarizer_NoMatchesSkipsModelCall(t *testing.T) {
	ai := &mockAI{enabled: true}
	summarizer := NewSummarizer(ai, testLogger())

	answer := summarizer.Summarize(context.Background(), "phones under 5000", model.QueryResult{})

	assert.Equal(t, msgNoMatches, answer)
	assert.Zero(t, ai.summarizeCalls)
}

func TestSummarizer_GroundedSummaryWithBuyLinks(t *testing.T) {
	ai := &mockAI{
		enabled: true,
		summarizeFn: func(ctx context.Context, question string, records []model.PhoneRecord, totalMatches int) (string, error) {
			assert.Len(t, records, 2)
			assert.Equal(t, 2, totalMatches)
			return "Here are two great options.", nil
		},
	}
	summarizer := NewSummarizer(ai, testLogger())

	answer := summarizer.Summarize(context.Background(), "best phones", model.QueryResult{Records: testRecords()})

	assert.True(t, strings.HasPrefix(answer, "Here are two great options."))
	assert.Contains(t, answer, "Ready to Buy?")
	assert.Contains(t, answer, "https://www.amazon.in/s?k=Samsung+Galaxy+S24")
	assert.Contains(t, answer, "https://www.flipkart.com/search?q=OnePlus+12R")
}

func TestSummarizer_ModelFailureFallsBackToRendering(t *testing.T) {
	ai := &mockAI{
		enabled: true,
		summarizeFn: func(ctx context.Context, question string, records []model.PhoneRecord, totalMatches int) (string, error) {
			return "", ErrRateLimited
		},
	}
	summarizer := NewSummarizer(ai, testLogger())

	answer := summarizer.Summarize(context.Background(), "best phones", model.QueryResult{Records: testRecords()})

	// The fallback shows every field verbatim, N/A for missing values.
	assert.Contains(t, answer, "I Found 2 Phone")
	assert.Contains(t, answer, "Samsung Galaxy S24")
	assert.Contains(t, answer, "₹79999")
	assert.Contains(t, answer, "N/A")
	assert.Contains(t, answer, "Ready to Buy?")
}

func TestSummarizer_DeduplicatesBeforeSummarizing(t *testing.T) {
	records := []model.PhoneRecord{
		{Company: "Apple", Model: "iPhone 15", Price: fptr(70000)},
		{Company: "Apple", Model: "iPhone 15", Price: fptr(71000)},
		{Company: "Apple", Model: "iPhone 15 Pro", Price: fptr(120000)},
	}
	ai := &mockAI{
		enabled: true,
		summarizeFn: func(ctx context.Context, question string, got []model.PhoneRecord, totalMatches int) (string, error) {
			require.Len(t, got, 2)
			assert.Equal(t, 3, totalMatches)
			return "ok", nil
		},
	}
	summarizer := NewSummarizer(ai, testLogger())

	summarizer.Summarize(context.Background(), "iphones", model.QueryResult{Records: records})
	assert.Equal(t, 1, ai.summarizeCalls)
}

func TestSummarizer_AnswerGeneralPassesThrough(t *testing.T) {
	ai := &mockAI{
		enabled: true,
		generalFn: func(ctx context.Context, question string) (string, error) {
			return "OLED displays emit their own light.", nil
		},
	}
	summarizer := NewSummarizer(ai, testLogger())

	answer, err := summarizer.AnswerGeneral(context.Background(), "what is OLED?")
	require.NoError(t, err)
	assert.Equal(t, "OLED displays emit their own light.", answer)

	ai.generalFn = func(ctx context.Context, question string) (string, error) {
		return "", errors.New("boom")
	}
	_, err = summarizer.AnswerGeneral(context.Background(), "what is OLED?")
	assert.Error(t, err)
}
