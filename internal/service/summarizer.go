package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"core/internal/model"

	"github.com/sirupsen/logrus"
)

// Summarizer renders retrieved records into a conversational answer. Every
// path is grounded: the model sees only the records, the no-match path
// skips the model entirely, and model failure falls back to a
// deterministic field-by-field rendering.
type Summarizer struct {
	ai  AIClient
	log *logrus.Entry
}

// NewSummarizer creates a new result summarizer
func NewSummarizer(ai AIClient, log *logrus.Logger) *Summarizer {
	return &Summarizer{
		ai:  ai,
		log: log.WithField("component", "summarizer"),
	}
}

// Summarize produces the final answer for a query turn. It never fails:
// empty results get the templated no-match message and model errors
// degrade to the deterministic rendering.
func (s *Summarizer) Summarize(ctx context.Context, question string, result model.QueryResult) string {
	if len(result.Records) == 0 {
		return msgNoMatches
	}

	unique := result.UniqueByModel(model.MaxCompareRecords)

	summary, err := s.ai.Summarize(ctx, question, unique, len(result.Records))
	if err != nil {
		s.log.WithError(err).Warn("summarizer model call failed, using deterministic rendering")
		summary = renderRecords(unique)
	}

	return summary + buyLinks(unique)
}

// AnswerGeneral serves the general_qa path; the catalog is never touched.
func (s *Summarizer) AnswerGeneral(ctx context.Context, question string) (string, error) {
	return s.ai.AnswerGeneral(ctx, question)
}

// renderRecords is the deterministic fallback: one block per phone, every
// field taken verbatim from the record.
func renderRecords(records []model.PhoneRecord) string {
	var b strings.Builder
	plural := ""
	if len(records) > 1 {
		plural = "s"
	}
	fmt.Fprintf(&b, "## 📱 I Found %d Phone%s for You\n\n", len(records), plural)

	for _, rec := range records {
		fmt.Fprintf(&b, "### %s\n", rec.DisplayName())
		fmt.Fprintf(&b, "- 💰 Price: %s\n", formatINR(rec.Price))
		fmt.Fprintf(&b, "- 🔋 Battery: %s mAh\n", formatNum(rec.BatteryMAh))
		fmt.Fprintf(&b, "- 📷 Camera: %s MP\n", formatNum(rec.CameraMP))
		fmt.Fprintf(&b, "- 💾 RAM: %s GB\n", formatNum(rec.RAMGB))
		fmt.Fprintf(&b, "- 💿 Storage: %s GB\n", formatNum(rec.StorageGB))
		fmt.Fprintf(&b, "- ⭐ Rating: %s\n\n", formatNum(rec.UserRating))
	}

	return strings.TrimRight(b.String(), "\n")
}

// buyLinks builds the shopping links from canonical names only.
func buyLinks(records []model.PhoneRecord) string {
	var b strings.Builder
	b.WriteString("\n\n---\n\n## 🛒 Ready to Buy?\n\n")

	for _, rec := range records {
		name := rec.DisplayName()
		if name == "" {
			continue
		}
		encoded := url.QueryEscape(name)
		fmt.Fprintf(&b, "### %s\n", name)
		fmt.Fprintf(&b, "**%s** | [🛒 Amazon](https://www.amazon.in/s?k=%s) | [🛒 Flipkart](https://www.flipkart.com/search?q=%s)\n\n",
			formatINR(rec.Price), encoded, encoded)
	}

	b.WriteString("*Prices may vary. Links open search results on respective platforms.*")
	return b.String()
}

func formatINR(price *float64) string {
	if price == nil {
		return "N/A"
	}
	return fmt.Sprintf("₹%.0f", *price)
}

func formatNum(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%g", *v)
}
