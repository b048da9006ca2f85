package service

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes every component maps into. The
// orchestrator converts each class into a user-safe message; raw upstream
// error text never reaches the user.
var (
	ErrRateLimited        = errors.New("rate limited")
	ErrNotFound           = errors.New("not found")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// ValidationError marks malformed or schema-violating model output. It is
// recovered locally by falling back to a safe default or a refusal.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid model output: " + e.Reason
}

func newValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// User-facing fallback copy. Kept together so every turn failure resolves
// to one of a small, reviewed set of messages.
const (
	msgRateLimited = "⏳ **I'm a bit busy right now.** Please wait a moment and try again shortly."

	msgUnavailable = "😔 **Sorry, I'm having trouble reaching my data sources right now.** Please try again in a few moments."

	msgTryRephrasing = "❌ **Oops!** I couldn't process your query right now. Please try again in a moment, or rephrase your question."

	msgNoMatches = "😔 **No phones found matching your criteria.**\n\n**Suggestions:**\n- Try widening your price range\n- Adjust the sidebar filters\n- Check if the model name is spelled correctly\n- Ask for recommendations instead (e.g., 'Best phone under ₹50,000')"

	msgClarify = "🤔 **I need a bit more to go on.** Tell me a brand, a model, or a constraint like a budget (e.g., 'Samsung under ₹30,000'). Meanwhile, here are some of our top-rated phones:"
)

// userMessage maps a component failure to the safe message shown to the
// user in place of an answer.
func userMessage(err error) string {
	var ve *ValidationError
	switch {
	case errors.Is(err, ErrRateLimited):
		return msgRateLimited
	case errors.Is(err, ErrServiceUnavailable):
		return msgUnavailable
	case errors.Is(err, ErrNotFound):
		return msgNoMatches
	case errors.As(err, &ve):
		return msgTryRephrasing
	default:
		return msgTryRephrasing
	}
}
