package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"core/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// IntentParser turns a user utterance into a validated StructuredIntent
// with a single model call.
type IntentParser struct {
	ai       AIClient
	validate *validator.Validate
	log      *logrus.Entry
}

// NewIntentParser creates a new intent parser
func NewIntentParser(ai AIClient, log *logrus.Logger) *IntentParser {
	return &IntentParser{
		ai:       ai,
		validate: validator.New(),
		log:      log.WithField("component", "intent"),
	}
}

// Parse extracts a structured intent from the utterance. Unparseable or
// schema-violating model output degrades to a refusal intent; transport
// failures propagate so the orchestrator can surface them.
func (p *IntentParser) Parse(ctx context.Context, utterance string, history []model.ChatTurn) (*model.StructuredIntent, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return &model.StructuredIntent{Task: model.TaskQuery}, nil
	}

	if p.ai == nil || !p.ai.IsEnabled() {
		return nil, fmt.Errorf("%w: AI client is not enabled", ErrServiceUnavailable)
	}

	intent, err := p.ai.ParseIntent(ctx, utterance, history)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			p.log.WithField("reason", ve.Reason).Warn("intent output invalid, treating as refusal")
			return refusalIntent("I couldn't understand that request. Please ask about mobile phones."), nil
		}
		return nil, err
	}

	if err := p.validate.Struct(intent); err != nil {
		p.log.WithError(err).Warn("intent failed schema validation, treating as refusal")
		return refusalIntent("I couldn't understand that request. Please ask about mobile phones."), nil
	}

	p.sanitize(intent)
	intent.Constraints = MergeConstraints(intent.Constraints)

	return intent, nil
}

func refusalIntent(reason string) *model.StructuredIntent {
	return &model.StructuredIntent{
		Task:          model.TaskRefusal,
		RefusalReason: reason,
	}
}

// sanitize drops constraints and sort fields the schema does not define,
// and lowercases string constraint values for case-insensitive matching.
func (p *IntentParser) sanitize(intent *model.StructuredIntent) {
	kept := intent.Constraints[:0]
	for _, c := range intent.Constraints {
		if !c.Field.IsQueryable() {
			p.log.WithField("field", c.Field).Warn("dropping constraint on unknown field")
			continue
		}
		if c.Field.IsString() {
			text, ok := c.Text()
			if !ok {
				p.log.WithField("field", c.Field).Warn("dropping non-string constraint on text field")
				continue
			}
			c.Value = strings.ToLower(strings.TrimSpace(text))
			c.Operator = model.OpEqual
		} else {
			num, ok := c.Number()
			if !ok {
				p.log.WithField("field", c.Field).Warn("dropping non-numeric constraint on numeric field")
				continue
			}
			c.Value = num
		}
		kept = append(kept, c)
	}
	intent.Constraints = kept

	if intent.SortField != "" && !intent.SortField.IsQueryable() {
		p.log.WithField("field", intent.SortField).Warn("dropping unknown sort field")
		intent.SortField = ""
	}
}

// MergeConstraints collapses repeated numeric constraints per field.
// Directionally compatible bounds merge into a range; a repeated operator
// or a directionally conflicting pair resolves last-wins ("over 30000 but
// under 20000" keeps only "under 20000"). String constraints pass through
// untouched since repeated company/model terms form disjunctions later.
func MergeConstraints(constraints []model.Constraint) []model.Constraint {
	type bound struct {
		value float64
		order int
	}
	lower := map[model.Field]bound{}
	upper := map[model.Field]bound{}
	exact := map[model.Field]bound{}
	var fieldOrder []model.Field
	var out []model.Constraint

	seen := func(f model.Field) {
		for _, existing := range fieldOrder {
			if existing == f {
				return
			}
		}
		fieldOrder = append(fieldOrder, f)
	}

	for i, c := range constraints {
		if c.Field.IsString() {
			out = append(out, c)
			continue
		}
		num, ok := c.Number()
		if !ok {
			continue
		}
		seen(c.Field)
		switch c.Operator {
		case model.OpGreaterEqual:
			lower[c.Field] = bound{num, i}
		case model.OpLessEqual:
			upper[c.Field] = bound{num, i}
		case model.OpEqual:
			exact[c.Field] = bound{num, i}
		}
	}

	for _, f := range fieldOrder {
		lo, hasLo := lower[f]
		hi, hasHi := upper[f]
		ex, hasEx := exact[f]

		// An exact value supersedes bounds stated earlier, and vice versa.
		if hasEx && (!hasLo || ex.order > lo.order) && (!hasHi || ex.order > hi.order) {
			out = append(out, model.Constraint{Field: f, Operator: model.OpEqual, Value: ex.value})
			continue
		}

		if hasLo && hasHi && lo.value > hi.value {
			// Directionally conflicting range: last wins.
			if lo.order > hi.order {
				hasHi = false
			} else {
				hasLo = false
			}
		}
		if hasLo {
			out = append(out, model.Constraint{Field: f, Operator: model.OpGreaterEqual, Value: lo.value})
		}
		if hasHi {
			out = append(out, model.Constraint{Field: f, Operator: model.OpLessEqual, Value: hi.value})
		}
	}

	return out
}
