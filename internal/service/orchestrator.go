package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"core/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TurnState names the steps of a single turn. ERROR is reachable from
// every step; refusal and general_qa short-circuit after PARSED.
type TurnState string

const (
	StateReceived    TurnState = "RECEIVED"
	StateParsed      TurnState = "PARSED"
	StateResolved    TurnState = "RESOLVED"
	StateSkipResolve TurnState = "SKIP_RESOLVE"
	StateTranslated  TurnState = "TRANSLATED"
	StateFetched     TurnState = "FETCHED"
	StateSummarized  TurnState = "SUMMARIZED"
	StateDone        TurnState = "DONE"
	StateError       TurnState = "ERROR"
)

// StatusFunc receives progress updates while a turn runs, for streaming
// callers. It may be nil.
type StatusFunc func(state TurnState, note string)

// Store is the structured-data-store boundary the orchestrator consumes.
type Store interface {
	Search(ctx context.Context, q model.SafeQuery) (model.QueryResult, error)
}

// Orchestrator sequences parser, resolver, translator, store and
// summarizer over one turn. All dependencies are injected at startup and
// shared across in-flight turns; a turn never mutates shared state.
type Orchestrator struct {
	parser     *IntentParser
	resolver   *EntityResolver
	translator *Translator
	store      Store
	summarizer *Summarizer
	cache      *answerCache
	log        *logrus.Entry
}

// NewOrchestrator wires the turn pipeline.
func NewOrchestrator(
	parser *IntentParser,
	resolver *EntityResolver,
	translator *Translator,
	store Store,
	summarizer *Summarizer,
	cacheSize int,
	log *logrus.Logger,
) *Orchestrator {
	return &Orchestrator{
		parser:     parser,
		resolver:   resolver,
		translator: translator,
		store:      store,
		summarizer: summarizer,
		cache:      newAnswerCache(cacheSize),
		log:        log.WithField("component", "orchestrator"),
	}
}

// HandleTurn runs one turn end to end. The response always carries a
// user-safe answer; the returned error, when non-nil, classifies the
// failure for the caller without changing what the user sees. Failures
// are turn-scoped and never leak into later turns.
func (o *Orchestrator) HandleTurn(ctx context.Context, req *model.TurnRequest, onStatus StatusFunc) (*model.TurnResponse, error) {
	start := time.Now()
	traceID := uuid.NewString()
	log := o.log.WithField("trace_id", traceID)

	status := func(state TurnState, note string) {
		log.WithField("state", state).Debug(note)
		if onStatus != nil {
			onStatus(state, note)
		}
	}

	status(StateReceived, "turn received")

	key := cacheKey(req.Message, req.Filters)
	if cached, ok := o.cache.Get(key); ok {
		cached.TraceID = traceID
		cached.Cached = true
		cached.Took = time.Since(start).Milliseconds()
		status(StateDone, "served from cache")
		return &cached, nil
	}

	resp := &model.TurnResponse{TraceID: traceID}
	fail := func(err error) (*model.TurnResponse, error) {
		status(StateError, err.Error())
		resp.Answer = userMessage(err)
		resp.Took = time.Since(start).Milliseconds()
		return resp, err
	}

	// Parse
	status(StateParsed, "analyzing your question")
	intent, err := o.parser.Parse(ctx, req.Message, req.History)
	if err != nil {
		return fail(err)
	}
	resp.Task = intent.Task

	// Short circuits
	switch intent.Task {
	case model.TaskRefusal:
		reason := intent.RefusalReason
		if reason == "" {
			reason = "Please ask about mobile phones instead."
		}
		resp.Answer = "🚫 **I can't help with that request.** " + reason
		return o.finish(resp, key, start, status), nil
	case model.TaskGeneralQA:
		status(StateSummarized, "preparing explanation")
		answer, err := o.summarizer.AnswerGeneral(ctx, req.Message)
		if err != nil {
			return fail(err)
		}
		resp.Answer = answer
		return o.finish(resp, key, start, status), nil
	}

	// Resolve noisy entity names
	if len(intent.Entities.Companies) > 0 || len(intent.Entities.Models) > 0 {
		resp.Corrections = o.resolveEntities(ctx, intent, log)
		status(StateResolved, "entity names resolved")
	} else {
		status(StateSkipResolve, "no entities to resolve")
	}

	// Translate
	q := o.translator.Translate(intent, req.Filters)
	status(StateTranslated, "query translated")

	// Fetch
	result, err := o.store.Search(ctx, q)
	if err != nil {
		return fail(errors.Join(ErrServiceUnavailable, err))
	}
	resp.Records = result.Records
	resp.FilterSQL = result.FilterSQL
	status(StateFetched, "records fetched")

	// Summarize
	if q.Broad {
		// Nothing usable was extracted: ask for clarification and show the
		// default broad results without spending a model call.
		resp.Answer = msgClarify
	} else {
		status(StateSummarized, "creating detailed comparison")
		resp.Answer = o.summarizer.Summarize(ctx, req.Message, result)
	}

	return o.finish(resp, key, start, status), nil
}

func (o *Orchestrator) finish(resp *model.TurnResponse, key string, start time.Time, status StatusFunc) *model.TurnResponse {
	resp.Took = time.Since(start).Milliseconds()
	o.cache.Put(key, *resp)
	status(StateDone, "turn complete")
	return resp
}

// resolveEntities corrects company and model names in place and returns
// human-readable correction notes. Resolver failures degrade to the
// original tokens; resolution never blocks the pipeline.
func (o *Orchestrator) resolveEntities(ctx context.Context, intent *model.StructuredIntent, log *logrus.Entry) []string {
	var corrections []string
	companyMap := make(map[string]string) // lower(original) -> canonical

	for i, company := range intent.Entities.Companies {
		resolved, err := o.resolver.ResolveCompany(ctx, company)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				log.WithError(err).Warn("company resolution degraded, keeping original token")
			}
			continue
		}
		companyMap[strings.ToLower(company)] = resolved.Canonical
		if resolved.Changed() {
			corrections = append(corrections, "Company: '"+company+"' → '"+resolved.Canonical+"'")
			intent.Entities.Companies[i] = resolved.Canonical
			rewriteConstraints(intent, model.FieldCompany, company, resolved.Canonical)
		}
	}

	for i, name := range intent.Entities.Models {
		scope := detectModelCompany(name, companyMap)
		resolved, err := o.resolver.ResolveModel(ctx, name, scope)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				log.WithError(err).Warn("model resolution degraded, keeping original token")
			}
			continue
		}
		if resolved.Changed() {
			corrections = append(corrections, "Model: '"+name+"' → '"+resolved.Canonical+"'")
		}
		// Snap to the canonical spelling even when only case differs, so
		// the store predicate matches exactly.
		intent.Entities.Models[i] = resolved.Canonical
		rewriteConstraints(intent, model.FieldModel, name, resolved.Canonical)
	}

	return corrections
}

// rewriteConstraints replaces constraint values equal to the noisy token
// with the canonical name.
func rewriteConstraints(intent *model.StructuredIntent, field model.Field, original, canonical string) {
	for i, c := range intent.Constraints {
		if c.Field != field {
			continue
		}
		if text, ok := c.Text(); ok && strings.EqualFold(text, original) {
			intent.Constraints[i].Value = strings.ToLower(canonical)
		}
	}
}

// detectModelCompany guesses which company a model token belongs to, to
// scope the nearest-neighbor lookup.
func detectModelCompany(modelName string, companyMap map[string]string) string {
	lower := strings.ToLower(modelName)
	for original, canonical := range companyMap {
		if strings.Contains(lower, original) || strings.Contains(lower, strings.ToLower(canonical)) {
			return canonical
		}
	}
	if len(companyMap) == 1 {
		for _, canonical := range companyMap {
			return canonical
		}
	}
	return ""
}
