package service

import (
	"strings"

	"core/internal/model"
)

// Translator turns a validated intent plus the sidebar filters into a
// SafeQuery. It is a pure function of its inputs: once the intent is
// typed, no model call is needed to produce the store query.
type Translator struct{}

// NewTranslator creates a new query translator
func NewTranslator() *Translator {
	return &Translator{}
}

// Translate builds the SafeQuery for a query-task intent. Parsed
// constraints win over sidebar filters on the same field; sidebar values
// fill fields the query left unset. With no usable entity or constraint
// the result is the default broad query with Broad set, so the caller can
// ask a clarifying question instead of issuing an unbounded search.
func (t *Translator) Translate(intent *model.StructuredIntent, filters *model.FilterContext) model.SafeQuery {
	constraints := mergeFilterContext(intent.Constraints, filters)

	var companies, modelNames []string
	var shared []model.Constraint

	for _, c := range constraints {
		text, isText := c.Text()
		switch {
		case c.Field == model.FieldCompany && isText:
			companies = appendUnique(companies, text)
		case c.Field == model.FieldModel && isText:
			modelNames = appendUnique(modelNames, text)
		default:
			shared = append(shared, c)
		}
	}
	for _, m := range intent.Entities.Models {
		if m = strings.TrimSpace(m); m != "" {
			modelNames = appendUnique(modelNames, strings.ToLower(m))
		}
	}
	// Companies named as entities only matter when no model pins the search
	// down already.
	if len(modelNames) == 0 {
		for _, comp := range intent.Entities.Companies {
			if comp = strings.TrimSpace(comp); comp != "" {
				companies = appendUnique(companies, strings.ToLower(comp))
			}
		}
	}

	sharedGroup := make(model.PredicateGroup, 0, len(shared))
	for _, c := range shared {
		num, ok := c.Number()
		if !ok {
			continue
		}
		sharedGroup = append(sharedGroup, model.Predicate{Field: c.Field, Operator: c.Operator, Value: num})
	}

	q := model.SafeQuery{
		OrderBy:    model.FieldRating,
		Descending: true,
		Limit:      model.MaxChatRecords,
	}
	if intent.SortField != "" && intent.SortField.IsQueryable() {
		q.OrderBy = intent.SortField
		q.Descending = intent.SortDescending
	}

	switch {
	case len(modelNames) > 0:
		// Specific models: one disjunct per model, shared constraints apply
		// inside each.
		for _, name := range modelNames {
			group := model.PredicateGroup{{Field: model.FieldModel, Operator: model.OpEqual, Value: name}}
			group = append(group, sharedGroup...)
			q.Groups = append(q.Groups, group)
		}
	case len(companies) > 0:
		// Multi-company comparison: OR of per-company groups, each
		// internally conjoined.
		for _, comp := range companies {
			group := model.PredicateGroup{{Field: model.FieldCompany, Operator: model.OpEqual, Value: comp}}
			group = append(group, sharedGroup...)
			q.Groups = append(q.Groups, group)
		}
	case len(sharedGroup) > 0:
		q.Groups = []model.PredicateGroup{sharedGroup}
	default:
		q.Broad = true
	}

	return q
}

// mergeFilterContext applies the override rule: a parsed constraint on a
// field shadows every sidebar value for that field; sidebar constraints
// fill in the rest.
func mergeFilterContext(parsed []model.Constraint, filters *model.FilterContext) []model.Constraint {
	sidebar := filters.Constraints()
	if len(sidebar) == 0 {
		return parsed
	}

	covered := make(map[model.Field]bool, len(parsed))
	for _, c := range parsed {
		covered[c.Field] = true
	}

	merged := make([]model.Constraint, 0, len(parsed)+len(sidebar))
	merged = append(merged, parsed...)
	for _, c := range sidebar {
		if covered[c.Field] {
			continue
		}
		if text, ok := c.Text(); ok {
			c.Value = strings.ToLower(strings.TrimSpace(text))
		}
		merged = append(merged, c)
	}
	return merged
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
