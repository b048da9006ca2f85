package service

import (
	"context"
	"strings"
	"sync"

	"core/internal/model"
	"core/internal/repository"

	"github.com/sirupsen/logrus"
)

// NameIndex is the vector-search boundary the resolver consumes.
type NameIndex interface {
	Nearest(ctx context.Context, embedding []float32, kind, companyScope string) (*repository.NameMatch, error)
}

// CatalogNames supplies canonical names for the lexical fallback.
type CatalogNames interface {
	Companies(ctx context.Context) ([]string, error)
	ModelNames(ctx context.Context) ([]model.PhoneSelection, error)
}

// Similarity assigned to lexical fallback matches: high enough to clear
// the substitution threshold, low enough to flag the weaker evidence.
const (
	lexicalExactSimilarity    = 1.0
	lexicalContainsSimilarity = 0.6
)

// EntityResolver corrects noisy brand/model tokens to canonical names via
// nearest-neighbor embedding search. Lookups are read-only; the index is
// maintained offline. When the embedding service is disabled it degrades
// to lexical matching against the catalog's canonical names.
type EntityResolver struct {
	ai        AIClient
	index     NameIndex
	catalog   CatalogNames
	threshold float64
	log       *logrus.Entry

	namesOnce sync.Once
	companies []string
	models    []model.PhoneSelection
}

// NewEntityResolver creates a new entity resolver
func NewEntityResolver(ai AIClient, index NameIndex, catalog CatalogNames, threshold float64, log *logrus.Logger) *EntityResolver {
	return &EntityResolver{
		ai:        ai,
		index:     index,
		catalog:   catalog,
		threshold: threshold,
		log:       log.WithField("component", "resolver"),
	}
}

// ResolveCompany corrects a noisy company token.
func (r *EntityResolver) ResolveCompany(ctx context.Context, noisy string) (*model.ResolvedEntity, error) {
	return r.resolve(ctx, noisy, repository.NameKindCompany, "")
}

// ResolveModel corrects a noisy model token, optionally scoped to a
// company to reduce false positives across brands with similar numbering.
func (r *EntityResolver) ResolveModel(ctx context.Context, noisy, companyScope string) (*model.ResolvedEntity, error) {
	return r.resolve(ctx, noisy, repository.NameKindModel, companyScope)
}

func (r *EntityResolver) resolve(ctx context.Context, noisy, kind, companyScope string) (*model.ResolvedEntity, error) {
	noisy = strings.TrimSpace(noisy)
	if noisy == "" {
		return nil, ErrNotFound
	}

	if r.ai == nil || !r.ai.IsEnabled() {
		return r.lexicalResolve(ctx, noisy, kind, companyScope)
	}

	embedding, err := r.ai.CreateEmbedding(ctx, noisy)
	if err != nil {
		return nil, err
	}

	match, err := r.index.Nearest(ctx, embedding, kind, companyScope)
	if err != nil {
		return nil, err
	}

	// A scoped model lookup with no hit gets one unscoped retry: the scope
	// itself may have been guessed wrong upstream.
	if match == nil && companyScope != "" {
		match, err = r.index.Nearest(ctx, embedding, kind, "")
		if err != nil {
			return nil, err
		}
	}

	if match == nil || match.Similarity < r.threshold {
		if match != nil {
			r.log.WithFields(logrus.Fields{
				"token":      noisy,
				"nearest":    match.Name,
				"similarity": match.Similarity,
			}).Debug("nearest neighbor below threshold")
		}
		return nil, ErrNotFound
	}

	return &model.ResolvedEntity{
		Original:   noisy,
		Canonical:  match.Name,
		Similarity: match.Similarity,
	}, nil
}

// lexicalResolve matches the token against cached canonical names by
// case-insensitive equality, then containment either way.
func (r *EntityResolver) lexicalResolve(ctx context.Context, noisy, kind, companyScope string) (*model.ResolvedEntity, error) {
	if err := r.loadNames(ctx); err != nil {
		return nil, err
	}

	candidates := r.candidates(kind, companyScope)
	needle := strings.ToLower(noisy)

	for _, name := range candidates {
		if strings.ToLower(name) == needle {
			return &model.ResolvedEntity{Original: noisy, Canonical: name, Similarity: lexicalExactSimilarity}, nil
		}
	}
	for _, name := range candidates {
		lower := strings.ToLower(name)
		if strings.Contains(lower, needle) || strings.Contains(needle, lower) {
			return &model.ResolvedEntity{Original: noisy, Canonical: name, Similarity: lexicalContainsSimilarity}, nil
		}
	}

	return nil, ErrNotFound
}

func (r *EntityResolver) candidates(kind, companyScope string) []string {
	if kind == repository.NameKindCompany {
		return r.companies
	}
	names := make([]string, 0, len(r.models))
	for _, m := range r.models {
		if companyScope != "" && !strings.EqualFold(m.Company, companyScope) {
			continue
		}
		names = append(names, m.Model)
	}
	return names
}

func (r *EntityResolver) loadNames(ctx context.Context) error {
	var loadErr error
	r.namesOnce.Do(func() {
		if r.catalog == nil {
			return
		}
		companies, err := r.catalog.Companies(ctx)
		if err != nil {
			loadErr = err
			return
		}
		models, err := r.catalog.ModelNames(ctx)
		if err != nil {
			loadErr = err
			return
		}
		r.companies = companies
		r.models = models
	})
	return loadErr
}
