package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
)

// Name kinds stored in the phone_names index.
const (
	NameKindCompany = "company"
	NameKindModel   = "model"
)

// NameMatch is one nearest-neighbor hit from the canonical-name index.
type NameMatch struct {
	Name       string  `db:"name"`
	Company    string  `db:"company"`
	Similarity float64 `db:"similarity"`
}

// NameIndex looks up canonical company and model names by embedding
// similarity. The phone_names table (name, kind, company, embedding) is
// populated offline by the index builder; this side only reads.
type NameIndex struct {
	db *sqlx.DB
}

// NewNameIndex creates a name index on an existing connection.
func NewNameIndex(db *sqlx.DB) *NameIndex {
	return &NameIndex{db: db}
}

// Nearest returns the closest canonical name of the given kind, optionally
// scoped to a company for model lookups. A nil result means the index has
// no candidate at all (empty scope), not a low-similarity match; threshold
// enforcement belongs to the caller.
func (n *NameIndex) Nearest(ctx context.Context, embedding []float32, kind, companyScope string) (*NameMatch, error) {
	vec := pgvector.NewVector(embedding)

	query := `
		SELECT name, COALESCE(company, '') AS company,
		       1 - (embedding <=> $1) AS similarity
		FROM phone_names
		WHERE kind = $2`
	args := []interface{}{vec, kind}

	if companyScope != "" && kind == NameKindModel {
		query += " AND LOWER(company) = LOWER($3)"
		args = append(args, companyScope)
	}

	query += " ORDER BY embedding <=> $1 LIMIT 1"

	var match NameMatch
	err := n.db.GetContext(ctx, &match, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query name index: %w", err)
	}
	return &match, nil
}
