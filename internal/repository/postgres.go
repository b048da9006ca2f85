package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"core/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// phoneColumns is the full select list for the phones table.
const phoneColumns = `id, company, model, processor, price, ram_gb, storage_gb,
	battery_mah, camera_mp, front_camera_mp, user_rating, screen_inches,
	weight_g, launch_year`

// sqlColumn maps whitelisted fields to their column names. Fields outside
// this map never reach SQL.
var sqlColumn = map[model.Field]string{
	model.FieldCompany:     "company",
	model.FieldModel:       "model",
	model.FieldProcessor:   "processor",
	model.FieldPrice:       "price",
	model.FieldRAM:         "ram_gb",
	model.FieldStorage:     "storage_gb",
	model.FieldBattery:     "battery_mah",
	model.FieldCamera:      "camera_mp",
	model.FieldFrontCamera: "front_camera_mp",
	model.FieldRating:      "user_rating",
	model.FieldLaunchYear:  "launch_year",
}

var sqlOperator = map[model.Operator]string{
	model.OpEqual:        "=",
	model.OpGreaterEqual: ">=",
	model.OpLessEqual:    "<=",
}

// Connect opens the shared PostgreSQL handle used by the phone store and
// the name index. It is created once at process start.
func Connect(dsn string, maxConn, maxIdleConn int) (*sqlx.DB, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement
	// does not exist" errors behind connection poolers
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// PhoneStore answers read-only catalog lookups. It only ever executes
// SELECT statements rendered from validated SafeQuery values.
type PhoneStore struct {
	db *sqlx.DB
}

// NewPhoneStore creates a phone store on an existing connection.
func NewPhoneStore(db *sqlx.DB) *PhoneStore {
	return &PhoneStore{db: db}
}

// Close closes the underlying connection.
func (s *PhoneStore) Close() error {
	return s.db.Close()
}

// BuildSearchSQL renders a SafeQuery into a parameterized SELECT. It is a
// pure function so the rendering rules are testable without a database.
func BuildSearchSQL(q model.SafeQuery) (string, []interface{}, error) {
	limit := q.Limit
	if limit <= 0 || limit > model.MaxChatRecords {
		limit = model.MaxChatRecords
	}

	var args []interface{}
	var groups []string

	for _, group := range q.Groups {
		var conds []string
		for _, p := range group {
			col, ok := sqlColumn[p.Field]
			if !ok {
				return "", nil, fmt.Errorf("field %q is not queryable", p.Field)
			}
			op, ok := sqlOperator[p.Operator]
			if !ok {
				return "", nil, fmt.Errorf("operator %q is not allowed", p.Operator)
			}
			if p.Field.IsString() {
				text, ok := p.Value.(string)
				if !ok {
					return "", nil, fmt.Errorf("field %q requires a string value", p.Field)
				}
				if p.Operator != model.OpEqual {
					return "", nil, fmt.Errorf("field %q only supports equality", p.Field)
				}
				args = append(args, text)
				conds = append(conds, fmt.Sprintf("LOWER(%s) = LOWER($%d)", col, len(args)))
			} else {
				num, ok := p.Value.(float64)
				if !ok {
					return "", nil, fmt.Errorf("field %q requires a numeric value", p.Field)
				}
				args = append(args, num)
				conds = append(conds, fmt.Sprintf("%s %s $%d", col, op, len(args)))
			}
		}
		if len(conds) > 0 {
			groups = append(groups, "("+strings.Join(conds, " AND ")+")")
		}
	}

	where := "1=1"
	if len(groups) > 0 {
		where = strings.Join(groups, " OR ")
	}

	orderCol := sqlColumn[model.FieldRating]
	direction := "DESC"
	if q.OrderBy != "" {
		col, ok := sqlColumn[q.OrderBy]
		if !ok {
			return "", nil, fmt.Errorf("sort field %q is not queryable", q.OrderBy)
		}
		orderCol = col
		if !q.Descending {
			direction = "ASC"
		}
	}

	args = append(args, limit)
	sql := fmt.Sprintf(
		"SELECT %s FROM phones WHERE %s ORDER BY %s %s NULLS LAST LIMIT $%d",
		phoneColumns, where, orderCol, direction, len(args),
	)

	return sql, args, nil
}

// Search executes a SafeQuery and returns the bounded result set.
func (s *PhoneStore) Search(ctx context.Context, q model.SafeQuery) (model.QueryResult, error) {
	sql, args, err := BuildSearchSQL(q)
	if err != nil {
		return model.QueryResult{}, err
	}

	var records []model.PhoneRecord
	if err := s.db.SelectContext(ctx, &records, sql, args...); err != nil {
		return model.QueryResult{}, fmt.Errorf("failed to fetch phones: %w", err)
	}

	return model.QueryResult{Records: records, FilterSQL: sql}, nil
}

// FetchByNames returns rows for the given canonical (company, model) pairs,
// used by the comparison view.
func (s *PhoneStore) FetchByNames(ctx context.Context, selections []model.PhoneSelection) ([]model.PhoneRecord, error) {
	if len(selections) == 0 {
		return nil, nil
	}

	var conds []string
	var args []interface{}
	for _, sel := range selections {
		args = append(args, sel.Company)
		companyIdx := len(args)
		args = append(args, sel.Model)
		conds = append(conds, fmt.Sprintf(
			"(LOWER(company) = LOWER($%d) AND LOWER(model) = LOWER($%d))",
			companyIdx, len(args),
		))
	}

	sql := fmt.Sprintf(
		"SELECT %s FROM phones WHERE %s ORDER BY company, model",
		phoneColumns, strings.Join(conds, " OR "),
	)

	var records []model.PhoneRecord
	if err := s.db.SelectContext(ctx, &records, sql, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch phones by name: %w", err)
	}
	return records, nil
}

// Companies returns all distinct company names for the sidebar.
func (s *PhoneStore) Companies(ctx context.Context) ([]string, error) {
	var companies []string
	err := s.db.SelectContext(ctx, &companies,
		"SELECT DISTINCT company FROM phones ORDER BY company")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch companies: %w", err)
	}
	return companies, nil
}

// ModelNames returns all canonical model names with their company, for the
// resolver's lexical fallback and the comparison picker.
func (s *PhoneStore) ModelNames(ctx context.Context) ([]model.PhoneSelection, error) {
	var rows []model.PhoneSelection
	err := s.db.SelectContext(ctx, &rows,
		`SELECT DISTINCT company AS "company", model AS "model" FROM phones ORDER BY company, model`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch model names: %w", err)
	}
	return rows, nil
}

// Ranges returns the min/max bounds for the sidebar sliders.
func (s *PhoneStore) Ranges(ctx context.Context) (model.FilterRanges, error) {
	var r model.FilterRanges
	err := s.db.GetContext(ctx, &r, `
		SELECT
			COALESCE(MIN(price), 0)        AS price_min,
			COALESCE(MAX(price), 0)        AS price_max,
			COALESCE(MIN(camera_mp), 0)    AS camera_min,
			COALESCE(MAX(camera_mp), 0)    AS camera_max,
			COALESCE(MIN(battery_mah), 0)  AS battery_min,
			COALESCE(MAX(battery_mah), 0)  AS battery_max
		FROM phones`)
	if err != nil {
		return model.FilterRanges{}, fmt.Errorf("failed to fetch filter ranges: %w", err)
	}
	return r, nil
}
