package repository

import (
	"strings"
	"testing"

	"core/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSearchSQL_SingleGroup(t *testing.T) {
	q := model.SafeQuery{
		Groups: []model.PredicateGroup{
			{
				{Field: model.FieldCompany, Operator: model.OpEqual, Value: "apple"},
				{Field: model.FieldPrice, Operator: model.OpLessEqual, Value: 50000.0},
			},
		},
		OrderBy:    model.FieldRating,
		Descending: true,
		Limit:      5,
	}

	sql, args, err := BuildSearchSQL(q)
	require.NoError(t, err)

	assert.Contains(t, sql, "(LOWER(company) = LOWER($1) AND price <= $2)")
	assert.Contains(t, sql, "ORDER BY user_rating DESC NULLS LAST")
	assert.Contains(t, sql, "LIMIT $3")
	assert.Equal(t, []interface{}{"apple", 50000.0, 5}, args)
}

func TestBuildSearchSQL_GroupsAreDisjoined(t *testing.T) {
	q := model.SafeQuery{
		Groups: []model.PredicateGroup{
			{{Field: model.FieldCompany, Operator: model.OpEqual, Value: "samsung"}},
			{{Field: model.FieldCompany, Operator: model.OpEqual, Value: "xiaomi"}},
		},
		Limit: 5,
	}

	sql, args, err := BuildSearchSQL(q)
	require.NoError(t, err)

	assert.Contains(t, sql, "(LOWER(company) = LOWER($1)) OR (LOWER(company) = LOWER($2))")
	assert.Equal(t, []interface{}{"samsung", "xiaomi", 5}, args)
}

func TestBuildSearchSQL_NoValuesInSQLText(t *testing.T) {
	q := model.SafeQuery{
		Groups: []model.PredicateGroup{
			{{Field: model.FieldModel, Operator: model.OpEqual, Value: "iphone'); DROP TABLE phones;--"}},
		},
		Limit: 3,
	}

	sql, _, err := BuildSearchSQL(q)
	require.NoError(t, err)

	// Values travel as parameters only; the rendered text never embeds them.
	assert.NotContains(t, sql, "DROP TABLE")
	assert.NotContains(t, sql, "iphone")
}

func TestBuildSearchSQL_LimitCapped(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero becomes default", 0, model.MaxChatRecords},
		{"negative becomes default", -3, model.MaxChatRecords},
		{"over cap is clamped", 100, model.MaxChatRecords},
		{"within cap is kept", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := BuildSearchSQL(model.SafeQuery{Limit: tt.limit})
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(sql, "LIMIT $1"))
			assert.Equal(t, []interface{}{tt.want}, args)
		})
	}
}

func TestBuildSearchSQL_BroadQueryDefaults(t *testing.T) {
	sql, args, err := BuildSearchSQL(model.SafeQuery{Broad: true, Limit: 5})
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE 1=1")
	assert.Contains(t, sql, "ORDER BY user_rating DESC NULLS LAST")
	assert.Equal(t, []interface{}{5}, args)
}

func TestBuildSearchSQL_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		q    model.SafeQuery
	}{
		{
			name: "unknown field",
			q: model.SafeQuery{Groups: []model.PredicateGroup{
				{{Field: "password", Operator: model.OpEqual, Value: "x"}},
			}},
		},
		{
			name: "unknown operator",
			q: model.SafeQuery{Groups: []model.PredicateGroup{
				{{Field: model.FieldPrice, Operator: "like", Value: 1.0}},
			}},
		},
		{
			name: "range operator on text field",
			q: model.SafeQuery{Groups: []model.PredicateGroup{
				{{Field: model.FieldCompany, Operator: model.OpGreaterEqual, Value: "apple"}},
			}},
		},
		{
			name: "non-numeric value on numeric field",
			q: model.SafeQuery{Groups: []model.PredicateGroup{
				{{Field: model.FieldPrice, Operator: model.OpLessEqual, Value: "cheap"}},
			}},
		},
		{
			name: "unknown sort field",
			q:    model.SafeQuery{OrderBy: "secret_col"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := BuildSearchSQL(tt.q)
			assert.Error(t, err)
		})
	}
}

func TestBuildSearchSQL_AscendingSort(t *testing.T) {
	sql, _, err := BuildSearchSQL(model.SafeQuery{OrderBy: model.FieldPrice, Descending: false, Limit: 5})
	require.NoError(t, err)
	assert.Contains(t, sql, "ORDER BY price ASC NULLS LAST")
}
