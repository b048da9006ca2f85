package model

import (
	"fmt"
	"sort"
	"strings"
)

// MaxChatRecords caps the records a single chat query may return.
const MaxChatRecords = 5

// MaxCompareRecords caps the unique phones in a comparison summary.
const MaxCompareRecords = 4

// FilterContext carries the user's sidebar filters for a turn. Parsed
// query constraints take precedence over these on the same field; the
// sidebar fills in fields the query left unset.
type FilterContext struct {
	Company    *string  `json:"company,omitempty"`
	PriceMin   *float64 `json:"price_min,omitempty"`
	PriceMax   *float64 `json:"price_max,omitempty"`
	CameraMin  *float64 `json:"camera_min,omitempty"`
	CameraMax  *float64 `json:"camera_max,omitempty"`
	BatteryMin *float64 `json:"battery_min,omitempty"`
	BatteryMax *float64 `json:"battery_max,omitempty"`
}

// Constraints converts the sidebar values into constraint form so they can
// be merged with parsed intent constraints.
func (f *FilterContext) Constraints() []Constraint {
	if f == nil {
		return nil
	}
	var out []Constraint
	if f.Company != nil && *f.Company != "" {
		out = append(out, Constraint{Field: FieldCompany, Operator: OpEqual, Value: *f.Company})
	}
	bounds := []struct {
		field Field
		op    Operator
		val   *float64
	}{
		{FieldPrice, OpGreaterEqual, f.PriceMin},
		{FieldPrice, OpLessEqual, f.PriceMax},
		{FieldCamera, OpGreaterEqual, f.CameraMin},
		{FieldCamera, OpLessEqual, f.CameraMax},
		{FieldBattery, OpGreaterEqual, f.BatteryMin},
		{FieldBattery, OpLessEqual, f.BatteryMax},
	}
	for _, b := range bounds {
		if b.val != nil {
			out = append(out, Constraint{Field: b.field, Operator: b.op, Value: *b.val})
		}
	}
	return out
}

// CanonicalKey renders the filters as a stable string for cache keying.
func (f *FilterContext) CanonicalKey() string {
	if f == nil {
		return ""
	}
	parts := make([]string, 0, 7)
	if f.Company != nil && *f.Company != "" {
		parts = append(parts, "company="+strings.ToLower(strings.TrimSpace(*f.Company)))
	}
	add := func(name string, v *float64) {
		if v != nil {
			parts = append(parts, fmt.Sprintf("%s=%g", name, *v))
		}
	}
	add("price_min", f.PriceMin)
	add("price_max", f.PriceMax)
	add("camera_min", f.CameraMin)
	add("camera_max", f.CameraMax)
	add("battery_min", f.BatteryMin)
	add("battery_max", f.BatteryMax)
	sort.Strings(parts)
	return strings.Join(parts, "&")
}

// Predicate is one validated comparison inside a SafeQuery.
type Predicate struct {
	Field    Field
	Operator Operator
	Value    interface{} // string for text fields, float64 otherwise
}

// PredicateGroup is a conjunction of predicates.
type PredicateGroup []Predicate

// SafeQuery is the only shape the data store accepts: a disjunction of
// conjunctive predicate groups over whitelisted fields, a sort preference,
// and a hard result cap. It is never rendered by string concatenation of
// user text.
type SafeQuery struct {
	Groups     []PredicateGroup
	OrderBy    Field
	Descending bool
	Limit      int
	Broad      bool // set when no usable entity or constraint was found
}

// ChatTurn is one past (utterance, answer) pair of the conversation.
type ChatTurn struct {
	Utterance string `json:"utterance"`
	Answer    string `json:"answer"`
}

// TurnRequest is the caller-facing input for one turn.
type TurnRequest struct {
	Message string         `json:"message" binding:"required"`
	Filters *FilterContext `json:"filters,omitempty"`
	History []ChatTurn     `json:"history,omitempty"`
}

// TurnResponse is the caller-facing output for one turn.
type TurnResponse struct {
	Answer      string        `json:"answer"`
	Records     []PhoneRecord `json:"records"`
	Corrections []string      `json:"corrections,omitempty"`
	Task        TaskType      `json:"task"`
	FilterSQL   string        `json:"filter_sql,omitempty"`
	TraceID     string        `json:"trace_id"`
	Cached      bool          `json:"cached"`
	Took        int64         `json:"took_ms"`
}

// CompareRequest selects phones for the comparison view.
type CompareRequest struct {
	Phones []PhoneSelection `json:"phones" binding:"required,min=1,max=4"`
}

// PhoneSelection identifies one phone by canonical company and model.
type PhoneSelection struct {
	Company string `json:"company" db:"company" binding:"required"`
	Model   string `json:"model" db:"model" binding:"required"`
}

// FilterRanges describes the sidebar slider bounds derived from the store.
type FilterRanges struct {
	PriceMin   float64 `json:"price_min" db:"price_min"`
	PriceMax   float64 `json:"price_max" db:"price_max"`
	CameraMin  float64 `json:"camera_min" db:"camera_min"`
	CameraMax  float64 `json:"camera_max" db:"camera_max"`
	BatteryMin float64 `json:"battery_min" db:"battery_min"`
	BatteryMax float64 `json:"battery_max" db:"battery_max"`
}
