package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// TaskType classifies what a turn is asking for.
type TaskType string

const (
	TaskQuery     TaskType = "query"
	TaskGeneralQA TaskType = "general_qa"
	TaskRefusal   TaskType = "refusal"
)

// Field names the queryable columns of the phone catalog. Only these may
// appear in constraints or sort preferences.
type Field string

const (
	FieldCompany     Field = "company"
	FieldModel       Field = "model"
	FieldProcessor   Field = "processor"
	FieldPrice       Field = "price"
	FieldRAM         Field = "ram_gb"
	FieldStorage     Field = "storage_gb"
	FieldBattery     Field = "battery_mah"
	FieldCamera      Field = "camera_mp"
	FieldFrontCamera Field = "front_camera_mp"
	FieldRating      Field = "user_rating"
	FieldLaunchYear  Field = "launch_year"
)

// queryableFields is the whitelist for constraints and ORDER BY.
var queryableFields = map[Field]bool{
	FieldCompany:     true,
	FieldModel:       true,
	FieldProcessor:   true,
	FieldPrice:       true,
	FieldRAM:         true,
	FieldStorage:     true,
	FieldBattery:     true,
	FieldCamera:      true,
	FieldFrontCamera: true,
	FieldRating:      true,
	FieldLaunchYear:  true,
}

// stringFields take case-insensitive equality; everything else is numeric.
var stringFields = map[Field]bool{
	FieldCompany:   true,
	FieldModel:     true,
	FieldProcessor: true,
}

// IsQueryable reports whether the field may appear in a SafeQuery.
func (f Field) IsQueryable() bool { return queryableFields[f] }

// IsString reports whether the field holds text.
func (f Field) IsString() bool { return stringFields[f] }

// Operator is a comparison operator in a constraint or predicate.
type Operator string

const (
	OpEqual        Operator = "eq"
	OpGreaterEqual Operator = "gte"
	OpLessEqual    Operator = "lte"
)

// Constraint is one (field, operator, value) condition extracted from the
// query or supplied by the sidebar.
type Constraint struct {
	Field    Field       `json:"field" validate:"required"`
	Operator Operator    `json:"operator" validate:"required,oneof=eq gte lte"`
	Value    interface{} `json:"value" validate:"required"`
}

// Text returns the constraint value as a string, if it is one.
func (c Constraint) Text() (string, bool) {
	s, ok := c.Value.(string)
	return s, ok
}

// Number returns the constraint value as a float64. JSON numbers decode as
// float64; numeric strings from the model ("30000") are accepted too.
func (c Constraint) Number() (float64, bool) {
	switch v := c.Value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// Entities holds the raw company and model names the parser extracted,
// possibly misspelled, before resolution.
type Entities struct {
	Companies []string `json:"companies"`
	Models    []string `json:"models"`
}

// StructuredIntent is the validated, typed result of one intent-parsing
// model call. It lives for a single turn.
type StructuredIntent struct {
	Task           TaskType     `json:"task" validate:"required,oneof=query general_qa refusal"`
	Entities       Entities     `json:"entities"`
	Constraints    []Constraint `json:"constraints" validate:"dive"`
	SortField      Field        `json:"sort_field,omitempty"`
	SortDescending bool         `json:"sort_descending,omitempty"`
	Keywords       []string     `json:"keywords,omitempty"`
	RefusalReason  string       `json:"refusal_reason,omitempty"`
}

// ResolvedEntity is a corrected canonical name with the similarity score
// that justified the substitution.
type ResolvedEntity struct {
	Original   string  `json:"original"`
	Canonical  string  `json:"canonical"`
	Similarity float64 `json:"similarity"`
}

// Changed reports whether resolution produced a different spelling.
func (r ResolvedEntity) Changed() bool {
	return !strings.EqualFold(r.Original, r.Canonical)
}
