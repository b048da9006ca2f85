package model

// PhoneRecord represents one phone row in the catalog. Rows are read-only
// outside the repository; nullable columns are pointers like the rest of
// the schema types.
type PhoneRecord struct {
	ID            int64    `json:"id" db:"id"`
	Company       string   `json:"company" db:"company"`
	Model         string   `json:"model" db:"model"`
	Processor     *string  `json:"processor,omitempty" db:"processor"`
	Price         *float64 `json:"price,omitempty" db:"price"`
	RAMGB         *float64 `json:"ram_gb,omitempty" db:"ram_gb"`
	StorageGB     *float64 `json:"storage_gb,omitempty" db:"storage_gb"`
	BatteryMAh    *float64 `json:"battery_mah,omitempty" db:"battery_mah"`
	CameraMP      *float64 `json:"camera_mp,omitempty" db:"camera_mp"`
	FrontCameraMP *float64 `json:"front_camera_mp,omitempty" db:"front_camera_mp"`
	UserRating    *float64 `json:"user_rating,omitempty" db:"user_rating"`
	ScreenInches  *float64 `json:"screen_inches,omitempty" db:"screen_inches"`
	WeightG       *float64 `json:"weight_g,omitempty" db:"weight_g"`
	LaunchYear    *int     `json:"launch_year,omitempty" db:"launch_year"`
}

// DisplayName returns "Company Model" for user-facing text and buy links.
func (p PhoneRecord) DisplayName() string {
	if p.Company == "" {
		return p.Model
	}
	return p.Company + " " + p.Model
}

// QueryResult is an ordered, bounded set of records plus the rendered
// filter used to fetch them, kept for traceability.
type QueryResult struct {
	Records   []PhoneRecord `json:"records"`
	FilterSQL string        `json:"filter_sql,omitempty"`
}

// UniqueByModel returns the records deduplicated on model name (first
// occurrence wins), capped at max entries.
func (r QueryResult) UniqueByModel(max int) []PhoneRecord {
	seen := make(map[string]bool, len(r.Records))
	out := make([]PhoneRecord, 0, max)
	for _, rec := range r.Records {
		key := rec.Company + "|" + rec.Model
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, rec)
		if len(out) >= max {
			break
		}
	}
	return out
}
