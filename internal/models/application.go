package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Score is a match score that upstream services deliver either as a
// bare number or a percent-formatted string ("85%"). Anything
// unparseable decodes as an absent score instead of failing the record.
type Score struct {
	Float64 float64
	Valid   bool
}

// ParseScore extracts a numeric score from a percent-formatted string.
func ParseScore(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (s *Score) UnmarshalJSON(data []byte) error {
	s.Float64, s.Valid = 0, false

	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		s.Float64, s.Valid = num, true
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if v, ok := ParseScore(str); ok {
			s.Float64, s.Valid = v, true
		}
	}

	// malformed input means no score, never an error
	return nil
}

func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Float64)
}

func (s *Score) Scan(value interface{}) error {
	s.Float64, s.Valid = 0, false

	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		s.Float64, s.Valid = v, true
	case int64:
		s.Float64, s.Valid = float64(v), true
	case []byte:
		if parsed, ok := ParseScore(string(v)); ok {
			s.Float64, s.Valid = parsed, true
		}
	case string:
		if parsed, ok := ParseScore(v); ok {
			s.Float64, s.Valid = parsed, true
		}
	}

	return nil
}

func (s Score) Value() (driver.Value, error) {
	if !s.Valid {
		return nil, nil
	}
	return s.Float64, nil
}

// Timestamp tolerates the applied-at shapes older clients produced:
// RFC3339, date-only, or garbage. Garbage decodes as the zero time.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	t.Time = time.Time{}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}

	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

func (t *Timestamp) Scan(value interface{}) error {
	t.Time = time.Time{}
	if v, ok := value.(time.Time); ok {
		t.Time = v
	}
	return nil
}

func (t Timestamp) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.Time, nil
}

// Millis returns the epoch milliseconds used for sorting and date
// range filtering. Missing timestamps compare as zero.
func (t Timestamp) Millis() int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// JobPosting is the posting a student applied to, denormalized inline
// with the application. Read-only from this service's perspective.
type JobPosting struct {
	ID               string         `db:"id" json:"id"`
	Title            string         `db:"title" json:"title"`
	CompanyID        string         `db:"company_id" json:"company_id"`
	CompanyName      string         `db:"company_name" json:"company_name"`
	Location         string         `db:"location" json:"location"`
	WorkType         string         `db:"work_type" json:"work_type"`
	RemoteMode       string         `db:"remote_mode" json:"remote_mode"`
	PayType          string         `db:"pay_type" json:"pay_type"`
	VerificationTier string         `db:"verification_tier" json:"verification_tier"`
	Skills           pq.StringArray `db:"skills" json:"skills"`
	LogoPath         *string        `db:"logo_path" json:"-"`
	Deadline         Timestamp      `db:"deadline" json:"deadline"`
}

// Application is a student's submission to a job posting.
type Application struct {
	// LogicalID is assigned once by Normalize and is the only key used
	// downstream.
	LogicalID string `db:"-" json:"logical_id"`

	// Identity fields as upstream shapes deliver them. Not every source
	// fills every field.
	ApplicationID string `db:"-" json:"application_id,omitempty"`
	ID            string `db:"id" json:"id,omitempty"`

	StudentID string `db:"student_id" json:"student_id"`
	// JobID is a legacy duplicate of the posting id kept for score
	// merging against older matcher payloads.
	JobID string `db:"job_id" json:"job_id,omitempty"`

	Status     string    `db:"status" json:"status"`
	AppliedAt  Timestamp `db:"applied_at" json:"applied_at"`
	MatchScore Score     `db:"match_score" json:"match_score"`
	Archived   bool      `db:"archived" json:"archived"`
	Invited    bool      `db:"invited" json:"invited"`
	FollowedUp bool      `db:"followed_up" json:"followed_up"`
	AvatarPath *string   `db:"avatar_path" json:"-"`

	Posting JobPosting `db:"-" json:"job_posting"`
	Notes   []Note     `db:"-" json:"notes,omitempty"`
}

// Category derives the UI category from the raw status.
func (a *Application) Category() Category {
	return MapStatus(a.Status)
}

// Note is a free-text annotation a student attaches to an application.
type Note struct {
	ID            string    `db:"id" json:"id"`
	ApplicationID string    `db:"application_id" json:"application_id"`
	Body          string    `db:"body" json:"body"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Normalize resolves each record's logical id right after ingestion:
// explicit application id, then generic id, then the posting id. A
// record carrying none of the three gets a row ordinal so keys stay
// stable within the snapshot; the ordinal is never re-derived later.
func Normalize(apps []Application) {
	for i := range apps {
		switch {
		case apps[i].ApplicationID != "":
			apps[i].LogicalID = apps[i].ApplicationID
		case apps[i].ID != "":
			apps[i].LogicalID = apps[i].ID
		case apps[i].Posting.ID != "":
			apps[i].LogicalID = apps[i].Posting.ID
		default:
			apps[i].LogicalID = fmt.Sprintf("row-%d", i)
		}
	}
}
