package tasks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PageSize is the number of tasks per page.
const PageSize = 5

// Status of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Filter selects a group of tasks in the listing.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterNew       Filter = "new"
	FilterPending   Filter = "pending"
	FilterOverdue   Filter = "overdue"
	FilterCompleted Filter = "completed"
)

// Filters lists every filter in display order.
var Filters = []Filter{FilterAll, FilterNew, FilterPending, FilterOverdue, FilterCompleted}

var titleCaser = cases.Title(language.English)

// Label returns the display name of the filter.
func (f Filter) Label() string {
	return titleCaser.String(string(f))
}

// Valid reports whether f is a known filter.
func (f Filter) Valid() bool {
	for _, known := range Filters {
		if f == known {
			return true
		}
	}
	return false
}

// ParseFilter parses a filter name; the empty string means FilterAll.
func ParseFilter(s string) (Filter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FilterAll, nil
	}
	f := Filter(s)
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
	}
	return f, nil
}

// Task as returned by the backend.
type Task struct {
	ID           int64     `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	Description  string    `json:"description,omitempty" yaml:"description,omitempty"`
	Status       Status    `json:"status" yaml:"status"`
	CreatedAt    Timestamp `json:"created_at" yaml:"created_at"`
	DueDate      Timestamp `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	ManagerEmail string    `json:"manager_email,omitempty" yaml:"manager_email,omitempty"`
}

// IsOverdue reports whether the task has a due date before now and is not completed.
func (t Task) IsOverdue(now time.Time) bool {
	if t.DueDate.IsZero() || t.Status == StatusCompleted {
		return false
	}
	return t.DueDate.Before(now)
}

// NewTask is the create-task form.
type NewTask struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     Timestamp `json:"due_date"`
}

// Timestamp is a time that accepts the backend's formats: RFC 3339, or a
// naive date-time without zone, which is read as UTC. Zero marshals to null.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseTimestamp parses s in any of the accepted layouts.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.UTC().Format(time.RFC3339))
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*ts = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTimestamp, data)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}

// MarshalYAML renders the timestamp as RFC 3339, or null when zero.
func (ts Timestamp) MarshalYAML() (any, error) {
	if ts.IsZero() {
		return nil, nil
	}
	return ts.UTC().Format(time.RFC3339), nil
}

// String formats the timestamp for display; zero renders as "-".
func (ts Timestamp) String() string {
	if ts.IsZero() {
		return "-"
	}
	return ts.UTC().Format("2006-01-02 15:04")
}
