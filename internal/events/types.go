package events

import (
	"errors"
	"strings"
	"time"
)

type Category string

const (
	CategoryClass      Category = "class"
	CategoryAssignment Category = "assignment"
	CategoryExam       Category = "exam"
	CategoryWork       Category = "work"
	CategoryPersonal   Category = "personal"
)

var Categories = []Category{
	CategoryClass,
	CategoryAssignment,
	CategoryExam,
	CategoryWork,
	CategoryPersonal,
}

func (c Category) Valid() bool {
	switch c {
	case CategoryClass, CategoryAssignment, CategoryExam, CategoryWork, CategoryPersonal:
		return true
	}
	return false
}

// ParseCategory accepts the enum values case-insensitively.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	return c, c.Valid()
}

// IsDeadline reports whether events of this category show on the deadline board.
func (c Category) IsDeadline() bool {
	return c == CategoryAssignment || c == CategoryExam
}

var (
	ErrNotFound = errors.New("event not found")
	ErrInvalid  = errors.New("invalid event")
)

// Draft is an event without identity: the output of quick-add
// normalization and the payload of create.
type Draft struct {
	Title       string    `json:"title" validate:"required,max=500"`
	Category    Category  `json:"category" validate:"required,oneof=class assignment exam work personal"`
	Start       time.Time `json:"start_ts" validate:"required"`
	End         time.Time `json:"end_ts" validate:"required,gtefield=Start"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	IsDone      bool      `json:"is_done,omitempty"`
	Priority    *int      `json:"priority,omitempty"`
}

type Event struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Category    Category  `json:"category"`
	Start       time.Time `json:"start_ts"`
	End         time.Time `json:"end_ts"`
	AllDay      bool      `json:"all_day"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	IsDone      bool      `json:"is_done"`
	Priority    *int      `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Title       *string    `json:"title"`
	Category    *Category  `json:"category"`
	Start       *time.Time `json:"start_ts"`
	End         *time.Time `json:"end_ts"`
	Location    *string    `json:"location"`
	Description *string    `json:"description"`
	IsDone      *bool      `json:"is_done"`
	Priority    *int       `json:"priority"`
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.Category == nil && p.Start == nil && p.End == nil &&
		p.Location == nil && p.Description == nil && p.IsDone == nil && p.Priority == nil
}

// Apply merges the patch into a draft built from e.
func (p Patch) Apply(e Event) Draft {
	d := e.Draft()
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Category != nil {
		d.Category = *p.Category
	}
	if p.Start != nil {
		d.Start = *p.Start
	}
	if p.End != nil {
		d.End = *p.End
	}
	if p.Location != nil {
		d.Location = *p.Location
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.IsDone != nil {
		d.IsDone = *p.IsDone
	}
	if p.Priority != nil {
		d.Priority = p.Priority
	}
	return d
}

func (e Event) Draft() Draft {
	return Draft{
		Title:       e.Title,
		Category:    e.Category,
		Start:       e.Start,
		End:         e.End,
		Location:    e.Location,
		Description: e.Description,
		IsDone:      e.IsDone,
		Priority:    e.Priority,
	}
}

// Filter selects events whose start falls in [From, To).
// Zero bounds are open.
type Filter struct {
	From       time.Time
	To         time.Time
	Categories []Category
	Limit      uint64
}
