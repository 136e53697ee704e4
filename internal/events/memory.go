package events

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps events in process memory. It backs local runs without
// Postgres and handler tests; data is lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[string]Event
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[string]Event), now: time.Now}
}

func (s *MemoryStore) Create(_ context.Context, userID string, d Draft) (Event, error) {
	if err := Validate(d); err != nil {
		return Event{}, err
	}

	now := s.now().In(Location())
	ev := Event{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       d.Title,
		Category:    d.Category,
		Start:       d.Start.In(Location()),
		End:         d.End.In(Location()),
		Location:    d.Location,
		Description: d.Description,
		IsDone:      d.IsDone,
		Priority:    d.Priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.events[ev.ID] = ev
	s.mu.Unlock()
	return ev, nil
}

func (s *MemoryStore) Get(_ context.Context, userID, id string) (Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.events[id]
	if !ok || ev.UserID != userID {
		return Event{}, ErrNotFound
	}
	return ev, nil
}

func (s *MemoryStore) Update(_ context.Context, userID, id string, p Patch) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.events[id]
	if !ok || current.UserID != userID {
		return Event{}, ErrNotFound
	}

	merged := p.Apply(current)
	if err := Validate(merged); err != nil {
		return Event{}, err
	}

	updated := current
	updated.Title = merged.Title
	updated.Category = merged.Category
	updated.Start = merged.Start.In(Location())
	updated.End = merged.End.In(Location())
	updated.Location = merged.Location
	updated.Description = merged.Description
	updated.IsDone = merged.IsDone
	updated.Priority = merged.Priority
	updated.UpdatedAt = s.now().In(Location())

	s.events[id] = updated
	return updated, nil
}

func (s *MemoryStore) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok || ev.UserID != userID {
		return ErrNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context, userID string, f Filter) ([]Event, error) {
	s.mu.RLock()
	out := []Event{}
	for _, ev := range s.events {
		if ev.UserID != userID || !f.matches(ev) {
			continue
		}
		out = append(out, ev)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Event) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})

	if f.Limit > 0 && uint64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (f Filter) matches(ev Event) bool {
	if !f.From.IsZero() && ev.Start.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !ev.Start.Before(f.To) {
		return false
	}
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, ev.Category) {
		return false
	}
	return true
}
