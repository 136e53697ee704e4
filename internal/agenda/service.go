package agenda

import (
	"context"
	"fmt"
	"time"

	"unisync-backend/internal/events"
)

// Service loads the window each view needs from the store.
type Service struct {
	store events.Store
	now   func() time.Time
}

func NewService(store events.Store) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) Today(ctx context.Context, userID string) (Today, error) {
	now := s.now()
	from, to := DayWindow(now)
	list, err := s.store.List(ctx, userID, events.Filter{From: from, To: to})
	if err != nil {
		return Today{}, fmt.Errorf("list today: %w", err)
	}
	return BuildToday(list, now), nil
}

// Week returns the Monday-based week containing day; a zero day means now.
func (s *Service) Week(ctx context.Context, userID string, day time.Time) (Week, error) {
	if day.IsZero() {
		day = s.now()
	}
	from, to := WeekWindow(day)
	list, err := s.store.List(ctx, userID, events.Filter{From: from, To: to})
	if err != nil {
		return Week{}, fmt.Errorf("list week: %w", err)
	}
	return BuildWeek(list, day), nil
}

func (s *Service) Deadlines(ctx context.Context, userID string) (Board, error) {
	now := s.now()
	from, to := DeadlineWindow(now)
	list, err := s.store.List(ctx, userID, events.Filter{
		From:       from,
		To:         to,
		Categories: []events.Category{events.CategoryAssignment, events.CategoryExam},
	})
	if err != nil {
		return Board{}, fmt.Errorf("list deadlines: %w", err)
	}
	return BuildBoard(list, now), nil
}
