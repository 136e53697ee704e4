package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// Store persists events. Every operation is scoped by the owning user id.
type Store interface {
	Create(ctx context.Context, userID string, d Draft) (Event, error)
	Get(ctx context.Context, userID, id string) (Event, error)
	Update(ctx context.Context, userID, id string, p Patch) (Event, error)
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID string, f Filter) ([]Event, error)
}

var eventColumns = []string{
	"id",
	"user_id",
	"title",
	"category",
	"start_ts",
	"end_ts",
	"all_day",
	"location",
	"description",
	"is_done",
	"priority",
	"created_at",
	"updated_at",
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func (s *PostgresStore) Create(ctx context.Context, userID string, d Draft) (Event, error) {
	if err := Validate(d); err != nil {
		return Event{}, err
	}

	now := s.now().UTC()
	query, args, err := psql.
		Insert("events").
		Columns(
			"id", "user_id", "title", "category", "start_ts", "end_ts",
			"all_day", "location", "description", "is_done", "priority",
			"created_at", "updated_at",
		).
		Values(
			uuid.NewString(), userID, d.Title, string(d.Category), d.Start.UTC(), d.End.UTC(),
			false, d.Location, d.Description, d.IsDone, nullableInt(d.Priority),
			now, now,
		).
		Suffix("RETURNING " + joinColumns()).
		ToSql()
	if err != nil {
		return Event{}, fmt.Errorf("build insert: %w", err)
	}

	ev, err := scanEvent(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return Event{}, fmt.Errorf("insert event: %w", err)
	}
	return ev, nil
}

func (s *PostgresStore) Get(ctx context.Context, userID, id string) (Event, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Event{}, ErrNotFound
	}

	query, args, err := psql.
		Select(eventColumns...).
		From("events").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return Event{}, fmt.Errorf("build select: %w", err)
	}

	ev, err := scanEvent(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, ErrNotFound
	}
	if err != nil {
		return Event{}, fmt.Errorf("select event: %w", err)
	}
	return ev, nil
}

// Update loads the row, merges the patch, validates the merged event and
// writes it back inside one transaction.
func (s *PostgresStore) Update(ctx context.Context, userID, id string, p Patch) (Event, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Event{}, ErrNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Event{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	selectQuery, selectArgs, err := psql.
		Select(eventColumns...).
		From("events").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return Event{}, fmt.Errorf("build select: %w", err)
	}

	current, err := scanEvent(tx.QueryRowContext(ctx, selectQuery, selectArgs...))
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, ErrNotFound
	}
	if err != nil {
		return Event{}, fmt.Errorf("select event: %w", err)
	}

	merged := p.Apply(current)
	if err := Validate(merged); err != nil {
		return Event{}, err
	}

	updateQuery, updateArgs, err := psql.
		Update("events").
		SetMap(map[string]any{
			"title":       merged.Title,
			"category":    string(merged.Category),
			"start_ts":    merged.Start.UTC(),
			"end_ts":      merged.End.UTC(),
			"location":    merged.Location,
			"description": merged.Description,
			"is_done":     merged.IsDone,
			"priority":    nullableInt(merged.Priority),
			"updated_at":  s.now().UTC(),
		}).
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		Suffix("RETURNING " + joinColumns()).
		ToSql()
	if err != nil {
		return Event{}, fmt.Errorf("build update: %w", err)
	}

	updated, err := scanEvent(tx.QueryRowContext(ctx, updateQuery, updateArgs...))
	if err != nil {
		return Event{}, fmt.Errorf("update event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Event{}, fmt.Errorf("commit: %w", err)
	}
	return updated, nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	query, args, err := psql.
		Delete("events").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, userID string, f Filter) ([]Event, error) {
	query, args, err := listQuery(userID, f).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

func listQuery(userID string, f Filter) squirrel.SelectBuilder {
	q := psql.
		Select(eventColumns...).
		From("events").
		Where(squirrel.Eq{"user_id": userID})

	if !f.From.IsZero() {
		q = q.Where(squirrel.GtOrEq{"start_ts": f.From.UTC()})
	}
	if !f.To.IsZero() {
		q = q.Where(squirrel.Lt{"start_ts": f.To.UTC()})
	}
	if len(f.Categories) > 0 {
		cats := make([]string, 0, len(f.Categories))
		for _, c := range f.Categories {
			cats = append(cats, string(c))
		}
		q = q.Where(squirrel.Eq{"category": cats})
	}

	q = q.OrderBy("start_ts ASC", "id ASC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	return q
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (Event, error) {
	var (
		ev       Event
		category string
		priority sql.NullInt64
	)
	err := row.Scan(
		&ev.ID,
		&ev.UserID,
		&ev.Title,
		&category,
		&ev.Start,
		&ev.End,
		&ev.AllDay,
		&ev.Location,
		&ev.Description,
		&ev.IsDone,
		&priority,
		&ev.CreatedAt,
		&ev.UpdatedAt,
	)
	if err != nil {
		return Event{}, err
	}

	ev.Category = Category(category)
	if priority.Valid {
		p := int(priority.Int64)
		ev.Priority = &p
	}

	loc := Location()
	ev.Start = ev.Start.In(loc)
	ev.End = ev.End.In(loc)
	return ev, nil
}

func joinColumns() string {
	return strings.Join(eventColumns, ", ")
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// Upcoming lists the next events starting at or after now.
func Upcoming(ctx context.Context, s Store, userID string, now time.Time, limit uint64) ([]Event, error) {
	return s.List(ctx, userID, Filter{From: now, Limit: limit})
}
