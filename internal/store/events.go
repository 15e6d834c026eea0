package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultEventLimit caps Recent when no limit is given.
const DefaultEventLimit = 50

// Event is a recorded gesture event.
type Event struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Rule      string    `json:"rule,omitempty"`
	Fingers   string    `json:"fingers,omitempty"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Level     float64   `json:"level,omitempty"`
	Amount    int       `json:"amount,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EventRepository stores gesture event history.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Record inserts e, filling in a new ID and, when zero, the creation time.
func (r *EventRepository) Record(e *Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO gesture_events (id, kind, rule, fingers, x, y, level, amount, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Kind, e.Rule, e.Fingers, e.X, e.Y, e.Level, e.Amount, e.CreatedAt.UTC(),
	)
	return err
}

// Get returns the event with the given ID.
func (r *EventRepository) Get(id string) (*Event, error) {
	row := r.db.QueryRow(
		`SELECT id, kind, rule, fingers, x, y, level, amount, created_at
		 FROM gesture_events WHERE id = ?`, id)

	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// Recent returns up to limit events, newest first. A non-positive limit
// uses DefaultEventLimit.
func (r *EventRepository) Recent(limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = DefaultEventLimit
	}

	rows, err := r.db.Query(
		`SELECT id, kind, rule, fingers, x, y, level, amount, created_at
		 FROM gesture_events ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountByKind returns the number of recorded events per kind.
func (r *EventRepository) CountByKind() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT kind, COUNT(*) FROM gesture_events GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		out[kind] = n
	}
	return out, rows.Err()
}

// Prune deletes events older than before and returns how many were removed.
func (r *EventRepository) Prune(before time.Time) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM gesture_events WHERE created_at < ?`, before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (*Event, error) {
	e := &Event{}
	if err := s.Scan(&e.ID, &e.Kind, &e.Rule, &e.Fingers, &e.X, &e.Y, &e.Level, &e.Amount, &e.CreatedAt); err != nil {
		return nil, err
	}
	return e, nil
}
