package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"eventhub-be/internal/entities"
)

const eventColumns = `id, title, posted_by, posted_by_name, event_date, event_time, location,
	description, attendee_count, attendees, created_at, updated_at`

type eventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new Postgres-backed event repository
func NewEventRepository(db *sql.DB) EventRepository {
	return &eventRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*entities.Event, error) {
	var (
		e         entities.Event
		attendees pq.StringArray
	)
	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.PostedBy,
		&e.PostedByName,
		&e.Date,
		&e.Time,
		&e.Location,
		&e.Description,
		&e.AttendeeCount,
		&attendees,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Attendees = []string(attendees)
	if e.Attendees == nil {
		e.Attendees = []string{}
	}
	return &e, nil
}

// Create inserts a new event
func (r *eventRepository) Create(ctx context.Context, event *entities.Event) (*entities.Event, error) {
	attendees := event.Attendees
	if attendees == nil {
		attendees = []string{}
	}

	query := `
		INSERT INTO events (id, title, posted_by, posted_by_name, event_date, event_time,
			location, description, attendee_count, attendees)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::uuid[])
		RETURNING ` + eventColumns

	e, err := scanEvent(r.db.QueryRowContext(ctx, query,
		event.ID,
		event.Title,
		event.PostedBy,
		event.PostedByName,
		event.Date,
		event.Time,
		event.Location,
		event.Description,
		event.AttendeeCount,
		pq.Array(attendees),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", pgErr(err))
	}
	return e, nil
}

// FindByID finds an event by ID
func (r *eventRepository) FindByID(ctx context.Context, id string) (*entities.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	e, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to find event: %w", pgErr(err))
	}
	return e, nil
}

// Find lists events matching q, newest first
func (r *eventRepository) Find(ctx context.Context, q EventQuery) ([]*entities.Event, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Title != "" {
		where = append(where, "strpos(lower(title), lower("+arg(q.Title)+")) > 0")
	}
	if q.PostedBy != "" {
		where = append(where, "posted_by = "+arg(q.PostedBy))
	}
	if !q.From.IsZero() {
		where = append(where, "event_date >= "+arg(q.From))
	}
	if !q.To.IsZero() {
		op := "<"
		if q.ToInclusive {
			op = "<="
		}
		where = append(where, "event_date "+op+" "+arg(q.To))
	}

	query := `SELECT ` + eventColumns + ` FROM events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += ` ORDER BY event_date DESC, event_time COLLATE "C" DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", pgErr(err))
	}
	defer rows.Close()

	events := []*entities.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", pgErr(err))
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", pgErr(err))
	}
	return events, nil
}

// Update replaces the editable fields of an event
func (r *eventRepository) Update(ctx context.Context, event *entities.Event) (*entities.Event, error) {
	query := `
		UPDATE events
		SET title = $2, event_date = $3, event_time = $4, location = $5, description = $6,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + eventColumns

	e, err := scanEvent(r.db.QueryRowContext(ctx, query,
		event.ID,
		event.Title,
		event.Date,
		event.Time,
		event.Location,
		event.Description,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", pgErr(err))
	}
	return e, nil
}

// Delete removes an event
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", pgErr(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", pgErr(err))
	}
	if n == 0 {
		return fmt.Errorf("failed to delete event: %w", ErrNotFound)
	}
	return nil
}

// AddAttendee joins userID to the event in a single conditional update
func (r *eventRepository) AddAttendee(ctx context.Context, eventID, userID string) (*entities.Event, error) {
	query := `
		UPDATE events
		SET attendees = array_append(attendees, $2::uuid),
			attendee_count = attendee_count + 1,
			updated_at = NOW()
		WHERE id = $1 AND NOT ($2::uuid = ANY(attendees))
		RETURNING ` + eventColumns

	e, err := scanEvent(r.db.QueryRowContext(ctx, query, eventID, userID))
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to join event: %w", pgErr(err))
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM events WHERE id = $1)`, eventID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to join event: %w", pgErr(err))
	}
	if !exists {
		return nil, fmt.Errorf("failed to join event: %w", ErrNotFound)
	}
	return nil, fmt.Errorf("failed to join event: %w", ErrAlreadyAttending)
}
