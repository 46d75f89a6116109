// Package repository holds the User and Event stores. Each store has a
// PostgreSQL and a MongoDB implementation with identical semantics.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventhub-be/internal/entities"
)

var (
	// ErrNotFound is returned when no record matches the given id or email.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyAttending is returned by AddAttendee when the user already joined.
	ErrAlreadyAttending = errors.New("user already attending event")
)

// DuplicateError reports a write rejected by a unique constraint.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate value for unique field %q", e.Field)
}

// UserRepository defines the interface for user database operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) (*entities.User, error)
	// FindByEmail is the only read that includes the password hash.
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	FindByID(ctx context.Context, id string) (*entities.User, error)
	// FindByIDs returns the users that exist among ids, in no particular order.
	FindByIDs(ctx context.Context, ids []string) ([]*entities.User, error)
}

// EventQuery narrows Find. Zero-valued fields do not constrain the result.
type EventQuery struct {
	Title       string // case-insensitive literal substring
	PostedBy    string
	From        time.Time // inclusive lower bound on Date
	To          time.Time // upper bound on Date
	ToInclusive bool
}

// EventRepository defines the interface for event database operations.
// Find returns events ordered by date, then time, both descending.
type EventRepository interface {
	Create(ctx context.Context, event *entities.Event) (*entities.Event, error)
	FindByID(ctx context.Context, id string) (*entities.Event, error)
	Find(ctx context.Context, q EventQuery) ([]*entities.Event, error)
	// Update replaces the editable fields (title, date, time, location,
	// description) of the stored event with those of event.
	Update(ctx context.Context, event *entities.Event) (*entities.Event, error)
	Delete(ctx context.Context, id string) error
	// AddAttendee atomically appends userID to the attendees and increments
	// the attendee count, unless userID is already present.
	AddAttendee(ctx context.Context, eventID, userID string) (*entities.Event, error)
}
