// Package memstore provides in-memory UserRepository and EventRepository
// implementations for tests. They follow the Postgres and MongoDB stores:
// unique email, password hidden outside FindByEmail, conditional join.
package memstore

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"eventhub-be/internal/entities"
	"eventhub-be/internal/repository"
)

// Users is an in-memory repository.UserRepository.
type Users struct {
	mu    sync.RWMutex
	byID  map[string]entities.User
	email map[string]string
}

// NewUsers returns an empty user store.
func NewUsers() *Users {
	return &Users{byID: map[string]entities.User{}, email: map[string]string{}}
}

var _ repository.UserRepository = (*Users)(nil)

func (s *Users) Create(_ context.Context, user *entities.User) (*entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.email[user.Email]; ok {
		return nil, &repository.DuplicateError{Field: "email"}
	}
	u := *user
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	s.byID[u.ID] = u
	s.email[u.Email] = u.ID
	return &u, nil
}

func (s *Users) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.email[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := s.byID[id]
	return &u, nil
}

func (s *Users) FindByID(_ context.Context, id string) (*entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.PasswordHash = ""
	return &u, nil
}

func (s *Users) FindByIDs(_ context.Context, ids []string) ([]*entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*entities.User
	for _, id := range ids {
		if u, ok := s.byID[id]; ok {
			u.PasswordHash = ""
			out = append(out, &u)
		}
	}
	return out, nil
}

// Len returns the number of stored users.
func (s *Users) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Events is an in-memory repository.EventRepository.
type Events struct {
	mu   sync.RWMutex
	byID map[string]entities.Event
}

// NewEvents returns an empty event store.
func NewEvents() *Events {
	return &Events{byID: map[string]entities.Event{}}
}

var _ repository.EventRepository = (*Events)(nil)

func clone(e entities.Event) *entities.Event {
	e.Attendees = slices.Clone(e.Attendees)
	if e.Attendees == nil {
		e.Attendees = []string{}
	}
	return &e
}

func (s *Events) Create(_ context.Context, event *entities.Event) (*entities.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := *clone(*event)
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	s.byID[e.ID] = e
	return clone(e), nil
}

func (s *Events) FindByID(_ context.Context, id string) (*entities.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(e), nil
}

func (s *Events) Find(_ context.Context, q repository.EventQuery) ([]*entities.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	title := strings.ToLower(q.Title)
	out := []*entities.Event{}
	for _, e := range s.byID {
		if title != "" && !strings.Contains(strings.ToLower(e.Title), title) {
			continue
		}
		if q.PostedBy != "" && e.PostedBy != q.PostedBy {
			continue
		}
		if !q.From.IsZero() && e.Date.Before(q.From) {
			continue
		}
		if !q.To.IsZero() {
			if e.Date.After(q.To) || (!q.ToInclusive && e.Date.Equal(q.To)) {
				continue
			}
		}
		out = append(out, clone(e))
	}
	slices.SortFunc(out, func(a, b *entities.Event) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.Time, a.Time)
	})
	return out, nil
}

func (s *Events) Update(_ context.Context, event *entities.Event) (*entities.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[event.ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	e.Title = event.Title
	e.Date = event.Date
	e.Time = event.Time
	e.Location = event.Location
	e.Description = event.Description
	e.UpdatedAt = time.Now().UTC()
	s.byID[e.ID] = e
	return clone(e), nil
}

func (s *Events) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *Events) AddAttendee(_ context.Context, eventID, userID string) (*entities.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[eventID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if e.HasAttendee(userID) {
		return nil, repository.ErrAlreadyAttending
	}
	e.Attendees = append(slices.Clone(e.Attendees), userID)
	e.AttendeeCount++
	e.UpdatedAt = time.Now().UTC()
	s.byID[e.ID] = e
	return clone(e), nil
}
