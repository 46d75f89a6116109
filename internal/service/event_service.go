package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"eventhub-be/internal/apperror"
	"eventhub-be/internal/cache"
	"eventhub-be/internal/entities"
	"eventhub-be/internal/identity"
	"eventhub-be/internal/logger"
	"eventhub-be/internal/models"
	"eventhub-be/internal/repository"
)

const dateLayout = "2006-01-02"

// EventService defines the interface for event business logic
type EventService interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.EventDetail, error)
	Get(ctx context.Context, id string) (*models.EventDetail, error)
	Create(ctx context.Context, caller identity.Identity, req *models.CreateEventRequest) (*models.EventSummary, error)
	Update(ctx context.Context, caller identity.Identity, id string, req *models.UpdateEventRequest) (*models.EventSummary, error)
	Delete(ctx context.Context, caller identity.Identity, id string) error
	Join(ctx context.Context, caller identity.Identity, id string) (*models.EventSummary, error)
	MyEvents(ctx context.Context, caller identity.Identity) ([]models.EventSummary, error)
}

// EventServiceConfig tunes an EventService. Zero values select UTC, a five
// minute cache TTL and the wall clock.
type EventServiceConfig struct {
	Location *time.Location
	CacheTTL time.Duration
	Now      func() time.Time
}

type eventService struct {
	events repository.EventRepository
	users  repository.UserRepository
	cache  cache.Cache
	loc    *time.Location
	ttl    time.Duration
	now    func() time.Time
}

// NewEventService creates a new event service. cacheClient may be nil.
func NewEventService(events repository.EventRepository, users repository.UserRepository, cacheClient cache.Cache, cfg EventServiceConfig) EventService {
	svc := &eventService{
		events: events,
		users:  users,
		loc:    cfg.Location,
		ttl:    cfg.CacheTTL,
		now:    cfg.Now,
	}
	// Only set cache if provided (allows graceful degradation)
	if cacheClient != nil {
		svc.cache = cacheClient
	}
	if svc.loc == nil {
		svc.loc = time.UTC
	}
	if svc.ttl <= 0 {
		svc.ttl = 5 * time.Minute
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

func parseEventID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", apperror.NewBadRequest("Invalid Event ID")
	}
	return parsed.String(), nil
}

// parseEventDate accepts a calendar date, taken as midnight in loc, or an
// RFC 3339 timestamp.
func parseEventDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, apperror.NewValidation([]string{"Date must be a valid date"})
	}
	return t.UTC().Truncate(time.Millisecond), nil
}

func eventErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NewNotFound("Event not found")
	case errors.Is(err, repository.ErrAlreadyAttending):
		return apperror.NewBadRequest("You have already joined this event")
	}
	return apperror.NewInternal("Server error", err)
}

func (s *eventService) List(ctx context.Context, filter models.EventFilter) ([]models.EventDetail, error) {
	q := repository.EventQuery{Title: strings.TrimSpace(filter.Title)}
	applyDateFilter(&q, filter, s.now().In(s.loc))

	events, err := s.events.Find(ctx, q)
	if err != nil {
		return nil, apperror.NewInternal("Server error", err)
	}

	owners, err := s.owners(ctx, events)
	if err != nil {
		return nil, apperror.NewInternal("Server error", err)
	}

	out := make([]models.EventDetail, 0, len(events))
	for _, e := range events {
		owner := owners[e.PostedBy]
		owner.PhotoURL = ""
		out = append(out, models.NewEventDetail(e, owner))
	}
	return out, nil
}

// owners resolves every distinct postedBy in events with one store read.
// Owners that no longer exist fall back to the name snapshot on the event.
func (s *eventService) owners(ctx context.Context, events []*entities.Event) (map[string]models.UserSummary, error) {
	owners := make(map[string]models.UserSummary, len(events))
	var ids []string
	for _, e := range events {
		if _, seen := owners[e.PostedBy]; !seen {
			owners[e.PostedBy] = models.UserSummary{ID: e.PostedBy, Name: e.PostedByName}
			ids = append(ids, e.PostedBy)
		}
	}
	if len(ids) == 0 {
		return owners, nil
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		owners[u.ID] = models.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, PhotoURL: u.PhotoURL}
	}
	return owners, nil
}

func (s *eventService) Get(ctx context.Context, id string) (*models.EventDetail, error) {
	id, err := parseEventID(id)
	if err != nil {
		return nil, err
	}

	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, eventErr(err)
	}

	owner, err := s.owner(ctx, event)
	if err != nil {
		return nil, apperror.NewInternal("Server error", err)
	}

	detail := models.NewEventDetail(event, owner)
	return &detail, nil
}

// owner resolves the poster of event, reading through the owner cache.
// Only users found in the store are cached.
func (s *eventService) owner(ctx context.Context, event *entities.Event) (models.UserSummary, error) {
	log := logger.FromContext(ctx)
	key := cache.OwnerSummaryKey(event.PostedBy)

	if s.cache != nil {
		var cached models.UserSummary
		err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			log.Warn("owner cache read failed", zap.String("user_id", event.PostedBy), zap.Error(err))
		}
	}

	user, err := s.users.FindByID(ctx, event.PostedBy)
	if errors.Is(err, repository.ErrNotFound) {
		return models.UserSummary{ID: event.PostedBy, Name: event.PostedByName}, nil
	}
	if err != nil {
		return models.UserSummary{}, err
	}

	owner := models.UserSummary{ID: user.ID, Name: user.Name, Email: user.Email, PhotoURL: user.PhotoURL}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, owner, s.ttl); err != nil {
			log.Warn("owner cache write failed", zap.String("user_id", event.PostedBy), zap.Error(err))
		}
	}
	return owner, nil
}

func (s *eventService) Create(ctx context.Context, caller identity.Identity, req *models.CreateEventRequest) (*models.EventSummary, error) {
	title := strings.TrimSpace(req.Title)
	dateStr := strings.TrimSpace(req.Date)
	timeStr := strings.TrimSpace(req.Time)
	location := strings.TrimSpace(req.Location)
	description := strings.TrimSpace(req.Description)
	if title == "" || dateStr == "" || timeStr == "" || location == "" || description == "" {
		return nil, apperror.NewBadRequest("Please include all required fields")
	}

	date, err := parseEventDate(dateStr, s.loc)
	if err != nil {
		return nil, err
	}

	event := &entities.Event{
		ID:           uuid.NewString(),
		Title:        title,
		PostedBy:     caller.ID,
		PostedByName: caller.Name,
		Date:         date,
		Time:         timeStr,
		Location:     location,
		Description:  description,
		Attendees:    []string{},
	}
	if req.AttendeeCount != nil {
		event.AttendeeCount = *req.AttendeeCount
	}
	if msgs := event.Validate(); len(msgs) > 0 {
		return nil, apperror.NewValidation(msgs)
	}

	created, err := s.events.Create(ctx, event)
	if err != nil {
		return nil, apperror.NewInternal("Server error", err)
	}

	logger.FromContext(ctx).Info("event created", zap.String("event_id", created.ID), zap.String("user_id", caller.ID))
	summary := models.NewEventSummary(created)
	return &summary, nil
}

// loadOwned fetches the event and checks that caller posted it.
func (s *eventService) loadOwned(ctx context.Context, caller identity.Identity, id string) (*entities.Event, error) {
	id, err := parseEventID(id)
	if err != nil {
		return nil, err
	}
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, eventErr(err)
	}
	if event.PostedBy != caller.ID {
		return nil, apperror.NewForbidden("Not authorized to modify this event")
	}
	return event, nil
}

func (s *eventService) Update(ctx context.Context, caller identity.Identity, id string, req *models.UpdateEventRequest) (*models.EventSummary, error) {
	event, err := s.loadOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		event.Title = strings.TrimSpace(*req.Title)
	}
	if req.Time != nil {
		event.Time = strings.TrimSpace(*req.Time)
	}
	if req.Location != nil {
		event.Location = strings.TrimSpace(*req.Location)
	}
	if req.Description != nil {
		event.Description = strings.TrimSpace(*req.Description)
	}
	if req.Date != nil {
		if strings.TrimSpace(*req.Date) == "" {
			event.Date = time.Time{}
		} else if event.Date, err = parseEventDate(*req.Date, s.loc); err != nil {
			return nil, err
		}
	}
	if msgs := event.Validate(); len(msgs) > 0 {
		return nil, apperror.NewValidation(msgs)
	}

	updated, err := s.events.Update(ctx, event)
	if err != nil {
		return nil, eventErr(err)
	}

	summary := models.NewEventSummary(updated)
	return &summary, nil
}

func (s *eventService) Delete(ctx context.Context, caller identity.Identity, id string) error {
	event, err := s.loadOwned(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.events.Delete(ctx, event.ID); err != nil {
		return eventErr(err)
	}

	logger.FromContext(ctx).Info("event deleted", zap.String("event_id", event.ID), zap.String("user_id", caller.ID))
	return nil
}

func (s *eventService) Join(ctx context.Context, caller identity.Identity, id string) (*models.EventSummary, error) {
	id, err := parseEventID(id)
	if err != nil {
		return nil, err
	}

	event, err := s.events.AddAttendee(ctx, id, caller.ID)
	if err != nil {
		return nil, eventErr(err)
	}

	summary := models.NewEventSummary(event)
	return &summary, nil
}

func (s *eventService) MyEvents(ctx context.Context, caller identity.Identity) ([]models.EventSummary, error) {
	events, err := s.events.Find(ctx, repository.EventQuery{PostedBy: caller.ID})
	if err != nil {
		return nil, apperror.NewInternal("Server error", err)
	}

	out := make([]models.EventSummary, 0, len(events))
	for _, e := range events {
		out = append(out, models.NewEventSummary(e))
	}
	return out, nil
}
