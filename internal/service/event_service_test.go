package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"eventhub-be/internal/apperror"
	"eventhub-be/internal/cache"
	"eventhub-be/internal/entities"
	"eventhub-be/internal/identity"
	"eventhub-be/internal/models"
	"eventhub-be/internal/testing/memstore"
)

type eventFixture struct {
	svc    EventService
	events *memstore.Events
	users  *memstore.Users
}

func newEventFixture(t *testing.T, c cache.Cache) *eventFixture {
	t.Helper()
	events, users := memstore.NewEvents(), memstore.NewUsers()
	svc := NewEventService(events, users, c, EventServiceConfig{
		Location: time.UTC,
		CacheTTL: time.Minute,
		Now:      func() time.Time { return filterNow },
	})
	return &eventFixture{svc: svc, events: events, users: users}
}

func (f *eventFixture) user(t *testing.T, name string) identity.Identity {
	t.Helper()
	u, err := f.users.Create(context.Background(), &entities.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "hash",
		PhotoURL:     "https://img.example/" + name,
	})
	require.NoError(t, err)
	return identity.Identity{ID: u.ID, Name: u.Name, Email: u.Email, PhotoURL: u.PhotoURL}
}

func (f *eventFixture) create(t *testing.T, owner identity.Identity, title, date, clock string) *models.EventSummary {
	t.Helper()
	e, err := f.svc.Create(context.Background(), owner, &models.CreateEventRequest{
		Title:       title,
		Date:        date,
		Time:        clock,
		Location:    "Hall",
		Description: "About " + title,
	})
	require.NoError(t, err)
	return e
}

func TestCreateEvent(t *testing.T) {
	f := newEventFixture(t, nil)
	ada := f.user(t, "ada")

	e := f.create(t, ada, "  Meetup ", "2026-10-20", "18:00")

	assert.Equal(t, "Meetup", e.Title)
	assert.Equal(t, ada.ID, e.PostedBy)
	assert.Equal(t, "ada", e.PostedByName)
	assert.Equal(t, day(2026, time.October, 20), e.Date)
	assert.Zero(t, e.AttendeeCount)
	assert.Empty(t, e.Attendees)
}

func TestCreateEventValidation(t *testing.T) {
	f := newEventFixture(t, nil)
	ada := f.user(t, "ada")

	_, err := f.svc.Create(context.Background(), ada, &models.CreateEventRequest{Title: "x", Date: "2026-10-20"})
	require.True(t, apperror.Is(apperror.BadRequest, err))
	assert.Equal(t, "Please include all required fields", apperror.From(err).Message)

	negative := -1
	_, err = f.svc.Create(context.Background(), ada, &models.CreateEventRequest{
		Title: "x", Date: "2026-10-20", Time: "9", Location: "y", Description: "z", AttendeeCount: &negative,
	})
	assert.Equal(t, []string{"AttendeeCount must be at least 0"}, apperror.From(err).Details)

	_, err = f.svc.Create(context.Background(), ada, &models.CreateEventRequest{
		Title: "x", Date: "next tuesday", Time: "9", Location: "y", Description: "z",
	})
	assert.Equal(t, []string{"Date must be a valid date"}, apperror.From(err).Details)
}

func TestCreateEventAcceptsRFC3339AndAttendeeCount(t *testing.T) {
	f := newEventFixture(t, nil)
	ada := f.user(t, "ada")
	count := 12

	e, err := f.svc.Create(context.Background(), ada, &models.CreateEventRequest{
		Title: "Gala", Date: "2026-10-20T18:00:00+02:00", Time: "18:00", Location: "Hall", Description: "d",
		AttendeeCount: &count,
	})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, time.October, 20, 16, 0, 0, 0, time.UTC), e.Date)
	assert.Equal(t, 12, e.AttendeeCount)
}

func TestListFiltersAndOrder(t *testing.T) {
	f := newEventFixture(t, nil)
	ada := f.user(t, "ada")
	f.create(t, ada, "Morning Meetup", "2026-10-14", "09:00")
	f.create(t, ada, "Evening meetup", "2026-10-14", "19:00")
	f.create(t, ada, "Tomorrow's Meetup", "2026-10-15", "00:00")
	f.create(t, ada, "Yesterday", "2026-10-13", "23:59")

	all, err := f.svc.List(context.Background(), models.EventFilter{})
	require.NoError(t, err)
	titles := func(es []models.EventDetail) []string {
		var out []string
		for _, e := range es {
			out = append(out, e.Title)
		}
		return out
	}
	assert.Equal(t, []string{"Tomorrow's Meetup", "Evening meetup", "Morning Meetup", "Yesterday"}, titles(all))
	assert.Equal(t, models.UserSummary{ID: ada.ID, Name: "ada", Email: "ada@example.com"}, all[0].PostedBy)

	today, err := f.svc.List(context.Background(), models.EventFilter{Date: "today"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Evening meetup", "Morning Meetup"}, titles(today))

	byTitle, err := f.svc.List(context.Background(), models.EventFilter{Title: "MEETUP"})
	require.NoError(t, err)
	assert.Len(t, byTitle, 3)
}

func TestGetEvent(t *testing.T) {
	f := newEventFixture(t, nil)
	ada := f.user(t, "ada")
	created := f.create(t, ada, "Meetup", "2026-10-20", "18:00")

	got, err := f.svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/ada", got.PostedBy.PhotoURL)
	assert.Equal(t, "ada@example.com", got.PostedBy.Email)

	_, err = f.svc.Get(context.Background(), "not-a-uuid")
	assert.Equal(t, "Invalid Event ID", apperror.From(err).Message)

	_, err = f.svc.Get(context.Background(), uuid.NewString())
	assert.True(t, apperror.Is(apperror.NotFound, err))
}

func TestUpdateEvent(t *testing.T) {
	f := newEventFixture(t, nil)
	ada := f.user(t, "ada")
	created := f.create(t, ada, "Meetup", "2026-10-20", "18:00")

	title, date := "Meetup v2", "2026-10-21"
	updated, err := f.svc.Update(context.Background(), ada, created.ID, &models.UpdateEventRequest{Title: &title, Date: &date})
	require.NoError(t, err)

	assert.Equal(t, "Meetup v2", updated.Title)
	assert.Equal(t, day(2026, time.October, 21), updated.Date)
	assert.Equal(t, "18:00", updated.Time)

	blank := "   "
	_, err = f.svc.Update(context.Background(), ada, created.ID, &models.UpdateEventRequest{Location: &blank})
	assert.Equal(t, []string{"Location is required"}, apperror.From(err).Details)
}

func TestNonOwnerCannotModify(t *testing.T) {
	f := newEventFixture(t, nil)
	ada, bob := f.user(t, "ada"), f.user(t, "bob")
	created := f.create(t, ada, "Meetup", "2026-10-20", "18:00")

	title := "Hijacked"
	_, err := f.svc.Update(context.Background(), bob, created.ID, &models.UpdateEventRequest{Title: &title})
	assert.True(t, apperror.Is(apperror.Forbidden, err))

	err = f.svc.Delete(context.Background(), bob, created.ID)
	assert.True(t, apperror.Is(apperror.Forbidden, err))

	stored, err := f.events.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Meetup", stored.Title)
}

func TestDeleteEvent(t *testing.T) {
	f := newEventFixture(t, nil)
	ada := f.user(t, "ada")
	created := f.create(t, ada, "Meetup", "2026-10-20", "18:00")

	require.NoError(t, f.svc.Delete(context.Background(), ada, created.ID))

	err := f.svc.Delete(context.Background(), ada, created.ID)
	assert.True(t, apperror.Is(apperror.NotFound, err))
}

func TestJoinTwiceIsRejected(t *testing.T) {
	f := newEventFixture(t, nil)
	ada, bob := f.user(t, "ada"), f.user(t, "bob")
	created := f.create(t, ada, "Meetup", "2026-10-20", "18:00")

	joined, err := f.svc.Join(context.Background(), bob, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, joined.AttendeeCount)
	assert.Equal(t, []string{bob.ID}, joined.Attendees)

	_, err = f.svc.Join(context.Background(), bob, created.ID)
	require.True(t, apperror.Is(apperror.BadRequest, err))
	assert.Equal(t, "You have already joined this event", apperror.From(err).Message)

	stored, err := f.events.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.AttendeeCount)
	assert.Len(t, stored.Attendees, 1)
}

func TestConcurrentJoinsByDifferentUsers(t *testing.T) {
	f := newEventFixture(t, nil)
	ada := f.user(t, "ada")
	created := f.create(t, ada, "Meetup", "2026-10-20", "18:00")

	joiners := []identity.Identity{f.user(t, "bob"), f.user(t, "cy")}
	var wg sync.WaitGroup
	for _, u := range joiners {
		u := u
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Join(context.Background(), u, created.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := f.events.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.AttendeeCount)
	assert.ElementsMatch(t, []string{joiners[0].ID, joiners[1].ID}, stored.Attendees)
}

func TestMyEvents(t *testing.T) {
	f := newEventFixture(t, nil)
	ada, bob := f.user(t, "ada"), f.user(t, "bob")
	older := f.create(t, ada, "Older", "2026-10-01", "10:00")
	newer := f.create(t, ada, "Newer", "2026-10-20", "10:00")
	f.create(t, bob, "Bob's", "2026-10-05", "10:00")

	mine, err := f.svc.MyEvents(context.Background(), ada)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, newer.ID, mine[0].ID)
	assert.Equal(t, older.ID, mine[1].ID)

	none, err := f.svc.MyEvents(context.Background(), f.user(t, "cy"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetCachesOwnerSummary(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCache := cache.NewMockCache(ctrl)
	f := newEventFixture(t, mockCache)
	ada := f.user(t, "ada")
	created := f.create(t, ada, "Meetup", "2026-10-20", "18:00")
	key := cache.OwnerSummaryKey(ada.ID)
	want := models.UserSummary{ID: ada.ID, Name: "ada", Email: "ada@example.com", PhotoURL: "https://img.example/ada"}

	gomock.InOrder(
		mockCache.EXPECT().GetJSON(gomock.Any(), key, gomock.Any()).Return(cache.ErrMiss),
		mockCache.EXPECT().SetJSON(gomock.Any(), key, want, time.Minute).Return(nil),
	)
	first, err := f.svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, want, first.PostedBy)

	mockCache.EXPECT().GetJSON(gomock.Any(), key, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, dest any) error {
			*dest.(*models.UserSummary) = models.UserSummary{ID: ada.ID, Name: "Ada L."}
			return nil
		})
	second, err := f.svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", second.PostedBy.Name)
	assert.Equal(t, "Meetup", second.Title)
}

func TestGetDoesNotCacheMissingOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCache := cache.NewMockCache(ctrl)
	f := newEventFixture(t, mockCache)
	gone := uuid.NewString()
	orphan, err := f.events.Create(context.Background(), &entities.Event{
		ID:           uuid.NewString(),
		Title:        "Orphan",
		PostedBy:     gone,
		PostedByName: "gone",
		Date:         day(2026, time.October, 20),
		Time:         "18:00",
		Location:     "Hall",
		Description:  "d",
		Attendees:    []string{},
	})
	require.NoError(t, err)

	mockCache.EXPECT().GetJSON(gomock.Any(), cache.OwnerSummaryKey(gone), gomock.Any()).Return(cache.ErrMiss)
	got, err := f.svc.Get(context.Background(), orphan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserSummary{ID: gone, Name: "gone"}, got.PostedBy)
}

func TestCacheFailuresDoNotFailRequests(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCache := cache.NewMockCache(ctrl)
	f := newEventFixture(t, mockCache)
	ada := f.user(t, "ada")
	created := f.create(t, ada, "Meetup", "2026-10-20", "18:00")
	key := cache.OwnerSummaryKey(ada.ID)
	down := errors.New("redis down")

	mockCache.EXPECT().GetJSON(gomock.Any(), key, gomock.Any()).Return(down)
	mockCache.EXPECT().SetJSON(gomock.Any(), key, gomock.Any(), gomock.Any()).Return(down)
	got, err := f.svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", got.PostedBy.Name)
}

func TestMutationsLeaveCacheAlone(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newEventFixture(t, cache.NewMockCache(ctrl))
	ada, bob := f.user(t, "ada"), f.user(t, "bob")
	created := f.create(t, ada, "Meetup", "2026-10-20", "18:00")

	title := "Renamed"
	_, err := f.svc.Update(context.Background(), ada, created.ID, &models.UpdateEventRequest{Title: &title})
	require.NoError(t, err)
	_, err = f.svc.Join(context.Background(), bob, created.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(context.Background(), ada, created.ID))
}

// mapCache is an in-process cache.Cache.
type mapCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMapCache() *mapCache { return &mapCache{data: map[string]string{}} }

func (c *mapCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return v, nil
}

func (c *mapCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mapCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, string(data), ttl)
}

func (c *mapCache) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func (c *mapCache) Close() error { return nil }

// joinAfterRead runs a join right after the first FindByID returns, so the
// join commits while Get is still resolving the detail.
type joinAfterRead struct {
	*memstore.Events
	once sync.Once
	join func()
}

func (s *joinAfterRead) FindByID(ctx context.Context, id string) (*entities.Event, error) {
	e, err := s.Events.FindByID(ctx, id)
	s.once.Do(s.join)
	return e, err
}

func TestGetAfterConcurrentJoinShowsAttendee(t *testing.T) {
	events, users := memstore.NewEvents(), memstore.NewUsers()
	store := &joinAfterRead{Events: events}
	svc := NewEventService(store, users, newMapCache(), EventServiceConfig{Location: time.UTC, CacheTTL: time.Minute})
	f := &eventFixture{svc: svc, events: events, users: users}
	ada, bob := f.user(t, "ada"), f.user(t, "bob")
	created := f.create(t, ada, "Meetup", "2026-10-20", "18:00")
	store.join = func() {
		_, err := svc.Join(context.Background(), bob, created.ID)
		assert.NoError(t, err)
	}

	first, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Zero(t, first.AttendeeCount)

	second, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	stored, err := events.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.AttendeeCount)
	assert.Equal(t, stored.AttendeeCount, second.AttendeeCount)
	assert.Equal(t, []string{bob.ID}, second.Attendees)
}
