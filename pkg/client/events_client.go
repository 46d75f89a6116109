package client

import (
	"context"
	"net/http"
	"net/url"
)

// EventsClient provides access to the /api/events endpoints
type EventsClient struct {
	client *Client
}

func eventPath(id string) string {
	return "/api/events/" + url.PathEscape(id)
}

// List returns public events matching f, newest first.
func (c *EventsClient) List(ctx context.Context, f Filter) ([]Event, error) {
	q := url.Values{}
	if f.Title != "" {
		q.Set("title", f.Title)
	}
	if f.Today {
		q.Set("date", "today")
	}
	if f.DateRange != "" {
		q.Set("dateRange", f.DateRange)
	}
	endpoint := "/api/events"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var resp []Event
	if err := c.client.doJSON(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Get retrieves one event with its owner resolved.
func (c *EventsClient) Get(ctx context.Context, id string) (Event, error) {
	var resp Event
	if err := c.client.doJSON(ctx, http.MethodGet, eventPath(id), nil, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Create posts a new event owned by the logged-in user.
func (c *EventsClient) Create(ctx context.Context, in EventInput) (Event, error) {
	var resp Event
	if err := c.client.doJSON(ctx, http.MethodPost, "/api/events", in, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Update changes an event the logged-in user owns.
func (c *EventsClient) Update(ctx context.Context, id string, patch EventPatch) (Event, error) {
	var resp Event
	if err := c.client.doJSON(ctx, http.MethodPut, eventPath(id), patch, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Delete removes an event the logged-in user owns.
func (c *EventsClient) Delete(ctx context.Context, id string) error {
	return c.client.doJSON(ctx, http.MethodDelete, eventPath(id), nil, nil)
}

// Join adds the logged-in user to the event's attendees.
func (c *EventsClient) Join(ctx context.Context, id string) (Event, error) {
	var resp struct {
		Message string `json:"message"`
		Event   Event  `json:"event"`
	}
	if err := c.client.doJSON(ctx, http.MethodPut, "/api/events/join/"+url.PathEscape(id), nil, &resp); err != nil {
		return resp.Event, err
	}
	return resp.Event, nil
}

// Mine lists the events the logged-in user posted.
func (c *EventsClient) Mine(ctx context.Context) ([]Event, error) {
	var resp []Event
	if err := c.client.doJSON(ctx, http.MethodGet, "/api/events/my-events", nil, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}
