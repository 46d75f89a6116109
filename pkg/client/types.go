package client

import (
	"bytes"
	"encoding/json"
	"time"
)

// User is the public view of an account.
type User struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photoURL,omitempty"`
}

// Event as returned by the API. Depending on the endpoint the owner arrives
// either as an id or as a resolved user; PostedBy always holds the id and
// Owner is filled only in the second case.
type Event struct {
	ID            string    `json:"_id"`
	Title         string    `json:"title"`
	PostedBy      string    `json:"-"`
	Owner         *User     `json:"-"`
	PostedByName  string    `json:"postedByName"`
	Date          time.Time `json:"date"`
	Time          string    `json:"time"`
	Location      string    `json:"location"`
	Description   string    `json:"description"`
	AttendeeCount int       `json:"attendeeCount"`
	Attendees     []string  `json:"attendees"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (e *Event) UnmarshalJSON(data []byte) error {
	type plain Event
	aux := struct {
		*plain
		PostedBy json.RawMessage `json:"postedBy"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	raw := bytes.TrimSpace(aux.PostedBy)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '{':
		var owner User
		if err := json.Unmarshal(raw, &owner); err != nil {
			return err
		}
		e.Owner = &owner
		e.PostedBy = owner.ID
	default:
		return json.Unmarshal(raw, &e.PostedBy)
	}
	return nil
}

// Filter narrows List. DateRange is one of currentWeek, lastWeek,
// currentMonth or lastMonth.
type Filter struct {
	Title     string
	Today     bool
	DateRange string
}

// EventInput is the body of a create request. Date is YYYY-MM-DD or RFC 3339.
type EventInput struct {
	Title         string `json:"title"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Location      string `json:"location"`
	Description   string `json:"description"`
	AttendeeCount *int   `json:"attendeeCount,omitempty"`
}

// EventPatch changes only the non-nil fields.
type EventPatch struct {
	Title       *string `json:"title,omitempty"`
	Date        *string `json:"date,omitempty"`
	Time        *string `json:"time,omitempty"`
	Location    *string `json:"location,omitempty"`
	Description *string `json:"description,omitempty"`
}
