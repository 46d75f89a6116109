package models

import (
	"time"

	"eventhub-be/internal/entities"
)

// UserSummary is an event owner resolved for display.
type UserSummary struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photoURL,omitempty"`
}

type eventFields struct {
	ID            string    `json:"_id"`
	Title         string    `json:"title"`
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

// EventSummary is an event whose owner is only referenced by id.
type EventSummary struct {
	eventFields
	PostedBy string `json:"postedBy"`
}

// EventDetail is an event whose owner has been resolved.
type EventDetail struct {
	eventFields
	PostedBy UserSummary `json:"postedBy"`
}

// JoinResponse is returned by PUT /api/events/join/{id}.
type JoinResponse struct {
	Message string       `json:"message"`
	Event   EventSummary `json:"event"`
}

// MessageResponse is a bare confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func fieldsOf(e *entities.Event) eventFields {
	attendees := e.Attendees
	if attendees == nil {
		attendees = []string{}
	}
	return eventFields{
		ID:            e.ID,
		Title:         e.Title,
		PostedByName:  e.PostedByName,
		Date:          e.Date,
		Time:          e.Time,
		Location:      e.Location,
		Description:   e.Description,
		AttendeeCount: e.AttendeeCount,
		Attendees:     attendees,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// NewEventSummary converts a stored event into its owner-id view.
func NewEventSummary(e *entities.Event) EventSummary {
	return EventSummary{eventFields: fieldsOf(e), PostedBy: e.PostedBy}
}

// NewEventDetail converts a stored event into its resolved-owner view.
func NewEventDetail(e *entities.Event, owner UserSummary) EventDetail {
	if owner.ID == "" {
		owner.ID = e.PostedBy
	}
	return EventDetail{eventFields: fieldsOf(e), PostedBy: owner}
}

// NewUserResponse builds the public view of a user.
func NewUserResponse(u *entities.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, PhotoURL: u.PhotoURL}
}
