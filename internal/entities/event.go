package entities

import (
	"slices"
	"time"

	"eventhub-be/internal/validation"
)

// Event represents an event record in the database. PostedBy is the owning
// user's id; PostedByName is a snapshot of the owner's name at creation.
type Event struct {
	ID            string    `bson:"_id" json:"_id"` // UUID
	Title         string    `bson:"title" json:"title" validate:"required" label:"Title"`
	PostedBy      string    `bson:"postedBy" json:"postedBy" validate:"required" label:"PostedBy"`
	PostedByName  string    `bson:"postedByName" json:"postedByName" validate:"required" label:"PostedByName"`
	Date          time.Time `bson:"date" json:"date"`
	Time          string    `bson:"time" json:"time" validate:"required" label:"Time"`
	Location      string    `bson:"location" json:"location" validate:"required" label:"Location"`
	Description   string    `bson:"description" json:"description" validate:"required" label:"Description"`
	AttendeeCount int       `bson:"attendeeCount" json:"attendeeCount" validate:"gte=0" label:"AttendeeCount"`
	Attendees     []string  `bson:"attendees" json:"attendees"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Validate applies the event schema rules and returns the failures, if any.
func (e *Event) Validate() []string {
	msgs := validation.Struct(e)
	if e.Date.IsZero() {
		msgs = append(msgs, "Date is required")
	}
	return msgs
}

// HasAttendee reports whether userID already joined the event.
func (e *Event) HasAttendee(userID string) bool {
	return slices.Contains(e.Attendees, userID)
}
