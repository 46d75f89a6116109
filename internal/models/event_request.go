package models

// CreateEventRequest is the payload for POST /api/events. Date accepts
// YYYY-MM-DD or RFC 3339.
type CreateEventRequest struct {
	Title         string `json:"title" binding:"required"`
	Date          string `json:"date" binding:"required"`
	Time          string `json:"time" binding:"required"`
	Location      string `json:"location" binding:"required"`
	Description   string `json:"description" binding:"required"`
	AttendeeCount *int   `json:"attendeeCount,omitempty"`
}

// UpdateEventRequest is the payload for PUT /api/events/{id}. Only present
// fields are replaced.
type UpdateEventRequest struct {
	Title       *string `json:"title,omitempty"`
	Date        *string `json:"date,omitempty"`
	Time        *string `json:"time,omitempty"`
	Location    *string `json:"location,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Recognised dateRange filter values.
const (
	RangeCurrentWeek  = "currentWeek"
	RangeLastWeek     = "lastWeek"
	RangeCurrentMonth = "currentMonth"
	RangeLastMonth    = "lastMonth"
)

// EventFilter holds the optional query parameters of GET /api/events.
type EventFilter struct {
	Title     string `form:"title"`
	Date      string `form:"date"`      // only "today" is recognised
	DateRange string `form:"dateRange"` // one of the Range* constants
}
