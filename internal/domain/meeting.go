package domain

import "time"

// MeetingWindow selects which side of "now" a listing covers.
type MeetingWindow string

const (
	MeetingsUpcoming MeetingWindow = "upcoming"
	MeetingsPast     MeetingWindow = "past"
)

// Meeting is a booking of an Event by an attendee. StartTime is copied from
// the event at creation, GoogleEventID is the remote calendar entry the
// meeting owns. Cancellation is a hard delete, there is no retained state.
type Meeting struct {
	ID            string
	EventID       string
	UserID        string
	StartTime     time.Time
	GoogleEventID string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Attached relations, populated on load for caller convenience.
	Event *Event
	User  *User
}
