package domain

import "time"

// Event is a bookable offering published by a host user.
type Event struct {
	ID              string
	Title           string
	Description     string
	StartTime       time.Time
	DurationMinutes int
	UserID          string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Host is attached when the event is loaded with its owner.
	Host *User
}

// EndTime is the start plus the advertised duration.
func (e *Event) EndTime() time.Time {
	return e.StartTime.Add(time.Duration(e.DurationMinutes) * time.Minute)
}
