package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/dakshgoel/schedulr/internal/domain"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// TokenSource exchanges a host's stored identity for a short-lived OAuth
// access token. Satisfied by identity.Client.
type TokenSource interface {
	OAuthAccessToken(ctx context.Context, clerkUserID string) (string, error)
}

// GoogleCalendar mutates events on the host's calendar. Every call runs
// under a freshly exchanged access token for that host. An empty token is
// not pre-validated: the remote call is attempted and allowed to fail.
type GoogleCalendar struct {
	tokens     TokenSource
	calendarID string
}

func NewGoogleCalendar(tokens TokenSource, calendarID string) *GoogleCalendar {
	if calendarID == "" {
		calendarID = "primary"
	}
	return &GoogleCalendar{tokens: tokens, calendarID: calendarID}
}

// InsertEvent creates the remote calendar entry for a booking and returns
// its id. Failure here is fatal to the booking, nothing may be persisted
// after it.
func (g *GoogleCalendar) InsertEvent(ctx context.Context, host *domain.User, event *domain.Event, attendee *domain.User) (string, error) {
	svc, err := g.service(ctx, host.ClerkUserID)
	if err != nil {
		return "", err
	}

	body := &gcal.Event{
		Summary:     event.Title,
		Description: event.Description,
		Start:       &gcal.EventDateTime{DateTime: event.StartTime.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: event.EndTime().Format(time.RFC3339)},
		Attendees: []*gcal.EventAttendee{
			{Email: attendee.Email},
			{Email: host.Email},
		},
	}

	created, err := svc.Events.Insert(g.calendarID, body).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCalendarInsert, err)
	}
	return created.Id, nil
}

// DeleteEvent removes the remote calendar entry owned by a booking. The
// coordinator treats failures as best-effort.
func (g *GoogleCalendar) DeleteEvent(ctx context.Context, host *domain.User, googleEventID string) error {
	svc, err := g.service(ctx, host.ClerkUserID)
	if err != nil {
		return err
	}
	return svc.Events.Delete(g.calendarID, googleEventID).Context(ctx).Do()
}

func (g *GoogleCalendar) service(ctx context.Context, clerkUserID string) (*gcal.Service, error) {
	token, err := g.tokens.OAuthAccessToken(ctx, clerkUserID)
	if err != nil {
		return nil, fmt.Errorf("acquire calendar token: %w", err)
	}
	return gcal.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})))
}
