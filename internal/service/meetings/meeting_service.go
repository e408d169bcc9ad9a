package meetings

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dakshgoel/schedulr/internal/domain"
	"github.com/dakshgoel/schedulr/internal/kafka"
	"github.com/dakshgoel/schedulr/internal/repository"
)

type MeetingUseCase interface {
	BookMeeting(ctx context.Context, sessionToken, eventID string) (*domain.Meeting, error)
	CancelMeeting(ctx context.Context, sessionToken, meetingID string) error
	GetUserMeetings(ctx context.Context, sessionToken, kind string) ([]domain.Meeting, error)
}

// Identity resolves the caller's session to a provider subject id.
type Identity interface {
	Subject(sessionToken string) (string, error)
}

// Calendar mutates the host's remote calendar. InsertEvent failure is
// fatal to booking, DeleteEvent failure is not.
type Calendar interface {
	InsertEvent(ctx context.Context, host *domain.User, event *domain.Event, attendee *domain.User) (string, error)
	DeleteEvent(ctx context.Context, host *domain.User, googleEventID string) error
}

// Notifier delivers booking emails. Errors are logged by the service and
// never change the outcome of an action.
type Notifier interface {
	SendConfirmation(ctx context.Context, meeting *domain.Meeting, event *domain.Event) error
	SendCancellation(ctx context.Context, meeting *domain.Meeting, event *domain.Event) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type MeetingService struct {
	identity    Identity
	users       repository.UserRepository
	events      repository.EventRepository
	meetings    repository.MeetingRepository
	calendar    Calendar
	notifier    Notifier
	producer    Producer
	eventsTopic string
}

type MeetingServiceOption func(*MeetingService)

// WithEventsTopic enables fire-and-forget publishing of meeting events.
func WithEventsTopic(producer Producer, topic string) MeetingServiceOption {
	return func(s *MeetingService) {
		s.producer = producer
		s.eventsTopic = topic
	}
}

func NewMeetingService(
	identity Identity,
	users repository.UserRepository,
	events repository.EventRepository,
	meetings repository.MeetingRepository,
	calendar Calendar,
	notifier Notifier,
	opts ...MeetingServiceOption,
) *MeetingService {
	service := &MeetingService{
		identity: identity,
		users:    users,
		events:   events,
		meetings: meetings,
		calendar: calendar,
		notifier: notifier,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// BookMeeting books the event for the caller: the remote calendar entry is
// created first, the meeting row second, so a rejected calendar insert
// leaves nothing persisted. A crash between the two steps can orphan a
// remote event; there is no two-phase protocol here.
func (s *MeetingService) BookMeeting(ctx context.Context, sessionToken, eventID string) (*domain.Meeting, error) {
	caller, err := s.resolveCaller(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	googleEventID, err := s.calendar.InsertEvent(ctx, event.Host, event, caller)
	if err != nil {
		return nil, err
	}

	meeting := &domain.Meeting{
		EventID:       event.ID,
		UserID:        caller.ID,
		StartTime:     event.StartTime,
		GoogleEventID: googleEventID,
	}
	if err := s.meetings.Create(ctx, meeting); err != nil {
		return nil, err
	}
	meeting.Event = event
	meeting.User = caller

	s.attemptNotify(ctx, "confirmation", meeting, event, s.notifier.SendConfirmation)
	s.attemptPublish(ctx, "meeting_booked", meeting)

	return meeting, nil
}

// CancelMeeting removes the caller's meeting. The remote calendar delete
// and the cancellation email are best-effort; the row delete is the
// authoritative state change and always runs.
func (s *MeetingService) CancelMeeting(ctx context.Context, sessionToken, meetingID string) error {
	caller, err := s.resolveCaller(ctx, sessionToken)
	if err != nil {
		return err
	}

	meeting, err := s.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return err
	}
	if meeting.UserID != caller.ID {
		// Deliberately the same answer as a missing meeting.
		return fmt.Errorf("meeting not found or unauthorized: %w", domain.ErrNotFound)
	}

	s.attemptRemoteDelete(ctx, meeting)
	s.attemptNotify(ctx, "cancellation", meeting, meeting.Event, s.notifier.SendCancellation)

	if err := s.meetings.Delete(ctx, meeting.ID); err != nil {
		return err
	}

	s.attemptPublish(ctx, "meeting_cancelled", meeting)
	return nil
}

// GetUserMeetings lists the caller's meetings: kind "upcoming" means
// start_time >= now ascending, anything else means past, descending.
func (s *MeetingService) GetUserMeetings(ctx context.Context, sessionToken, kind string) ([]domain.Meeting, error) {
	caller, err := s.resolveCaller(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	window := domain.MeetingsPast
	if kind == string(domain.MeetingsUpcoming) {
		window = domain.MeetingsUpcoming
	}
	return s.meetings.ListByUser(ctx, caller.ID, window, time.Now())
}

func (s *MeetingService) resolveCaller(ctx context.Context, sessionToken string) (*domain.User, error) {
	subject, err := s.identity.Subject(sessionToken)
	if err != nil {
		return nil, err
	}
	return s.users.GetByClerkID(ctx, subject)
}

// attemptRemoteDelete removes the calendar entry owned by the meeting.
// Failure is logged and swallowed, cancellation proceeds regardless.
func (s *MeetingService) attemptRemoteDelete(ctx context.Context, meeting *domain.Meeting) {
	if err := s.calendar.DeleteEvent(ctx, meeting.Event.Host, meeting.GoogleEventID); err != nil {
		log.Printf("failed to delete calendar event %s for meeting %s: %v", meeting.GoogleEventID, meeting.ID, err)
	}
}

// attemptNotify sends one booking email. Failure is logged with full
// detail and swallowed, the enclosing action is never aborted.
func (s *MeetingService) attemptNotify(ctx context.Context, kind string, meeting *domain.Meeting, event *domain.Event, send func(context.Context, *domain.Meeting, *domain.Event) error) {
	if err := send(ctx, meeting, event); err != nil {
		log.Printf("failed to send %s email for meeting %s (event %q, to %s): %v", kind, meeting.ID, event.Title, meeting.User.Email, err)
	}
}

// attemptPublish emits a meeting event when a producer is configured.
func (s *MeetingService) attemptPublish(ctx context.Context, eventType string, meeting *domain.Meeting) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.MeetingEvent{
		Type:      eventType,
		MeetingID: meeting.ID,
		EventID:   meeting.EventID,
		Email:     meeting.User.Email,
		StartTime: meeting.StartTime,
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, meeting.ID, event); err != nil {
		log.Printf("failed to publish %s event for meeting %s: %v", eventType, meeting.ID, err)
	}
}

var _ MeetingUseCase = (*MeetingService)(nil)
