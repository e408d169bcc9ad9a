package meetings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dakshgoel/schedulr/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) Subject(sessionToken string) (string, error) {
	args := m.Called(sessionToken)
	return args.String(0), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByClerkID(ctx context.Context, clerkUserID string) (*domain.User, error) {
	args := m.Called(ctx, clerkUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

type MockMeetingRepository struct {
	mock.Mock
}

func (m *MockMeetingRepository) Create(ctx context.Context, meeting *domain.Meeting) error {
	args := m.Called(ctx, meeting)
	return args.Error(0)
}

func (m *MockMeetingRepository) GetByID(ctx context.Context, id string) (*domain.Meeting, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) ListByUser(ctx context.Context, userID string, window domain.MeetingWindow, now time.Time) ([]domain.Meeting, error) {
	args := m.Called(ctx, userID, window, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCalendar struct {
	mock.Mock
}

func (m *MockCalendar) InsertEvent(ctx context.Context, host *domain.User, event *domain.Event, attendee *domain.User) (string, error) {
	args := m.Called(ctx, host, event, attendee)
	return args.String(0), args.Error(1)
}

func (m *MockCalendar) DeleteEvent(ctx context.Context, host *domain.User, googleEventID string) error {
	args := m.Called(ctx, host, googleEventID)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendConfirmation(ctx context.Context, meeting *domain.Meeting, event *domain.Event) error {
	args := m.Called(ctx, meeting, event)
	return args.Error(0)
}

func (m *MockNotifier) SendCancellation(ctx context.Context, meeting *domain.Meeting, event *domain.Event) error {
	args := m.Called(ctx, meeting, event)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type fixture struct {
	identity *MockIdentity
	users    *MockUserRepository
	events   *MockEventRepository
	meetings *MockMeetingRepository
	calendar *MockCalendar
	notifier *MockNotifier
	producer *MockProducer
	service  *MeetingService
}

func newFixture() *fixture {
	f := &fixture{
		identity: &MockIdentity{},
		users:    &MockUserRepository{},
		events:   &MockEventRepository{},
		meetings: &MockMeetingRepository{},
		calendar: &MockCalendar{},
		notifier: &MockNotifier{},
		producer: &MockProducer{},
	}
	f.service = NewMeetingService(
		f.identity, f.users, f.events, f.meetings, f.calendar, f.notifier,
		WithEventsTopic(f.producer, "meeting_events"),
	)
	return f
}

var (
	caller = &domain.User{ID: "u1", ClerkUserID: "user_2abc", Name: "Ada", Email: "ada@example.com"}
	host   = &domain.User{ID: "u2", ClerkUserID: "user_2host", Name: "Grace", Email: "grace@example.com"}
)

func testEvent() *domain.Event {
	return &domain.Event{
		ID:              "ev1",
		Title:           "Intro call",
		Description:     "30 minute intro",
		StartTime:       time.Date(2026, 9, 10, 15, 0, 0, 0, time.UTC),
		DurationMinutes: 30,
		UserID:          host.ID,
		Host:            host,
	}
}

func TestMeetingService_BookMeeting_Success(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	event := testEvent()

	f.identity.On("Subject", "session-token").Return("user_2abc", nil).Once()
	f.users.On("GetByClerkID", ctx, "user_2abc").Return(caller, nil).Once()
	f.events.On("GetByID", ctx, "ev1").Return(event, nil).Once()
	f.calendar.On("InsertEvent", ctx, host, event, caller).Return("gcal-123", nil).Once()
	f.meetings.On("Create", ctx, mock.AnythingOfType("*domain.Meeting")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Meeting).ID = "m1"
		}).Return(nil).Once()
	f.notifier.On("SendConfirmation", ctx, mock.AnythingOfType("*domain.Meeting"), event).Return(nil).Once()
	f.producer.On("Publish", ctx, "meeting_events", "m1", mock.Anything).Return(nil).Once()

	meeting, err := f.service.BookMeeting(ctx, "session-token", "ev1")

	assert.NoError(t, err)
	assert.NotNil(t, meeting)
	assert.Equal(t, event.StartTime, meeting.StartTime)
	assert.Equal(t, "gcal-123", meeting.GoogleEventID)
	assert.Equal(t, caller.ID, meeting.UserID)
	assert.Equal(t, event, meeting.Event)
	assert.Equal(t, caller, meeting.User)

	f.calendar.AssertExpectations(t)
	f.meetings.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
	f.producer.AssertExpectations(t)
}

func TestMeetingService_BookMeeting_Unauthorized(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.identity.On("Subject", "").Return("", domain.ErrUnauthorized).Once()

	meeting, err := f.service.BookMeeting(ctx, "", "ev1")

	assert.Nil(t, meeting)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// Nothing beyond the identity check may run for an unauthenticated caller.
	f.users.AssertNotCalled(t, "GetByClerkID")
	f.events.AssertNotCalled(t, "GetByID")
	f.calendar.AssertNotCalled(t, "InsertEvent")
	f.meetings.AssertNotCalled(t, "Create")
	f.notifier.AssertNotCalled(t, "SendConfirmation")
	f.producer.AssertNotCalled(t, "Publish")
}

func TestMeetingService_BookMeeting_UserMissing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.identity.On("Subject", "session-token").Return("user_2abc", nil).Once()
	f.users.On("GetByClerkID", ctx, "user_2abc").Return(nil, domain.ErrNotFound).Once()

	meeting, err := f.service.BookMeeting(ctx, "session-token", "ev1")

	assert.Nil(t, meeting)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	f.events.AssertNotCalled(t, "GetByID")
}

func TestMeetingService_BookMeeting_EventNotFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.identity.On("Subject", "session-token").Return("user_2abc", nil).Once()
	f.users.On("GetByClerkID", ctx, "user_2abc").Return(caller, nil).Once()
	f.events.On("GetByID", ctx, "missing").Return(nil, domain.ErrNotFound).Once()

	meeting, err := f.service.BookMeeting(ctx, "session-token", "missing")

	assert.Nil(t, meeting)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	f.calendar.AssertNotCalled(t, "InsertEvent")
	f.meetings.AssertNotCalled(t, "Create")
}

func TestMeetingService_BookMeeting_CalendarInsertFails(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	event := testEvent()

	f.identity.On("Subject", "session-token").Return("user_2abc", nil).Once()
	f.users.On("GetByClerkID", ctx, "user_2abc").Return(caller, nil).Once()
	f.events.On("GetByID", ctx, "ev1").Return(event, nil).Once()
	insertErr := errors.New("googleapi 403: insufficient permissions")
	f.calendar.On("InsertEvent", ctx, host, event, caller).
		Return("", errors.Join(domain.ErrCalendarInsert, insertErr)).Once()

	meeting, err := f.service.BookMeeting(ctx, "session-token", "ev1")

	assert.Nil(t, meeting)
	assert.ErrorIs(t, err, domain.ErrCalendarInsert)

	// A rejected calendar insert must leave nothing persisted.
	f.meetings.AssertNotCalled(t, "Create")
	f.notifier.AssertNotCalled(t, "SendConfirmation")
	f.producer.AssertNotCalled(t, "Publish")
}

func TestMeetingService_BookMeeting_StoreFails(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	event := testEvent()

	f.identity.On("Subject", "session-token").Return("user_2abc", nil).Once()
	f.users.On("GetByClerkID", ctx, "user_2abc").Return(caller, nil).Once()
	f.events.On("GetByID", ctx, "ev1").Return(event, nil).Once()
	f.calendar.On("InsertEvent", ctx, host, event, caller).Return("gcal-123", nil).Once()

	storeErr := errors.New("database error")
	f.meetings.On("Create", ctx, mock.Anything).Return(storeErr).Once()

	meeting, err := f.service.BookMeeting(ctx, "session-token", "ev1")

	assert.Nil(t, meeting)
	assert.Equal(t, storeErr, err)
	f.notifier.AssertNotCalled(t, "SendConfirmation")
	f.producer.AssertNotCalled(t, "Publish")
}

func TestMeetingService_BookMeeting_EmailFailureDoesNotAbort(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	event := testEvent()

	f.identity.On("Subject", "session-token").Return("user_2abc", nil).Once()
	f.users.On("GetByClerkID", ctx, "user_2abc").Return(caller, nil).Once()
	f.events.On("GetByID", ctx, "ev1").Return(event, nil).Once()
	f.calendar.On("InsertEvent", ctx, host, event, caller).Return("gcal-123", nil).Once()
	f.meetings.On("Create", ctx, mock.Anything).Return(nil).Once()
	f.notifier.On("SendConfirmation", ctx, mock.Anything, event).Return(errors.New("resend: 500")).Once()
	f.producer.On("Publish", ctx, "meeting_events", mock.Anything, mock.Anything).Return(nil).Once()

	meeting, err := f.service.BookMeeting(ctx, "session-token", "ev1")

	assert.NoError(t, err)
	assert.NotNil(t, meeting)
	assert.Equal(t, "gcal-123", meeting.GoogleEventID)
}

func bookedMeeting() *domain.Meeting {
	event := testEvent()
	return &domain.Meeting{
		ID:            "m1",
		EventID:       event.ID,
		UserID:        caller.ID,
		StartTime:     event.StartTime,
		GoogleEventID: "gcal-123",
		Event:         event,
		User:          caller,
	}
}

func TestMeetingService_CancelMeeting_Success(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	meeting := bookedMeeting()

	f.identity.On("Subject", "session-token").Return("user_2abc", nil).Once()
	f.users.On("GetByClerkID", ctx, "user_2abc").Return(caller, nil).Once()
	f.meetings.On("GetByID", ctx, "m1").Return(meeting, nil).Once()
	f.calendar.On("DeleteEvent", ctx, host, "gcal-123").Return(nil).Once()
	f.notifier.On("SendCancellation", ctx, meeting, meeting.Event).Return(nil).Once()
	f.meetings.On("Delete", ctx, "m1").Return(nil).Once()
	f.producer.On("Publish", ctx, "meeting_events", "m1", mock.Anything).Return(nil).Once()

	err := f.service.CancelMeeting(ctx, "session-token", "m1")

	assert.NoError(t, err)
	f.calendar.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
	f.meetings.AssertExpectations(t)
}

func TestMeetingService_CancelMeeting_BestEffortFailuresStillDelete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	meeting := bookedMeeting()

	f.identity.On("Subject", "session-token").Return("user_2abc", nil).Once()
	f.users.On("GetByClerkID", ctx, "user_2abc").Return(caller, nil).Once()
	f.meetings.On("GetByID", ctx, "m1").Return(meeting, nil).Once()
	// Both side effects blow up, the cancellation must still go through.
	f.calendar.On("DeleteEvent", ctx, host, "gcal-123").Return(errors.New("googleapi 404")).Once()
	f.notifier.On("SendCancellation", ctx, meeting, meeting.Event).Return(errors.New("resend: timeout")).Once()
	f.meetings.On("Delete", ctx, "m1").Return(nil).Once()
	f.producer.On("Publish", ctx, "meeting_events", "m1", mock.Anything).Return(errors.New("kafka down")).Once()

	err := f.service.CancelMeeting(ctx, "session-token", "m1")

	assert.NoError(t, err)
	f.meetings.AssertExpectations(t)
}

func TestMeetingService_CancelMeeting_NotOwned(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	meeting := bookedMeeting()
	meeting.UserID = "someone-else"

	f.identity.On("Subject", "session-token").Return("user_2abc", nil).Once()
	f.users.On("GetByClerkID", ctx, "user_2abc").Return(caller, nil).Once()
	f.meetings.On("GetByID", ctx, "m1").Return(meeting, nil).Once()

	err := f.service.CancelMeeting(ctx, "session-token", "m1")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "meeting not found or unauthorized")

	// The meeting must remain untouched.
	f.calendar.AssertNotCalled(t, "DeleteEvent")
	f.notifier.AssertNotCalled(t, "SendCancellation")
	f.meetings.AssertNotCalled(t, "Delete")
}

func TestMeetingService_CancelMeeting_AlreadyDeleted(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.identity.On("Subject", "session-token").Return("user_2abc", nil).Once()
	f.users.On("GetByClerkID", ctx, "user_2abc").Return(caller, nil).Once()
	f.meetings.On("GetByID", ctx, "m1").Return(nil, domain.ErrNotFound).Once()

	// Cancelling twice fails loudly instead of silently succeeding again.
	err := f.service.CancelMeeting(ctx, "session-token", "m1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	f.meetings.AssertNotCalled(t, "Delete")
}

func TestMeetingService_CancelMeeting_Unauthorized(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.identity.On("Subject", "bad").Return("", domain.ErrUnauthorized).Once()

	err := f.service.CancelMeeting(ctx, "bad", "m1")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	f.meetings.AssertNotCalled(t, "GetByID")
	f.meetings.AssertNotCalled(t, "Delete")
}

func TestMeetingService_GetUserMeetings_Upcoming(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	now := time.Now()
	later := domain.Meeting{ID: "m2", StartTime: now.Add(time.Hour)}
	muchLater := domain.Meeting{ID: "m3", StartTime: now.Add(3 * time.Hour)}

	f.identity.On("Subject", "session-token").Return("user_2abc", nil).Once()
	f.users.On("GetByClerkID", ctx, "user_2abc").Return(caller, nil).Once()
	f.meetings.On("ListByUser", ctx, "u1", domain.MeetingsUpcoming, mock.AnythingOfType("time.Time")).
		Return([]domain.Meeting{later, muchLater}, nil).Once()

	got, err := f.service.GetUserMeetings(ctx, "session-token", "upcoming")

	assert.NoError(t, err)
	assert.Equal(t, []domain.Meeting{later, muchLater}, got)
	f.meetings.AssertExpectations(t)
}

func TestMeetingService_GetUserMeetings_PastIsTheDefault(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	now := time.Now()
	earlier := domain.Meeting{ID: "m1", StartTime: now.Add(-time.Hour)}

	for _, kind := range []string{"past", "", "anything-else"} {
		f.identity.On("Subject", "session-token").Return("user_2abc", nil).Once()
		f.users.On("GetByClerkID", ctx, "user_2abc").Return(caller, nil).Once()
		f.meetings.On("ListByUser", ctx, "u1", domain.MeetingsPast, mock.AnythingOfType("time.Time")).
			Return([]domain.Meeting{earlier}, nil).Once()

		got, err := f.service.GetUserMeetings(ctx, "session-token", kind)

		assert.NoError(t, err)
		assert.Equal(t, []domain.Meeting{earlier}, got)
	}
	f.meetings.AssertExpectations(t)
}

func TestMeetingService_GetUserMeetings_Unauthorized(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.identity.On("Subject", "").Return("", domain.ErrUnauthorized).Once()

	got, err := f.service.GetUserMeetings(ctx, "", "upcoming")

	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	f.meetings.AssertNotCalled(t, "ListByUser")
}
