package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dakshgoel/schedulr/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MeetingRepository interface {
	Create(ctx context.Context, meeting *domain.Meeting) error
	GetByID(ctx context.Context, id string) (*domain.Meeting, error)
	ListByUser(ctx context.Context, userID string, window domain.MeetingWindow, now time.Time) ([]domain.Meeting, error)
	Delete(ctx context.Context, id string) error
}

type PGMeetingRepository struct {
	db *pgxpool.Pool
}

func NewMeetingRepository(db *pgxpool.Pool) MeetingRepository {
	return &PGMeetingRepository{db: db}
}

func (r *PGMeetingRepository) Create(ctx context.Context, meeting *domain.Meeting) error {
	if meeting.ID == "" {
		meeting.ID = uuid.NewString()
	}
	return r.db.QueryRow(ctx, `INSERT INTO meetings (id, event_id, user_id, start_time, google_event_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		meeting.ID, meeting.EventID, meeting.UserID, meeting.StartTime, meeting.GoogleEventID).
		Scan(&meeting.CreatedAt, &meeting.UpdatedAt)
}

// GetByID attaches the event, the event's host, and the attendee user.
func (r *PGMeetingRepository) GetByID(ctx context.Context, id string) (*domain.Meeting, error) {
	row := r.db.QueryRow(ctx, `
		SELECT m.id, m.event_id, m.user_id, m.start_time, m.google_event_id, m.created_at, m.updated_at,
		       e.id, e.title, e.description, e.start_time, e.duration_minutes, e.user_id, e.created_at, e.updated_at,
		       h.id, h.clerk_user_id, h.name, h.email, h.created_at, h.updated_at,
		       u.id, u.clerk_user_id, u.name, u.email, u.created_at, u.updated_at
		FROM meetings m
		JOIN events e ON e.id = m.event_id
		JOIN users h ON h.id = e.user_id
		JOIN users u ON u.id = m.user_id
		WHERE m.id = $1`, id)

	m, err := scanMeeting(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("meeting not found: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	return m, nil
}

// ListByUser returns the caller's meetings on one side of now: upcoming is
// start_time >= now ascending, past is start_time < now descending. Each row
// carries its event and the host's name and email.
func (r *PGMeetingRepository) ListByUser(ctx context.Context, userID string, window domain.MeetingWindow, now time.Time) ([]domain.Meeting, error) {
	q := `
		SELECT m.id, m.event_id, m.user_id, m.start_time, m.google_event_id, m.created_at, m.updated_at,
		       e.id, e.title, e.description, e.start_time, e.duration_minutes, e.user_id, e.created_at, e.updated_at,
		       h.name, h.email
		FROM meetings m
		JOIN events e ON e.id = m.event_id
		JOIN users h ON h.id = e.user_id
		WHERE m.user_id = $1`
	if window == domain.MeetingsUpcoming {
		q += ` AND m.start_time >= $2 ORDER BY m.start_time ASC`
	} else {
		q += ` AND m.start_time < $2 ORDER BY m.start_time DESC`
	}

	rows, err := r.db.Query(ctx, q, userID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meetings := make([]domain.Meeting, 0)
	for rows.Next() {
		var m domain.Meeting
		var e domain.Event
		var h domain.User
		if err := rows.Scan(
			&m.ID, &m.EventID, &m.UserID, &m.StartTime, &m.GoogleEventID, &m.CreatedAt, &m.UpdatedAt,
			&e.ID, &e.Title, &e.Description, &e.StartTime, &e.DurationMinutes, &e.UserID, &e.CreatedAt, &e.UpdatedAt,
			&h.Name, &h.Email,
		); err != nil {
			return nil, err
		}
		e.Host = &h
		m.Event = &e
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

func (r *PGMeetingRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM meetings WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("meeting not found: %w", domain.ErrNotFound)
	}
	return nil
}

func scanMeeting(row pgx.Row) (*domain.Meeting, error) {
	var m domain.Meeting
	var e domain.Event
	var h, u domain.User
	if err := row.Scan(
		&m.ID, &m.EventID, &m.UserID, &m.StartTime, &m.GoogleEventID, &m.CreatedAt, &m.UpdatedAt,
		&e.ID, &e.Title, &e.Description, &e.StartTime, &e.DurationMinutes, &e.UserID, &e.CreatedAt, &e.UpdatedAt,
		&h.ID, &h.ClerkUserID, &h.Name, &h.Email, &h.CreatedAt, &h.UpdatedAt,
		&u.ID, &u.ClerkUserID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	e.Host = &h
	m.Event = &e
	m.User = &u
	return &m, nil
}

var _ MeetingRepository = (*PGMeetingRepository)(nil)
