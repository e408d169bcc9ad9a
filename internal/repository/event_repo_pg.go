package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dakshgoel/schedulr/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Event, error)
}

type PGEventRepository struct {
	db *pgxpool.Pool
}

func NewEventRepository(db *pgxpool.Pool) EventRepository {
	return &PGEventRepository{db: db}
}

// GetByID loads the event together with its host user in one round trip.
func (r *PGEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	row := r.db.QueryRow(ctx, `
		SELECT e.id, e.title, e.description, e.start_time, e.duration_minutes, e.user_id, e.created_at, e.updated_at,
		       h.id, h.clerk_user_id, h.name, h.email, h.created_at, h.updated_at
		FROM events e
		JOIN users h ON h.id = e.user_id
		WHERE e.id = $1`, id)

	var e domain.Event
	var h domain.User
	if err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.StartTime, &e.DurationMinutes, &e.UserID, &e.CreatedAt, &e.UpdatedAt,
		&h.ID, &h.ClerkUserID, &h.Name, &h.Email, &h.CreatedAt, &h.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("event not found: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	e.Host = &h
	return &e, nil
}

var _ EventRepository = (*PGEventRepository)(nil)
