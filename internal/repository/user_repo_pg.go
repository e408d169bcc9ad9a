package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dakshgoel/schedulr/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	GetByClerkID(ctx context.Context, clerkUserID string) (*domain.User, error)
}

type PGUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

func (r *PGUserRepository) GetByClerkID(ctx context.Context, clerkUserID string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, clerk_user_id, name, email, created_at, updated_at FROM users WHERE clerk_user_id=$1`, clerkUserID)
	var u domain.User
	if err := row.Scan(&u.ID, &u.ClerkUserID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	return &u, nil
}

var _ UserRepository = (*PGUserRepository)(nil)
