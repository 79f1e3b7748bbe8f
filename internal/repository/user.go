package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/hamstergame/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type userRepo struct {
	db DBTX
}

// FindByID returns a user by id, or nil if not found.
func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, email, name, is_admin, created_at FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// FindByEmail returns a user by email, or nil if not found.
func (r *userRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, email, name, is_admin, created_at FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// Create inserts a new user.
func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (id, email, name, is_admin) VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		user.ID, user.Email, user.Name, user.IsAdmin).Scan(&user.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", mapConflict(err))
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.IsAdmin, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

type groupRepo struct {
	db DBTX
}

func (r *groupRepo) FindByInviteCode(ctx context.Context, code string) (*domain.Group, error) {
	g := &domain.Group{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, invite_code, created_at FROM groups WHERE invite_code = $1`, code).
		Scan(&g.ID, &g.Name, &g.InviteCode, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan group: %w", err)
	}
	return g, nil
}

func (r *groupRepo) Create(ctx context.Context, group *domain.Group) error {
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO groups (id, name, invite_code) VALUES ($1, $2, $3) RETURNING created_at`,
		group.ID, group.Name, group.InviteCode).Scan(&group.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert group: %w", err)
	}
	return nil
}
