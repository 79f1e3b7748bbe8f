package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hamstergame/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const playerColumns = `id, user_id, group_id, job, cash_cents, last_daily_at, created_at, updated_at`

type playerRepo struct {
	db DBTX
}

func (r *playerRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Player, error) {
	row := r.db.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id)
	return scanPlayer(row)
}

func (r *playerRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Player, error) {
	row := r.db.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE user_id = $1`, userID)
	return scanPlayer(row)
}

func (r *playerRepo) LockForUpdate(ctx context.Context, id uuid.UUID) (*domain.Player, error) {
	row := r.db.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1 FOR UPDATE`, id)
	return scanPlayer(row)
}

func (r *playerRepo) Create(ctx context.Context, player *domain.Player) error {
	if player.ID == uuid.Nil {
		player.ID = uuid.New()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO players (id, user_id, group_id, job, cash_cents, last_daily_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		player.ID,
		player.UserID,
		player.GroupID,
		player.Job,
		player.CashCents,
		player.LastDailyAt,
	).Scan(&player.CreatedAt, &player.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert player: %w", mapConflict(err))
	}
	return nil
}

// Apply uses server-side arithmetic with dynamic SET clauses. The
// cash_cents >= 0 check constraint rejects any update that would overdraw.
func (r *playerRepo) Apply(ctx context.Context, id uuid.UUID, update domain.PlayerUpdate) (*domain.Player, error) {
	setClauses := []string{"updated_at = now()"}
	args := []interface{}{}
	argIdx := 1

	if update.HasCashDelta() {
		setClauses = append(setClauses, fmt.Sprintf("cash_cents = cash_cents + $%d", argIdx))
		args = append(args, update.CashDelta)
		argIdx++
	}
	if update.LastDailyAt != nil {
		setClauses = append(setClauses, fmt.Sprintf("last_daily_at = $%d", argIdx))
		args = append(args, *update.LastDailyAt)
		argIdx++
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE players SET %s
		WHERE id = $%d
		RETURNING `+playerColumns,
		strings.Join(setClauses, ", "), argIdx)

	return scanPlayer(r.db.QueryRow(ctx, query, args...))
}

func scanPlayer(row pgx.Row) (*domain.Player, error) {
	var p domain.Player
	err := row.Scan(&p.ID, &p.UserID, &p.GroupID, &p.Job, &p.CashCents, &p.LastDailyAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan player: %w", err)
	}
	return &p, nil
}
