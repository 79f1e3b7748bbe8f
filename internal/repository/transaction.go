package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hamstergame/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, player_id, type, amount_cents, balance_after, meta, created_at`

type transactionRepo struct {
	db DBTX
}

func (r *transactionRepo) Insert(ctx context.Context, params domain.PostLedgerEntryParams, balanceAfter int64) (*domain.Transaction, error) {
	meta, err := json.Marshal(params.Meta)
	if err != nil {
		return nil, fmt.Errorf("marshal ledger meta: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO transactions (player_id, type, amount_cents, balance_after, meta)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+transactionColumns,
		params.PlayerID,
		string(params.Type),
		params.AmountCents,
		balanceAfter,
		meta,
	)
	tx, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("insert transaction: no row returned")
	}
	return tx, err
}

func (r *transactionRepo) ListByPlayer(ctx context.Context, playerID uuid.UUID, cursor *uuid.UUID, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error
	if cursor != nil {
		rows, err = r.db.Query(ctx, `
			SELECT `+transactionColumns+`
			FROM transactions
			WHERE player_id = $1
			  AND (created_at, id) <= ((SELECT created_at, id FROM transactions WHERE id = $2))
			ORDER BY created_at DESC, id DESC
			LIMIT $3`, playerID, *cursor, limit)
	} else {
		rows, err = r.db.Query(ctx, `
			SELECT `+transactionColumns+`
			FROM transactions
			WHERE player_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2`, playerID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	txs := []domain.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}

// scanTransaction returns pgx.ErrNoRows unwrapped so callers can tell absence apart.
func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var tx domain.Transaction
	var txType string
	var meta []byte
	err := row.Scan(&tx.ID, &tx.PlayerID, &txType, &tx.AmountCents, &tx.BalanceAfter, &meta, &tx.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	tx.Type = domain.TransactionType(txType)
	tx.Meta, err = domain.DecodeLedgerMeta(tx.Type, meta)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}
