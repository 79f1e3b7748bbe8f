package repository

import (
	"context"
	"fmt"

	"github.com/hamstergame/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type inventoryRepo struct {
	db DBTX
}

// InsertBatch copies all rows in one round trip.
func (r *inventoryRepo) InsertBatch(ctx context.Context, items []domain.InventoryItem) error {
	if len(items) == 0 {
		return nil
	}
	n, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"inventory_items"},
		[]string{"id", "player_id", "catalog_id", "acquired_at"},
		pgx.CopyFromSlice(len(items), func(i int) ([]interface{}, error) {
			it := items[i]
			return []interface{}{it.ID, it.PlayerID, it.CatalogID, it.AcquiredAt}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy inventory items: %w", err)
	}
	if int(n) != len(items) {
		return fmt.Errorf("copy inventory items: wrote %d of %d rows", n, len(items))
	}
	return nil
}

func (r *inventoryRepo) ListByPlayer(ctx context.Context, playerID uuid.UUID) ([]domain.InventoryItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, player_id, catalog_id, acquired_at
		FROM inventory_items
		WHERE player_id = $1
		ORDER BY acquired_at DESC, id ASC`, playerID)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	defer rows.Close()

	items := []domain.InventoryItem{}
	for rows.Next() {
		var it domain.InventoryItem
		if err := rows.Scan(&it.ID, &it.PlayerID, &it.CatalogID, &it.AcquiredAt); err != nil {
			return nil, fmt.Errorf("scan inventory row: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
