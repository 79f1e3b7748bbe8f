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

const catalogColumns = `id, name, category, base_price_cents, image_url, meta, created_at`

type catalogRepo struct {
	db DBTX
}

func (r *catalogRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.AssetCatalogItem, error) {
	row := r.db.QueryRow(ctx, `SELECT `+catalogColumns+` FROM catalog_items WHERE id = $1`, id)
	item, err := scanCatalogItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan catalog item: %w", err)
	}
	return item, nil
}

func (r *catalogRepo) ListAll(ctx context.Context) ([]domain.AssetCatalogItem, error) {
	rows, err := r.db.Query(ctx, `SELECT `+catalogColumns+` FROM catalog_items ORDER BY category ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	items := []domain.AssetCatalogItem{}
	for rows.Next() {
		item, err := scanCatalogItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *catalogRepo) InsertIfAbsent(ctx context.Context, item *domain.AssetCatalogItem) (bool, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	meta := item.Meta
	if meta == nil {
		meta = json.RawMessage(`{}`)
	}
	tag, err := r.db.Exec(ctx, `
		INSERT INTO catalog_items (id, name, category, base_price_cents, image_url, meta)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO NOTHING`,
		item.ID, item.Name, item.Category, item.BasePriceCents, item.ImageURL, meta)
	if err != nil {
		return false, fmt.Errorf("insert catalog item: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanCatalogItem(row pgx.Row) (*domain.AssetCatalogItem, error) {
	var item domain.AssetCatalogItem
	err := row.Scan(&item.ID, &item.Name, &item.Category, &item.BasePriceCents,
		&item.ImageURL, &item.Meta, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
