package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AssetCatalogItem is a purchasable template. Meta is owned by whoever manages
// the catalog and is passed through untouched.
type AssetCatalogItem struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	BasePriceCents int64           `json:"basePriceCents"`
	ImageURL       *string         `json:"imageUrl"`
	Meta           json.RawMessage `json:"meta"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// InventoryItem records one owned instance of a catalog item.
type InventoryItem struct {
	ID         uuid.UUID `json:"id"`
	PlayerID   uuid.UUID `json:"playerId"`
	CatalogID  uuid.UUID `json:"catalogId"`
	AcquiredAt time.Time `json:"acquiredAt"`
}
