package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/hamstergame/platform/internal/domain"
	"github.com/hamstergame/platform/internal/metrics"
	"github.com/google/uuid"
)

// ExecutePurchase debits the player and adds Quantity inventory rows.
// Pattern: Validate → Resolve → Lock → Re-check balance → PostLedgerEntry → Inventory
func (e *Engine) ExecutePurchase(ctx context.Context, in domain.PurchaseInput) (result *domain.PurchaseResult, err error) {
	defer func() {
		if err != nil {
			metrics.RecordPurchase(outcomeFor(err), 0)
		} else {
			metrics.RecordPurchase(metrics.OutcomeSuccess, result.TotalPrice)
		}
	}()

	quantity := in.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if err := domain.ValidateQuantity(quantity, e.maxQuantity); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	itemRef := strings.TrimSpace(in.ItemID)
	if itemRef == "" {
		return nil, domain.ErrValidation("itemId is required")
	}

	_, player, err := e.resolvePlayer(ctx, in.Identity)
	if err != nil {
		return nil, e.fail("purchase", err)
	}

	itemID, parseErr := uuid.Parse(itemRef)
	if parseErr != nil {
		return nil, domain.ErrNotFound("item", itemRef)
	}
	item, err := e.store.Catalog().FindByID(ctx, itemID)
	if err != nil {
		return nil, e.fail("purchase", fmt.Errorf("find item: %w", err), "item_id", itemID)
	}
	if item == nil {
		return nil, domain.ErrNotFound("item", itemRef)
	}

	total, err := domain.TotalPrice(item.BasePriceCents, quantity)
	if err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	result, err = e.purchase(ctx, player.ID, item, quantity, total)
	if err != nil {
		return nil, e.fail("purchase", err, "player_id", player.ID, "item_id", item.ID)
	}

	e.logger.Info("purchase committed",
		"player_id", player.ID,
		"item_id", item.ID,
		"quantity", quantity,
		"total_cents", total,
		"balance_after", result.NewBalance,
	)
	return result, nil
}

// purchase is the critical section. Nothing is written when the locked
// balance cannot cover the total.
func (e *Engine) purchase(ctx context.Context, playerID uuid.UUID, item *domain.AssetCatalogItem, quantity int, total int64) (*domain.PurchaseResult, error) {
	uow, err := e.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback(ctx)

	player, err := e.LockPlayerForUpdate(ctx, uow, playerID)
	if err != nil {
		return nil, err
	}
	if player.CashCents < total {
		return nil, domain.ErrInsufficientFunds(player.CashCents, total)
	}

	now := e.now().UTC()

	// Every purchase is recorded, including free items.
	entry, updated, err := e.PostLedgerEntry(ctx, uow, domain.PostLedgerEntryParams{
		PlayerID:    player.ID,
		Type:        domain.TxPurchase,
		AmountCents: -total,
		Update:      domain.PlayerUpdate{CashDelta: -total},
		Meta: domain.PurchaseMeta{
			ItemID:   item.ID,
			ItemName: item.Name,
			Quantity: quantity,
			When:     now,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("purchase post: %w", err)
	}
	result := &domain.PurchaseResult{
		Item:          *item,
		Quantity:      quantity,
		TotalPrice:    total,
		NewBalance:    updated.CashCents,
		TransactionID: &entry.ID,
	}

	items := make([]domain.InventoryItem, quantity)
	ids := make([]uuid.UUID, quantity)
	for i := range items {
		ids[i] = uuid.New()
		items[i] = domain.InventoryItem{ID: ids[i], PlayerID: player.ID, CatalogID: item.ID, AcquiredAt: now}
	}
	if err := uow.Inventory().InsertBatch(ctx, items); err != nil {
		return nil, fmt.Errorf("insert inventory: %w", err)
	}
	if err := uow.Outbox().Insert(ctx, domain.NewInventoryAcquiredEvent(player.ID, item.ID, ids)); err != nil {
		return nil, fmt.Errorf("insert outbox event: %w", err)
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}
	result.CreatedInventoryIDs = ids
	return result, nil
}
