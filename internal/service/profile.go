package service

import (
	"context"
	"time"

	"github.com/hamstergame/platform/internal/domain"
	"github.com/hamstergame/platform/internal/repository"
	"github.com/google/uuid"
)

const recentTransactions = 10

// ProfileService serves the read side of a player's account.
type ProfileService struct {
	store repository.Store
	now   func() time.Time
}

// NewProfileService creates a ProfileService. A nil clock means time.Now.
func NewProfileService(store repository.Store, now func() time.Time) *ProfileService {
	if now == nil {
		now = time.Now
	}
	return &ProfileService{store: store, now: now}
}

// OwnedItem is an inventory row joined with its catalog entry.
type OwnedItem struct {
	ID         uuid.UUID `json:"id"`
	CatalogID  uuid.UUID `json:"catalogId"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	AcquiredAt time.Time `json:"acquiredAt"`
}

// DailyStatus reports today's quiz state.
type DailyStatus struct {
	Day       string `json:"day"`
	Completed bool   `json:"completed"`
	Reward    int64  `json:"reward"`
}

// Profile is the full account view of the caller.
type Profile struct {
	User         domain.User          `json:"user"`
	Player       domain.Player        `json:"player"`
	Inventory    []OwnedItem          `json:"inventory"`
	Transactions []domain.Transaction `json:"transactions"`
	Daily        DailyStatus          `json:"daily"`
}

// Me returns the profile for the given identity.
func (s *ProfileService) Me(ctx context.Context, identity string) (*Profile, error) {
	user, player, err := s.resolve(ctx, identity)
	if err != nil {
		return nil, err
	}

	inv, err := s.store.Inventory().ListByPlayer(ctx, player.ID)
	if err != nil {
		return nil, domain.ErrInternal("list inventory", err)
	}
	owned := make([]OwnedItem, 0, len(inv))
	names := map[uuid.UUID]*domain.AssetCatalogItem{}
	for _, it := range inv {
		item, seen := names[it.CatalogID]
		if !seen {
			item, err = s.store.Catalog().FindByID(ctx, it.CatalogID)
			if err != nil {
				return nil, domain.ErrInternal("find catalog item", err)
			}
			names[it.CatalogID] = item
		}
		o := OwnedItem{ID: it.ID, CatalogID: it.CatalogID, AcquiredAt: it.AcquiredAt}
		if item != nil {
			o.Name, o.Category = item.Name, item.Category
		}
		owned = append(owned, o)
	}

	txs, err := s.store.Transactions().ListByPlayer(ctx, player.ID, nil, recentTransactions)
	if err != nil {
		return nil, domain.ErrInternal("list transactions", err)
	}

	today := domain.DayKey(s.now())
	task, err := s.store.DailyTasks().FindForDay(ctx, user.ID, today)
	if err != nil {
		return nil, domain.ErrInternal("find daily task", err)
	}
	daily := DailyStatus{Day: today}
	if task != nil {
		daily.Completed, daily.Reward = task.Completed, task.Reward
	}

	return &Profile{
		User:         *user,
		Player:       *player,
		Inventory:    owned,
		Transactions: txs,
		Daily:        daily,
	}, nil
}

// TransactionPage is one page of the ledger, newest first.
type TransactionPage struct {
	Transactions []domain.Transaction `json:"transactions"`
	NextCursor   *string              `json:"nextCursor,omitempty"`
}

// Transactions returns a cursor-paginated slice of the caller's ledger.
func (s *ProfileService) Transactions(ctx context.Context, identity string, cursor *uuid.UUID, limit int) (*TransactionPage, error) {
	switch {
	case limit <= 0:
		limit = 20
	case limit > 100:
		limit = 100
	}
	_, player, err := s.resolve(ctx, identity)
	if err != nil {
		return nil, err
	}

	// Fetch one extra row to learn whether another page exists.
	txs, err := s.store.Transactions().ListByPlayer(ctx, player.ID, cursor, limit+1)
	if err != nil {
		return nil, domain.ErrInternal("list transactions", err)
	}

	page := &TransactionPage{Transactions: txs}
	if len(txs) > limit {
		page.Transactions = txs[:limit]
		next := txs[limit].ID.String()
		page.NextCursor = &next
	}
	return page, nil
}

func (s *ProfileService) resolve(ctx context.Context, identity string) (*domain.User, *domain.Player, error) {
	email := domain.NormalizeEmail(identity)
	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, domain.ErrInternal("find user", err)
	}
	if user == nil {
		return nil, nil, domain.ErrNotFound("user", email)
	}
	player, err := s.store.Players().FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, nil, domain.ErrInternal("find player", err)
	}
	if player == nil {
		return nil, nil, domain.ErrNotFound("player for user", email)
	}
	return user, player, nil
}
