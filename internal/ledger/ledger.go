package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hamstergame/platform/internal/domain"
	"github.com/hamstergame/platform/internal/metrics"
	"github.com/hamstergame/platform/internal/repository"
	"github.com/google/uuid"
)

// DefaultMaxPurchaseQuantity caps a single purchase when no limit is configured.
const DefaultMaxPurchaseQuantity = 100

// Options configures an Engine.
type Options struct {
	// MaxPurchaseQuantity bounds the quantity of one purchase. Zero means the default.
	MaxPurchaseQuantity int

	// Now is the engine clock. Daily tasks are keyed by its UTC calendar day.
	Now func() time.Time
}

// Engine is the only writer of player balances. Every workflow runs in its
// own unit of work and is built from two primitives:
//  1. LockPlayerForUpdate: row-level pessimistic lock on the player
//  2. PostLedgerEntry: balance update + append-only ledger insert + outbox event
type Engine struct {
	store       repository.Store
	logger      *slog.Logger
	maxQuantity int
	now         func() time.Time
}

// NewEngine creates a ledger engine over the given store.
func NewEngine(store repository.Store, logger *slog.Logger, opts Options) *Engine {
	if opts.MaxPurchaseQuantity <= 0 {
		opts.MaxPurchaseQuantity = DefaultMaxPurchaseQuantity
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		store:       store,
		logger:      logger,
		maxQuantity: opts.MaxPurchaseQuantity,
		now:         opts.Now,
	}
}

// LockPlayerForUpdate acquires a row-level lock and returns the player.
// Must be called within a unit of work.
func (e *Engine) LockPlayerForUpdate(ctx context.Context, uow repository.UnitOfWork, playerID uuid.UUID) (*domain.Player, error) {
	player, err := uow.Players().LockForUpdate(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("lock player: %w", err)
	}
	if player == nil {
		return nil, domain.ErrNotFound("player", playerID.String())
	}
	return player, nil
}

// PostLedgerEntry atomically updates the player and appends a ledger entry.
//
// Steps:
//  1. Update cash with server-side arithmetic
//  2. Insert the entry with the post-update balance snapshot
//  3. Insert the outbox event
//
// All 3 steps run within the caller's unit of work.
func (e *Engine) PostLedgerEntry(ctx context.Context, uow repository.UnitOfWork, params domain.PostLedgerEntryParams) (*domain.Transaction, *domain.Player, error) {
	if err := params.Validate(); err != nil {
		return nil, nil, err
	}

	updated, err := uow.Players().Apply(ctx, params.PlayerID, params.Update)
	if err != nil {
		return nil, nil, fmt.Errorf("update player: %w", err)
	}
	if updated == nil {
		return nil, nil, domain.ErrNotFound("player", params.PlayerID.String())
	}

	entry, err := uow.Transactions().Insert(ctx, params, updated.CashCents)
	if err != nil {
		return nil, nil, fmt.Errorf("insert transaction: %w", err)
	}

	if err := uow.Outbox().Insert(ctx, domain.NewTransactionPostedEvent(entry)); err != nil {
		return nil, nil, fmt.Errorf("insert outbox event: %w", err)
	}

	return entry, updated, nil
}

// resolvePlayer maps a verified identity to its user and player.
func (e *Engine) resolvePlayer(ctx context.Context, identity string) (*domain.User, *domain.Player, error) {
	email := domain.NormalizeEmail(identity)
	if email == "" {
		return nil, nil, domain.ErrUnauthorized("identity is required")
	}

	user, err := e.store.Users().FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, nil, domain.ErrNotFound("user", email)
	}

	player, err := e.store.Players().FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("find player: %w", err)
	}
	if player == nil {
		return nil, nil, domain.ErrNotFound("player for user", email)
	}
	return user, player, nil
}

// fail passes domain errors through and converts anything else to an
// INTERNAL_ERROR, logging the cause.
func (e *Engine) fail(op string, err error, attrs ...any) error {
	if _, ok := domain.AsAppError(err); ok {
		return err
	}
	e.logger.Error(op+" failed", append(attrs, "error", err)...)
	return domain.ErrInternal(op+" failed", err)
}

// outcomeFor maps a workflow error to a metrics outcome label.
func outcomeFor(err error) string {
	appErr, ok := domain.AsAppError(err)
	if !ok {
		return metrics.OutcomeError
	}
	switch appErr.Code {
	case domain.CodeValidation, domain.CodeUnauthorized, domain.CodeForbidden:
		return metrics.OutcomeInvalid
	case domain.CodeNotFound:
		return metrics.OutcomeNotFound
	case domain.CodeInsufficientFund:
		return metrics.OutcomeInsufficientFunds
	case domain.CodeAlreadyCompleted:
		return metrics.OutcomeAlreadyCompleted
	default:
		return metrics.OutcomeError
	}
}
