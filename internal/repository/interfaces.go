package repository

import (
	"context"
	"errors"

	"github.com/hamstergame/platform/internal/domain"
	"github.com/google/uuid"
)

// ErrConflict is wrapped by Create methods when a unique constraint rejects
// the row, typically because a concurrent caller inserted it first.
var ErrConflict = errors.New("unique constraint violated")

// Lookups that find nothing return (nil, nil); callers decide whether absence
// is an error.

// UserRepository provides access to users. It backs identity resolution.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// FindByEmail matches the normalized (lower-cased) email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	Create(ctx context.Context, user *domain.User) error
}

// GroupRepository provides access to player groups.
type GroupRepository interface {
	FindByInviteCode(ctx context.Context, code string) (*domain.Group, error)
	Create(ctx context.Context, group *domain.Group) error
}

// PlayerRepository provides access to players.
type PlayerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Player, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Player, error)

	// LockForUpdate acquires a row-level lock and returns the player.
	// Only meaningful inside a UnitOfWork.
	LockForUpdate(ctx context.Context, id uuid.UUID) (*domain.Player, error)

	Create(ctx context.Context, player *domain.Player) error

	// Apply updates the balance with server-side arithmetic and returns the new row.
	Apply(ctx context.Context, id uuid.UUID, update domain.PlayerUpdate) (*domain.Player, error)
}

// CatalogRepository is the read side of the asset catalog.
type CatalogRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.AssetCatalogItem, error)

	// ListAll returns every item ordered by category, then name.
	ListAll(ctx context.Context) ([]domain.AssetCatalogItem, error)

	// InsertIfAbsent adds the item unless one with the same name exists.
	InsertIfAbsent(ctx context.Context, item *domain.AssetCatalogItem) (bool, error)
}

// QuestionRepository is the read side of the trivia question pool.
type QuestionRepository interface {
	// FindByIDs returns the questions that exist; unknown ids are skipped.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Question, error)

	// Sample returns up to n questions in random order.
	Sample(ctx context.Context, n int) ([]domain.Question, error)

	// InsertIfAbsent adds the question unless one with the same prompt exists.
	InsertIfAbsent(ctx context.Context, q *domain.Question) (bool, error)
}

// InventoryRepository provides access to owned items. Rows are never updated.
type InventoryRepository interface {
	InsertBatch(ctx context.Context, items []domain.InventoryItem) error
	ListByPlayer(ctx context.Context, playerID uuid.UUID) ([]domain.InventoryItem, error)
}

// TransactionRepository provides access to the append-only ledger.
type TransactionRepository interface {
	// Insert creates a ledger entry with the post-update balance snapshot.
	Insert(ctx context.Context, params domain.PostLedgerEntryParams, balanceAfter int64) (*domain.Transaction, error)

	// ListByPlayer returns entries newest first. A non-nil cursor starts the
	// page at that entry.
	ListByPlayer(ctx context.Context, playerID uuid.UUID, cursor *uuid.UUID, limit int) ([]domain.Transaction, error)
}

// DailyTaskRepository provides access to daily quiz records.
type DailyTaskRepository interface {
	FindForDay(ctx context.Context, userID uuid.UUID, day string) (*domain.DailyTask, error)

	// LockForDay is FindForDay with a row lock. Only meaningful inside a UnitOfWork.
	LockForDay(ctx context.Context, userID uuid.UUID, day string) (*domain.DailyTask, error)

	// Upsert creates the task for (user, day) or overwrites it in place.
	Upsert(ctx context.Context, task *domain.DailyTask) error
}

// OutboxRepository provides access to the event outbox.
type OutboxRepository interface {
	// Insert writes an event within the same unit of work as the change it describes.
	Insert(ctx context.Context, draft domain.OutboxDraft) error

	// FetchUnpublished returns unpublished events oldest first.
	FetchUnpublished(ctx context.Context, limit int) ([]domain.OutboxDraft, error)

	MarkPublished(ctx context.Context, seqIDs []int64) error
}

// Repositories groups every repository bound to one connection or unit of work.
type Repositories interface {
	Users() UserRepository
	Groups() GroupRepository
	Players() PlayerRepository
	Catalog() CatalogRepository
	Questions() QuestionRepository
	Inventory() InventoryRepository
	Transactions() TransactionRepository
	DailyTasks() DailyTaskRepository
	Outbox() OutboxRepository
}

// UnitOfWork is an atomic set of changes. Nothing written through it is
// visible to others until Commit; Rollback after Commit is a no-op.
type UnitOfWork interface {
	Repositories
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Store is the persistence context handed to services. Its repositories run
// outside any unit of work.
type Store interface {
	Repositories
	Begin(ctx context.Context) (UnitOfWork, error)
	Ping(ctx context.Context) error
}
