// Package memory is an in-process repository.Store for tests and local
// development. A unit of work holds the store's write lock until it commits or
// rolls back, so units of work are fully serialized.
package memory

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/hamstergame/platform/internal/domain"
	"github.com/hamstergame/platform/internal/repository"
	"github.com/google/uuid"
)

var (
	// ErrTxDone is returned when a finished unit of work is committed again.
	ErrTxDone = errors.New("memory: unit of work already finished")

	errUniqueViolation = repository.ErrConflict
	errCheckViolation  = errors.New("memory: check constraint violated")
)

type dailyKey struct {
	userID uuid.UUID
	day    string
}

type state struct {
	users        map[uuid.UUID]domain.User
	groups       map[uuid.UUID]domain.Group
	players      map[uuid.UUID]domain.Player
	catalog      map[uuid.UUID]domain.AssetCatalogItem
	questions    map[uuid.UUID]domain.Question
	inventory    []domain.InventoryItem
	transactions []domain.Transaction
	daily        map[dailyKey]domain.DailyTask
	outbox       []domain.OutboxDraft
	published    map[int64]bool
	outboxSeq    int64
}

func newState() *state {
	return &state{
		users:     make(map[uuid.UUID]domain.User),
		groups:    make(map[uuid.UUID]domain.Group),
		players:   make(map[uuid.UUID]domain.Player),
		catalog:   make(map[uuid.UUID]domain.AssetCatalogItem),
		questions: make(map[uuid.UUID]domain.Question),
		daily:     make(map[dailyKey]domain.DailyTask),
		published: make(map[int64]bool),
	}
}

// clone copies every table. Stored values are never mutated in place, so a
// shallow copy of each map and slice is a consistent snapshot.
func (s *state) clone() *state {
	return &state{
		users:        maps.Clone(s.users),
		groups:       maps.Clone(s.groups),
		players:      maps.Clone(s.players),
		catalog:      maps.Clone(s.catalog),
		questions:    maps.Clone(s.questions),
		inventory:    slices.Clone(s.inventory),
		transactions: slices.Clone(s.transactions),
		daily:        maps.Clone(s.daily),
		outbox:       slices.Clone(s.outbox),
		published:    maps.Clone(s.published),
		outboxSeq:    s.outboxSeq,
	}
}

// Store implements repository.Store in memory.
type Store struct {
	repos
	mu sync.RWMutex
	st *state
}

// NewStore returns an empty store.
func NewStore() *Store {
	s := &Store{st: newState()}
	s.repos = repos{a: access{s: s}}
	return s
}

var _ repository.Store = (*Store)(nil)

// Begin acquires the store's write lock for the lifetime of the unit of work.
func (s *Store) Begin(ctx context.Context) (repository.UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	u := &unit{s: s, snapshot: s.st.clone()}
	u.repos = repos{a: access{s: s, held: true}}
	return u, nil
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

type unit struct {
	repos
	s        *Store
	snapshot *state
	done     bool
}

func (u *unit) Commit(ctx context.Context) error {
	if u.done {
		return ErrTxDone
	}
	u.done = true
	u.snapshot = nil
	u.s.mu.Unlock()
	return nil
}

func (u *unit) Rollback(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	u.s.st = u.snapshot
	u.snapshot = nil
	u.s.mu.Unlock()
	return nil
}

// access runs a function against the state, taking the lock unless the
// caller is a unit of work that already holds it.
type access struct {
	s    *Store
	held bool
}

func (a access) read(fn func(st *state)) {
	if !a.held {
		a.s.mu.RLock()
		defer a.s.mu.RUnlock()
	}
	fn(a.s.st)
}

func (a access) write(fn func(st *state) error) error {
	if !a.held {
		a.s.mu.Lock()
		defer a.s.mu.Unlock()
	}
	return fn(a.s.st)
}

type repos struct {
	a access
}

func (r repos) Users() repository.UserRepository               { return userRepo(r) }
func (r repos) Groups() repository.GroupRepository             { return groupRepo(r) }
func (r repos) Players() repository.PlayerRepository           { return playerRepo(r) }
func (r repos) Catalog() repository.CatalogRepository          { return catalogRepo(r) }
func (r repos) Questions() repository.QuestionRepository       { return questionRepo(r) }
func (r repos) Inventory() repository.InventoryRepository      { return inventoryRepo(r) }
func (r repos) Transactions() repository.TransactionRepository { return transactionRepo(r) }
func (r repos) DailyTasks() repository.DailyTaskRepository     { return dailyTaskRepo(r) }
func (r repos) Outbox() repository.OutboxRepository            { return outboxRepo(r) }
