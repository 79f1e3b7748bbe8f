package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// mapConflict wraps unique violations with ErrConflict and leaves other
// errors untouched.
func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	}
	return err
}

// pgRepos binds every pgx-backed repository to one DBTX.
type pgRepos struct {
	db DBTX
}

func (r pgRepos) Users() UserRepository               { return &userRepo{db: r.db} }
func (r pgRepos) Groups() GroupRepository             { return &groupRepo{db: r.db} }
func (r pgRepos) Players() PlayerRepository           { return &playerRepo{db: r.db} }
func (r pgRepos) Catalog() CatalogRepository          { return &catalogRepo{db: r.db} }
func (r pgRepos) Questions() QuestionRepository       { return &questionRepo{db: r.db} }
func (r pgRepos) Inventory() InventoryRepository      { return &inventoryRepo{db: r.db} }
func (r pgRepos) Transactions() TransactionRepository { return &transactionRepo{db: r.db} }
func (r pgRepos) DailyTasks() DailyTaskRepository     { return &dailyTaskRepo{db: r.db} }
func (r pgRepos) Outbox() OutboxRepository            { return &outboxRepo{db: r.db} }

// PgStore is the Postgres-backed Store.
type PgStore struct {
	pgRepos
	pool *pgxpool.Pool
}

// NewPgStore wraps a pgx pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pgRepos: pgRepos{db: pool}, pool: pool}
}

// Begin opens a database transaction. Player balance changes are serialized by
// row locks taken through LockForUpdate, so read committed is sufficient.
func (s *PgStore) Begin(ctx context.Context) (UnitOfWork, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &pgUnit{pgRepos: pgRepos{db: tx}, tx: tx}, nil
}

// Ping checks database connectivity.
func (s *PgStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

type pgUnit struct {
	pgRepos
	tx pgx.Tx
}

func (u *pgUnit) Commit(ctx context.Context) error {
	if err := u.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (u *pgUnit) Rollback(ctx context.Context) error {
	err := u.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rollback tx: %w", err)
	}
	return nil
}
