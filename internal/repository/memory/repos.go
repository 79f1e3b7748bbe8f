package memory

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/hamstergame/platform/internal/domain"
	"github.com/google/uuid"
)

func now() time.Time { return time.Now().UTC() }

// --- users and groups ---

type userRepo repos

func (r userRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	var out *domain.User
	r.a.read(func(st *state) {
		if u, ok := st.users[id]; ok {
			out = &u
		}
	})
	return out, nil
}

func (r userRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	var out *domain.User
	r.a.read(func(st *state) {
		for _, u := range st.users {
			if u.Email == email {
				out = &u
				return
			}
		}
	})
	return out, nil
}

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	return r.a.write(func(st *state) error {
		for _, u := range st.users {
			if u.Email == user.Email {
				return fmt.Errorf("insert user %s: %w", user.Email, errUniqueViolation)
			}
		}
		if user.ID == uuid.Nil {
			user.ID = uuid.New()
		}
		if user.CreatedAt.IsZero() {
			user.CreatedAt = now()
		}
		st.users[user.ID] = *user
		return nil
	})
}

type groupRepo repos

func (r groupRepo) FindByInviteCode(_ context.Context, code string) (*domain.Group, error) {
	var out *domain.Group
	r.a.read(func(st *state) {
		for _, g := range st.groups {
			if g.InviteCode == code {
				out = &g
				return
			}
		}
	})
	return out, nil
}

func (r groupRepo) Create(_ context.Context, group *domain.Group) error {
	return r.a.write(func(st *state) error {
		for _, g := range st.groups {
			if g.InviteCode == group.InviteCode {
				return fmt.Errorf("insert group %s: %w", group.InviteCode, errUniqueViolation)
			}
		}
		if group.ID == uuid.Nil {
			group.ID = uuid.New()
		}
		if group.CreatedAt.IsZero() {
			group.CreatedAt = now()
		}
		st.groups[group.ID] = *group
		return nil
	})
}

// --- players ---

type playerRepo repos

func (r playerRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Player, error) {
	var out *domain.Player
	r.a.read(func(st *state) {
		if p, ok := st.players[id]; ok {
			out = &p
		}
	})
	return out, nil
}

func (r playerRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*domain.Player, error) {
	var out *domain.Player
	r.a.read(func(st *state) {
		for _, p := range st.players {
			if p.UserID == userID {
				out = &p
				return
			}
		}
	})
	return out, nil
}

// LockForUpdate is a plain read: a unit of work already holds the store lock.
func (r playerRepo) LockForUpdate(ctx context.Context, id uuid.UUID) (*domain.Player, error) {
	return r.FindByID(ctx, id)
}

func (r playerRepo) Create(_ context.Context, player *domain.Player) error {
	return r.a.write(func(st *state) error {
		if player.CashCents < 0 {
			return fmt.Errorf("insert player: %w", errCheckViolation)
		}
		for _, p := range st.players {
			if p.UserID == player.UserID {
				return fmt.Errorf("insert player for user %s: %w", player.UserID, errUniqueViolation)
			}
		}
		if player.ID == uuid.Nil {
			player.ID = uuid.New()
		}
		ts := now()
		player.CreatedAt, player.UpdatedAt = ts, ts
		st.players[player.ID] = *player
		return nil
	})
}

func (r playerRepo) Apply(_ context.Context, id uuid.UUID, update domain.PlayerUpdate) (*domain.Player, error) {
	var out *domain.Player
	err := r.a.write(func(st *state) error {
		p, ok := st.players[id]
		if !ok {
			return nil
		}
		if p.CashCents+update.CashDelta < 0 {
			return fmt.Errorf("update player %s: cash_cents: %w", id, errCheckViolation)
		}
		p.CashCents += update.CashDelta
		if update.LastDailyAt != nil {
			t := *update.LastDailyAt
			p.LastDailyAt = &t
		}
		p.UpdatedAt = now()
		st.players[id] = p
		out = &p
		return nil
	})
	return out, err
}

// --- catalog ---

type catalogRepo repos

func (r catalogRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.AssetCatalogItem, error) {
	var out *domain.AssetCatalogItem
	r.a.read(func(st *state) {
		if it, ok := st.catalog[id]; ok {
			out = &it
		}
	})
	return out, nil
}

func (r catalogRepo) ListAll(_ context.Context) ([]domain.AssetCatalogItem, error) {
	var items []domain.AssetCatalogItem
	r.a.read(func(st *state) {
		items = make([]domain.AssetCatalogItem, 0, len(st.catalog))
		for _, it := range st.catalog {
			items = append(items, it)
		}
	})
	slices.SortFunc(items, func(a, b domain.AssetCatalogItem) int {
		return cmp.Or(cmp.Compare(a.Category, b.Category), cmp.Compare(a.Name, b.Name))
	})
	return items, nil
}

func (r catalogRepo) InsertIfAbsent(_ context.Context, item *domain.AssetCatalogItem) (bool, error) {
	inserted := false
	err := r.a.write(func(st *state) error {
		for _, it := range st.catalog {
			if it.Name == item.Name {
				return nil
			}
		}
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		if item.Meta == nil {
			item.Meta = json.RawMessage(`{}`)
		}
		item.CreatedAt = now()
		st.catalog[item.ID] = *item
		inserted = true
		return nil
	})
	return inserted, err
}

// --- questions ---

type questionRepo repos

func (r questionRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]domain.Question, error) {
	out := []domain.Question{}
	r.a.read(func(st *state) {
		for _, id := range ids {
			if q, ok := st.questions[id]; ok {
				q.Answers = slices.Clone(q.Answers)
				out = append(out, q)
			}
		}
	})
	return out, nil
}

func (r questionRepo) Sample(_ context.Context, n int) ([]domain.Question, error) {
	var all []domain.Question
	r.a.read(func(st *state) {
		all = make([]domain.Question, 0, len(st.questions))
		for _, q := range st.questions {
			q.Answers = slices.Clone(q.Answers)
			all = append(all, q)
		}
	})
	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if n >= 0 && n < len(all) {
		all = all[:n]
	}
	return all, nil
}

func (r questionRepo) InsertIfAbsent(_ context.Context, q *domain.Question) (bool, error) {
	inserted := false
	err := r.a.write(func(st *state) error {
		for _, existing := range st.questions {
			if existing.Prompt == q.Prompt {
				return nil
			}
		}
		if q.CorrectIndex < 0 {
			return fmt.Errorf("insert question: correct_index: %w", errCheckViolation)
		}
		if q.ID == uuid.Nil {
			q.ID = uuid.New()
		}
		q.CreatedAt = now()
		stored := *q
		stored.Answers = slices.Clone(q.Answers)
		st.questions[q.ID] = stored
		inserted = true
		return nil
	})
	return inserted, err
}

// --- inventory ---

type inventoryRepo repos

func (r inventoryRepo) InsertBatch(_ context.Context, items []domain.InventoryItem) error {
	return r.a.write(func(st *state) error {
		st.inventory = append(st.inventory, items...)
		return nil
	})
}

func (r inventoryRepo) ListByPlayer(_ context.Context, playerID uuid.UUID) ([]domain.InventoryItem, error) {
	out := []domain.InventoryItem{}
	r.a.read(func(st *state) {
		for i := len(st.inventory) - 1; i >= 0; i-- {
			if st.inventory[i].PlayerID == playerID {
				out = append(out, st.inventory[i])
			}
		}
	})
	return out, nil
}

// --- ledger ---

type transactionRepo repos

func (r transactionRepo) Insert(_ context.Context, params domain.PostLedgerEntryParams, balanceAfter int64) (*domain.Transaction, error) {
	if (params.AmountCents == 0 && params.Type != domain.TxPurchase) || balanceAfter < 0 {
		return nil, fmt.Errorf("insert transaction: %w", errCheckViolation)
	}
	tx := domain.Transaction{
		ID:           uuid.New(),
		PlayerID:     params.PlayerID,
		Type:         params.Type,
		AmountCents:  params.AmountCents,
		BalanceAfter: balanceAfter,
		Meta:         params.Meta,
		CreatedAt:    now(),
	}
	err := r.a.write(func(st *state) error {
		st.transactions = append(st.transactions, tx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// ListByPlayer walks the log newest first. Insertion order stands in for
// (created_at, id) ordering.
func (r transactionRepo) ListByPlayer(_ context.Context, playerID uuid.UUID, cursor *uuid.UUID, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	out := []domain.Transaction{}
	r.a.read(func(st *state) {
		started := cursor == nil
		for i := len(st.transactions) - 1; i >= 0 && len(out) < limit; i-- {
			tx := st.transactions[i]
			if tx.PlayerID != playerID {
				continue
			}
			if !started {
				if tx.ID != *cursor {
					continue
				}
				started = true
			}
			out = append(out, tx)
		}
	})
	return out, nil
}

// --- daily tasks ---

type dailyTaskRepo repos

func (r dailyTaskRepo) FindForDay(_ context.Context, userID uuid.UUID, day string) (*domain.DailyTask, error) {
	var out *domain.DailyTask
	r.a.read(func(st *state) {
		if t, ok := st.daily[dailyKey{userID, day}]; ok {
			t.Results = slices.Clone(t.Results)
			out = &t
		}
	})
	return out, nil
}

func (r dailyTaskRepo) LockForDay(ctx context.Context, userID uuid.UUID, day string) (*domain.DailyTask, error) {
	return r.FindForDay(ctx, userID, day)
}

func (r dailyTaskRepo) Upsert(_ context.Context, task *domain.DailyTask) error {
	if _, _, err := domain.DayBounds(task.Day); err != nil {
		return fmt.Errorf("upsert daily task: %w", err)
	}
	return r.a.write(func(st *state) error {
		key := dailyKey{task.UserID, task.Day}
		if existing, ok := st.daily[key]; ok {
			task.ID = existing.ID
		} else if task.ID == uuid.Nil {
			task.ID = uuid.New()
		}
		stored := *task
		stored.Results = slices.Clone(task.Results)
		st.daily[key] = stored
		return nil
	})
}

// --- outbox ---

type outboxRepo repos

func (r outboxRepo) Insert(_ context.Context, draft domain.OutboxDraft) error {
	return r.a.write(func(st *state) error {
		st.outboxSeq++
		draft.SeqID = st.outboxSeq
		st.outbox = append(st.outbox, draft)
		return nil
	})
}

func (r outboxRepo) FetchUnpublished(_ context.Context, limit int) ([]domain.OutboxDraft, error) {
	var out []domain.OutboxDraft
	r.a.read(func(st *state) {
		for _, d := range st.outbox {
			if len(out) >= limit {
				return
			}
			if !st.published[d.SeqID] {
				out = append(out, d)
			}
		}
	})
	return out, nil
}

func (r outboxRepo) MarkPublished(_ context.Context, seqIDs []int64) error {
	return r.a.write(func(st *state) error {
		for _, id := range seqIDs {
			st.published[id] = true
		}
		return nil
	})
}
