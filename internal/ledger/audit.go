package ledger

import (
	"context"
	"fmt"
	"slices"

	"github.com/hamstergame/platform/internal/domain"
	"github.com/google/uuid"
)

const auditPageSize = 100

// AuditResult holds the outcome of a ledger audit for one player.
type AuditResult struct {
	PlayerID         uuid.UUID
	TransactionCount int
	CashCents        int64
	Invariants       []InvariantCheck
	AllPassed        bool
}

// InvariantCheck records a single invariant validation.
type InvariantCheck struct {
	Name   string
	Passed bool
	Detail string
}

// AuditPlayer walks a player's full ledger and validates 3 invariants:
//  1. Balance non-negativity: cash >= 0
//  2. Ledger parity: the newest entry's snapshot matches the player row
//  3. Chain continuity: each snapshot equals the previous one plus the entry amount
func (e *Engine) AuditPlayer(ctx context.Context, playerID uuid.UUID) (*AuditResult, error) {
	player, err := e.store.Players().FindByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("audit find player: %w", err)
	}
	if player == nil {
		return nil, domain.ErrNotFound("player", playerID.String())
	}

	entries, err := e.fullLedger(ctx, playerID)
	if err != nil {
		return nil, err
	}

	checks := make([]InvariantCheck, 0, 3)

	checks = append(checks, InvariantCheck{
		Name:   "balance_non_negative",
		Passed: player.CashCents >= 0,
		Detail: fmt.Sprintf("cash=%d", player.CashCents),
	})

	if len(entries) > 0 {
		last := entries[len(entries)-1]
		checks = append(checks, InvariantCheck{
			Name:   "ledger_parity",
			Passed: last.BalanceAfter == player.CashCents,
			Detail: fmt.Sprintf("player=%d lastTx=%d", player.CashCents, last.BalanceAfter),
		})
	} else {
		checks = append(checks, InvariantCheck{
			Name:   "ledger_parity",
			Passed: true,
			Detail: "no transactions (empty ledger)",
		})
	}

	chain := InvariantCheck{Name: "chain_continuity", Passed: true, Detail: fmt.Sprintf("%d entries", len(entries))}
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if prev.BalanceAfter+cur.AmountCents != cur.BalanceAfter {
			chain.Passed = false
			chain.Detail = fmt.Sprintf("entry %s: %d + %d != %d", cur.ID, prev.BalanceAfter, cur.AmountCents, cur.BalanceAfter)
			break
		}
	}
	checks = append(checks, chain)

	allPassed := true
	for _, c := range checks {
		if !c.Passed {
			allPassed = false
		}
	}

	return &AuditResult{
		PlayerID:         playerID,
		TransactionCount: len(entries),
		CashCents:        player.CashCents,
		Invariants:       checks,
		AllPassed:        allPassed,
	}, nil
}

// fullLedger returns every entry for the player, oldest first. Cursors are
// inclusive, so the last row of a full page starts the next one.
func (e *Engine) fullLedger(ctx context.Context, playerID uuid.UUID) ([]domain.Transaction, error) {
	var all []domain.Transaction
	var cursor *uuid.UUID
	for {
		page, err := e.store.Transactions().ListByPlayer(ctx, playerID, cursor, auditPageSize)
		if err != nil {
			return nil, fmt.Errorf("audit list transactions: %w", err)
		}
		if len(page) < auditPageSize {
			all = append(all, page...)
			break
		}
		all = append(all, page[:auditPageSize-1]...)
		next := page[auditPageSize-1].ID
		cursor = &next
	}
	slices.Reverse(all)
	return all, nil
}
