package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TransactionType tags a ledger entry and selects its metadata shape.
type TransactionType string

const (
	TxPurchase    TransactionType = "purchase"
	TxDailyReward TransactionType = "daily_reward"
)

// LedgerMeta is the typed metadata attached to a ledger entry. Each
// implementation belongs to exactly one TransactionType.
type LedgerMeta interface {
	TxType() TransactionType
}

// PurchaseMeta describes what a purchase bought.
type PurchaseMeta struct {
	ItemID   uuid.UUID `json:"itemId"`
	ItemName string    `json:"itemName"`
	Quantity int       `json:"quantity"`
	When     time.Time `json:"when"`
}

func (PurchaseMeta) TxType() TransactionType { return TxPurchase }

// DailyRewardMeta describes a daily quiz payout.
type DailyRewardMeta struct {
	CorrectCount int       `json:"correctCount"`
	Date         time.Time `json:"date"`
}

func (DailyRewardMeta) TxType() TransactionType { return TxDailyReward }

// DecodeLedgerMeta parses stored metadata into the variant selected by t.
func DecodeLedgerMeta(t TransactionType, raw json.RawMessage) (LedgerMeta, error) {
	switch t {
	case TxPurchase:
		var m PurchaseMeta
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode purchase meta: %w", err)
		}
		return m, nil
	case TxDailyReward:
		var m DailyRewardMeta
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode daily reward meta: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown transaction type: %s", t)
	}
}

// Transaction is an append-only ledger entry.
type Transaction struct {
	ID           uuid.UUID       `json:"id"`
	PlayerID     uuid.UUID       `json:"playerId"`
	Type         TransactionType `json:"type"`
	AmountCents  int64           `json:"amountCents"`
	BalanceAfter int64           `json:"balanceAfter"`
	Meta         LedgerMeta      `json:"meta"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// PostLedgerEntryParams is the input to the atomic PostLedgerEntry operation.
type PostLedgerEntryParams struct {
	PlayerID    uuid.UUID
	Type        TransactionType
	AmountCents int64
	Update      PlayerUpdate
	Meta        LedgerMeta
}

// Validate rejects zero-amount rewards and metadata that does not match the type.
func (p PostLedgerEntryParams) Validate() error {
	// A free item still leaves a purchase entry; only rewards must move money.
	if p.AmountCents == 0 && p.Type != TxPurchase {
		return fmt.Errorf("%s entry amount must be non-zero", p.Type)
	}
	if p.Meta == nil {
		return fmt.Errorf("ledger entry %s requires metadata", p.Type)
	}
	if p.Meta.TxType() != p.Type {
		return fmt.Errorf("metadata for %s attached to %s entry", p.Meta.TxType(), p.Type)
	}
	return nil
}
