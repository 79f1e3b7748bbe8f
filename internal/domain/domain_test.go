package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

// --- Reward table ---

func TestRewardForDifficulty(t *testing.T) {
	tests := []struct {
		name       string
		difficulty *string
		want       int64
	}{
		{"leicht", strp("leicht"), 1000},
		{"easy", strp("easy"), 1000},
		{"mittel", strp("mittel"), 2000},
		{"medium", strp("medium"), 2000},
		{"schwer", strp("schwer"), 5000},
		{"hard", strp("hard"), 5000},
		{"upper case", strp("SCHWER"), 5000},
		{"mixed case", strp("MeDiUm"), 2000},
		{"nil", nil, 1000},
		{"empty", strp(""), 1000},
		{"unknown", strp("extreme"), 1500},
		{"padded is not trimmed", strp(" leicht"), 1500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RewardForDifficulty(tt.difficulty))
		})
	}
}

// --- Validator Tests ---

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
		errMsg  string
	}{
		{"valid email", "user@example.com", false, ""},
		{"dev host without tld", "sandro@local", false, ""},
		{"valid email with plus", "user+tag@example.com", false, ""},
		{"empty string", "", true, "email is required"},
		{"no at sign", "userexample.com", true, "invalid email format"},
		{"no domain", "user@", true, "invalid email format"},
		{"no user", "@example.com", true, "invalid email format"},
		{"double at", "user@@example.com", true, "invalid email format"},
		{"spaces", "user @example.com", true, "invalid email format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "sandro@local", NormalizeEmail("  Sandro@LOCAL "))
}

func TestValidateQuantity(t *testing.T) {
	assert.NoError(t, ValidateQuantity(1, 100))
	assert.NoError(t, ValidateQuantity(100, 100))
	assert.NoError(t, ValidateQuantity(5000, 0))
	assert.Error(t, ValidateQuantity(0, 100))
	assert.Error(t, ValidateQuantity(-3, 100))
	assert.Error(t, ValidateQuantity(101, 100))
}

func TestTotalPrice(t *testing.T) {
	total, err := TotalPrice(18_000_000, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(36_000_000), total)

	total, err = TotalPrice(0, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	_, err = TotalPrice(math.MaxInt64/2, 3)
	assert.Error(t, err)

	_, err = TotalPrice(-1, 1)
	assert.Error(t, err)
}

// --- Day keys ---

func TestDayKey_UsesUTC(t *testing.T) {
	berlin := time.FixedZone("CEST", 2*60*60)
	// 00:30 local on the 5th is still the 4th in UTC.
	local := time.Date(2026, 6, 5, 0, 30, 0, 0, berlin)
	assert.Equal(t, "2026-06-04", DayKey(local))
}

func TestDayBounds(t *testing.T) {
	start, end, err := DayBounds("2026-06-04")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 6, 4, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 6, 4, 23, 59, 59, int(999*time.Millisecond), time.UTC), end)

	_, _, err = DayBounds("not-a-day")
	assert.Error(t, err)
}

// --- Ledger metadata ---

func TestDecodeLedgerMeta(t *testing.T) {
	itemID := uuid.New()
	when := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	raw, err := json.Marshal(PurchaseMeta{ItemID: itemID, ItemName: "Porsche", Quantity: 2, When: when})
	require.NoError(t, err)

	meta, err := DecodeLedgerMeta(TxPurchase, raw)
	require.NoError(t, err)
	pm, ok := meta.(PurchaseMeta)
	require.True(t, ok)
	assert.Equal(t, itemID, pm.ItemID)
	assert.Equal(t, 2, pm.Quantity)
	assert.True(t, when.Equal(pm.When))

	meta, err = DecodeLedgerMeta(TxDailyReward, json.RawMessage(`{"correctCount":2,"date":"2026-01-02T03:04:05Z"}`))
	require.NoError(t, err)
	assert.Equal(t, 2, meta.(DailyRewardMeta).CorrectCount)

	_, err = DecodeLedgerMeta("bonus", json.RawMessage(`{}`))
	assert.Error(t, err)

	_, err = DecodeLedgerMeta(TxPurchase, json.RawMessage(`{invalid`))
	assert.Error(t, err)
}

func TestPostLedgerEntryParams_Validate(t *testing.T) {
	valid := PostLedgerEntryParams{
		PlayerID:    uuid.New(),
		Type:        TxPurchase,
		AmountCents: -100,
		Meta:        PurchaseMeta{Quantity: 1},
	}
	require.NoError(t, valid.Validate())

	free := valid
	free.AmountCents = 0
	assert.NoError(t, free.Validate())

	zeroReward := PostLedgerEntryParams{
		PlayerID: uuid.New(),
		Type:     TxDailyReward,
		Meta:     DailyRewardMeta{},
	}
	assert.Error(t, zeroReward.Validate())

	noMeta := valid
	noMeta.Meta = nil
	assert.Error(t, noMeta.Validate())

	mismatch := valid
	mismatch.Meta = DailyRewardMeta{CorrectCount: 1}
	err := mismatch.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daily_reward")
}

// --- AppError ---

func TestAppError(t *testing.T) {
	t.Run("error string without cause", func(t *testing.T) {
		err := ErrNotFound("item", "abc")
		assert.Equal(t, "NOT_FOUND: item abc not found", err.Error())
		assert.Equal(t, 404, err.Status)
	})

	t.Run("error string with cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := ErrInternal("commit", cause)
		assert.Contains(t, err.Error(), "connection refused")
		assert.ErrorIs(t, err, cause)
	})

	t.Run("insufficient funds details", func(t *testing.T) {
		err := ErrInsufficientFunds(100, 250)
		assert.Equal(t, 402, err.Status)
		assert.Equal(t, int64(100), err.Details["balanceCents"])
		assert.Equal(t, int64(250), err.Details["requiredCents"])
	})

	t.Run("already completed details", func(t *testing.T) {
		err := ErrAlreadyCompleted(3000)
		assert.Equal(t, 409, err.Status)
		assert.Equal(t, int64(3000), err.Details["reward"])
	})

	t.Run("IsCode unwraps", func(t *testing.T) {
		wrapped := fmt.Errorf("purchase: %w", ErrInsufficientFunds(1, 2))
		assert.True(t, IsCode(wrapped, CodeInsufficientFund))
		assert.False(t, IsCode(wrapped, CodeNotFound))
		assert.False(t, IsCode(errors.New("plain"), CodeNotFound))
	})
}

// --- Events ---

func TestNewTransactionPostedEvent(t *testing.T) {
	tx := &Transaction{
		ID:          uuid.New(),
		PlayerID:    uuid.New(),
		Type:        TxDailyReward,
		AmountCents: 3000,
		Meta:        DailyRewardMeta{CorrectCount: 2},
	}
	evt := NewTransactionPostedEvent(tx)
	assert.Equal(t, AggregateLedger, evt.AggregateType)
	assert.Equal(t, tx.PlayerID.String(), evt.AggregateID)
	assert.Equal(t, tx.PlayerID.String(), evt.PartitionKey)
	assert.Equal(t, "ledger.transaction.posted", evt.Topic())

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(evt.Payload, &payload))
	assert.Equal(t, "daily_reward", payload["type"])
	assert.Equal(t, float64(3000), payload["amountCents"])
}
