package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity record. Created on first login.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// Group is a set of players sharing an invite code.
type Group struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"inviteCode"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Player is the game profile of a User. CashCents never goes negative and is
// only changed through the ledger engine.
type Player struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"userId"`
	GroupID     *uuid.UUID `json:"groupId,omitempty"`
	Job         string     `json:"job"`
	CashCents   int64      `json:"cashCents"`
	LastDailyAt *time.Time `json:"lastDailyAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// PlayerUpdate describes a balance mutation applied with server-side arithmetic.
type PlayerUpdate struct {
	CashDelta   int64
	LastDailyAt *time.Time
}

// HasCashDelta returns true if the balance changes.
func (u PlayerUpdate) HasCashDelta() bool { return u.CashDelta != 0 }
