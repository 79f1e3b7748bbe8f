package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

func newDraft(aggregate AggregateType, aggregateID uuid.UUID, evtType EventType, payload interface{}) OutboxDraft {
	body, _ := json.Marshal(payload)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: aggregate,
		AggregateID:   aggregateID.String(),
		EventType:     evtType,
		PartitionKey:  aggregateID.String(),
		Payload:       body,
		OccurredAt:    time.Now(),
	}
}

// NewTransactionPostedEvent creates the standard ledger event, partitioned by player.
func NewTransactionPostedEvent(tx *Transaction) OutboxDraft {
	return newDraft(AggregateLedger, tx.PlayerID, EventTransactionPosted, tx)
}

// NewInventoryAcquiredEvent records the inventory rows created by one purchase.
func NewInventoryAcquiredEvent(playerID, catalogID uuid.UUID, inventoryIDs []uuid.UUID) OutboxDraft {
	return newDraft(AggregatePlayer, playerID, EventInventoryAcquired, map[string]interface{}{
		"player_id":     playerID,
		"catalog_id":    catalogID,
		"inventory_ids": inventoryIDs,
	})
}

// NewDailyTaskCompletedEvent is emitted once per user and UTC day.
func NewDailyTaskCompletedEvent(task *DailyTask, correctCount int) OutboxDraft {
	return newDraft(AggregateDaily, task.UserID, EventDailyTaskCompleted, map[string]interface{}{
		"user_id":       task.UserID,
		"day":           task.Day,
		"reward":        task.Reward,
		"correct_count": correctCount,
	})
}

// NewUserCreatedEvent creates a user lifecycle event.
func NewUserCreatedEvent(user *User) OutboxDraft {
	return newDraft(AggregateUser, user.ID, EventUserCreated, map[string]string{
		"user_id": user.ID.String(),
		"email":   user.Email,
	})
}

// NewPlayerProvisionedEvent records the opening balance of a new player.
func NewPlayerProvisionedEvent(player *Player) OutboxDraft {
	return newDraft(AggregatePlayer, player.ID, EventPlayerProvisioned, map[string]interface{}{
		"player_id":  player.ID,
		"user_id":    player.UserID,
		"cash_cents": player.CashCents,
	})
}
