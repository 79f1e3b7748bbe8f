package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventUserCreated        EventType = "user.created"
	EventPlayerProvisioned  EventType = "player.provisioned"
	EventTransactionPosted  EventType = "transaction.posted"
	EventInventoryAcquired  EventType = "inventory.acquired"
	EventDailyTaskCompleted EventType = "daily.task.completed"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateUser   AggregateType = "user"
	AggregatePlayer AggregateType = "player"
	AggregateLedger AggregateType = "ledger"
	AggregateDaily  AggregateType = "daily"
)

// OutboxDraft is an event written to event_outbox in the same unit of work as
// the change it describes. SeqID is assigned by the store.
type OutboxDraft struct {
	SeqID         int64           `json:"-"`
	EventID       uuid.UUID       `json:"eventId"`
	AggregateType AggregateType   `json:"aggregateType"`
	AggregateID   string          `json:"aggregateId"`
	EventType     EventType       `json:"eventType"`
	PartitionKey  string          `json:"partitionKey"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// Topic returns the broker topic suffix for the event.
func (d OutboxDraft) Topic() string {
	return string(d.AggregateType) + "." + string(d.EventType)
}
