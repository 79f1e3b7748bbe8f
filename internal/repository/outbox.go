package repository

import (
	"context"
	"fmt"

	"github.com/hamstergame/platform/internal/domain"
)

type outboxRepo struct {
	db DBTX
}

func (r *outboxRepo) Insert(ctx context.Context, draft domain.OutboxDraft) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO event_outbox
		  (event_id, aggregate_type, aggregate_id, event_type, partition_key, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		draft.EventID,
		string(draft.AggregateType),
		draft.AggregateID,
		string(draft.EventType),
		draft.PartitionKey,
		[]byte(draft.Payload),
		draft.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func (r *outboxRepo) FetchUnpublished(ctx context.Context, limit int) ([]domain.OutboxDraft, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, event_id, aggregate_type, aggregate_id, event_type,
		       partition_key, payload, occurred_at
		FROM event_outbox
		WHERE published_at IS NULL
		ORDER BY id ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch unpublished events: %w", err)
	}
	defer rows.Close()

	var events []domain.OutboxDraft
	for rows.Next() {
		var d domain.OutboxDraft
		var aggType, evtType string
		var payload []byte
		err := rows.Scan(&d.SeqID, &d.EventID, &aggType, &d.AggregateID,
			&evtType, &d.PartitionKey, &payload, &d.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		d.AggregateType = domain.AggregateType(aggType)
		d.EventType = domain.EventType(evtType)
		d.Payload = payload
		events = append(events, d)
	}
	return events, rows.Err()
}

func (r *outboxRepo) MarkPublished(ctx context.Context, seqIDs []int64) error {
	if len(seqIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `UPDATE event_outbox SET published_at = now() WHERE id = ANY($1)`, seqIDs)
	if err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	return nil
}
