//go:build integration

package testutil

import (
	"context"
	"time"
)

// CleanAll truncates all tables. CASCADE covers the foreign keys.
func (env *TestEnv) CleanAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tables := []string{
		"event_outbox",
		"daily_tasks",
		"transactions",
		"inventory_items",
		"players",
		"users",
		"groups",
		"questions",
		"catalog_items",
	}

	for _, table := range tables {
		if _, err := env.Pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			env.t.Fatalf("truncate %s: %v", table, err)
		}
	}
}
