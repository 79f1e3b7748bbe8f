//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
)

// DecodeJSON reads and decodes a JSON response body into dst.
func DecodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
}

// AssertStatus checks that the response has the expected HTTP status code.
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// AssertErrorCode checks that the response body contains the expected error code.
func AssertErrorCode(t *testing.T, resp *http.Response, expectedCode string) {
	t.Helper()
	var errResp struct {
		OK      bool   `json:"ok"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	DecodeJSON(t, resp, &errResp)
	if errResp.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, errResp.Code, errResp.Message)
	}
	if errResp.OK {
		t.Errorf("expected ok=false on error response")
	}
}

// AssertCash queries the players table and asserts the player's balance.
func AssertCash(t *testing.T, env *TestEnv, playerID uuid.UUID, expected int64) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var cash int64
	err := env.Pool.QueryRow(ctx, "SELECT cash_cents FROM players WHERE id = $1", playerID).Scan(&cash)
	if err != nil {
		t.Fatalf("AssertCash: query: %v", err)
	}
	if cash != expected {
		t.Errorf("cash_cents: expected %d, got %d", expected, cash)
	}
}

// CountRows returns the number of rows in table matching the player.
func CountRows(t *testing.T, env *TestEnv, table string, playerID uuid.UUID) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var n int
	if err := env.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+table+" WHERE player_id = $1", playerID).Scan(&n); err != nil {
		t.Fatalf("CountRows %s: %v", table, err)
	}
	return n
}

// AssertLedgerConsistent checks that the newest ledger snapshot equals the
// stored balance and that the amounts sum to the change since provisioning.
func AssertLedgerConsistent(t *testing.T, env *TestEnv, playerID uuid.UUID, startingCash int64) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var cash, sum int64
	err := env.Pool.QueryRow(ctx, `
		SELECT p.cash_cents, COALESCE(SUM(t.amount_cents), 0)
		FROM players p LEFT JOIN transactions t ON t.player_id = p.id
		WHERE p.id = $1
		GROUP BY p.cash_cents`, playerID).Scan(&cash, &sum)
	if err != nil {
		t.Fatalf("AssertLedgerConsistent: %v", err)
	}
	if startingCash+sum != cash {
		t.Errorf("ledger sum %d + start %d != cash %d", sum, startingCash, cash)
	}
}
