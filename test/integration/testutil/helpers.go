//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hamstergame/platform/internal/domain"
	"github.com/google/uuid"
)

// Login signs in (provisioning on first use) and returns the token and player ID.
func (env *TestEnv) Login(email string) (token string, playerID uuid.UUID) {
	env.t.Helper()
	resp := env.POST("/auth/login", map[string]string{"email": email}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		env.t.Fatalf("Login: expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Token    string    `json:"token"`
		PlayerID uuid.UUID `json:"playerId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("Login: decode: %v", err)
	}
	return result.Token, result.PlayerID
}

// CreateItem inserts a catalog item directly.
func (env *TestEnv) CreateItem(name, category string, priceCents int64) *domain.AssetCatalogItem {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	item := &domain.AssetCatalogItem{Name: name, Category: category, BasePriceCents: priceCents}
	if _, err := env.Store.Catalog().InsertIfAbsent(ctx, item); err != nil {
		env.t.Fatalf("CreateItem: %v", err)
	}
	return item
}

// CreateQuestion inserts a question directly.
func (env *TestEnv) CreateQuestion(prompt string, correct int, difficulty string) *domain.Question {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	q := &domain.Question{
		Category:     "Allgemeinwissen",
		Prompt:       prompt,
		Answers:      []string{"a", "b", "c", "d"},
		CorrectIndex: correct,
	}
	if difficulty != "" {
		q.Difficulty = &difficulty
	}
	if _, err := env.Store.Questions().InsertIfAbsent(ctx, q); err != nil {
		env.t.Fatalf("CreateQuestion: %v", err)
	}
	return q
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	resp, err := http.Get(env.Server.URL + path)
	if err != nil {
		env.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// POST performs a POST request with optional auth token.
func (env *TestEnv) POST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("POST %s: encode: %v", path, err)
		}
	}
	req, err := http.NewRequest(http.MethodPost, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("POST %s: new request: %v", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// AuthGET performs an authenticated GET request.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	env.t.Helper()
	req, err := http.NewRequest(http.MethodGet, env.Server.URL+path, nil)
	if err != nil {
		env.t.Fatalf("AuthGET %s: new request: %v", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("AuthGET %s: %v", path, err)
	}
	return resp
}
