//go:build integration

package integration

import (
	"bytes"
	"net/http"
	"sync"
	"testing"

	"github.com/hamstergame/platform/test/integration/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── Login & provisioning ───────────────────────────────────────────────────

func TestLogin_ProvisionsPlayer(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, playerID := env.Login("Sandro@Local")

	assert.NotEmpty(t, token)
	assert.NotEqual(t, uuid.Nil, playerID)
	testutil.AssertCash(t, env, playerID, testutil.TestStartingCash)

	var users, players, events int
	require.NoError(t, env.Pool.QueryRow(t.Context(), "SELECT COUNT(*) FROM users WHERE email = 'sandro@local'").Scan(&users))
	require.NoError(t, env.Pool.QueryRow(t.Context(), "SELECT COUNT(*) FROM players WHERE id = $1", playerID).Scan(&players))
	require.NoError(t, env.Pool.QueryRow(t.Context(), "SELECT COUNT(*) FROM event_outbox").Scan(&events))
	assert.Equal(t, 1, users)
	assert.Equal(t, 1, players)
	assert.Equal(t, 2, events, "user.created + player.provisioned")
}

func TestLogin_SecondLoginReusesPlayer(t *testing.T) {
	env := testutil.NewTestEnv(t)
	_, first := env.Login("again@local")
	_, second := env.Login("again@local")
	assert.Equal(t, first, second)
}

func TestLogin_ConcurrentFirstLogins(t *testing.T) {
	env := testutil.NewTestEnv(t)

	const attempts = 8
	var wg sync.WaitGroup
	statuses := make([]int, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := bytes.NewBufferString(`{"email":"burst@local"}`)
			resp, err := http.Post(env.Server.URL+"/auth/login", "application/json", body)
			if !assert.NoError(t, err) {
				return
			}
			resp.Body.Close()
			statuses[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	for i, status := range statuses {
		assert.Equal(t, http.StatusOK, status, "attempt %d", i)
	}
	var users, players int
	require.NoError(t, env.Pool.QueryRow(t.Context(), "SELECT COUNT(*) FROM users WHERE email = 'burst@local'").Scan(&users))
	require.NoError(t, env.Pool.QueryRow(t.Context(), "SELECT COUNT(*) FROM players p JOIN users u ON u.id = p.user_id WHERE u.email = 'burst@local'").Scan(&players))
	assert.Equal(t, 1, users)
	assert.Equal(t, 1, players)
}

func TestLogin_UnknownInviteCodeRollsBack(t *testing.T) {
	env := testutil.NewTestEnv(t)
	resp := env.POST("/auth/login", map[string]string{"email": "ghost@local", "inviteCode": "NOPE"}, "")
	testutil.AssertStatus(t, resp, http.StatusNotFound)
	testutil.AssertErrorCode(t, resp, "NOT_FOUND")

	var users int
	require.NoError(t, env.Pool.QueryRow(t.Context(), "SELECT COUNT(*) FROM users").Scan(&users))
	assert.Zero(t, users)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	env := testutil.NewTestEnv(t)
	for _, path := range []string{"/me", "/me/transactions"} {
		resp := env.GET(path)
		testutil.AssertStatus(t, resp, http.StatusUnauthorized)
		testutil.AssertErrorCode(t, resp, "UNAUTHORIZED")
	}
	resp := env.POST("/purchase", map[string]string{"itemId": uuid.NewString()}, "")
	testutil.AssertStatus(t, resp, http.StatusUnauthorized)
	resp.Body.Close()
}
