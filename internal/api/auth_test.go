package api

import (
	"net/http"
	"testing"

	"hunter_api/internal/domain"
	"hunter_api/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenPair(t *testing.T) {
	env := newTestEnv(t)
	leader := env.hunter("jinwoo", domain.RankC, false)
	g := domain.Guild{Name: "Ahjin", LeaderID: &leader.ID}
	require.NoError(t, env.db.Omit("Leader", "Members").Create(&g).Error)

	w := env.do(http.MethodPost, "/api/token", "", map[string]any{"username": "jinwoo", "password": testPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	access, _ := body["access"].(string)
	refresh, _ := body["refresh"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := utils.ParseJWT(access, utils.AccessToken, env.tokens.Secret)
	require.NoError(t, err)
	assert.Equal(t, leader.ID, claims.UserID)
	assert.True(t, claims.IsLeader)
	assert.False(t, claims.IsAdmin)

	// Access tokens authenticate, refresh tokens do not
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/guilds", access, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/guilds", refresh, nil).Code)

	w = env.do(http.MethodPost, "/api/token/refresh", "", map[string]any{"refresh": refresh})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	renewed, _ := decode(t, w)["access"].(string)
	require.NotEmpty(t, renewed)
	_, err = utils.ParseJWT(renewed, utils.AccessToken, env.tokens.Secret)
	assert.NoError(t, err)

	w = env.do(http.MethodPost, "/api/token/refresh", "", map[string]any{"refresh": access})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTokenRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.hunter("jinwoo", domain.RankC, false)

	w := env.do(http.MethodPost, "/api/token", "", map[string]any{"username": "jinwoo", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No active account found with the given credentials", decode(t, w)["error"])

	w = env.do(http.MethodPost, "/api/token", "", map[string]any{"username": "nobody", "password": testPassword})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	f := fields(t, env.do(http.MethodPost, "/api/token", "", map[string]any{"username": "jinwoo"}))
	assert.Equal(t, []any{msgRequired}, f["password"])
}

func TestVerifyPassword(t *testing.T) {
	env := newTestEnv(t)
	hunter := env.hunter("jinwoo", domain.RankC, false)
	tok := env.token(hunter)

	w := env.do(http.MethodPost, "/api/verify-password", tok, map[string]any{"password": testPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["valid"])

	w = env.do(http.MethodPost, "/api/verify-password", tok, map[string]any{"password": "nope"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, false, decode(t, w)["valid"])

	f := fields(t, env.do(http.MethodPost, "/api/verify-password", tok, map[string]any{}))
	assert.Equal(t, []any{msgRequired}, f["password"])

	w = env.do(http.MethodPost, "/api/verify-password", "", map[string]any{"password": testPassword})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}
