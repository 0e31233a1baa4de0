package api

import (
	"fmt"
	"net/http"
	"testing"

	"hunter_api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cachedFlag fetches a list and reports whether it was served from the cache
func (e *testEnv) cachedFlag(path, token string) bool {
	e.t.Helper()
	w := e.do(http.MethodGet, path, token, nil)
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	return decode(e.t, w)["cached"].(bool)
}

func TestListIsServedFromCache(t *testing.T) {
	env := newTestEnv(t)
	env.hunter("jinwoo", domain.RankC, false)

	assert.False(t, env.cachedFlag("/api/hunters", ""))
	assert.True(t, env.cachedFlag("/api/hunters", ""))

	// Different query string, different page
	assert.False(t, env.cachedFlag("/api/hunters?page=1", ""))
	assert.True(t, env.cachedFlag("/api/hunters?page=1", ""))
}

func TestListCacheIsPerIdentity(t *testing.T) {
	env := newTestEnv(t)
	admin := env.hunter("admin", domain.RankS, true)
	jinwoo := env.hunter("jinwoo", domain.RankC, false)
	env.seedRaid("Hunt", jinwoo)

	assert.False(t, env.cachedFlag("/api/raid-participations", env.token(admin)))
	// A cached staff page must not leak to a regular hunter
	w := env.do(http.MethodGet, "/api/raid-participations", env.token(jinwoo), nil)
	body := decode(t, w)
	assert.Equal(t, false, body["cached"])
	assert.Equal(t, float64(1), body["total"])
}

func TestWritesInvalidateDependentLists(t *testing.T) {
	env := newTestEnv(t)
	admin := env.hunter("admin", domain.RankS, true)
	jinwoo := env.hunter("jinwoo", domain.RankC, false)
	fire := env.skill("Fireball", domain.ElementFire, 50)
	raid := env.seedRaid("Hunt", jinwoo)
	require.Len(t, raid.Participations, 1)
	tok := env.token(admin)

	lists := []string{"/api/hunters", "/api/guilds", "/api/raids", "/api/raid-participations", "/api/skills", "/api/dungeons"}
	warm := func() {
		for _, path := range lists {
			env.cachedFlag(path, tok)
			require.True(t, env.cachedFlag(path, tok), path)
		}
	}

	cases := []struct {
		name    string
		write   func() int
		dropped []string
		kept    []string
	}{
		{
			name: "hunter patch",
			write: func() int {
				return env.do(http.MethodPatch, fmt.Sprintf("/api/hunters/%d", jinwoo.ID), tok, map[string]any{"rank": "B"}).Code
			},
			dropped: []string{"/api/hunters", "/api/guilds", "/api/raids", "/api/raid-participations", "/api/skills"},
			kept:    []string{"/api/dungeons"},
		},
		{
			name: "skill patch",
			write: func() int {
				return env.do(http.MethodPatch, fmt.Sprintf("/api/skills/%d", fire.ID), tok, map[string]any{"power": 60}).Code
			},
			dropped: []string{"/api/skills", "/api/hunters"},
			kept:    []string{"/api/guilds", "/api/raids", "/api/raid-participations", "/api/dungeons"},
		},
		{
			name: "dungeon create",
			write: func() int {
				return env.do(http.MethodPost, "/api/dungeons", tok, map[string]any{"name": "Orc Fortress", "rank": "C", "location": "Busan"}).Code
			},
			dropped: []string{"/api/dungeons", "/api/raids"},
			kept:    []string{"/api/hunters", "/api/guilds", "/api/raid-participations", "/api/skills"},
		},
		{
			name: "guild create",
			write: func() int {
				return env.do(http.MethodPost, "/api/guilds", tok, map[string]any{"name": "Ahjin", "leader": jinwoo.ID}).Code
			},
			dropped: []string{"/api/guilds", "/api/hunters"},
			kept:    []string{"/api/raids", "/api/raid-participations", "/api/skills", "/api/dungeons"},
		},
		{
			name: "raid patch",
			write: func() int {
				return env.do(http.MethodPatch, fmt.Sprintf("/api/raids/%d", raid.ID), tok, map[string]any{"success": true}).Code
			},
			dropped: []string{"/api/raids", "/api/raid-participations", "/api/hunters"},
			kept:    []string{"/api/guilds", "/api/skills", "/api/dungeons"},
		},
		{
			name: "participation patch",
			write: func() int {
				path := fmt.Sprintf("/api/raid-participations/%d", raid.Participations[0].ID)
				return env.do(http.MethodPatch, path, tok, map[string]any{"damage_dealt": 10}).Code
			},
			dropped: []string{"/api/raid-participations", "/api/raids", "/api/hunters"},
			kept:    []string{"/api/guilds", "/api/skills", "/api/dungeons"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			warm()
			code := tc.write()
			require.Less(t, code, 300)
			for _, path := range tc.dropped {
				assert.False(t, env.cachedFlag(path, tok), path)
			}
			for _, path := range tc.kept {
				assert.True(t, env.cachedFlag(path, tok), path)
			}
		})
	}
}

func TestFailedWriteKeepsCache(t *testing.T) {
	env := newTestEnv(t)
	admin := env.hunter("admin", domain.RankS, true)
	tok := env.token(admin)

	env.cachedFlag("/api/skills", tok)
	fields(t, env.do(http.MethodPost, "/api/skills", tok, map[string]any{"name": "x"}))
	assert.True(t, env.cachedFlag("/api/skills", tok))
}
