package api

import (
	"fmt"
	"net/http"
	"testing"

	"hunter_api/internal/domain"
	"hunter_api/internal/tasks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateHunterComputesPowerLevel(t *testing.T) {
	env := newTestEnv(t)
	admin := env.hunter("admin", domain.RankS, true)
	fire := env.skill("Fireball", domain.ElementFire, 50)
	ice := env.skill("Ice Blast", domain.ElementWater, 50)

	w := env.do(http.MethodPost, "/api/hunters", env.token(admin), map[string]any{
		"username":   "jinwoo",
		"password":   "arise",
		"first_name": "Jin",
		"last_name":  "Woo",
		"email":      "jinwoo@example.com",
		"rank":       "C",
		"skills":     []uint{fire.ID, ice.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, float64(150), body["power_level"])
	assert.Equal(t, "C-Rank", body["rank_display"])
	assert.Equal(t, "Jin Woo", body["full_name"])
	assert.Equal(t, float64(0), body["raid_count"])
	assert.Nil(t, body["guild"])
	assert.Len(t, body["skills"], 2)
	assert.NotContains(t, body, "password")

	var stored domain.Hunter
	require.NoError(t, env.db.Where("username = ?", "jinwoo").First(&stored).Error)
	assert.NotEqual(t, "arise", stored.Password)
}

func TestCreateHunterEnqueuesWelcome(t *testing.T) {
	env := newTestEnv(t)
	admin := env.hunter("admin", domain.RankS, true)

	w := env.do(http.MethodPost, "/api/hunters", env.token(admin), map[string]any{
		"username": "cha", "password": "pw", "first_name": "Cha", "last_name": "Hae-In", "rank": "S",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := uint(decode(t, w)["id"].(float64))

	job := env.nextJob()
	require.NotNil(t, job)
	assert.Equal(t, tasks.JobHunterWelcome, job.Name)
	assert.Equal(t, []uint{id}, job.Args)
	assert.NotEmpty(t, job.ID)
}

func TestCreateHunterSurvivesEnqueueFailure(t *testing.T) {
	env := newTestEnvWithJobs(t, failingEnqueuer{})
	admin := env.hunter("admin", domain.RankS, true)

	w := env.do(http.MethodPost, "/api/hunters", env.token(admin), map[string]any{
		"username": "cha", "password": "pw", "first_name": "Cha", "last_name": "Hae-In", "rank": "S",
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, int64(2), env.count(&domain.Hunter{}))
}

func TestCreateHunterValidation(t *testing.T) {
	env := newTestEnv(t)
	admin := env.hunter("admin", domain.RankS, true)
	tok := env.token(admin)

	t.Run("missing required fields", func(t *testing.T) {
		f := fields(t, env.do(http.MethodPost, "/api/hunters", tok, map[string]any{"first_name": " "}))
		assert.Contains(t, f, "username")
		assert.Contains(t, f, "password")
		assert.Contains(t, f, "last_name")
		assert.Contains(t, f, "rank")
		assert.Equal(t, []any{msgBlank}, f["first_name"])
	})

	t.Run("bad rank", func(t *testing.T) {
		f := fields(t, env.do(http.MethodPost, "/api/hunters", tok, map[string]any{
			"username": "x", "password": "pw", "first_name": "X", "last_name": "Y", "rank": "Z",
		}))
		assert.Equal(t, []any{`"Z" is not a valid choice.`}, f["rank"])
	})

	t.Run("duplicate username and unknown skill", func(t *testing.T) {
		f := fields(t, env.do(http.MethodPost, "/api/hunters", tok, map[string]any{
			"username": "admin", "password": "pw", "first_name": "X", "last_name": "Y", "rank": "E",
			"skills":   []uint{99},
		}))
		assert.Contains(t, f, "username")
		assert.Equal(t, []any{invalidPK(99)}, f["skills"])
	})

	assert.Equal(t, int64(1), env.count(&domain.Hunter{}))
	assert.False(t, env.mr.Exists(tasks.DefaultQueueKey))
}

func TestHunterWritesRequireStaff(t *testing.T) {
	env := newTestEnv(t)
	regular := env.hunter("regular", domain.RankE, false)

	w := env.do(http.MethodPost, "/api/hunters", "", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/api/hunters", env.token(regular), map[string]any{})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodDelete, fmt.Sprintf("/api/hunters/%d", regular.ID), env.token(regular), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodGet, "/api/hunters", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/api/hunters", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetHunterNotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/hunters/42", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Hunter not found", decode(t, w)["error"])

	w = env.do(http.MethodGet, "/api/hunters/abc", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListHuntersStrongestFirst(t *testing.T) {
	env := newTestEnv(t)
	big := env.skill("Holy Light", domain.ElementLight, 80)
	env.hunter("weak", domain.RankE, false)
	env.hunter("mid", domain.RankD, false, big)
	env.hunter("strong", domain.RankS, false)

	w := env.do(http.MethodGet, "/api/hunters", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, float64(3), body["total"])
	assert.Equal(t, false, body["cached"])

	var names []string
	for _, h := range body["hunters"].([]any) {
		names = append(names, h.(map[string]any)["username"].(string))
	}
	assert.Equal(t, []string{"strong", "mid", "weak"}, names)
}

func TestListHuntersFiltersAndPaging(t *testing.T) {
	env := newTestEnv(t)
	env.hunter("alpha", domain.RankE, false)
	env.hunter("beta", domain.RankE, false)
	env.hunter("gamma", domain.RankA, false)

	body := decode(t, env.do(http.MethodGet, "/api/hunters?rank=E&ordering=-username", "", nil))
	hunters := body["hunters"].([]any)
	require.Len(t, hunters, 2)
	assert.Equal(t, "beta", hunters[0].(map[string]any)["username"])

	body = decode(t, env.do(http.MethodGet, "/api/hunters?username__icontains=AMM", "", nil))
	assert.Equal(t, float64(1), body["total"])

	body = decode(t, env.do(http.MethodGet, "/api/hunters?search=alp", "", nil))
	assert.Equal(t, float64(1), body["total"])

	body = decode(t, env.do(http.MethodGet, "/api/hunters?page=2&page_size=2&ordering=username", "", nil))
	assert.Equal(t, float64(2), body["total_pages"])
	hunters = body["hunters"].([]any)
	require.Len(t, hunters, 1)
	assert.Equal(t, "gamma", hunters[0].(map[string]any)["username"])
}

func TestUpdateHunter(t *testing.T) {
	env := newTestEnv(t)
	admin := env.hunter("admin", domain.RankS, true)
	fire := env.skill("Fireball", domain.ElementFire, 50)
	target := env.hunter("target", domain.RankE, false, fire)
	path := fmt.Sprintf("/api/hunters/%d", target.ID)

	t.Run("patch changes only given fields", func(t *testing.T) {
		w := env.do(http.MethodPatch, path, env.token(admin), map[string]any{"rank": "B"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decode(t, w)
		assert.Equal(t, "B", body["rank"])
		assert.Equal(t, float64(130), body["power_level"])
		assert.Equal(t, "target Test", body["full_name"])
	})

	t.Run("empty skills clears them", func(t *testing.T) {
		w := env.do(http.MethodPatch, path, env.token(admin), map[string]any{"skills": []uint{}})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, float64(80), decode(t, w)["power_level"])
	})

	t.Run("put requires the full representation", func(t *testing.T) {
		f := fields(t, env.do(http.MethodPut, path, env.token(admin), map[string]any{"rank": "A"}))
		assert.Contains(t, f, "username")
		assert.NotContains(t, f, "password")
	})

	t.Run("username must stay unique", func(t *testing.T) {
		f := fields(t, env.do(http.MethodPatch, path, env.token(admin), map[string]any{"username": "admin"}))
		assert.Contains(t, f, "username")
	})

	t.Run("null guild leaves the guild", func(t *testing.T) {
		g := domain.Guild{Name: "Ahjin"}
		require.NoError(t, env.db.Omit("Leader", "Members").Create(&g).Error)
		w := env.do(http.MethodPatch, path, env.token(admin), map[string]any{"guild": g.ID})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, float64(g.ID), decode(t, w)["guild"])

		w = env.do(http.MethodPatch, path, env.token(admin), map[string]any{"guild": nil})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Nil(t, decode(t, w)["guild"])
	})
}

func TestDeleteHunterAppliesRelationPolicy(t *testing.T) {
	env := newTestEnv(t)
	admin := env.hunter("admin", domain.RankS, true)
	fire := env.skill("Fireball", domain.ElementFire, 50)
	leader := env.hunter("leader", domain.RankA, false, fire)
	dungeon := env.dungeon("Goblin Cave", true)

	g := domain.Guild{Name: "Ahjin", LeaderID: &leader.ID}
	require.NoError(t, env.db.Omit("Leader", "Members").Create(&g).Error)
	raid := domain.Raid{Name: "Hunt", DungeonID: dungeon.ID, Participations: []domain.RaidParticipation{
		{HunterID: leader.ID, Role: domain.RoleTank},
	}}
	require.NoError(t, env.db.Omit("Dungeon").Create(&raid).Error)

	w := env.do(http.MethodDelete, fmt.Sprintf("/api/hunters/%d", leader.ID), env.token(admin), nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	require.NoError(t, env.db.First(&g, g.ID).Error)
	assert.Nil(t, g.LeaderID)
	assert.Zero(t, env.count(&domain.RaidParticipation{}))
	assert.Equal(t, int64(1), env.count(&domain.Skill{}))
	assert.Equal(t, int64(1), env.count(&domain.Raid{}))

	var links int64
	require.NoError(t, env.db.Table("hunter_skills").Count(&links).Error)
	assert.Zero(t, links)
}
