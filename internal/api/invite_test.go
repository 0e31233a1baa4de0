package api

import (
	"net/http"
	"testing"

	"hunter_api/internal/domain"
	"hunter_api/internal/tasks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuildInvite(t *testing.T) {
	env := newTestEnv(t)
	leader := env.hunter("jinwoo", domain.RankC, false)
	outsider := env.hunter("david", domain.RankD, false)
	recruit := env.hunter("cj", domain.RankE, false)
	g := domain.Guild{Name: "Ahjin", LeaderID: &leader.ID}
	require.NoError(t, env.db.Omit("Leader", "Members").Create(&g).Error)

	t.Run("leader may invite", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/guild-invite", env.token(leader), map[string]any{"hunter_id": recruit.ID, "guild_id": g.ID})
		require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
		body := decode(t, w)
		assert.Equal(t, "Guild invite email is being sent.", body["message"])

		job := env.nextJob()
		require.NotNil(t, job)
		assert.Equal(t, body["task_id"], job.ID)
		assert.Equal(t, tasks.JobGuildInvite, job.Name)
		assert.Equal(t, []uint{recruit.ID, g.ID}, job.Args)
	})

	t.Run("other hunters may not", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/guild-invite", env.token(outsider), map[string]any{"hunter_id": recruit.ID, "guild_id": g.ID})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "You do not have permission to invite hunters to this guild.", decode(t, w)["error"])
	})

	t.Run("unknown ids", func(t *testing.T) {
		f := fields(t, env.do(http.MethodPost, "/api/guild-invite", env.token(leader), map[string]any{"hunter_id": 999, "guild_id": 998}))
		assert.Equal(t, []any{"Hunter with this ID does not exist."}, f["hunter_id"])
		assert.Equal(t, []any{"Guild with this ID does not exist."}, f["guild_id"])
	})

	t.Run("anonymous", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/guild-invite", "", map[string]any{"hunter_id": recruit.ID, "guild_id": g.ID})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGuildInviteQueueDown(t *testing.T) {
	env := newTestEnvWithJobs(t, failingEnqueuer{})
	leader := env.hunter("jinwoo", domain.RankC, false)
	recruit := env.hunter("cj", domain.RankE, false)
	g := domain.Guild{Name: "Ahjin", LeaderID: &leader.ID}
	require.NoError(t, env.db.Omit("Leader", "Members").Create(&g).Error)

	w := env.do(http.MethodPost, "/api/guild-invite", env.token(leader), map[string]any{"hunter_id": recruit.ID, "guild_id": g.ID})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRaidInvite(t *testing.T) {
	env := newTestEnv(t)
	admin := env.hunter("admin", domain.RankS, true)
	regular := env.hunter("jinwoo", domain.RankC, false)
	raid := env.seedRaid("Hunt")

	w := env.do(http.MethodPost, "/api/raid-invite", env.token(admin), map[string]any{"raid_id": raid.ID, "hunter_id": regular.ID})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Raid invite email is being sent.", body["message"])

	job := env.nextJob()
	require.NotNil(t, job)
	assert.Equal(t, tasks.JobRaidInvite, job.Name)
	assert.Equal(t, []uint{raid.ID, regular.ID}, job.Args)

	w = env.do(http.MethodPost, "/api/raid-invite", env.token(admin), map[string]any{"raid_id": 999, "hunter_id": regular.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Raid not found", decode(t, w)["error"])

	f := fields(t, env.do(http.MethodPost, "/api/raid-invite", env.token(admin), map[string]any{"raid_id": raid.ID, "hunter_id": 999}))
	assert.Equal(t, []any{"Hunter with this ID does not exist."}, f["hunter_id"])

	w = env.do(http.MethodPost, "/api/raid-invite", env.token(regular), map[string]any{"raid_id": raid.ID, "hunter_id": regular.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
