package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hunter_api/internal/cache"
	"hunter_api/internal/domain"
	"hunter_api/internal/tasks"
	"hunter_api/internal/testutil"
	"hunter_api/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "hunter-pass"

type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	mr     *miniredis.Miniredis
	queue  *tasks.RedisQueue
	router *gin.Engine
	tokens TokenSettings
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithJobs(t, nil)
}

// newTestEnvWithJobs replaces the Redis queue with jobs when it is non-nil
func newTestEnvWithJobs(t *testing.T, jobs tasks.Enqueuer) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	conn := testutil.NewDB(t)
	rdb, mr := testutil.NewRedis(t)
	queue := tasks.NewRedisQueue(rdb, tasks.DefaultQueueKey)
	if jobs == nil {
		jobs = queue
	}
	env := &testEnv{
		t:      t,
		db:     conn,
		mr:     mr,
		queue:  queue,
		router: gin.New(),
		tokens: TokenSettings{Secret: "test-secret", AccessTTL: time.Hour, RefreshTTL: 24 * time.Hour},
	}
	RegisterRoutes(env.router, Deps{
		DB:     conn,
		Lists:  cache.NewListCache(cache.NewRedisStore(rdb), 15*time.Minute),
		Jobs:   jobs,
		Tokens: env.tokens,
	})
	return env
}

// hunter inserts a hunter directly, bypassing the API
func (e *testEnv) hunter(username string, rank domain.Rank, staff bool, skills ...domain.Skill) domain.Hunter {
	e.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(e.t, err)
	h := domain.Hunter{
		Username:  username,
		FirstName: username,
		LastName:  "Test",
		Email:     username + "@example.com",
		Password:  string(hash),
		Rank:      rank,
		IsStaff:   staff,
		Skills:    skills,
	}
	require.NoError(e.t, e.db.Omit("Guild", "Participations", "Skills.*").Create(&h).Error)
	return h
}

func (e *testEnv) skill(name string, element domain.Element, power int) domain.Skill {
	e.t.Helper()
	s := domain.Skill{Name: name, Element: element, Power: power}
	require.NoError(e.t, e.db.Create(&s).Error)
	return s
}

func (e *testEnv) dungeon(name string, open bool) domain.Dungeon {
	e.t.Helper()
	d := domain.Dungeon{Name: name, Rank: domain.RankC, Location: "Seoul", IsOpen: true}
	require.NoError(e.t, e.db.Create(&d).Error)
	if !open {
		require.NoError(e.t, e.db.Model(&d).Update("is_open", false).Error)
		d.IsOpen = false
	}
	return d
}

func (e *testEnv) token(h domain.Hunter) string {
	e.t.Helper()
	tok, err := utils.GenerateJWT(utils.Identity{UserID: h.ID, Username: h.Username, IsAdmin: h.IsStaff},
		utils.AccessToken, e.tokens.Secret, e.tokens.AccessTTL)
	require.NoError(e.t, err)
	return tok
}

// do sends a request; token may be empty and body may be nil
func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) count(model any) int64 {
	e.t.Helper()
	var n int64
	require.NoError(e.t, e.db.Model(model).Count(&n).Error)
	return n
}

func (e *testEnv) nextJob() *tasks.Job {
	e.t.Helper()
	job, err := e.queue.Dequeue(context.Background(), time.Second)
	require.NoError(e.t, err)
	return job
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// fields returns the field messages of a validation failure
func fields(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	body := decode(t, w)
	require.Equal(t, "Validation failed", body["error"])
	f, ok := body["fields"].(map[string]any)
	require.True(t, ok, w.Body.String())
	return f
}

type failingEnqueuer struct{}

func (failingEnqueuer) Enqueue(context.Context, string, ...uint) (string, error) {
	return "", errors.New("broker down")
}
