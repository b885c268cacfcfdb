package handler_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Smarty6452/hbros-platform/backend/internal/config"
	"github.com/Smarty6452/hbros-platform/backend/internal/domain"
	"github.com/Smarty6452/hbros-platform/backend/internal/handler"
	"github.com/Smarty6452/hbros-platform/backend/internal/notify"
	"github.com/Smarty6452/hbros-platform/backend/internal/service"
	"github.com/Smarty6452/hbros-platform/backend/internal/testhelper"
)

type testEnv struct {
	store   *testhelper.MemStore
	auth    *service.Auth
	hub     *notify.Hub
	handler *handler.Handler
	health  map[string]error
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Expiration = 3600
	cfg.Notification.ChannelPrefix = notify.DefaultChannelPrefix
	cfg.Notification.SessionBuffer = 8
	cfg.Notification.HeartbeatInterval = 1
	cfg.Pagination.DefaultPageSize = 10
	cfg.Pagination.MaxPageSize = 100
	return cfg
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := testConfig()

	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hub := notify.NewHub(client, cfg.Notification.ChannelPrefix, cfg.Notification.SessionBuffer)
	require.NoError(t, hub.Start(context.Background()))
	t.Cleanup(func() { _ = hub.Close() })

	store := testhelper.NewMemStore()
	env := &testEnv{
		store:  store,
		auth:   service.NewAuth(store, &testhelper.RecordingMail{}, cfg.JWT.Secret, time.Hour, nil),
		hub:    hub,
		health: map[string]error{"database": nil},
	}

	h, err := handler.NewHandler(cfg, handler.Services{
		Auth:      env.auth,
		Jobs:      service.NewJobs(store, store, cfg.Pagination.MaxPageSize, nil),
		Interests: service.NewInterests(store, store, notify.NewPublisher(client, cfg.Notification.ChannelPrefix), time.Second, nil),
		Hub:       hub,
		Health: map[string]handler.HealthCheck{
			"database": func(context.Context) error { return env.health["database"] },
		},
	})
	require.NoError(t, err)
	h.RegisterRoutes()
	env.handler = h

	return env
}

func (e *testEnv) token(t *testing.T, caller domain.Caller) string {
	t.Helper()
	token, err := e.auth.IssueToken(&domain.User{ID: caller.ID, Name: caller.Name, Role: caller.Role})
	require.NoError(t, err)
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.Mux.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func TestJobsEndpoints(t *testing.T) {
	env := newTestEnv(t)
	poster := env.store.AddUser("Paula", domain.RolePoster)
	stranger := env.store.AddUser("Oscar", domain.RolePoster)
	viewer := env.store.AddUser("Vera", domain.RoleViewer)
	now := time.Now().UTC()
	expired := env.store.AddJob(poster.ID, "Clean gutters", now.AddDate(0, -3, 0))

	var jobID int64
	t.Run("poster creates a job", func(t *testing.T) {
		code, resp := env.do(t, http.MethodPost, "/jobs", env.token(t, poster), map[string]string{
			"title": "Fix leaky faucet",
			"body":  "Need urgent plumbing repair in kitchen",
		})
		require.Equal(t, http.StatusCreated, code)
		assert.True(t, resp.Success)

		job := domain.Job{}
		require.NoError(t, json.Unmarshal(resp.Data, &job))
		assert.Equal(t, poster.ID, job.PosterID)
		jobID = job.ID
	})

	t.Run("viewer cannot create a job", func(t *testing.T) {
		code, resp := env.do(t, http.MethodPost, "/jobs", env.token(t, viewer), map[string]string{
			"title": "Fix leaky faucet",
			"body":  "Need urgent plumbing repair in kitchen",
		})
		assert.Equal(t, http.StatusForbidden, code)
		assert.False(t, resp.Success)
	})

	t.Run("anonymous cannot create a job", func(t *testing.T) {
		code, _ := env.do(t, http.MethodPost, "/jobs", "", map[string]string{"title": "Fix leaky faucet"})
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("invalid token", func(t *testing.T) {
		code, _ := env.do(t, http.MethodGet, "/jobs/my", "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("validation message", func(t *testing.T) {
		code, resp := env.do(t, http.MethodPost, "/jobs", env.token(t, poster), map[string]string{
			"title": "Fix",
			"body":  "Need urgent plumbing repair in kitchen",
		})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, resp.Message, "Title")
	})

	t.Run("malformed body", func(t *testing.T) {
		code, _ := env.do(t, http.MethodPost, "/jobs", env.token(t, poster), "{not json")
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("public listing hides expired jobs", func(t *testing.T) {
		code, resp := env.do(t, http.MethodGet, "/jobs?page=1&size=10", "", nil)
		require.Equal(t, http.StatusOK, code)

		var jobs []domain.JobSummary
		require.NoError(t, json.Unmarshal(resp.Data, &jobs))
		require.Len(t, jobs, 1)
		assert.Equal(t, jobID, jobs[0].ID)
		assert.Equal(t, "Paula", jobs[0].PosterName)
	})

	t.Run("invalid pagination", func(t *testing.T) {
		for _, q := range []string{"page=0", "size=0", "size=1000", "page=abc", "page=1000000000000000000&size=10"} {
			code, _ := env.do(t, http.MethodGet, "/jobs?"+q, "", nil)
			assert.Equal(t, http.StatusBadRequest, code, q)
		}
	})

	t.Run("get job", func(t *testing.T) {
		code, _ := env.do(t, http.MethodGet, "/jobs/"+itoa(jobID), "", nil)
		assert.Equal(t, http.StatusOK, code)

		code, _ = env.do(t, http.MethodGet, "/jobs/"+itoa(expired), "", nil)
		assert.Equal(t, http.StatusNotFound, code)

		code, _ = env.do(t, http.MethodGet, "/jobs/not-a-number", "", nil)
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("my jobs include expired ones", func(t *testing.T) {
		code, resp := env.do(t, http.MethodGet, "/jobs/my", env.token(t, poster), nil)
		require.Equal(t, http.StatusOK, code)

		var jobs []domain.JobSummary
		require.NoError(t, json.Unmarshal(resp.Data, &jobs))
		assert.Len(t, jobs, 2)

		code, _ = env.do(t, http.MethodGet, "/jobs/my", env.token(t, viewer), nil)
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("update", func(t *testing.T) {
		body := map[string]string{"title": "Fix leaky faucet now", "body": "Kitchen sink is dripping all day"}

		code, _ := env.do(t, http.MethodPut, "/jobs/"+itoa(jobID), env.token(t, stranger), body)
		assert.Equal(t, http.StatusForbidden, code)

		code, _ = env.do(t, http.MethodPut, "/jobs/"+itoa(expired), env.token(t, poster), body)
		assert.Equal(t, http.StatusConflict, code)

		code, resp := env.do(t, http.MethodPut, "/jobs/"+itoa(jobID), env.token(t, poster), body)
		require.Equal(t, http.StatusOK, code)
		job := domain.Job{}
		require.NoError(t, json.Unmarshal(resp.Data, &job))
		assert.Equal(t, "Fix leaky faucet now", job.Title)
	})

	t.Run("interest", func(t *testing.T) {
		code, _ := env.do(t, http.MethodPost, "/jobs/"+itoa(jobID)+"/interest", env.token(t, viewer), nil)
		assert.Equal(t, http.StatusOK, code)

		code, resp := env.do(t, http.MethodPost, "/jobs/"+itoa(jobID)+"/interest", env.token(t, viewer), nil)
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, domain.ErrAlreadyInterested.Error(), resp.Message)

		code, _ = env.do(t, http.MethodPost, "/jobs/"+itoa(jobID)+"/interest", env.token(t, poster), nil)
		assert.Equal(t, http.StatusForbidden, code)

		code, _ = env.do(t, http.MethodPost, "/jobs/"+itoa(expired)+"/interest", env.token(t, viewer), nil)
		assert.Equal(t, http.StatusNotFound, code)

		code, resp = env.do(t, http.MethodGet, "/jobs/my-interested-users", env.token(t, poster), nil)
		require.Equal(t, http.StatusOK, code)
		var users []domain.InterestedUser
		require.NoError(t, json.Unmarshal(resp.Data, &users))
		require.Len(t, users, 1)
		assert.Equal(t, "Vera", users[0].UserName)
	})

	t.Run("delete", func(t *testing.T) {
		code, _ := env.do(t, http.MethodDelete, "/jobs/"+itoa(jobID), env.token(t, stranger), nil)
		assert.Equal(t, http.StatusForbidden, code)

		code, _ = env.do(t, http.MethodDelete, "/jobs/"+itoa(jobID), env.token(t, poster), nil)
		assert.Equal(t, http.StatusOK, code)
		assert.Zero(t, env.store.InterestCount(jobID))

		code, _ = env.do(t, http.MethodDelete, "/jobs/"+itoa(jobID), env.token(t, poster), nil)
		assert.Equal(t, http.StatusNotFound, code)
	})
}

func TestAuthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	code, _ := env.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Ulrich", "email": "ulrich@example.com", "password": "secret1", "role": "Viewer",
	})
	require.Equal(t, http.StatusCreated, code)

	code, _ = env.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Ulrich", "email": "ulrich@example.com", "password": "secret1", "role": "Viewer",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = env.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "secret1", "role": "Admin",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "ulrich@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, code)
	result := service.LoginResult{}
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, "Ulrich", result.Name)
	assert.Equal(t, domain.RoleViewer, result.Role)
	assert.NotEmpty(t, result.Token)

	code, _ = env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "ulrich@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	code, resp := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)

	env.health["database"] = errors.New("connection refused")
	code, resp = env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, resp.Success)
}

func TestRequestIDIsEchoed(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.Header.Set(handler.RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	env.handler.Mux.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(handler.RequestIDHeader))

	w = httptest.NewRecorder()
	env.handler.Mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/jobs", nil))
	assert.NotEmpty(t, w.Header().Get(handler.RequestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/jobs", "", nil)

	w := httptest.NewRecorder()
	env.handler.Mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "handybros_http_requests_total")
}

func TestStreamNotifications(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.handler.Mux)
	t.Cleanup(srv.Close)

	poster := env.store.AddUser("Paula", domain.RolePoster)
	viewer := env.store.AddUser("Vera", domain.RoleViewer)
	jobID := env.store.AddJob(poster.ID, "Fix leaky faucet", time.Now().UTC().Add(-time.Hour))

	t.Run("requires a token", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/notifications/stream")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/notifications/stream?access_token="+env.token(t, poster), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string, 64)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	next := func(match func(string) bool) string {
		t.Helper()
		deadline := time.After(3 * time.Second)
		for {
			select {
			case line, ok := <-lines:
				require.True(t, ok, "stream closed")
				if match(line) {
					return line
				}
			case <-deadline:
				t.Fatal("timeout waiting for stream line")
			}
		}
	}

	next(func(l string) bool { return l == ": connected" })
	require.Equal(t, 1, env.hub.SessionCount(poster.ID))

	code, _ := env.do(t, http.MethodPost, "/jobs/"+itoa(jobID)+"/interest", env.token(t, viewer), nil)
	require.Equal(t, http.StatusOK, code)

	next(func(l string) bool { return l == "event: ReceiveNotification" })
	data := next(func(l string) bool { return strings.HasPrefix(l, "data: ") })

	n := domain.Notification{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(data, "data: ")), &n))
	assert.Equal(t, domain.NotificationTypeNewInterest, n.Type)
	assert.Equal(t, jobID, n.JobID)
	assert.Equal(t, "Fix leaky faucet", n.JobTitle)
	assert.Equal(t, "Vera", n.UserName)
	assert.Equal(t, "Vera showed interest in your job!", n.Message)

	next(func(l string) bool { return l == ": heartbeat" })

	cancel()
	assert.Eventually(t, func() bool { return env.hub.SessionCount(poster.ID) == 0 }, 3*time.Second, 10*time.Millisecond)
}
