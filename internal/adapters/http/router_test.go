package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "notekeeper/internal/adapters/http"
	"notekeeper/internal/adapters/http/dto"
	adapters "notekeeper/internal/adapters/services"
	"notekeeper/internal/app"
	"notekeeper/internal/app/apptest"
	"notekeeper/internal/config"
	"notekeeper/internal/domain/services"
	svc "notekeeper/internal/ports/services"
)

const testPassword = "correct horse battery"

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type stubLimiter struct {
	decision *svc.RateDecision
	err      error
}

func (l stubLimiter) Allow(context.Context, string) (*svc.RateDecision, error) {
	return l.decision, l.err
}

type observation struct {
	method string
	route  string
	status int
}

type recordingObserver struct {
	mu           sync.Mutex
	observations []observation
	limited      int
}

func (o *recordingObserver) ObserveHTTP(method, route string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observations = append(o.observations, observation{method, route, status})
}

func (o *recordingObserver) RateLimited() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.limited++
}

type testServer struct {
	app   *fiber.App
	store *apptest.MemStore
}

func newTestServer(t *testing.T, customize func(*httpadapter.Dependencies)) *testServer {
	t.Helper()

	tokens, err := adapters.NewJWT(services.JWTConfig{
		SecretKey: []byte("http-secret"),
		TokenTTL:  time.Hour,
		Issuer:    "notekeeper",
		Audience:  "notekeeper-clients",
	})
	require.NoError(t, err)

	store := apptest.NewMemStore()
	notes := app.NewNoteUseCase(store.Notes(), store.Shares(), tokens)
	deps := httpadapter.Dependencies{
		Auth:   app.NewAuthUseCase(store.Users(), adapters.NewBcrypt(services.MinBCryptCost), tokens),
		Users:  app.NewUserUseCase(store.Users()),
		Notes:  notes,
		Search: app.NewSearchUseCase(notes),
		Health: stubPinger{},
	}
	if customize != nil {
		customize(&deps)
	}

	fiberApp := httpadapter.NewApp(&config.HTTPConfig{
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		BodyLimit:    2 << 20,
	})
	httpadapter.SetupRouter(fiberApp, deps)
	return &testServer{app: fiberApp, store: store}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func (s *testServer) register(t *testing.T, username string) (string, int64) {
	t.Helper()

	status, _ := s.do(t, http.MethodPost, "/api/auth/signup", "", dto.SignupRequest{Username: username, Password: testPassword})
	require.Equal(t, http.StatusOK, status)

	status, raw := s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: username, Password: testPassword})
	require.Equal(t, http.StatusOK, status)

	var login dto.LoginResponse
	require.NoError(t, json.Unmarshal(raw, &login))
	require.NotEmpty(t, login.Token)
	return login.Token, login.UserID
}

func (s *testServer) createNote(t *testing.T, token, title, content string) dto.NoteResponse {
	t.Helper()

	status, raw := s.do(t, http.MethodPost, "/api/notes", token, dto.NoteRequest{Title: title, Content: content})
	require.Equal(t, http.StatusCreated, status, string(raw))

	var note dto.NoteResponse
	require.NoError(t, json.Unmarshal(raw, &note))
	return note
}

func decodeNotes(t *testing.T, raw []byte) []dto.NoteResponse {
	t.Helper()
	var notes []dto.NoteResponse
	require.NoError(t, json.Unmarshal(raw, &notes))
	return notes
}

func errorMessage(t *testing.T, raw []byte) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body["error"]
}

func TestScenarioOverHTTP(t *testing.T) {
	srv := newTestServer(t, nil)

	aliceToken, aliceID := srv.register(t, "alice")
	bobToken, bobID := srv.register(t, "bob")
	carolToken, _ := srv.register(t, "carol")

	note := srv.createNote(t, aliceToken, "Groceries", "milk")
	assert.Equal(t, aliceID, note.UserID)
	notePath := fmt.Sprintf("/api/notes/%d", note.ID)

	t.Run("bob does not see note before share", func(t *testing.T) {
		status, raw := srv.do(t, http.MethodGet, "/api/notes/search?q=milk", bobToken, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Empty(t, decodeNotes(t, raw))
		assert.JSONEq(t, "[]", string(raw))
	})

	t.Run("alice shares with bob", func(t *testing.T) {
		status, raw := srv.do(t, http.MethodPost, notePath+"/share", aliceToken, dto.ShareRequest{RecipientID: bobID})
		require.Equal(t, http.StatusOK, status, string(raw))

		var share dto.ShareResponse
		require.NoError(t, json.Unmarshal(raw, &share))
		assert.Equal(t, note.ID, share.Share.NoteID)
		assert.Equal(t, bobID, share.Share.RecipientID)
		assert.Equal(t, aliceID, share.Share.SharerID)
	})

	t.Run("bob finds shared note", func(t *testing.T) {
		status, raw := srv.do(t, http.MethodGet, "/api/notes/search?q=milk", bobToken, nil)
		require.Equal(t, http.StatusOK, status)
		notes := decodeNotes(t, raw)
		require.Len(t, notes, 1)
		assert.Equal(t, note.ID, notes[0].ID)
	})

	t.Run("share grants no direct access", func(t *testing.T) {
		status, raw := srv.do(t, http.MethodGet, notePath, bobToken, nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "note not found", errorMessage(t, raw))

		status, _ = srv.do(t, http.MethodPut, notePath, bobToken, dto.NoteRequest{Title: "x", Content: "y"})
		assert.Equal(t, http.StatusNotFound, status)

		status, _ = srv.do(t, http.MethodDelete, notePath, bobToken, nil)
		assert.Equal(t, http.StatusNotFound, status)

		status, raw = srv.do(t, http.MethodGet, "/api/notes", bobToken, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Empty(t, decodeNotes(t, raw))
	})

	t.Run("carol sees nothing", func(t *testing.T) {
		status, raw := srv.do(t, http.MethodGet, "/api/notes/search?q=milk", carolToken, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Empty(t, decodeNotes(t, raw))
	})

	t.Run("alice updates note", func(t *testing.T) {
		status, raw := srv.do(t, http.MethodPut, notePath, aliceToken, dto.NoteRequest{Title: "Groceries", Content: "oat milk"})
		require.Equal(t, http.StatusOK, status)

		var updated dto.NoteResponse
		require.NoError(t, json.Unmarshal(raw, &updated))
		assert.Equal(t, "oat milk", updated.Content)
		assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
	})

	t.Run("delete revokes shared visibility", func(t *testing.T) {
		status, raw := srv.do(t, http.MethodDelete, notePath, aliceToken, nil)
		require.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"message":"note deleted successfully"}`, string(raw))

		status, raw = srv.do(t, http.MethodGet, "/api/notes/search?q=milk", bobToken, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Empty(t, decodeNotes(t, raw))
		assert.Zero(t, srv.store.GrantCount())

		status, _ = srv.do(t, http.MethodGet, notePath, aliceToken, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestAuthEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	t.Run("signup hides password hash", func(t *testing.T) {
		status, raw := srv.do(t, http.MethodPost, "/api/auth/signup", "", dto.SignupRequest{Username: "dave", Password: testPassword})
		require.Equal(t, http.StatusOK, status)
		assert.NotContains(t, string(raw), "password")

		var resp dto.SignupResponse
		require.NoError(t, json.Unmarshal(raw, &resp))
		assert.Equal(t, "dave", resp.User.Username)
		assert.Positive(t, resp.User.ID)
	})

	tests := []struct {
		name       string
		path       string
		body       any
		wantStatus int
		wantError  string
	}{
		{
			name:       "повторная регистрация",
			path:       "/api/auth/signup",
			body:       dto.SignupRequest{Username: "dave", Password: "other"},
			wantStatus: http.StatusBadRequest,
			wantError:  "user already exists",
		},
		{
			name:       "пустой пароль",
			path:       "/api/auth/signup",
			body:       dto.SignupRequest{Username: "erin", Password: ""},
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid password",
		},
		{
			name:       "пустое имя",
			path:       "/api/auth/signup",
			body:       dto.SignupRequest{Username: "", Password: testPassword},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "имя с NUL",
			path:       "/api/auth/signup",
			body:       dto.SignupRequest{Username: "a\x00b", Password: testPassword},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "невалидный JSON",
			path:       "/api/auth/signup",
			body:       "{not json",
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid request body",
		},
		{
			name:       "неверный пароль",
			path:       "/api/auth/login",
			body:       dto.LoginRequest{Username: "dave", Password: "wrong"},
			wantStatus: http.StatusUnauthorized,
			wantError:  "invalid username or password",
		},
		{
			name:       "неизвестный пользователь",
			path:       "/api/auth/login",
			body:       dto.LoginRequest{Username: "nobody", Password: testPassword},
			wantStatus: http.StatusUnauthorized,
			wantError:  "invalid username or password",
		},
		{
			name:       "пустое тело входа",
			path:       "/api/auth/login",
			body:       "",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := srv.do(t, http.MethodPost, tt.path, "", tt.body)
			assert.Equal(t, tt.wantStatus, status, string(raw))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, errorMessage(t, raw))
			}
		})
	}
}

func TestNotesRequireBearerToken(t *testing.T) {
	srv := newTestServer(t, nil)

	send := func(header string) (int, []byte) {
		req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := srv.app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, raw
	}

	for name, header := range map[string]string{
		"no header":     "",
		"basic scheme":  "Basic YWxpY2U6c2VjcmV0",
		"garbage token": "Bearer not-a-jwt",
		"empty bearer":  "Bearer ",
	} {
		t.Run(name, func(t *testing.T) {
			status, raw := send(header)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, "user not authenticated", errorMessage(t, raw))
		})
	}
}

func TestNoteRequestValidation(t *testing.T) {
	srv := newTestServer(t, nil)
	token, _ := srv.register(t, "alice")
	note := srv.createNote(t, token, "title", "body")
	notePath := fmt.Sprintf("/api/notes/%d", note.ID)

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
	}{
		{"non numeric id", http.MethodGet, "/api/notes/abc", nil, http.StatusBadRequest},
		{"zero id", http.MethodGet, "/api/notes/0", nil, http.StatusBadRequest},
		{"missing note", http.MethodGet, "/api/notes/9999", nil, http.StatusNotFound},
		{"empty search", http.MethodGet, "/api/notes/search?q=%20%20", nil, http.StatusBadRequest},
		{"missing search param", http.MethodGet, "/api/notes/search", nil, http.StatusBadRequest},
		{"invalid create body", http.MethodPost, "/api/notes", "[1,2]", http.StatusBadRequest},
		{"title too long", http.MethodPost, "/api/notes", dto.NoteRequest{Title: string(bytes.Repeat([]byte("a"), 256))}, http.StatusBadRequest},
		{"заголовок с NUL", http.MethodPost, "/api/notes", dto.NoteRequest{Title: "a\x00b"}, http.StatusBadRequest},
		{"содержимое с NUL при обновлении", http.MethodPut, notePath, dto.NoteRequest{Title: "title", Content: "x\x00y"}, http.StatusBadRequest},
		{"share without recipient", http.MethodPost, notePath + "/share", dto.ShareRequest{}, http.StatusBadRequest},
		{"share to unknown user", http.MethodPost, notePath + "/share", dto.ShareRequest{RecipientID: 4242}, http.StatusNotFound},
		{"share missing note", http.MethodPost, "/api/notes/9999/share", dto.ShareRequest{RecipientID: 1}, http.StatusNotFound},
		{"unknown route", http.MethodGet, "/api/unknown", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := srv.do(t, tt.method, tt.path, token, tt.body)
			assert.Equal(t, tt.wantStatus, status, string(raw))
			assert.NotEmpty(t, errorMessage(t, raw))
		})
	}
}

func TestListOrderAndSelfShare(t *testing.T) {
	srv := newTestServer(t, nil)
	token, userID := srv.register(t, "alice")

	first := srv.createNote(t, token, "first", "alpha")
	second := srv.createNote(t, token, "second", "alpha beta")

	status, _ := srv.do(t, http.MethodPost, fmt.Sprintf("/api/notes/%d/share", first.ID), token, dto.ShareRequest{RecipientID: userID})
	require.Equal(t, http.StatusOK, status)

	status, raw := srv.do(t, http.MethodGet, "/api/notes", token, nil)
	require.Equal(t, http.StatusOK, status)
	notes := decodeNotes(t, raw)
	require.Len(t, notes, 2)
	assert.Equal(t, []int64{first.ID, second.ID}, []int64{notes[0].ID, notes[1].ID})

	status, raw = srv.do(t, http.MethodGet, "/api/notes/search?q=alpha", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decodeNotes(t, raw), 2)
}

func TestUsersEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.register(t, "alice")
	srv.register(t, "bob")

	status, raw := srv.do(t, http.MethodGet, "/api/users", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, string(raw), "password")

	var users []dto.UserSummary
	require.NoError(t, json.Unmarshal(raw, &users))
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
}

func TestHealth(t *testing.T) {
	t.Run("database reachable", func(t *testing.T) {
		srv := newTestServer(t, nil)
		status, raw := srv.do(t, http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"status":"ok"}`, string(raw))
	})

	t.Run("database down", func(t *testing.T) {
		srv := newTestServer(t, func(d *httpadapter.Dependencies) {
			d.Health = stubPinger{err: errors.New("connection refused")}
		})
		status, _ := srv.do(t, http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusServiceUnavailable, status)
	})
}

func TestRateLimit(t *testing.T) {
	t.Run("rejected request", func(t *testing.T) {
		observer := &recordingObserver{}
		srv := newTestServer(t, func(d *httpadapter.Dependencies) {
			d.Limiter = stubLimiter{decision: &svc.RateDecision{
				Allowed: false,
				Limit:   10,
				ResetAt: time.Now().Add(30 * time.Second),
			}}
			d.Metrics = observer
		})

		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		resp, err := srv.app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, "10", resp.Header.Get("X-RateLimit-Limit"))
		assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, resp.Header.Get("Retry-After"))
		assert.Equal(t, 1, observer.limited)
	})

	t.Run("health is not limited", func(t *testing.T) {
		srv := newTestServer(t, func(d *httpadapter.Dependencies) {
			d.Limiter = stubLimiter{decision: &svc.RateDecision{Allowed: false, Limit: 1}}
		})
		status, _ := srv.do(t, http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("limiter failure lets request through", func(t *testing.T) {
		srv := newTestServer(t, func(d *httpadapter.Dependencies) {
			d.Limiter = stubLimiter{err: errors.New("redis down")}
		})
		status, _ := srv.do(t, http.MethodGet, "/api/users", "", nil)
		assert.Equal(t, http.StatusOK, status)
	})
}

func TestMetricsObserveRouteTemplate(t *testing.T) {
	observer := &recordingObserver{}
	srv := newTestServer(t, func(d *httpadapter.Dependencies) {
		d.Metrics = observer
	})
	token, _ := srv.register(t, "alice")

	status, _ := srv.do(t, http.MethodGet, "/api/notes/77", token, nil)
	require.Equal(t, http.StatusNotFound, status)

	observer.mu.Lock()
	defer observer.mu.Unlock()
	require.NotEmpty(t, observer.observations)
	last := observer.observations[len(observer.observations)-1]
	assert.Equal(t, http.MethodGet, last.method)
	assert.Equal(t, "/api/notes/:id", last.route)
	assert.Equal(t, http.StatusNotFound, last.status)
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	resp, err := srv.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "req-123", resp.Header.Get("X-Request-ID"))

	resp, err = srv.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
