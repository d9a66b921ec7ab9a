package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/fleetconsole/internal/client/client"
	"github.com/dmitrijs2005/fleetconsole/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/fleetconsole/internal/client/storage"
)

// backend is a minimal auth API: one account, one issued token.
type backend struct {
	token string

	mu       sync.Mutex
	lastAuth string
	meCalls  int
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")
	b.mu.Lock()
	b.lastAuth = auth
	if r.URL.Path == "/api/auth/me" {
		b.meCalls++
	}
	b.mu.Unlock()

	reply := func(status int, v map[string]any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/login":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "a@b.com" || body["password"] != "right" {
			reply(http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid credentials"})
			return
		}
		reply(http.StatusOK, map[string]any{"success": true, "token": b.token})
	case r.URL.Path == "/api/auth/me":
		if auth != "Bearer "+b.token {
			reply(http.StatusUnauthorized, map[string]any{"success": false, "message": "Not authorized"})
			return
		}
		reply(http.StatusOK, map[string]any{"success": true, "data": map[string]any{
			"id": "u1", "name": "Ada", "email": "a@b.com", "role": "admin",
		}})
	case strings.HasPrefix(r.URL.Path, "/api/vehicles"):
		reply(http.StatusOK, map[string]any{"success": true, "data": []any{}})
	default:
		reply(http.StatusNotFound, map[string]any{"success": false, "message": "Route not found"})
	}
}

func (b *backend) auth() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastAuth
}

func (b *backend) hydrations() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.meCalls
}

type stack struct {
	be    *backend
	api   *client.HTTPClient
	store *storage.CredentialStore
	rec   *recorder
	m     *Manager
}

func newStack(t *testing.T, dataDir string) *stack {
	t.Helper()
	ctx := context.Background()

	be := &backend{token: makeToken(t, testNow.Add(time.Hour))}
	ts := httptest.NewServer(be)
	t.Cleanup(ts.Close)

	db, err := storage.OpenDir(ctx, dataDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := &stack{be: be, store: storage.NewCredentialStore(metadata.NewSQLiteRepository(db)), rec: &recorder{}}

	var m *Manager
	s.api, err = client.NewHTTPClient(ts.URL+"/api", 5*time.Second, func() string { return m.Token() })
	require.NoError(t, err)

	m = New(s.api, s.store, WithNotifier(s.rec), WithNavigator(s.rec), WithClock(clock))
	s.m = m
	return s
}

func (s *stack) listVehicles(t *testing.T) {
	t.Helper()
	_, err := s.api.Do(context.Background(), http.MethodGet, "/vehicles", nil, nil)
	require.NoError(t, err)
}

func (s *stack) stored(t *testing.T) string {
	t.Helper()
	tok, err := s.store.Load(context.Background())
	require.NoError(t, err)
	return tok
}

func TestScenario_RejectedLogin(t *testing.T) {
	s := newStack(t, t.TempDir())
	s.m.Boot(context.Background())

	assert.False(t, s.m.Login(context.Background(), "a@b.com", "wrong"))
	assert.Equal(t, []note{{false, "Invalid credentials"}}, s.rec.allNotes())
	assert.False(t, s.m.Snapshot().IsAuthenticated)
}

func TestScenario_LoginAttachesCredential(t *testing.T) {
	s := newStack(t, t.TempDir())
	s.m.Boot(context.Background())
	assert.Zero(t, s.be.hydrations())

	s.listVehicles(t)
	assert.Empty(t, s.be.auth())

	require.True(t, s.m.Login(context.Background(), "a@b.com", "right"))

	assert.Equal(t, s.be.token, s.stored(t))
	assert.True(t, s.m.Snapshot().IsAuthenticated)
	assert.Equal(t, "Ada", s.m.Snapshot().User.Name)

	s.listVehicles(t)
	assert.Equal(t, "Bearer "+s.be.token, s.be.auth())
}

func TestScenario_LoginLogoutRoundTrip(t *testing.T) {
	s := newStack(t, t.TempDir())
	s.m.Boot(context.Background())
	before := s.m.Snapshot()

	require.True(t, s.m.Login(context.Background(), "a@b.com", "right"))
	s.m.Logout(context.Background())

	assert.Equal(t, before, s.m.Snapshot())
	assert.Empty(t, s.stored(t))

	s.listVehicles(t)
	assert.Empty(t, s.be.auth(), "no residual header after logout")
}

func TestScenario_ResumeAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	first := newStack(t, dir)
	first.m.Boot(context.Background())
	require.True(t, first.m.Login(context.Background(), "a@b.com", "right"))

	second := newStack(t, dir)
	second.be.token = first.be.token
	second.m.Boot(context.Background())

	snap := second.m.Snapshot()
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, "Ada", snap.User.Name)
	assert.Equal(t, 1, second.be.hydrations())
}

func TestScenario_RevokedCredentialPurgedAtBoot(t *testing.T) {
	dir := t.TempDir()

	first := newStack(t, dir)
	first.m.Boot(context.Background())
	require.True(t, first.m.Login(context.Background(), "a@b.com", "right"))

	second := newStack(t, dir)
	second.be.token = "rotated"
	second.m.Boot(context.Background())

	assert.False(t, second.m.Snapshot().IsAuthenticated)
	assert.Empty(t, second.stored(t))
	assert.Empty(t, second.rec.allNotes())
}
