package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/fleetconsole/internal/client/models"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

func makeToken(t *testing.T, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1", "email": "a@b.com", "exp": exp.Unix(),
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return s
}

var ada = &models.UserProfile{ID: "u1", Name: "Ada", Email: "a@b.com", Role: "admin"}

// fakeAPI implements client.Client with overridable behaviour per call.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	login          func(ctx context.Context, req models.LoginRequest) (string, error)
	register       func(ctx context.Context, req models.RegisterRequest) (string, error)
	currentUser    func(ctx context.Context) (*models.UserProfile, error)
	updateProfile  func(ctx context.Context, upd models.ProfileUpdate) (*models.UserProfile, error)
	changePassword func(ctx context.Context, req models.PasswordChange) error
	forgotPassword func(ctx context.Context, email string) error
	resetPassword  func(ctx context.Context, token, password string) error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		calls:          map[string]int{},
		login:          func(context.Context, models.LoginRequest) (string, error) { return "", nil },
		register:       func(context.Context, models.RegisterRequest) (string, error) { return "", nil },
		currentUser:    func(context.Context) (*models.UserProfile, error) { return ada, nil },
		updateProfile:  func(context.Context, models.ProfileUpdate) (*models.UserProfile, error) { return ada, nil },
		changePassword: func(context.Context, models.PasswordChange) error { return nil },
		forgotPassword: func(context.Context, string) error { return nil },
		resetPassword:  func(context.Context, string, string) error { return nil },
	}
}

func (f *fakeAPI) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	f.hit("register")
	return f.register(ctx, req)
}

func (f *fakeAPI) Login(ctx context.Context, req models.LoginRequest) (string, error) {
	f.hit("login")
	return f.login(ctx, req)
}

func (f *fakeAPI) CurrentUser(ctx context.Context) (*models.UserProfile, error) {
	f.hit("me")
	return f.currentUser(ctx)
}

func (f *fakeAPI) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.UserProfile, error) {
	f.hit("profile")
	return f.updateProfile(ctx, upd)
}

func (f *fakeAPI) ChangePassword(ctx context.Context, req models.PasswordChange) error {
	f.hit("password")
	return f.changePassword(ctx, req)
}

func (f *fakeAPI) ForgotPassword(ctx context.Context, email string) error {
	f.hit("forgot")
	return f.forgotPassword(ctx, email)
}

func (f *fakeAPI) ResetPassword(ctx context.Context, token, password string) error {
	f.hit("reset")
	return f.resetPassword(ctx, token, password)
}

func (f *fakeAPI) AvatarUploadURL(context.Context, string) (*models.AvatarUpload, error) {
	f.hit("avatar")
	return &models.AvatarUpload{Key: "k", URL: "u"}, nil
}

type memStore struct {
	mu    sync.Mutex
	token string

	// onSave, when set, runs before each Save stores the token.
	onSave func()
}

func (s *memStore) Load(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *memStore) Save(_ context.Context, tok string) error {
	if s.onSave != nil {
		s.onSave()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = tok
	return nil
}

func (s *memStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

func (s *memStore) get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

type note struct {
	ok  bool
	msg string
}

type recorder struct {
	mu      sync.Mutex
	notes   []note
	screens []Screen
}

func (r *recorder) Success(msg string) { r.mu.Lock(); r.notes = append(r.notes, note{true, msg}); r.mu.Unlock() }
func (r *recorder) Error(msg string)   { r.mu.Lock(); r.notes = append(r.notes, note{false, msg}); r.mu.Unlock() }
func (r *recorder) Navigate(to Screen) { r.mu.Lock(); r.screens = append(r.screens, to); r.mu.Unlock() }

func (r *recorder) allNotes() []note {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]note(nil), r.notes...)
}

func (r *recorder) allScreens() []Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Screen(nil), r.screens...)
}

type harness struct {
	api   *fakeAPI
	store *memStore
	rec   *recorder
	m     *Manager
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{api: newFakeAPI(), store: &memStore{}, rec: &recorder{}}
	h.m = New(h.api, h.store, WithNotifier(h.rec), WithNavigator(h.rec), WithClock(clock))
	return h
}

// signedIn returns a harness already authenticated as ada.
func signedIn(t *testing.T) (*harness, string) {
	t.Helper()
	h := newHarness(t)
	tok := makeToken(t, testNow.Add(time.Hour))
	h.store.token = tok
	h.m.Boot(context.Background())
	require.True(t, h.m.Snapshot().IsAuthenticated)
	return h, tok
}
