package session

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/fleetconsole/internal/client/client"
	"github.com/dmitrijs2005/fleetconsole/internal/client/models"
	"github.com/dmitrijs2005/fleetconsole/internal/client/token"
	"github.com/dmitrijs2005/fleetconsole/internal/logging"
)

// Snapshot is a read-only copy of the session.
type Snapshot struct {
	User            *models.UserProfile
	Token           string
	IsAuthenticated bool
	Loading         bool
}

// CredentialStore persists the credential between runs. Load returns "" when
// nothing is stored.
type CredentialStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Manager is the single owner of session state. It is safe for concurrent use.
type Manager struct {
	api      client.Client
	store    CredentialStore
	notify   Notifier
	nav      Navigator
	log      logging.Logger
	now      func() time.Time
	validate *validator.Validate

	mu      sync.Mutex
	user    *models.UserProfile
	token   string
	authed  bool
	booting bool
	pending int
	// gen advances whenever a newer action takes over the session.
	gen uint64

	// storeMu orders credential writes against generation changes.
	storeMu sync.Mutex

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int

	notifyMu sync.Mutex
}

type Option func(*Manager)

func WithNotifier(n Notifier) Option { return func(m *Manager) { m.notify = n } }

func WithNavigator(n Navigator) Option { return func(m *Manager) { m.nav = n } }

func WithLogger(l logging.Logger) Option { return func(m *Manager) { m.log = l } }

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

// New returns a Manager in the Booting state. Call Boot to settle it.
func New(api client.Client, store CredentialStore, opts ...Option) *Manager {
	m := &Manager{
		api:      api,
		store:    store,
		notify:   nopNotifier{},
		nav:      nopNavigator{},
		log:      logging.Nop{},
		now:      time.Now,
		validate: newValidator(),
		booting:  true,
		subs:     make(map[int]func(Snapshot)),
	}
	for _, o := range opts {
		o(m)
	}
	m.log = m.log.With("module", "session")
	return m
}

// Snapshot returns the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	var u *models.UserProfile
	if m.user != nil {
		cp := *m.user
		u = &cp
	}
	return Snapshot{
		User:            u,
		Token:           m.token,
		IsAuthenticated: m.authed,
		Loading:         m.booting || m.pending > 0,
	}
}

// Token returns the credential to attach to outgoing requests, or "".
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the goroutine that made the change and must not call the
// Manager's actions synchronously.
func (m *Manager) Subscribe(fn func(Snapshot)) (cancel func()) {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, id)
			m.subMu.Unlock()
		})
	}
}

// broadcast delivers the latest snapshot to every subscriber. Deliveries are
// serialised so the last one a subscriber sees is the current state.
func (m *Manager) broadcast() {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	snap := m.Snapshot()

	m.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// begin marks an action in flight and returns its ticket. A superseding
// action advances the generation so older tickets go stale.
func (m *Manager) begin(supersede bool) uint64 {
	m.mu.Lock()
	if supersede {
		m.gen++
	}
	ticket := m.gen
	m.pending++
	m.mu.Unlock()

	m.broadcast()
	return ticket
}

func (m *Manager) end() {
	m.mu.Lock()
	m.pending--
	m.mu.Unlock()

	m.broadcast()
}

func (m *Manager) current(ctx context.Context, ticket uint64) bool {
	if ctx.Err() != nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen == ticket
}

// adopt makes tok and u the authenticated session if ticket is still
// current. The credential is persisted before it becomes visible.
func (m *Manager) adopt(ctx context.Context, ticket uint64, tok string, u *models.UserProfile) bool {
	m.storeMu.Lock()
	defer m.storeMu.Unlock()

	if !m.current(ctx, ticket) {
		return false
	}

	if err := m.store.Save(context.WithoutCancel(ctx), tok); err != nil {
		m.log.Warn(ctx, "credential not persisted", "error", err)
	}

	// a reset may have run while Save was in flight
	m.mu.Lock()
	if m.gen != ticket {
		m.mu.Unlock()
		if err := m.store.Clear(context.WithoutCancel(ctx)); err != nil {
			m.log.Warn(ctx, "stored credential not cleared", "error", err)
		}
		return false
	}
	m.token = tok
	m.user = u
	m.authed = true
	m.mu.Unlock()
	return true
}

// reset drops the in-memory session, supersedes anything in flight and
// purges the stored credential.
func (m *Manager) reset(ctx context.Context) {
	m.mu.Lock()
	m.gen++
	m.token = ""
	m.user = nil
	m.authed = false
	m.mu.Unlock()

	m.purge(ctx)
}

func (m *Manager) purge(ctx context.Context) {
	m.storeMu.Lock()
	defer m.storeMu.Unlock()

	if err := m.store.Clear(context.WithoutCancel(ctx)); err != nil {
		m.log.Warn(ctx, "stored credential not cleared", "error", err)
	}
}

func (m *Manager) finishBoot() {
	m.mu.Lock()
	m.booting = false
	m.mu.Unlock()
	m.broadcast()
}

// Boot resumes the session from the stored credential. A missing credential
// settles Unauthenticated without any network call. An expired or
// undecodable one is purged first. Otherwise the credential is confirmed by
// fetching the current user; a rejection purges it. None of these outcomes is
// shown to the user.
func (m *Manager) Boot(ctx context.Context) {
	m.mu.Lock()
	m.gen++
	ticket := m.gen
	m.booting = true
	m.mu.Unlock()
	m.broadcast()

	defer m.finishBoot()

	tok, err := m.store.Load(ctx)
	if err != nil {
		m.log.Warn(ctx, "stored credential unreadable", "error", err)
		return
	}
	if tok == "" {
		m.log.Debug(ctx, "no stored credential")
		return
	}

	if err := token.Check(tok, m.now()); err != nil {
		m.log.Info(ctx, "stored credential discarded", "reason", err)
		m.purgeIfCurrent(ctx, ticket)
		return
	}

	u, err := m.api.CurrentUser(client.WithToken(ctx, tok))
	if err != nil {
		if client.IsCanceled(err) || !m.current(ctx, ticket) {
			return
		}
		m.log.Info(ctx, "stored credential rejected", "error", err)
		m.purgeIfCurrent(ctx, ticket)
		return
	}

	if m.adopt(ctx, ticket, tok, u) {
		m.log.Info(ctx, "session restored", "user", u.Email)
	}
}

func (m *Manager) purgeIfCurrent(ctx context.Context, ticket uint64) {
	m.storeMu.Lock()
	defer m.storeMu.Unlock()

	m.mu.Lock()
	stale := m.gen != ticket
	m.mu.Unlock()
	if stale {
		return
	}

	if err := m.store.Clear(context.WithoutCancel(ctx)); err != nil {
		m.log.Warn(ctx, "stored credential not cleared", "error", err)
	}
}

// signIn runs a credential-issuing call, confirms the credential by fetching
// the user and adopts both.
func (m *Manager) signIn(ctx context.Context, fallback, success string, issue func(context.Context) (string, error)) bool {
	ticket := m.begin(true)
	defer m.end()

	tok, err := issue(ctx)
	if err != nil {
		return m.fail(ctx, ticket, err, fallback)
	}
	if !m.current(ctx, ticket) {
		return false
	}

	u, err := m.api.CurrentUser(client.WithToken(ctx, tok))
	if err != nil {
		return m.fail(ctx, ticket, err, fallback)
	}

	if !m.adopt(ctx, ticket, tok, u) {
		return false
	}

	m.log.Info(ctx, "signed in", "user", u.Email)
	m.notify.Success(success)
	m.nav.Navigate(ScreenDashboard)
	return true
}

// fail reports err unless the action was cancelled or superseded.
func (m *Manager) fail(ctx context.Context, ticket uint64, err error, fallback string) bool {
	if client.IsCanceled(err) || !m.current(ctx, ticket) {
		m.log.Debug(ctx, "stale action result dropped", "error", err)
		return false
	}
	m.log.Debug(ctx, "action failed", "error", err)
	m.notify.Error(client.MessageOf(err, fallback))
	return false
}

func (m *Manager) invalid(v any) bool {
	if err := m.validate.Struct(v); err != nil {
		m.notify.Error(validationMessage(err))
		return true
	}
	return false
}

// Login signs in with email and password.
func (m *Manager) Login(ctx context.Context, email, password string) bool {
	req := models.LoginRequest{Email: email, Password: password}
	if m.invalid(req) {
		return false
	}
	return m.signIn(ctx, "Invalid credentials", "Welcome back", func(ctx context.Context) (string, error) {
		return m.api.Login(ctx, req)
	})
}

// Register creates an account and signs in with it.
func (m *Manager) Register(ctx context.Context, req models.RegisterRequest) bool {
	if m.invalid(req) {
		return false
	}
	return m.signIn(ctx, "Registration failed", "Account created", func(ctx context.Context) (string, error) {
		return m.api.Register(ctx, req)
	})
}

// Logout ends the session. It cannot fail and may be called in any state.
func (m *Manager) Logout(ctx context.Context) {
	m.reset(ctx)
	m.broadcast()
	m.log.Info(ctx, "signed out")
	m.nav.Navigate(ScreenSignIn)
}

// UpdateProfile applies upd and replaces the session's user with the
// server's result.
func (m *Manager) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) bool {
	if upd.Empty() {
		m.notify.Error("Nothing to update")
		return false
	}

	ticket := m.begin(false)
	defer m.end()

	u, err := m.api.UpdateProfile(ctx, upd)
	if err != nil {
		return m.fail(ctx, ticket, err, "Profile update failed")
	}

	m.mu.Lock()
	applied := ctx.Err() == nil && m.gen == ticket && m.authed
	if applied {
		m.user = u
	}
	m.mu.Unlock()
	if !applied {
		return false
	}

	m.notify.Success("Profile updated")
	return true
}

// call runs a request that does not change session state.
func (m *Manager) call(ctx context.Context, fallback, success string, fn func(context.Context) error) bool {
	ticket := m.begin(false)
	defer m.end()

	if err := fn(ctx); err != nil {
		return m.fail(ctx, ticket, err, fallback)
	}
	if ctx.Err() != nil {
		return false
	}
	m.notify.Success(success)
	return true
}

func (m *Manager) ChangePassword(ctx context.Context, req models.PasswordChange) bool {
	if m.invalid(req) {
		return false
	}
	return m.call(ctx, "Password change failed", "Password changed", func(ctx context.Context) error {
		return m.api.ChangePassword(ctx, req)
	})
}

func (m *Manager) ForgotPassword(ctx context.Context, email string) bool {
	if m.invalid(models.ForgotPasswordRequest{Email: email}) {
		return false
	}
	return m.call(ctx, "Password reset request failed", "Password reset instructions sent", func(ctx context.Context) error {
		return m.api.ForgotPassword(ctx, email)
	})
}

// ResetPassword sets a new password using an emailed reset token. Any held
// credential predates the reset, so on success the session is dropped and
// the user is sent to sign in again.
func (m *Manager) ResetPassword(ctx context.Context, resetToken, password string) bool {
	if m.invalid(models.ResetPasswordRequest{Token: resetToken, Password: password}) {
		return false
	}

	ticket := m.begin(false)
	defer m.end()

	if err := m.api.ResetPassword(ctx, resetToken, password); err != nil {
		return m.fail(ctx, ticket, err, "Password reset failed")
	}
	if ctx.Err() != nil {
		return false
	}

	m.reset(ctx)
	m.notify.Success("Password has been reset, please sign in")
	m.nav.Navigate(ScreenSignIn)
	return true
}
