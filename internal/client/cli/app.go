package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/fleetconsole/internal/client/client"
	"github.com/dmitrijs2005/fleetconsole/internal/client/config"
	"github.com/dmitrijs2005/fleetconsole/internal/client/models"
	"github.com/dmitrijs2005/fleetconsole/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/fleetconsole/internal/client/services"
	"github.com/dmitrijs2005/fleetconsole/internal/client/session"
	"github.com/dmitrijs2005/fleetconsole/internal/client/storage"
	"github.com/dmitrijs2005/fleetconsole/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Session is the part of the session manager the console drives.
type Session interface {
	Snapshot() session.Snapshot
	Subscribe(fn func(session.Snapshot)) (cancel func())
	Boot(ctx context.Context)
	Login(ctx context.Context, email, password string) bool
	Register(ctx context.Context, req models.RegisterRequest) bool
	Logout(ctx context.Context)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) bool
	ChangePassword(ctx context.Context, req models.PasswordChange) bool
	ForgotPassword(ctx context.Context, email string) bool
	ResetPassword(ctx context.Context, resetToken, password string) bool
}

// Pinger reports backend liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AvatarUploader stores a local image as the user's avatar.
type AvatarUploader interface {
	UploadFile(ctx context.Context, path string) (bool, error)
}

// LocalStore is the console's on-disk state taken as a whole.
type LocalStore interface {
	Keys(ctx context.Context) ([]string, error)
	Wipe(ctx context.Context) (int64, error)
}

type App struct {
	config  *config.Config
	log     logging.Logger
	session Session
	fleet   services.FleetService
	avatars AvatarUploader
	probe   Pinger
	local   LocalStore
	reader  *bufio.Reader
	out     io.Writer

	mu     sync.Mutex
	mode   Mode
	screen session.Screen

	closers []io.Closer
}

// NewApp opens local storage, connects the API client and status probe and
// builds the session manager. Close releases what it opened.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	a := &App{
		config: c,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		screen: session.ScreenSignIn,
	}

	db, err := storage.OpenDir(ctx, c.DataDir)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db)

	if err := a.wire(c, db); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(c *config.Config, db *sql.DB) error {
	var mgr *session.Manager
	tokens := func() string { return mgr.Token() }

	api, err := client.NewHTTPClient(c.APIBaseURL, c.RequestTimeout, tokens,
		client.WithLogger(a.log.With("module", "api")))
	if err != nil {
		return err
	}

	probe, err := client.NewStatusProbe(c.StatusEndpointAddr, tokens)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, probe)

	repo := metadata.NewSQLiteRepository(db)
	mgr = session.New(api, storage.NewCredentialStore(repo),
		session.WithNotifier(&terminalNotifier{w: a.out}),
		session.WithNavigator(a),
		session.WithLogger(a.log),
	)

	a.session = mgr
	a.probe = probe
	a.local = storage.NewLocalState(repo)
	a.fleet = services.NewFleetService(api)
	a.avatars = services.NewAvatarService(api, mgr, api.HTTP())
	return nil
}

// Close releases storage and connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Navigate records the current screen. It implements session.Navigator.
func (a *App) Navigate(to session.Screen) {
	a.mu.Lock()
	changed := a.screen != to
	a.screen = to
	a.mu.Unlock()

	if changed {
		a.log.Debug(context.Background(), "navigate", "screen", to)
	}
}

func (a *App) Screen() session.Screen {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.screen
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

// Run resumes the session, starts the connectivity watcher and serves the
// REPL on stdin until the user exits or ctx ends.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.session.Boot(ctx)
	if a.session.Snapshot().IsAuthenticated {
		a.Navigate(session.ScreenDashboard)
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
	return nil
}

// StartOnlineStatusWatcher pings the backend every interval and updates the
// connectivity mode until ctx ends.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		a.checkOnline(ctx)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.probe.Ping(pctx)
	cancel()

	if ctx.Err() != nil {
		return
	}
	// a rejected credential still proves the backend is reachable
	if err != nil && !errors.Is(err, client.ErrUnauthorized) {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
