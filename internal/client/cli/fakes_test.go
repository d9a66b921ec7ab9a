package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/fleetconsole/internal/client/models"
	"github.com/dmitrijs2005/fleetconsole/internal/client/session"
	"github.com/dmitrijs2005/fleetconsole/internal/logging"
)

// capturePrint swaps printlnFn for a recorder and returns the printed lines.
func capturePrint(t *testing.T) *[]string {
	t.Helper()
	var (
		mu    sync.Mutex
		lines []string
	)
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

// stubText answers getSimpleText prompts with answers in order.
func stubText(t *testing.T, answers ...string) *[]string {
	t.Helper()
	var prompts []string
	orig := getSimpleText
	getSimpleText = func(_ *bufio.Reader, prompt string, _ io.Writer) (string, error) {
		prompts = append(prompts, prompt)
		if len(answers) == 0 {
			return "", io.EOF
		}
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}
	t.Cleanup(func() { getSimpleText = orig })
	return &prompts
}

// stubPasswords answers getPassword prompts in order. The returned slices
// are the buffers handed out so tests can check they were wiped.
func stubPasswords(t *testing.T, pws ...string) *[][]byte {
	t.Helper()
	var handed [][]byte
	orig := getPassword
	getPassword = func(_ string, _ io.Writer) ([]byte, error) {
		if len(pws) == 0 {
			return nil, io.EOF
		}
		b := []byte(pws[0])
		pws = pws[1:]
		handed = append(handed, b)
		return b, nil
	}
	t.Cleanup(func() { getPassword = orig })
	return &handed
}

func stubFields(t *testing.T, lines ...string) {
	t.Helper()
	orig := getFields
	getFields = func(_ *bufio.Reader, _ io.Writer) ([]string, error) { return lines, nil }
	t.Cleanup(func() { getFields = orig })
}

type fakeSession struct {
	mu   sync.Mutex
	snap session.Snapshot
	subs map[int]func(session.Snapshot)
	next int

	calls    []string
	login    [2]string
	register models.RegisterRequest
	update   models.ProfileUpdate
	passwd   models.PasswordChange
	forgot   string
	reset    [2]string
}

func newFakeSession(snap session.Snapshot) *fakeSession {
	return &fakeSession{snap: snap, subs: map[int]func(session.Snapshot){}}
}

func (f *fakeSession) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeSession) Snapshot() session.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeSession) Subscribe(fn func(session.Snapshot)) func() {
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

// set replaces the snapshot and notifies subscribers.
func (f *fakeSession) set(snap session.Snapshot) {
	f.mu.Lock()
	f.snap = snap
	fns := make([]func(session.Snapshot), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

func (f *fakeSession) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *fakeSession) Boot(context.Context) { f.record("boot") }

func (f *fakeSession) Login(_ context.Context, email, password string) bool {
	f.record("login")
	f.login = [2]string{email, password}
	return true
}

func (f *fakeSession) Register(_ context.Context, req models.RegisterRequest) bool {
	f.record("register")
	f.register = req
	return true
}

func (f *fakeSession) Logout(context.Context) { f.record("logout") }

func (f *fakeSession) UpdateProfile(_ context.Context, upd models.ProfileUpdate) bool {
	f.record("update")
	f.update = upd
	return true
}

func (f *fakeSession) ChangePassword(_ context.Context, req models.PasswordChange) bool {
	f.record("passwd")
	f.passwd = req
	return true
}

func (f *fakeSession) ForgotPassword(_ context.Context, email string) bool {
	f.record("forgot")
	f.forgot = email
	return true
}

func (f *fakeSession) ResetPassword(_ context.Context, resetToken, password string) bool {
	f.record("reset")
	f.reset = [2]string{resetToken, password}
	return true
}

type fakeFleet struct {
	listRes   models.Resource
	listQuery models.Query
	page      *models.Page

	getID  string
	record models.Record

	created models.Record
	updated models.Record
	deleted string

	err error
}

func (f *fakeFleet) List(_ context.Context, res models.Resource, q models.Query) (*models.Page, error) {
	f.listRes, f.listQuery = res, q
	return f.page, f.err
}

func (f *fakeFleet) Get(_ context.Context, _ models.Resource, id string) (models.Record, error) {
	f.getID = id
	return f.record, f.err
}

func (f *fakeFleet) Create(_ context.Context, _ models.Resource, rec models.Record) (models.Record, error) {
	f.created = rec
	if f.err != nil {
		return nil, f.err
	}
	return models.Record{"id": "new-1"}, nil
}

func (f *fakeFleet) Update(_ context.Context, _ models.Resource, id string, rec models.Record) (models.Record, error) {
	f.updated = rec
	return rec, f.err
}

func (f *fakeFleet) Delete(_ context.Context, _ models.Resource, id string) error {
	f.deleted = id
	return f.err
}

type fakeAvatars struct {
	path string
	ok   bool
	err  error
}

func (f *fakeAvatars) UploadFile(_ context.Context, path string) (bool, error) {
	f.path = path
	return f.ok, f.err
}

type fakePinger struct {
	mu   sync.Mutex
	err  error
	hits int
}

func (p *fakePinger) Ping(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hits++
	return p.err
}

func (p *fakePinger) setErr(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

func (p *fakePinger) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits
}

func newTestApp(s Session) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &App{
		session: s,
		log:     logging.Nop{},
		reader:  bufio.NewReader(strings.NewReader("")),
		out:     out,
		screen:  session.ScreenSignIn,
	}, out
}

var signedInSnap = session.Snapshot{
	User:            &models.UserProfile{ID: "u1", Name: "Ann", Email: "ann@example.com", Role: "admin"},
	Token:           "tok",
	IsAuthenticated: true,
}

type fakeLocal struct {
	keys    []string
	err     error
	wiped   int
	wipeErr error
}

func (f *fakeLocal) Keys(context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.keys, nil
}

func (f *fakeLocal) Wipe(context.Context) (int64, error) {
	if f.wipeErr != nil {
		return 0, f.wipeErr
	}
	f.wiped++
	n := int64(len(f.keys))
	f.keys = nil
	return n, nil
}
