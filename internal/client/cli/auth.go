package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/fleetconsole/internal/client/models"
	"github.com/dmitrijs2005/fleetconsole/internal/client/session"
	"github.com/dmitrijs2005/fleetconsole/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().IsAuthenticated
}

// getStatus renders the prompt status: connectivity and who is signed in.
func (a *App) getStatus() string {
	snap := a.session.Snapshot()
	mode := a.Mode()
	if mode == "" {
		mode = "connecting"
	}
	switch {
	case snap.Loading:
		return fmt.Sprintf("%s | loading", mode)
	case snap.IsAuthenticated && snap.User != nil:
		return fmt.Sprintf("%s | %s", mode, snap.User.Email)
	case snap.IsAuthenticated:
		return fmt.Sprintf("%s | signed in", mode)
	default:
		return fmt.Sprintf("%s | signed out", mode)
	}
}

// open runs the route guard for to. While the session is loading it blocks
// until it settles or ctx ends. A protected screen without a session sends
// the user to sign-in.
func (a *App) open(ctx context.Context, to session.Screen) bool {
	snap, ok := a.awaitSettled(ctx, to)
	if !ok {
		return false
	}
	if session.Guard(snap, to) != session.Allow {
		printlnFn("Please sign in first")
		a.Navigate(session.ScreenSignIn)
		return false
	}
	a.Navigate(to)
	return true
}

func (a *App) awaitSettled(ctx context.Context, to session.Screen) (session.Snapshot, bool) {
	snap := a.session.Snapshot()
	if session.Guard(snap, to) != session.Wait {
		return snap, true
	}

	settled := make(chan struct{}, 1)
	cancel := a.session.Subscribe(func(s session.Snapshot) {
		if !s.Loading {
			select {
			case settled <- struct{}{}:
			default:
			}
		}
	})
	defer cancel()

	printlnFn("Loading...")
	for {
		snap = a.session.Snapshot()
		if !snap.Loading {
			return snap, true
		}
		select {
		case <-settled:
		case <-ctx.Done():
			return snap, false
		}
	}
}

// inputFailed reports a prompt that could not be read, such as EOF on stdin
// or a password prompt without a terminal.
func inputFailed(err error) error {
	printlnFn("Input failed:", err.Error())
	return err
}

func (a *App) readPassword(prompt string) (string, error) {
	pw, err := getPassword(prompt, a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// Login prompts for credentials and signs in. Outcome messages come from
// the session notifier.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return inputFailed(err)
	}
	password, err := a.readPassword("Enter password")
	if err != nil {
		return inputFailed(err)
	}
	a.session.Login(ctx, email, password)
	return nil
}

// Register prompts for a new account's details and creates it.
func (a *App) Register(ctx context.Context) error {
	var req models.RegisterRequest
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Enter name", &req.Name},
		{"Enter email", &req.Email},
		{"Enter company (optional)", &req.Company},
		{"Enter role (optional)", &req.Role},
		{"Enter phone (optional)", &req.Phone},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return inputFailed(err)
		}
		*f.dst = v
	}

	password, err := a.readPassword("Enter password")
	if err != nil {
		return inputFailed(err)
	}
	req.Password = password

	a.session.Register(ctx, req)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	printlnFn("Signed out")
	return nil
}

// ResetLocal signs out and discards everything the console keeps in its data
// directory after the user confirms.
func (a *App) ResetLocal(ctx context.Context) error {
	keys, err := a.local.Keys(ctx)
	if err != nil {
		return a.report("Reset", err)
	}
	if len(keys) == 0 {
		printlnFn("Nothing stored locally")
		return nil
	}
	prompt := fmt.Sprintf("Remove %d local entries (%s)? Type yes to confirm", len(keys), strings.Join(keys, ", "))
	answer, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return inputFailed(err)
	}
	if !strings.EqualFold(answer, "yes") {
		printlnFn("Cancelled")
		return nil
	}
	// Logout supersedes an in-flight boot or login.
	a.session.Logout(ctx)
	n, err := a.local.Wipe(ctx)
	if err != nil {
		return a.report("Reset", err)
	}
	printlnFn(fmt.Sprintf("Removed %d local entries", n))
	return nil
}

// Whoami prints the signed-in user's profile.
func (a *App) Whoami(ctx context.Context) error {
	u := a.session.Snapshot().User
	if u == nil {
		printlnFn("Profile not loaded")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"ID", u.ID},
		{"Name", u.Name},
		{"Email", u.Email},
		{"Role", u.Role},
		{"Company", u.Company},
		{"Phone", u.Phone},
		{"Avatar", u.Avatar},
	}
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1])
	}
	return tw.Flush()
}

// EditProfile prompts for new profile values. An empty answer keeps the
// current value.
func (a *App) EditProfile(ctx context.Context) error {
	var upd models.ProfileUpdate
	fields := []struct {
		prompt string
		dst    **string
	}{
		{"New name (empty to keep)", &upd.Name},
		{"New company (empty to keep)", &upd.Company},
		{"New phone (empty to keep)", &upd.Phone},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return inputFailed(err)
		}
		if v != "" {
			*f.dst = models.StringPtr(v)
		}
	}

	a.session.UpdateProfile(ctx, upd)
	return nil
}

func (a *App) ChangePassword(ctx context.Context) error {
	current, err := a.readPassword("Current password")
	if err != nil {
		return inputFailed(err)
	}
	next, err := a.readPassword("New password")
	if err != nil {
		return inputFailed(err)
	}
	a.session.ChangePassword(ctx, models.PasswordChange{CurrentPassword: current, NewPassword: next})
	return nil
}

func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter account email", a.out)
	if err != nil {
		return inputFailed(err)
	}
	a.session.ForgotPassword(ctx, email)
	return nil
}

// ResetPassword sets a new password using the token from a reset email.
func (a *App) ResetPassword(ctx context.Context, resetToken string) error {
	password, err := a.readPassword("New password")
	if err != nil {
		return inputFailed(err)
	}
	a.session.ResetPassword(ctx, resetToken, password)
	return nil
}

// Avatar uploads a local image and makes it the profile picture.
func (a *App) Avatar(ctx context.Context, path string) error {
	ok, err := a.avatars.UploadFile(ctx, path)
	if err != nil {
		printlnFn("Avatar upload failed:", err.Error())
		return err
	}
	if ok {
		printlnFn("Avatar updated")
	}
	return nil
}
