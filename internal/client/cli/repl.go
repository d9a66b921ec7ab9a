package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/fleetconsole/internal/client/session"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. The real App
// satisfies it; tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	open(ctx context.Context, to session.Screen) bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	EditProfile(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context, resetToken string) error
	Avatar(ctx context.Context, path string) error
	ResetLocal(ctx context.Context) error

	ListResources(ctx context.Context) error
	List(ctx context.Context, resource string, opts []string) error
	Get(ctx context.Context, resource, id string) error
	Create(ctx context.Context, resource string) error
	Update(ctx context.Context, resource, id string) error
	Delete(ctx context.Context, resource, id string) error
}

// screens maps commands to the screen they open. Commands not listed here
// are not guarded.
var screens = map[string]session.Screen{
	"login":     session.ScreenSignIn,
	"register":  session.ScreenRegister,
	"forgot":    session.ScreenForgotPassword,
	"reset":     session.ScreenResetPassword,
	"whoami":    session.ScreenProfile,
	"profile":   session.ScreenProfile,
	"passwd":    session.ScreenProfile,
	"avatar":    session.ScreenProfile,
	"resources": session.ScreenDashboard,
	"list":      session.ScreenDashboard,
	"l":         session.ScreenDashboard,
	"get":       session.ScreenDashboard,
	"create":    session.ScreenDashboard,
	"update":    session.ScreenDashboard,
	"delete":    session.ScreenDashboard,
}

// minArgs is the number of arguments a command needs after its name.
var minArgs = map[string]int{
	"reset":  1,
	"avatar": 1,
	"list":   1,
	"l":      1,
	"get":    2,
	"create": 1,
	"update": 2,
	"delete": 2,
}

var usage = map[string]string{
	"reset":  "usage: reset <token>",
	"avatar": "usage: avatar <image file>",
	"list":   "usage: list <resource> [page=N] [limit=N] [search=TEXT]",
	"l":      "usage: list <resource> [page=N] [limit=N] [search=TEXT]",
	"get":    "usage: get <resource> <id>",
	"create": "usage: create <resource>",
	"update": "usage: update <resource> <id>",
	"delete": "usage: delete <resource> <id>",
}

// runREPL reads commands from scanner and dispatches them to a until EOF or
// "exit"/"quit". Every screen-opening command passes the route guard first.
// Handler errors are reported by the handlers themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("fleet> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if n, ok := minArgs[cmd]; ok && len(args) < n {
			printlnFn(usage[cmd])
			continue
		}
		if to, ok := screens[cmd]; ok && !a.open(ctx, to) {
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, profile, passwd, avatar, resources, (l)ist, get, create, update, delete, logout, reset-local, exit")
			} else {
				printlnFn("Available commands: login, register, forgot, reset, reset-local, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "register":
			_ = a.Register(ctx)

		case "forgot":
			_ = a.ForgotPassword(ctx)

		case "reset":
			_ = a.ResetPassword(ctx, args[0])

		case "logout":
			_ = a.Logout(ctx)

		case "reset-local":
			_ = a.ResetLocal(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "profile":
			_ = a.EditProfile(ctx)

		case "passwd":
			_ = a.ChangePassword(ctx)

		case "avatar":
			_ = a.Avatar(ctx, strings.Join(args, " "))

		case "resources":
			_ = a.ListResources(ctx)

		case "l", "list":
			_ = a.List(ctx, args[0], args[1:])

		case "get":
			_ = a.Get(ctx, args[0], args[1])

		case "create":
			_ = a.Create(ctx, args[0])

		case "update":
			_ = a.Update(ctx, args[0], args[1])

		case "delete":
			_ = a.Delete(ctx, args[0], args[1])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
