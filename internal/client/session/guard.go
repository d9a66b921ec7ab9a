package session

// Decision is the outcome of a route guard check.
type Decision int

const (
	Allow Decision = iota
	// Wait means the session is not settled yet; show a loading state.
	Wait
	// Redirect means the screen needs a session; go to sign-in.
	Redirect
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Wait:
		return "wait"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

var publicScreens = map[Screen]struct{}{
	ScreenSignIn:         {},
	ScreenRegister:       {},
	ScreenForgotPassword: {},
	ScreenResetPassword:  {},
}

// IsPublic reports whether s is reachable without a session.
func IsPublic(s Screen) bool {
	_, ok := publicScreens[s]
	return ok
}

// Guard decides whether the session in snap may open screen.
func Guard(snap Snapshot, screen Screen) Decision {
	switch {
	case IsPublic(screen), snap.IsAuthenticated:
		return Allow
	case snap.Loading:
		return Wait
	default:
		return Redirect
	}
}
