package session

// Screen identifies a console destination.
type Screen string

const (
	ScreenSignIn         Screen = "sign-in"
	ScreenRegister       Screen = "register"
	ScreenForgotPassword Screen = "forgot-password"
	ScreenResetPassword  Screen = "reset-password"
	ScreenDashboard      Screen = "dashboard"
	ScreenProfile        Screen = "profile"
)

// Notifier shows transient messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Navigator moves the user to a screen.
type Navigator interface {
	Navigate(to Screen)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

type nopNavigator struct{}

func (nopNavigator) Navigate(Screen) {}
