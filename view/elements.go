package view

import "time"

const (
	SignInLabel  = "Sign-In"
	SignOutLabel = "Sign-Out"
)

// Control is a labelled region that can be shown or hidden.
type Control interface {
	SetText(text string)
	Text() string
	SetVisible(visible bool)
}

// Image displays a picture from a URI (data URIs included).
type Image interface {
	SetSource(uri string)
}

// Notifier shows transient notifications.
type Notifier interface {
	Show(n Notification)
}

// Notification is a transient message. A zero Timeout leaves it up until the
// next notification replaces it.
type Notification struct {
	Message       string
	Timeout       time.Duration
	ActionText    string
	ActionHandler func()
}

// Elements are the handles the Binder projects session state onto.
type Elements struct {
	SignIn       Control
	FetchProfile Control
	UserCard     Control
	UserName     Control
	ProfileImage Image
	Notifier     Notifier
}
