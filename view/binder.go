package view

import "github.com/jrsteele09/go-auth-desktop/profile"

// State is everything the view is derived from.
type State struct {
	SignedIn bool
	Profile  *profile.UserProfile
}

// Binder projects State onto the injected Elements.
type Binder struct {
	el Elements
}

func NewBinder(el Elements) *Binder {
	return &Binder{el: el}
}

// Initialize applies the pre-login defaults.
func (b *Binder) Initialize() {
	b.Render(State{})
}

// Render is the only place visibility is decided. The sign-in label and the
// profile controls always move together, and the user card is shown only when
// a profile is present. The picture always follows the profile, so nothing of
// a previous user survives a render.
func (b *Binder) Render(s State) {
	if !s.SignedIn {
		b.el.SignIn.SetText(SignInLabel)
		b.el.FetchProfile.SetVisible(false)
		b.el.UserCard.SetVisible(false)
		b.el.UserName.SetText("")
		b.el.ProfileImage.SetSource("")
		return
	}

	b.el.SignIn.SetText(SignOutLabel)
	b.el.FetchProfile.SetVisible(true)
	if s.Profile == nil {
		b.el.UserCard.SetVisible(false)
		b.el.UserName.SetText("")
		b.el.ProfileImage.SetSource("")
		return
	}
	b.el.UserName.SetText(s.Profile.FullName)
	b.el.ProfileImage.SetSource(s.Profile.Picture)
	b.el.UserCard.SetVisible(true)
}

// UpdateImage shows the profile picture once it has been fetched.
func (b *Binder) UpdateImage(p *profile.UserProfile) {
	if p == nil || p.Picture == "" {
		return
	}
	b.el.ProfileImage.SetSource(p.Picture)
}

func (b *Binder) Notify(n Notification) {
	b.el.Notifier.Show(n)
}

// SignInText returns the current label of the sign-in control.
func (b *Binder) SignInText() string {
	return b.el.SignIn.Text()
}
