// Package console renders the view regions as lines on a terminal.
package console

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-desktop/view"
)

const maxImagePreview = 48

// Console serialises writes from every region onto one writer.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

func New(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) printf(region, format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%s[%-13s]%s %s\n", colourFor(region), region, ResetColor, fmt.Sprintf(format, args...))
}

// Elements builds the view handles, all backed by this console.
func (c *Console) Elements() (view.Elements, *Snackbar) {
	snackbar := &Snackbar{console: c}
	return view.Elements{
		SignIn:       &Control{console: c, region: "sign-in"},
		FetchProfile: &Control{console: c, region: "fetch-profile"},
		UserCard:     &Control{console: c, region: "user-info"},
		UserName:     &Control{console: c, region: "user-name"},
		ProfileImage: &Image{console: c, region: "profile-image"},
		Notifier:     snackbar,
	}, snackbar
}

type Control struct {
	console *Console
	region  string

	mu      sync.RWMutex
	text    string
	visible bool
}

func (c *Control) SetText(text string) {
	c.mu.Lock()
	changed := c.text != text
	c.text = text
	c.mu.Unlock()
	if changed {
		c.console.printf(c.region, "%q", text)
	}
}

func (c *Control) Text() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.text
}

func (c *Control) SetVisible(visible bool) {
	c.mu.Lock()
	changed := c.visible != visible
	c.visible = visible
	c.mu.Unlock()
	if !changed {
		return
	}
	if visible {
		c.console.printf(c.region, "shown")
	} else {
		c.console.printf(c.region, "hidden")
	}
}

type Image struct {
	console *Console
	region  string

	mu     sync.Mutex
	source string
}

// SetSource prints a truncated data URI; the full picture is useless on a terminal.
func (i *Image) SetSource(uri string) {
	i.mu.Lock()
	changed := i.source != uri
	i.source = uri
	i.mu.Unlock()
	if !changed {
		return
	}
	if uri == "" {
		i.console.printf(i.region, "cleared")
		return
	}

	preview := uri
	if len(preview) > maxImagePreview {
		preview = preview[:maxImagePreview] + "..."
	}
	i.console.printf(i.region, "%s (%d bytes)", preview, len(uri))
}

// Snackbar shows one notification at a time and dismisses it after its timeout.
type Snackbar struct {
	console *Console

	mu      sync.Mutex
	current *view.Notification
	timer   *time.Timer
	seq     uint64
}

func (s *Snackbar) Show(n view.Notification) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.seq++
	seq := s.seq
	s.current = &n
	if n.Timeout > 0 {
		s.timer = time.AfterFunc(n.Timeout, func() { s.dismiss(seq) })
	}
	s.mu.Unlock()

	msg := CyanInverse + " " + n.Message + " " + ResetColor
	if n.ActionText != "" {
		msg += " [" + n.ActionText + "]"
	}
	s.console.printf("snackbar", "%s", msg)
}

// Current returns the notification on screen, if any.
func (s *Snackbar) Current() (view.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return view.Notification{}, false
	}
	return *s.current, true
}

// TriggerAction runs the action handler of the notification on screen.
func (s *Snackbar) TriggerAction() bool {
	s.mu.Lock()
	cur := s.current
	s.mu.Unlock()
	if cur == nil || cur.ActionHandler == nil {
		return false
	}
	cur.ActionHandler()
	return true
}

func (s *Snackbar) dismiss(seq uint64) {
	s.mu.Lock()
	if seq != s.seq || s.current == nil {
		s.mu.Unlock()
		return
	}
	s.current = nil
	s.timer = nil
	s.mu.Unlock()
	s.console.printf("snackbar", "dismissed")
}
