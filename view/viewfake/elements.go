package viewfake

import (
	"sync"

	"github.com/jrsteele09/go-auth-desktop/view"
)

var (
	_ view.Control  = (*FakeControl)(nil)
	_ view.Image    = (*FakeImage)(nil)
	_ view.Notifier = (*FakeNotifier)(nil)
)

type FakeControl struct {
	lock    sync.RWMutex
	text    string
	visible bool
}

func (c *FakeControl) SetText(text string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.text = text
}

func (c *FakeControl) Text() string {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.text
}

func (c *FakeControl) SetVisible(visible bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.visible = visible
}

func (c *FakeControl) Visible() bool {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.visible
}

type FakeImage struct {
	lock   sync.RWMutex
	source string
}

func (i *FakeImage) SetSource(uri string) {
	i.lock.Lock()
	defer i.lock.Unlock()
	i.source = uri
}

func (i *FakeImage) Source() string {
	i.lock.RLock()
	defer i.lock.RUnlock()
	return i.source
}

type FakeNotifier struct {
	lock  sync.RWMutex
	shown []view.Notification
}

func (n *FakeNotifier) Show(notification view.Notification) {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.shown = append(n.shown, notification)
}

func (n *FakeNotifier) Shown() []view.Notification {
	n.lock.RLock()
	defer n.lock.RUnlock()
	return append([]view.Notification(nil), n.shown...)
}

// FakeElements keeps typed handles alongside the view.Elements built from them.
type FakeElements struct {
	SignIn       *FakeControl
	FetchProfile *FakeControl
	UserCard     *FakeControl
	UserName     *FakeControl
	ProfileImage *FakeImage
	Notifier     *FakeNotifier
}

// NewFakeElements returns elements as they are before the binder touches them:
// every control visible with no text.
func NewFakeElements() *FakeElements {
	return &FakeElements{
		SignIn:       &FakeControl{visible: true},
		FetchProfile: &FakeControl{visible: true},
		UserCard:     &FakeControl{visible: true},
		UserName:     &FakeControl{visible: true},
		ProfileImage: &FakeImage{},
		Notifier:     &FakeNotifier{},
	}
}

func (f *FakeElements) Elements() view.Elements {
	return view.Elements{
		SignIn:       f.SignIn,
		FetchProfile: f.FetchProfile,
		UserCard:     f.UserCard,
		UserName:     f.UserName,
		ProfileImage: f.ProfileImage,
		Notifier:     f.Notifier,
	}
}
