package hostbridgefake

import (
	"sync"

	"github.com/jrsteele09/go-auth-desktop/hostbridge"
)

var _ hostbridge.Messenger = (*FakeMessenger)(nil)

type FakeMessenger struct {
	lock sync.RWMutex
	sent []string
	Err  error
}

func (m *FakeMessenger) Send(channel string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.sent = append(m.sent, channel)
	return m.Err
}

func (m *FakeMessenger) Sent() []string {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return append([]string(nil), m.sent...)
}
