package hostbridge

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/google/uuid"
)

// ChannelAppFocus asks the host process to bring the application window forward.
const ChannelAppFocus = "app-focus"

// Messenger sends zero-payload notifications to the host process. Sends are
// fire-and-forget: nothing is acknowledged and nothing is retried.
type Messenger interface {
	Send(channel string) error
}

// Message is one line on the host pipe.
type Message struct {
	ID      string `json:"id"`
	Channel string `json:"channel"`
}

// StreamMessenger writes newline-delimited JSON messages, typically to the
// stdout pipe a host process reads from.
type StreamMessenger struct {
	mu  sync.Mutex
	enc *json.Encoder
}

var _ Messenger = (*StreamMessenger)(nil)

func NewStreamMessenger(w io.Writer) *StreamMessenger {
	return &StreamMessenger{enc: json.NewEncoder(w)}
}

func (m *StreamMessenger) Send(channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enc.Encode(Message{ID: uuid.NewString(), Channel: channel})
}
