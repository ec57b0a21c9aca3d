package session

// State is the session-level state of the controller.
type State int

const (
	SignedOut State = iota
	Authenticating
	SignedIn
)

func (s State) String() string {
	switch s {
	case SignedOut:
		return "signed-out"
	case Authenticating:
		return "authenticating"
	case SignedIn:
		return "signed-in"
	}
	return "unknown"
}
