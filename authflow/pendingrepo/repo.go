package pendingrepo

import "time"

// AuthRequest is what the callback needs to finish an authorization request,
// keyed by the state parameter sent to the provider.
type AuthRequest struct {
	CodeVerifier string
	Nonce        string
	RedirectURL  string
	Username     string
	CreatedAt    time.Time
}

type Repo interface {
	Upsert(state string, req *AuthRequest) error
	Get(state string) (*AuthRequest, error)
	Delete(state string) error
	DeleteBefore(cutoff time.Time) int
}
