package authflow_test

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	testClientID   = "desktop-client"
	testSigningKey = "test-signing-key"
	webAPIClaim    = "http://schemes.superoffice.net/identity/webapi_url"
	testWebAPIURL  = "https://sod.superoffice.com/Cust12345/api/"
)

type issuedCode struct {
	nonce     string
	challenge string
}

// fakeIdP is a minimal OpenID provider: discovery, authorize, token and revoke.
type fakeIdP struct {
	srv *httptest.Server

	mu            sync.Mutex
	codes         map[string]issuedCode
	refreshTokens map[string]bool
	issued        int
	discoveryHits int
	refreshes     int
	revoked       []string
	loginHint     string
	expiresIn     int
	tamperNonce   bool
	omitIDToken   bool
	revokeStatus  int

	// refreshHeld and refreshRelease, when set, park refresh grants until released.
	refreshHeld    chan struct{}
	refreshRelease chan struct{}
}

func newFakeIdP(t *testing.T) *fakeIdP {
	t.Helper()

	idp := &fakeIdP{
		codes:         map[string]issuedCode{},
		refreshTokens: map[string]bool{},
		expiresIn:     3600,
		revokeStatus:  http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/openid-configuration", idp.discovery)
	mux.HandleFunc("GET /authorize", idp.authorize)
	mux.HandleFunc("POST /token", idp.token)
	mux.HandleFunc("POST /revoke", idp.revoke)

	idp.srv = httptest.NewServer(mux)
	t.Cleanup(idp.srv.Close)
	return idp
}

func (idp *fakeIdP) issuer() string {
	return idp.srv.URL
}

func (idp *fakeIdP) discovery(w http.ResponseWriter, r *http.Request) {
	idp.mu.Lock()
	idp.discoveryHits++
	idp.mu.Unlock()

	base := idp.issuer()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"issuer":                                base,
		"authorization_endpoint":                base + "/authorize",
		"token_endpoint":                        base + "/token",
		"jwks_uri":                              base + "/jwks",
		"revocation_endpoint":                   base + "/revoke",
		"response_types_supported":              []string{"code"},
		"id_token_signing_alg_values_supported": []string{"HS256"},
	})
}

func (idp *fakeIdP) authorize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	redirectURI, err := url.Parse(q.Get("redirect_uri"))
	if err != nil || q.Get("code_challenge_method") != "S256" || q.Get("client_id") != testClientID {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	idp.mu.Lock()
	idp.issued++
	code := fmt.Sprintf("code-%d", idp.issued)
	idp.codes[code] = issuedCode{nonce: q.Get("nonce"), challenge: q.Get("code_challenge")}
	idp.loginHint = q.Get("login_hint")
	idp.mu.Unlock()

	back := redirectURI.Query()
	back.Set("code", code)
	back.Set("state", q.Get("state"))
	redirectURI.RawQuery = back.Encode()
	http.Redirect(w, r, redirectURI.String(), http.StatusFound)
}

func (idp *fakeIdP) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	if r.PostForm.Get("grant_type") == "refresh_token" {
		idp.mu.Lock()
		held, release := idp.refreshHeld, idp.refreshRelease
		idp.mu.Unlock()
		if release != nil {
			held <- struct{}{}
			<-release
		}
	}

	idp.mu.Lock()
	defer idp.mu.Unlock()

	nonce := ""
	switch r.PostForm.Get("grant_type") {
	case "authorization_code":
		issued, ok := idp.codes[r.PostForm.Get("code")]
		if !ok {
			writeTokenError(w, "invalid_grant")
			return
		}
		delete(idp.codes, r.PostForm.Get("code"))
		sum := sha256.Sum256([]byte(r.PostForm.Get("code_verifier")))
		if base64.RawURLEncoding.EncodeToString(sum[:]) != issued.challenge {
			writeTokenError(w, "invalid_grant")
			return
		}
		nonce = issued.nonce
		if idp.tamperNonce {
			nonce = "someone-elses-nonce"
		}
	case "refresh_token":
		if !idp.refreshTokens[r.PostForm.Get("refresh_token")] {
			writeTokenError(w, "invalid_grant")
			return
		}
		idp.refreshes++
	default:
		writeTokenError(w, "unsupported_grant_type")
		return
	}

	idp.issued++
	refreshToken := fmt.Sprintf("refresh-%d", idp.issued)
	idp.refreshTokens[refreshToken] = true

	resp := map[string]any{
		"access_token":  fmt.Sprintf("access-%d", idp.issued),
		"token_type":    "Bearer",
		"expires_in":    idp.expiresIn,
		"refresh_token": refreshToken,
	}
	if !idp.omitIDToken {
		resp["id_token"] = idp.idToken(nonce)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (idp *fakeIdP) revoke(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	idp.mu.Lock()
	defer idp.mu.Unlock()
	idp.revoked = append(idp.revoked, r.PostForm.Get("token_type_hint"))
	w.WriteHeader(idp.revokeStatus)
}

func (idp *fakeIdP) idToken(nonce string) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":       idp.issuer(),
		"aud":       testClientID,
		"sub":       "user-42",
		"iat":       now.Unix(),
		"exp":       now.Add(time.Hour).Unix(),
		webAPIClaim: testWebAPIURL,
	}
	if nonce != "" {
		claims["nonce"] = nonce
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSigningKey))
	if err != nil {
		panic(err)
	}
	return signed
}

// holdRefreshes parks the next refresh grant. held receives once the grant
// arrives; closing release lets it continue.
func (idp *fakeIdP) holdRefreshes() (held <-chan struct{}, release chan struct{}) {
	idp.mu.Lock()
	defer idp.mu.Unlock()
	idp.refreshHeld = make(chan struct{}, 1)
	idp.refreshRelease = make(chan struct{})
	return idp.refreshHeld, idp.refreshRelease
}

func (idp *fakeIdP) snapshot() (discoveryHits, refreshes int, revoked []string, loginHint string) {
	idp.mu.Lock()
	defer idp.mu.Unlock()
	return idp.discoveryHits, idp.refreshes, append([]string(nil), idp.revoked...), idp.loginHint
}

func writeTokenError(w http.ResponseWriter, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}
