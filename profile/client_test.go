package profile_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-auth-desktop/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "access-token-1"

func newWebAPI(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/User/currentPrincipal", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json; charset=utf-8", r.Header.Get("Accept"))
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"FullName":"Jane Doe","Associate":"JD","EMailAddress":"jane@example.com","AssociateId":7,"PersonId":42,"ContactId":3}`))
	})
	mux.HandleFunc("GET /api/v1/Person/42/Image", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ClearPixel", r.URL.Query().Get("ifBlank"))
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		assert.Equal(t, "image/png, image/jpeg, image/gif", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0, 1, 2})
	})
	mux.HandleFunc("GET /api/v1/Person/13/Image", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	mux.HandleFunc("GET /broken/v1/User/currentPrincipal", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"FullName":`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_FetchPrincipal(t *testing.T) {
	srv := newWebAPI(t)
	c := profile.NewClient(profile.WithHTTPClient(srv.Client()))

	user, err := c.FetchPrincipal(context.Background(), srv.URL+"/api/", testToken)
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", user.FullName)
	require.Equal(t, 42, user.PersonID)
	require.Equal(t, 7, user.AssociateID)
	require.Empty(t, user.Picture)
}

func TestClient_FetchPrincipal_Errors(t *testing.T) {
	srv := newWebAPI(t)
	c := profile.NewClient(profile.WithHTTPClient(srv.Client()))

	t.Run("malformed json", func(t *testing.T) {
		_, err := c.FetchPrincipal(context.Background(), srv.URL+"/broken/", testToken)
		require.Error(t, err)
	})

	t.Run("unknown path", func(t *testing.T) {
		_, err := c.FetchPrincipal(context.Background(), srv.URL+"/missing/", testToken)
		require.ErrorIs(t, err, profile.ErrUnexpectedStatus)
		require.ErrorContains(t, err, "404")
	})

	t.Run("empty base url", func(t *testing.T) {
		_, err := c.FetchPrincipal(context.Background(), "", testToken)
		require.Error(t, err)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := c.FetchPrincipal(context.Background(), srv.URL+"/api/", "")
		require.True(t, errors.Is(err, profile.ErrEmptyToken))
	})
}

func TestClient_FetchImage(t *testing.T) {
	srv := newWebAPI(t)
	c := profile.NewClient(profile.WithHTTPClient(srv.Client()))

	picture, err := c.FetchImage(context.Background(), srv.URL+"/api/", testToken, 42)
	require.NoError(t, err)
	require.Equal(t, "data:image/png;base64,AAEC", picture)

	_, err = c.FetchImage(context.Background(), srv.URL+"/api/", testToken, 13)
	require.ErrorIs(t, err, profile.ErrUnexpectedStatus)
}

func TestEncodeDataURI(t *testing.T) {
	require.Equal(t, "data:image/gif;base64,", profile.EncodeDataURI("image/gif", nil))
	require.Equal(t, "data:image/jpeg;base64,/9j/", profile.EncodeDataURI("image/jpeg", []byte{0xff, 0xd8, 0xff}))
}
