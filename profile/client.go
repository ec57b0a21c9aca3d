package profile

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	autherrors "github.com/jrsteele09/go-auth-desktop/internal/errors"
	"github.com/pkg/errors"
)

const (
	currentPrincipalPath = "v1/User/currentPrincipal"
	personImagePath      = "v1/Person/%d/Image?ifBlank=ClearPixel"

	acceptJSON   = "application/json; charset=utf-8"
	acceptImages = "image/png, image/jpeg, image/gif"
)

var (
	ErrUnexpectedStatus = autherrors.ErrUnexpectedStatus
	ErrEmptyToken       = autherrors.ErrEmptyToken
)

// Client issues bearer-authorized requests against a tenant web API.
type Client struct {
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(options ...ClientOption) *Client {
	c := &Client{}
	for _, opt := range options {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	return c
}

// FetchPrincipal returns the profile of the user the access token belongs to.
func (c *Client) FetchPrincipal(ctx context.Context, baseURL, accessToken string) (*UserProfile, error) {
	resp, err := c.get(ctx, baseURL+currentPrincipalPath, accessToken, acceptJSON)
	if err != nil {
		return nil, errors.Wrap(err, "Client.FetchPrincipal")
	}
	defer resp.Body.Close()

	var user UserProfile
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, errors.Wrap(err, "Client.FetchPrincipal Decode")
	}
	return &user, nil
}

// FetchImage downloads the person image and returns it as a data URI. The
// whole body is held in memory; person images are thumbnails.
func (c *Client) FetchImage(ctx context.Context, baseURL, accessToken string, personID int) (string, error) {
	resp, err := c.get(ctx, baseURL+fmt.Sprintf(personImagePath, personID), accessToken, acceptImages)
	if err != nil {
		return "", errors.Wrap(err, "Client.FetchImage")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "Client.FetchImage ReadAll")
	}
	return EncodeDataURI(resp.Header.Get("Content-Type"), body), nil
}

// EncodeDataURI builds a data:<content-type>;base64,<payload> URI.
func EncodeDataURI(contentType string, body []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(body)
}

func (c *Client) get(ctx context.Context, url, accessToken, accept string) (*http.Response, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, ErrEmptyToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", accept)
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, errors.Wrapf(ErrUnexpectedStatus, "GET %s: %d", req.URL.Path, resp.StatusCode)
	}
	return resp, nil
}
