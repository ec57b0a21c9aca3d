package session

import (
	"context"
	"fmt"

	autherrors "github.com/jrsteele09/go-auth-desktop/internal/errors"
	"github.com/jrsteele09/go-auth-desktop/view"
)

// FetchProfile loads the current principal and then its picture. A failed
// principal request leaves the view untouched and is returned. A failed
// picture request is logged and the profile is kept without a picture.
func (c *Controller) FetchProfile(ctx context.Context) error {
	if !c.fetching.CompareAndSwap(false, true) {
		c.logger.Warn().Msg("Profile fetch already running")
		return ErrFetchInProgress
	}
	defer c.fetching.Store(false)

	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()

	info, err := c.auth.PerformWithFreshTokens(ctx)
	if err != nil {
		c.logger.Err(err).Msg("Getting fresh tokens failed")
		return autherrors.Wrapf(err, "Controller.FetchProfile PerformWithFreshTokens")
	}

	webAPI := c.GetWebAPIURL(info)

	user, err := c.profiles.FetchPrincipal(ctx, webAPI, info.AccessToken)
	if err != nil {
		c.logger.Err(err).Msg("Fetching user info failed")
		return autherrors.Wrapf(err, "Controller.FetchProfile FetchPrincipal")
	}
	c.logger.Info().Str("full_name", user.FullName).Int("person_id", user.PersonID).Msg("User Info")

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		c.logger.Debug().Msg("Signed out while fetching user info")
		return nil
	}
	c.profile = user
	c.state = SignedIn
	c.mu.Unlock()

	c.render()
	c.view.Notify(view.Notification{
		Message: fmt.Sprintf("Welcome %s", user.FullName),
		Timeout: c.welcomeTO,
	})

	c.logger.Debug().Msg("Fetching user image...")
	picture, err := c.profiles.FetchImage(ctx, webAPI, info.AccessToken, user.PersonID)
	if err != nil {
		c.logger.Err(err).Msg("Error getting image")
		return nil
	}

	c.mu.Lock()
	if c.epoch != epoch || c.profile != user {
		// Signed out or replaced while the image was loading.
		c.mu.Unlock()
		return nil
	}
	user.Picture = picture
	snapshot := *user
	c.mu.Unlock()

	c.view.UpdateImage(&snapshot)
	return nil
}
