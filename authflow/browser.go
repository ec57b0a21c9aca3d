package authflow

import (
	"context"

	"github.com/pkg/browser"
)

// OpenSystemBrowser opens url in the user's default browser.
func OpenSystemBrowser(_ context.Context, url string) error {
	return browser.OpenURL(url)
}
