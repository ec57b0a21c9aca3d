package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-desktop/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestFlagConfig_Precedence(t *testing.T) {
	t.Setenv("OIDC_ISSUER", "https://env.example.com")
	t.Setenv("OIDC_CLIENT_ID", "env-client")

	cfg := &flagConfig{Config: config.New()}
	cmd := &cobra.Command{Use: "run"}
	cfg.bind(cmd)
	require.NoError(t, cmd.Flags().Parse([]string{"--client-id", "flag-client", "--scopes", "openid,profile"}))

	require.Equal(t, "https://env.example.com", cfg.GetIssuerURL())
	require.Equal(t, "flag-client", cfg.GetClientID())
	require.Equal(t, []string{"openid", "profile"}, cfg.GetScopes())
	require.Equal(t, config.DefaultWebAPIClaim, cfg.GetWebAPIClaim())
}

func TestRun_QuitsOnCommand(t *testing.T) {
	t.Setenv("OIDC_ISSUER", "http://127.0.0.1:1/unreachable")

	var hostOut, screen bytes.Buffer
	in := strings.NewReader("help\nsignout\naction\nquit\n")

	err := run(context.Background(), &flagConfig{Config: config.New()}, in, &hostOut, &screen)
	require.NoError(t, err)
	require.Contains(t, screen.String(), "Sign-In")
	require.Contains(t, screen.String(), "no notification action")
	require.Empty(t, hostOut.String())
}

func TestRun_EndOfInput(t *testing.T) {
	var hostOut, screen bytes.Buffer
	err := run(context.Background(), &flagConfig{Config: config.New()}, strings.NewReader(""), &hostOut, &screen)
	require.NoError(t, err)
}

func TestReadLines_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	lines := make(chan string)
	done := make(chan struct{})
	go func() {
		readLines(ctx, strings.NewReader("click\nprofile\nquit\n"), lines)
		close(done)
	}()

	require.Equal(t, "click", <-lines)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("readLines kept waiting for a receiver")
	}
}
