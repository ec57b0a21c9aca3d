package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-auth-desktop/authflow"
	"github.com/jrsteele09/go-auth-desktop/hostbridge"
	"github.com/jrsteele09/go-auth-desktop/internal/config"
	"github.com/jrsteele09/go-auth-desktop/profile"
	"github.com/jrsteele09/go-auth-desktop/session"
	"github.com/jrsteele09/go-auth-desktop/view"
	"github.com/jrsteele09/go-auth-desktop/view/console"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const helpText = `commands:
  click           press the sign-in / sign-out button
  signin [user]   sign in, optionally hinting the user name
  signout         sign out
  profile         fetch the user profile
  action          press the notification action
  quit            exit`

func runCmd() *cobra.Command {
	cfg := &flagConfig{Config: config.New()}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the interactive client",
		Long: "Start the client. The view is drawn on stderr, host messages are written " +
			"to stdout as JSON lines, and button presses are read from stdin.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cfg.bind(cmd)
	return cmd
}

func run(ctx context.Context, cfg *flagConfig, in io.Reader, hostOut, screen io.Writer) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	displayAppname(screen, cfg.GetAppName())

	elements, snackbar := console.New(screen).Elements()
	flow := authflow.New(cfg)
	controller := session.NewController(
		flow,
		profile.NewClient(),
		view.NewBinder(elements),
		hostbridge.NewStreamMessenger(hostOut),
		session.WithWebAPIClaim(cfg.GetWebAPIClaim()),
		session.WithWelcomeTimeout(cfg.GetWelcomeTimeout()),
	)
	log.Info().Str("issuer", cfg.GetIssuerURL()).Msg("Init complete")
	fmt.Fprintln(screen, helpText)

	lines := make(chan string)
	go readLines(ctx, in, lines)

	for {
		select {
		case <-ctx.Done():
			controller.SignOut(context.Background())
			return nil
		case line, ok := <-lines:
			if !ok {
				controller.SignOut(context.Background())
				return nil
			}
			if quit := dispatch(ctx, controller, snackbar, screen, line); quit {
				controller.SignOut(context.Background())
				return nil
			}
		}
	}
}

func dispatch(ctx context.Context, c *session.Controller, snackbar *console.Snackbar, screen io.Writer, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "click":
		c.HandleSignInClick(ctx)
	case "signin":
		username := ""
		if len(fields) > 1 {
			username = fields[1]
		}
		if err := c.SignIn(ctx, username); err != nil {
			log.Err(err).Msg("Sign-in failed")
		}
	case "signout":
		c.SignOut(ctx)
	case "profile":
		go c.HandleFetchProfileClick(ctx)
	case "action":
		if !snackbar.TriggerAction() {
			fmt.Fprintln(screen, "no notification action")
		}
	case "quit", "exit":
		return true
	default:
		fmt.Fprintln(screen, helpText)
	}
	return false
}

// readLines forwards input lines until the input ends or ctx is done. A read
// blocked on the terminal is left to end with the process.
func readLines(ctx context.Context, in io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
}

func displayAppname(w io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(w, myFigure.String())
}
