// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// login.go - Sign-in and sign-out command handlers for lorebook.
//
// Command: login
// Short:   Sign in with Google via the gateway's OAuth redirect
//
// The gateway authenticates in the browser and issues an opaque session
// token as a cookie. The browser cannot hand that cookie to a terminal
// process, so login is a two-step hand-off: open the OAuth URL, then
// paste the session token shown on the post-login page.
//
// Examples:
//   lorebook login
//   lorebook login --no-browser    Print the URL instead of opening it
//   lorebook logout
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/lorebook-tui/internal/api"
	"github.com/jeranaias/lorebook-tui/internal/config"
)

// loginProbeTimeout bounds each session probe during the login flow.
// The flow as a whole has no deadline: the user may spend minutes in
// the browser.
var loginProbeTimeout = 15 * time.Second

// HandleLogin runs the browser hand-off sign-in flow.
func HandleLogin(args Args) error {
	return runLogin(args, os.Stdin)
}

func runLogin(args Args, input io.Reader) error {
	client, err := newGatewayClient(args)
	if err != nil {
		return err
	}

	// Already signed in? Probe before bothering the user.
	if client.HasToken() {
		ctx, cancel := context.WithTimeout(context.Background(), loginProbeTimeout)
		profile, err := client.ProbeSession(ctx)
		cancel()
		if err == nil && profile != nil {
			fmt.Printf("%s Already signed in as %s\n",
				SuccessStyle.Render("✓"), profile.DisplayName)
			return nil
		}
	}

	loginURL := client.LoginURL()
	fmt.Println(TitleStyle.Render("Sign in to lorebook"))
	fmt.Printf("Open this URL in your browser and sign in with Google:\n\n  %s\n\n", loginURL)

	if !args.NoBrowser {
		if err := OpenBrowser(loginURL); err != nil {
			fmt.Fprintf(os.Stderr, "Could not open a browser: %v\n", err)
		}
	}

	fmt.Print("Paste your session token (shown after sign-in): ")
	reader := bufio.NewReader(input)
	line, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading token: %w", err)
	}
	token := strings.TrimSpace(line)
	if token == "" {
		return errors.New("no token entered")
	}

	client.SetToken(token)

	// The verification deadline starts now, after the paste; anything
	// started before the hand-off would already be spent.
	ctx, cancel := context.WithTimeout(context.Background(), loginProbeTimeout)
	defer cancel()
	profile, err := client.ProbeSession(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return errors.New("the gateway rejected that token; sign in again and copy it exactly")
		}
		return fmt.Errorf("verifying session: %w", err)
	}

	tokenPath, err := config.TokenPath()
	if err != nil {
		return err
	}
	if err := api.SaveToken(tokenPath, token); err != nil {
		return fmt.Errorf("saving session token: %w", err)
	}

	fmt.Printf("%s Signed in as %s\n", SuccessStyle.Render("✓"), profile.DisplayName)
	return nil
}

// HandleLogout ends the gateway session and removes the local token.
// The local token is removed even when the network call fails.
func HandleLogout(args Args) error {
	client, err := newGatewayClient(args)
	if err != nil {
		return err
	}

	if !client.HasToken() {
		fmt.Println("Not signed in.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := client.EndSession(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not end the gateway session: %v\n", err)
	}

	tokenPath, err := config.TokenPath()
	if err != nil {
		return err
	}
	if err := api.DeleteToken(tokenPath); err != nil {
		return fmt.Errorf("removing session token: %w", err)
	}

	fmt.Printf("%s Signed out\n", SuccessStyle.Render("✓"))
	return nil
}
