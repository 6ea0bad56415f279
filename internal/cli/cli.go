// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for lorebook.
//
// CLI: Comprehensive help and examples for all commands
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdStatus
	CmdNotebooks
	CmdAsk
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool   // Output in JSON format
	URL     string // Gateway base URL (overrides config)

	// Command-specific
	Query      string
	Notebook   string // ask: target notebook by name instead of the active one
	ConfigKey  string
	ConfigVal  string
	Subcommand string
	NoBrowser  bool // login: print the URL instead of opening a browser

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `lorebook - terminal client for your notebook document-chat service

Lorebook talks to a notebook gateway over REST: sign in with Google in
your browser, then manage notebooks, upload documents and ask questions
about them without leaving the terminal.

Usage:
  lorebook                   Start TUI (default)
  lorebook login             Sign in (opens the OAuth URL in your browser)
  lorebook logout            End the current session
  lorebook status, s         Show gateway health and session state
  lorebook notebooks, nb     List notebooks
  lorebook ask "question"    Ask the active notebook a single question
  lorebook config [show|get|set|path]   Configuration
  lorebook version           Show version information
  lorebook help              Show this help

Config Keys:
  backend.url         Gateway base URL
  backend.timeout     Request timeout in seconds (1-600)
  ui.theme            Color theme (dark/light)
  watch.enabled       Watched-folder auto-upload (true/false)
  watch.dir           Directory to watch for new documents
  watch.debounce_ms   Quiet period before a new file is uploaded

Global Flags:
  --url URL           Gateway base URL (overrides config)
  --json              Output in JSON format where supported
  -q, --quiet         Minimal output
  -v, --verbose       Verbose output

Examples:
  lorebook login
  lorebook login --no-browser
  lorebook ask "What deadlines does the contract mention?"
  lorebook config set watch.dir ~/Documents/lorebook-inbox
  LOREBOOK_URL=https://gateway.example.com lorebook status

Environment:
  LOREBOOK_URL        Gateway base URL
  LOREBOOK_TIMEOUT    Request timeout in seconds
  LOREBOOK_THEME      Color theme (dark/light)
  LOREBOOK_WATCH_DIR  Watch directory (implies watch.enabled)

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("lorebook version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	args := os.Args[1:]

	remaining, parsedArgs := parseGlobalFlags(args)

	// No remaining args: default to TUI
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "login", "signin":
		for _, a := range remaining {
			if a == "--no-browser" || a == "--print" {
				parsedArgs.NoBrowser = true
			}
		}
		return CmdLogin, parsedArgs

	case "logout", "signout":
		return CmdLogout, parsedArgs

	case "status", "s":
		return CmdStatus, parsedArgs

	case "notebooks", "nb", "list":
		return CmdNotebooks, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		if suggestion := SuggestCommand(cmd); suggestion != "" {
			fmt.Fprintf(os.Stderr, "Did you mean: lorebook %s?\n", suggestion)
		}
		fmt.Fprintf(os.Stderr, "Run 'lorebook help' for usage.\n")
		os.Exit(1)
		return CmdHelp, parsedArgs // unreachable
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--url":
			if i+1 < len(args) {
				i++
				parsedArgs.URL = args[i]
			}
		default:
			remaining = append(remaining, arg)
		}
		i++
	}

	return remaining, parsedArgs
}

// parseAskArgs collects ask flags and the question text.
func parseAskArgs(parsedArgs *Args, remaining []string) {
	var parts []string
	i := 0
	for i < len(remaining) {
		a := remaining[i]
		switch {
		case a == "--notebook" || a == "-n":
			if i+1 < len(remaining) {
				i++
				parsedArgs.Notebook = remaining[i]
			}
		case strings.HasPrefix(a, "--"):
			// Unknown flag; ignore rather than fold into the question.
		default:
			parts = append(parts, a)
		}
		i++
	}
	parsedArgs.Query = strings.Join(parts, " ")
}

// parseConfigArgs parses config subcommand arguments.
// Forms: config | config show | config path | config get KEY | config set KEY VALUE
func parseConfigArgs(parsedArgs *Args, remaining []string) {
	if len(remaining) == 0 {
		parsedArgs.Subcommand = "show"
		return
	}
	parsedArgs.Subcommand = strings.ToLower(remaining[0])
	if len(remaining) > 1 {
		parsedArgs.ConfigKey = remaining[1]
	}
	if len(remaining) > 2 {
		parsedArgs.ConfigVal = strings.Join(remaining[2:], " ")
	}
}
