// lorebook - A terminal client for a notebook document-chat service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/lorebook-tui/internal/api"
	"github.com/jeranaias/lorebook-tui/internal/cache"
	"github.com/jeranaias/lorebook-tui/internal/cli"
	"github.com/jeranaias/lorebook-tui/internal/config"
	"github.com/jeranaias/lorebook-tui/internal/notebook"
	"github.com/jeranaias/lorebook-tui/internal/session"
	"github.com/jeranaias/lorebook-tui/internal/ui/chat"
	"github.com/jeranaias/lorebook-tui/internal/ui/components"
	"github.com/jeranaias/lorebook-tui/internal/ui/dashboard"
	"github.com/jeranaias/lorebook-tui/internal/ui/styles"
	"github.com/jeranaias/lorebook-tui/internal/watch"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for messages from non-UI goroutines
// (the folder watcher).
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdLogin:
		exitOnError(cli.HandleLogin(args))
	case cli.CmdLogout:
		exitOnError(cli.HandleLogout(args))
	case cli.CmdStatus:
		exitOnError(cli.HandleStatus(args))
	case cli.CmdNotebooks:
		exitOnError(cli.HandleNotebooks(args))
	case cli.CmdAsk:
		exitOnError(cli.HandleAsk(args))
	case cli.CmdConfig:
		exitOnError(cli.HandleConfig(args))
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	default:
		runTUI(args)
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// TUI STARTUP
// =============================================================================

// runTUI wires the stores together and starts the Bubble Tea program.
func runTUI(args cli.Args) {
	cfg := config.Global()

	// The TUI owns the terminal; request/warning logs go to a file.
	setupLogging()

	baseURL := cfg.Backend.BaseURL
	if args.URL != "" {
		baseURL = args.URL
	}

	client := api.NewClient(baseURL).
		WithTimeout(time.Duration(cfg.Backend.TimeoutSecs) * time.Second)

	tokenPath, err := config.TokenPath()
	if err == nil {
		if token, err := api.LoadToken(tokenPath); err == nil && token != "" {
			client.SetToken(token)
		} else if err != nil {
			log.Printf("WARN: could not read session token: %v", err)
		}
	}

	// The durable cache is best-effort; a broken cache file costs
	// persistence, not the session.
	var nbCache notebook.Cache = notebook.NopCache{}
	var cacheStore *cache.Store
	if cachePath, err := config.CachePath(); err == nil {
		if cacheStore, err = cache.Open(cachePath); err != nil {
			log.Printf("WARN: local cache unavailable: %v", err)
		} else {
			nbCache = cacheStore
			defer cacheStore.Close()
		}
	}

	store := notebook.NewStore(client, nbCache)
	sessions := session.NewStore(client)
	sessions.OnAnonymous(func(cause error) {
		store.Reset()
		if tokenPath != "" && shouldDiscardToken(cause) {
			if err := api.DeleteToken(tokenPath); err != nil {
				log.Printf("WARN: could not remove session token: %v", err)
			}
		}
	})

	theme := styles.NewTheme()
	m := newAppModel(theme, cfg, sessions, store)
	m.reloadToken = func() {
		if tokenPath == "" {
			return
		}
		if token, err := api.LoadToken(tokenPath); err == nil && token != "" {
			client.SetToken(token)
		}
	}

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.MouseEnabled {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, opts...)

	programMu.Lock()
	programRef = p
	programMu.Unlock()

	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running lorebook: %v\n", err)
		os.Exit(1)
	}
	if app, ok := final.(*appModel); ok && app.watcher != nil {
		app.watcher.Close()
	}
}

// setupLogging sends the standard logger to a file under the config dir.
// SECURITY: log lines carry method/path/status only, never tokens or bodies.
func setupLogging() {
	dir, err := config.ConfigDir()
	if err != nil {
		log.SetOutput(io.Discard)
		return
	}
	if err := config.EnsureConfigDir(); err != nil {
		log.SetOutput(io.Discard)
		return
	}
	f, err := os.OpenFile(dir+"/lorebook.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		log.SetOutput(io.Discard)
		return
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags)
}

// shouldDiscardToken reports whether the persisted session token is
// worthless after an anonymous transition: the user signed out (nil
// cause) or the gateway rejected the credential. A gateway that was
// merely unreachable keeps the token so the next probe can retry.
func shouldDiscardToken(cause error) bool {
	return cause == nil || errors.Is(cause, api.ErrUnauthorized)
}

// programSend delivers a message from outside the Bubble Tea event loop.
func programSend(msg tea.Msg) {
	programMu.Lock()
	p := programRef
	programMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// appState selects which of the top-level views is showing.
type appState int

const (
	stateLoading   appState = iota // initial probe / post-login sync
	stateLogin                     // sign-in screen
	stateDashboard                 // notebook list or document table
	stateChat                      // chat with the active notebook
)

// Messages produced by the app model's own commands.
type (
	// sessionResolvedMsg carries the outcome of a session probe.
	sessionResolvedMsg struct {
		state session.State
	}

	// syncDoneMsg carries the outcome of a notebook synchronization.
	syncDoneMsg struct {
		err error
	}

	// loggedOutMsg signals that the local session has ended.
	loggedOutMsg struct {
		err error
	}

	// watchSummaryMsg carries a watched-folder upload outcome.
	watchSummaryMsg struct {
		summary *notebook.UploadSummary
	}
)

// appModel is the root Bubble Tea model.
type appModel struct {
	state appState

	theme *styles.Theme
	cfg   *config.Config

	sessions *session.Store
	store    *notebook.Store

	dashboard dashboard.Model
	chatView  chat.Model

	spinner spinner.Model
	toasts  *components.ToastManager
	ticking bool // toast expiry ticker running

	watcher *watch.Watcher

	// reloadToken re-reads the persisted session token before a probe,
	// so a token saved by `lorebook login` in another terminal is seen.
	reloadToken func()

	// Login screen: set once the user has asked for the OAuth URL.
	loginStarted bool

	width  int
	height int
}

func newAppModel(theme *styles.Theme, cfg *config.Config, sessions *session.Store, store *notebook.Store) *appModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	return &appModel{
		state:     stateLoading,
		theme:     theme,
		cfg:       cfg,
		sessions:  sessions,
		store:     store,
		dashboard: dashboard.New(theme, store),
		chatView:  chat.New(theme, store),
		spinner:   sp,
		toasts:    components.NewToastManager(),
	}
}

// Init kicks off the session probe.
func (m *appModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.probeCmd())
}

// probeCmd resolves the initial session state off the UI goroutine.
func (m *appModel) probeCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return sessionResolvedMsg{state: m.sessions.Initialize(ctx)}
	}
}

// refreshCmd re-probes after the user signed in through the browser.
func (m *appModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		if m.reloadToken != nil {
			m.reloadToken()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return sessionResolvedMsg{state: m.sessions.Refresh(ctx)}
	}
}

// syncCmd loads notebooks, documents and cached state.
func (m *appModel) syncCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		return syncDoneMsg{err: m.store.Synchronize(ctx)}
	}
}

// logoutCmd ends the session; the local transition happens regardless
// of the network outcome.
func (m *appModel) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return loggedOutMsg{err: m.sessions.Logout(ctx)}
	}
}

// Update routes messages by state.
func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		// One line each for the status bar and its padding.
		m.dashboard.SetSize(msg.Width, msg.Height-2)
		m.chatView.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case sessionResolvedMsg:
		if msg.state == session.StateAuthenticated {
			m.state = stateLoading
			return m, m.syncCmd()
		}
		m.state = stateLogin
		return m, nil

	case syncDoneMsg:
		return m.handleSyncDone(msg)

	case loggedOutMsg:
		m.state = stateLogin
		m.loginStarted = false
		// The store was reset by the anonymous callback; rebuild the
		// views so no stale cursor survives into the next session.
		m.dashboard = dashboard.New(m.theme, m.store)
		m.chatView = chat.New(m.theme, m.store)
		m.dashboard.SetSize(m.width, m.height-2)
		m.chatView.SetSize(m.width, m.height-2)
		if msg.err != nil {
			return m, components.ShowToast(components.ToastKindWarning,
				"Signed out locally; the gateway could not be reached.")
		}
		return m, components.ShowToast(components.ToastKindSuccess, "Signed out")

	case dashboard.OpenChatMsg:
		m.state = stateChat
		m.chatView.SetSize(m.width, m.height-2)
		m.chatView.RefreshTranscript()
		return m, m.chatView.Init()

	case chat.CloseMsg:
		m.state = stateDashboard
		return m, nil

	case watchSummaryMsg:
		return m, m.watchToast(msg.summary)

	case components.ToastRequestMsg:
		switch msg.Kind {
		case components.ToastKindError:
			m.toasts.AddError(msg.Message)
		case components.ToastKindWarning:
			m.toasts.AddWarning(msg.Message)
		case components.ToastKindSuccess:
			m.toasts.AddSuccess(msg.Message)
		default:
			m.toasts.AddStatus(msg.Message)
		}
		return m, m.ensureToastTick()

	case components.ToastTickMsg:
		m.toasts.Tick()
		if m.toasts.HasToasts() {
			return m, components.ToastTickCmd()
		}
		m.ticking = false
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		if m.state == stateLoading {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		if m.state == stateChat {
			m.chatView, cmd = m.chatView.Update(msg)
		}
		return m, cmd
	}

	// Everything else belongs to the active view.
	return m.routeToView(msg)
}

// handleSyncDone finishes startup: pick the restored view and start the
// folder watcher.
func (m *appModel) handleSyncDone(msg syncDoneMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	m.dashboard = dashboard.New(m.theme, m.store)
	m.chatView = chat.New(m.theme, m.store)
	m.dashboard.SetSize(m.width, m.height-2)
	m.chatView.SetSize(m.width, m.height-2)

	if m.store.ChatOpen() && m.store.ActiveNotebook() != nil {
		m.state = stateChat
		m.chatView.RefreshTranscript()
		cmds = append(cmds, m.chatView.Init())
	} else {
		m.state = stateDashboard
	}

	if msg.err != nil {
		log.Printf("WARN: synchronize failed: %v", msg.err)
		cmds = append(cmds, components.ShowToast(components.ToastKindError,
			"Could not load notebooks from the gateway. Press R to retry."))
	}

	if cmd := m.startWatcher(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// startWatcher starts the watched-folder uploader once per process.
func (m *appModel) startWatcher() tea.Cmd {
	if m.watcher != nil || !m.cfg.Watch.Enabled {
		return nil
	}
	w, err := watch.New(m.cfg.Watch.Dir,
		time.Duration(m.cfg.Watch.DebounceMs)*time.Millisecond, m.store)
	if err != nil {
		log.Printf("WARN: watch folder disabled: %v", err)
		return components.ShowToast(components.ToastKindWarning,
			"Watch folder disabled: "+err.Error())
	}
	w.OnSummary = func(summary *notebook.UploadSummary) {
		programSend(watchSummaryMsg{summary: summary})
	}
	if err := w.Start(); err != nil {
		log.Printf("WARN: watch folder disabled: %v", err)
		return components.ShowToast(components.ToastKindWarning,
			"Watch folder disabled: "+err.Error())
	}
	m.watcher = w
	return nil
}

// watchToast summarizes a watched-folder upload batch.
func (m *appModel) watchToast(summary *notebook.UploadSummary) tea.Cmd {
	switch {
	case summary == nil:
		return nil
	case summary.AllFailed():
		return components.ShowToast(components.ToastKindError, "Watched folder: "+summary.String())
	case summary.Partial() || summary.Rejected > 0:
		return components.ShowToast(components.ToastKindWarning, "Watched folder: "+summary.String())
	default:
		return components.ShowToast(components.ToastKindSuccess, "Watched folder: "+summary.String())
	}
}

// handleKey applies global shortcuts, then hands the key to the view.
func (m *appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.state {
	case stateLoading:
		if msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil

	case stateLogin:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "l":
			m.loginStarted = true
			url := m.sessions.LoginURL()
			return m, func() tea.Msg {
				if err := cli.OpenBrowser(url); err != nil {
					return components.ToastRequestMsg{
						Kind:    components.ToastKindWarning,
						Message: "Could not open a browser; visit " + url,
					}
				}
				return nil
			}
		case "r":
			return m, m.refreshCmd()
		}
		return m, nil

	case stateDashboard:
		if !m.dashboard.Typing() {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "L":
				return m, m.logoutCmd()
			case "R":
				m.state = stateLoading
				return m, m.syncCmd()
			}
		}

	case stateChat:
		// The chat input owns the keyboard; only ctrl+c above is global.
	}

	return m.routeToView(msg)
}

// routeToView forwards a message to whichever sub-model is active.
func (m *appModel) routeToView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.state {
	case stateDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case stateChat:
		m.chatView, cmd = m.chatView.Update(msg)
	}
	return m, cmd
}

// ensureToastTick starts the expiry ticker when it is not running.
func (m *appModel) ensureToastTick() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return components.ToastTickCmd()
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the active screen with the status bar and toast overlay.
func (m *appModel) View() string {
	if m.width == 0 {
		return ""
	}

	switch m.state {
	case stateLoading:
		return components.RenderLoading(m.theme, m.spinner.View(), m.width, m.height)

	case stateLogin:
		url := ""
		if m.loginStarted {
			url = m.sessions.LoginURL()
		}
		return components.RenderLogin(m.theme, url, m.width, m.height)
	}

	var body string
	var shortcuts []components.Shortcut
	switch m.state {
	case stateChat:
		body = m.chatView.View()
		shortcuts = []components.Shortcut{
			{Key: "enter", Desc: "ask"},
			{Key: "ctrl+l", Desc: "clear"},
			{Key: "esc", Desc: "back"},
		}
	default:
		body = m.dashboard.View()
		shortcuts = m.dashboard.Shortcuts()
	}

	bar := components.RenderStatusBar(m.theme, m.statusBarData(shortcuts), m.width)

	bodyHeight := m.height - 1
	content := lipgloss.NewStyle().Width(m.width).Height(bodyHeight).Render(body)

	if m.toasts.HasToasts() {
		stack := components.RenderToastStack(m.toasts.Toasts(), m.width)
		content = lipgloss.JoinVertical(lipgloss.Left, stack, content)
		// Keep the overall height stable so the status bar stays put.
		content = lipgloss.NewStyle().Width(m.width).Height(bodyHeight).MaxHeight(bodyHeight).Render(content)
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, bar)
}

// statusBarData gathers identity and context for the status bar.
func (m *appModel) statusBarData(shortcuts []components.Shortcut) components.StatusBarData {
	data := components.StatusBarData{Shortcuts: shortcuts}
	if profile := m.sessions.Profile(); profile != nil {
		data.UserName = profile.DisplayName
	}
	if nb := m.store.ActiveNotebook(); nb != nil {
		data.NotebookName = nb.DisplayName()
	}
	return data
}
