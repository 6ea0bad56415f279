// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Non-blocking toasts inspired by lazygit's popup system. Toasts stack
// in the bottom-right corner and auto-dismiss, so a failed upload never
// blocks the rest of the UI.

package components

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/lorebook-tui/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	// ToastKindStatus is an informational toast (cyan color)
	ToastKindStatus ToastKind = iota
	// ToastKindError is an error toast (rose/red color)
	ToastKindError
	// ToastKindWarning is a warning toast (amber color)
	ToastKindWarning
	// ToastKindSuccess is a success toast (emerald color)
	ToastKindSuccess
)

// DefaultToastDuration is the auto-dismiss duration for status toasts.
const DefaultToastDuration = 4 * time.Second

// ErrorToastDuration is the auto-dismiss duration for error toasts
// (longer, to read).
const ErrorToastDuration = 8 * time.Second

// WarningToastDuration is the auto-dismiss duration for warning toasts.
const WarningToastDuration = 6 * time.Second

// Toast represents a non-blocking notification.
type Toast struct {
	ID        int
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

// NewErrorToast creates an error toast.
func NewErrorToast(message string) Toast {
	return Toast{Message: message, Kind: ToastKindError, CreatedAt: time.Now(), Duration: ErrorToastDuration}
}

// NewWarningToast creates a warning toast.
func NewWarningToast(message string) Toast {
	return Toast{Message: message, Kind: ToastKindWarning, CreatedAt: time.Now(), Duration: WarningToastDuration}
}

// NewStatusToast creates a status/info toast.
func NewStatusToast(message string) Toast {
	return Toast{Message: message, Kind: ToastKindStatus, CreatedAt: time.Now(), Duration: DefaultToastDuration}
}

// NewSuccessToast creates a success toast.
func NewSuccessToast(message string) Toast {
	return Toast{Message: message, Kind: ToastKindSuccess, CreatedAt: time.Now(), Duration: DefaultToastDuration}
}

// IsExpired returns true if the toast should be dismissed.
func (t *Toast) IsExpired() bool {
	return time.Since(t.CreatedAt) >= t.Duration
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastManager manages the visible toast stack.
type ToastManager struct {
	toasts    []Toast
	nextID    int
	maxToasts int
	mutex     sync.Mutex
}

// NewToastManager creates a toast manager.
func NewToastManager() *ToastManager {
	return &ToastManager{
		nextID:    1,
		maxToasts: 5,
	}
}

// Add adds a toast and returns its ID. Newest toasts render first; the
// stack is trimmed to maxToasts.
func (m *ToastManager) Add(toast Toast) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if toast.ID == 0 {
		toast.ID = m.nextID
		m.nextID++
	}

	m.toasts = append([]Toast{toast}, m.toasts...)
	if len(m.toasts) > m.maxToasts {
		m.toasts = m.toasts[:m.maxToasts]
	}
	return toast.ID
}

// AddError adds an error toast.
func (m *ToastManager) AddError(message string) int {
	return m.Add(NewErrorToast(message))
}

// AddWarning adds a warning toast.
func (m *ToastManager) AddWarning(message string) int {
	return m.Add(NewWarningToast(message))
}

// AddStatus adds a status toast.
func (m *ToastManager) AddStatus(message string) int {
	return m.Add(NewStatusToast(message))
}

// AddSuccess adds a success toast.
func (m *ToastManager) AddSuccess(message string) int {
	return m.Add(NewSuccessToast(message))
}

// Remove removes a toast by ID.
func (m *ToastManager) Remove(id int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for i, toast := range m.toasts {
		if toast.ID == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// Tick drops expired toasts and returns the remainder. Call on every
// ToastTickMsg.
func (m *ToastManager) Tick() []Toast {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	active := m.toasts[:0]
	for _, toast := range m.toasts {
		if !toast.IsExpired() {
			active = append(active, toast)
		}
	}
	m.toasts = active

	out := make([]Toast, len(m.toasts))
	copy(out, m.toasts)
	return out
}

// Toasts returns a copy of the current stack.
func (m *ToastManager) Toasts() []Toast {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	out := make([]Toast, len(m.toasts))
	copy(out, m.toasts)
	return out
}

// HasToasts returns true if any toast is visible.
func (m *ToastManager) HasToasts() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.toasts) > 0
}

// Clear removes all toasts.
func (m *ToastManager) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.toasts = nil
}

// =============================================================================
// TOAST MESSAGES
// =============================================================================

// ToastTickMsg is sent periodically to expire toasts.
type ToastTickMsg struct {
	Time time.Time
}

// ToastRequestMsg asks the root model to show a toast. Child views emit
// these instead of holding their own manager.
type ToastRequestMsg struct {
	Kind    ToastKind
	Message string
}

// ShowToast returns a command that requests a toast.
func ShowToast(kind ToastKind, message string) tea.Cmd {
	return func() tea.Msg {
		return ToastRequestMsg{Kind: kind, Message: message}
	}
}

// ToastTickCmd ticks the toast stack every 100ms.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}

// =============================================================================
// TOAST RENDERING
// =============================================================================

var toastStyles = map[ToastKind]lipgloss.Style{
	ToastKindStatus: lipgloss.NewStyle().
		Foreground(styles.Cyan).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Cyan).
		Padding(0, 1),
	ToastKindError: lipgloss.NewStyle().
		Foreground(styles.Rose).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Rose).
		Padding(0, 1),
	ToastKindWarning: lipgloss.NewStyle().
		Foreground(styles.Amber).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Amber).
		Padding(0, 1),
	ToastKindSuccess: lipgloss.NewStyle().
		Foreground(styles.Emerald).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Emerald).
		Padding(0, 1),
}

var toastIcons = map[ToastKind]string{
	ToastKindStatus:  "ℹ",
	ToastKindError:   "✗",
	ToastKindWarning: "▲",
	ToastKindSuccess: "✓",
}

// RenderToast renders a single toast.
func RenderToast(toast Toast, width int) string {
	maxWidth := 60
	if width > 8 && width-8 < maxWidth {
		maxWidth = width - 8
	}

	text := toastIcons[toast.Kind] + " " + toast.Message
	if lipgloss.Width(text) > maxWidth {
		text = wrapText(text, maxWidth)
	}
	return toastStyles[toast.Kind].Render(text)
}

// RenderToastStack renders all toasts, newest on top, right-aligned.
func RenderToastStack(toasts []Toast, width int) string {
	if len(toasts) == 0 {
		return ""
	}
	rendered := make([]string, len(toasts))
	for i, toast := range toasts {
		rendered[i] = RenderToast(toast, width)
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)
	if width > 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, stack)
	}
	return stack
}

// wrapText wraps text at word boundaries to fit maxWidth columns.
func wrapText(text string, maxWidth int) string {
	words := strings.Fields(text)
	var lines []string
	var line string
	for _, word := range words {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if lipgloss.Width(candidate) > maxWidth && line != "" {
			lines = append(lines, line)
			line = word
			continue
		}
		line = candidate
	}
	if line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
