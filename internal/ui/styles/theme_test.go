// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestNewTheme(t *testing.T) {
	theme := NewTheme()

	if theme == nil {
		t.Fatal("NewTheme() returned nil")
	}

	rendered := theme.App.Render("test")
	if rendered == "" {
		t.Error("NewTheme() should initialize App style")
	}
}

func TestThemeInitStyles(t *testing.T) {
	theme := NewTheme()

	// An uninitialized style renders the input unchanged and empty input
	// to nothing; every style here must at least echo its input.
	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"HeaderTitle", theme.HeaderTitle},
		{"NotebookItemSelected", theme.NotebookItemSelected},
		{"DocHeader", theme.DocHeader},
		{"QuestionBubble", theme.QuestionBubble},
		{"AnswerBubble", theme.AnswerBubble},
		{"SourcesBlock", theme.SourcesBlock},
		{"InputContainer", theme.InputContainer},
		{"StatusBar", theme.StatusBar},
		{"WelcomeBox", theme.WelcomeBox},
		{"ThinkingText", theme.ThinkingText},
	}

	for _, s := range styles {
		if rendered := s.style.Render("test"); rendered == "" {
			t.Errorf("%s style should be initialized", s.name)
		}
	}
}

func TestThemeSetSize(t *testing.T) {
	theme := NewTheme()
	theme.SetSize(120, 40)

	if theme.Width != 120 || theme.Height != 40 {
		t.Errorf("SetSize stored %dx%d, want 120x40", theme.Width, theme.Height)
	}
}
