// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"
)

func TestToastManager_AddAssignsIDs(t *testing.T) {
	m := NewToastManager()
	id1 := m.AddError("first")
	id2 := m.AddStatus("second")
	if id1 == id2 {
		t.Errorf("duplicate toast IDs: %d", id1)
	}
	if len(m.Toasts()) != 2 {
		t.Errorf("got %d toasts, want 2", len(m.Toasts()))
	}
}

func TestToastManager_NewestFirst(t *testing.T) {
	m := NewToastManager()
	m.AddStatus("older")
	m.AddStatus("newer")
	toasts := m.Toasts()
	if toasts[0].Message != "newer" {
		t.Errorf("first toast = %q, want newer", toasts[0].Message)
	}
}

func TestToastManager_TrimsToMax(t *testing.T) {
	m := NewToastManager()
	for i := 0; i < 10; i++ {
		m.AddStatus("toast")
	}
	if got := len(m.Toasts()); got != 5 {
		t.Errorf("stack size = %d, want 5", got)
	}
}

func TestToastManager_Remove(t *testing.T) {
	m := NewToastManager()
	id := m.AddError("oops")
	m.AddStatus("keep")
	m.Remove(id)

	toasts := m.Toasts()
	if len(toasts) != 1 || toasts[0].Message != "keep" {
		t.Errorf("unexpected stack: %+v", toasts)
	}
}

func TestToastManager_TickExpires(t *testing.T) {
	m := NewToastManager()
	expired := NewStatusToast("old")
	expired.CreatedAt = time.Now().Add(-time.Minute)
	m.Add(expired)
	m.AddStatus("fresh")

	remaining := m.Tick()
	if len(remaining) != 1 || remaining[0].Message != "fresh" {
		t.Errorf("unexpected stack after tick: %+v", remaining)
	}
}

func TestToastDurations(t *testing.T) {
	if NewErrorToast("e").Duration <= NewStatusToast("s").Duration {
		t.Error("error toasts should linger longer than status toasts")
	}
}

func TestRenderToast_IncludesMessage(t *testing.T) {
	out := RenderToast(NewSuccessToast("uploaded"), 80)
	if !strings.Contains(out, "uploaded") {
		t.Errorf("rendered toast missing message: %q", out)
	}
}

func TestRenderToastStack_Empty(t *testing.T) {
	if out := RenderToastStack(nil, 80); out != "" {
		t.Errorf("empty stack rendered %q", out)
	}
}
