package tui

import (
	"slices"
	"testing"

	"github.com/charmbracelet/bubbles/key"
)

func TestDefaultKeyMap_Bindings(t *testing.T) {
	t.Parallel()
	km := DefaultKeyMap()
	for name, b := range map[string]key.Binding{
		"Quit": km.Quit,
		"Up":   km.Up,
		"Down": km.Down,
		"Help": km.Help,
	} {
		if !b.Enabled() || len(b.Keys()) == 0 {
			t.Errorf("%s binding is disabled or has no keys", name)
		}
		if b.Help().Desc == "" {
			t.Errorf("%s binding has no help text", name)
		}
	}
	for _, k := range []string{"q", "ctrl+c"} {
		if !slices.Contains(km.Quit.Keys(), k) {
			t.Errorf("Quit binding lacks %q", k)
		}
	}
}

func TestKeyMap_Help(t *testing.T) {
	t.Parallel()
	km := DefaultKeyMap()
	if got := len(km.ShortHelp()); got != 2 {
		t.Errorf("ShortHelp() has %d bindings, want 2", got)
	}
	total := 0
	for _, col := range km.FullHelp() {
		total += len(col)
	}
	if total != 4 {
		t.Errorf("FullHelp() has %d bindings, want 4", total)
	}
}
