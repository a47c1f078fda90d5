package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/godepscan/pkg/deps/golang"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestManagerListModelCursorStartsOnPresent(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "vendor.conf"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManagerListModel(root)
	if len(m.Choices) != 3 {
		t.Fatalf("got %d choices, want 3", len(m.Choices))
	}
	if m.Cursor != 2 || !m.Choices[2].Present || m.Choices[0].Present {
		t.Errorf("cursor = %d, choices = %+v", m.Cursor, m.Choices)
	}
}

func TestManagerListModelNavigation(t *testing.T) {
	m := NewManagerListModel(t.TempDir())

	steps := []struct {
		key    string
		cursor int
	}{
		{"up", 0},
		{"down", 1},
		{"j", 2},
		{"down", 2},
		{"k", 1},
	}
	for _, s := range steps {
		next, _ := m.Update(key(s.key))
		m = next.(ManagerListModel)
		if m.Cursor != s.cursor {
			t.Fatalf("after %q cursor = %d, want %d", s.key, m.Cursor, s.cursor)
		}
	}

	next, cmd := m.Update(key("enter"))
	m = next.(ManagerListModel)
	if m.Selected == nil || *m.Selected != golang.Godep {
		t.Errorf("selected = %v, want godep", m.Selected)
	}
	if cmd == nil {
		t.Error("enter should quit")
	}
}

func TestManagerListModelQuit(t *testing.T) {
	m := NewManagerListModel(t.TempDir())
	next, cmd := m.Update(key("q"))
	if next.(ManagerListModel).Selected != nil {
		t.Error("quit should not select")
	}
	if cmd == nil {
		t.Error("q should quit")
	}
}

func TestManagerListModelView(t *testing.T) {
	view := NewManagerListModel(t.TempDir()).View()
	for _, want := range []string{"Select Dependency Manager", "Gopkg.lock", "Godeps.json", "vendor.conf", "missing"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}
