package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/orthoroute/pkg/geom"
	"github.com/matzehuels/orthoroute/pkg/manhattan"
)

func newTestPlay(t *testing.T) playModel {
	t.Helper()
	m, err := newPlayModel(manhattan.New(manhattan.Options{}), manhattan.ConnectRequest{
		Source: geom.R(0, 0, 100, 100),
		Target: geom.R(300, 200, 100, 100),
		Start:  geom.Right,
		End:    geom.Left,
	}, 20)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func press(m playModel, keys ...tea.KeyMsg) playModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(playModel)
	}
	return m
}

func TestPlayMoveRepairs(t *testing.T) {
	m := newTestPlay(t)

	m = press(m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyDown})

	if m.selected != 1 {
		t.Fatalf("selected = %d, want 1", m.selected)
	}
	if m.rects[1] != geom.R(300, 220, 100, 100) {
		t.Errorf("target = %v, want moved down by 20", m.rects[1])
	}
	if m.last.Kind != manhattan.RepairAdjusted {
		t.Errorf("kind = %v, want adjusted", m.last.Kind)
	}
	want := []geom.Point{{X: 100, Y: 50}, {X: 200, Y: 50}, {X: 200, Y: 270}, {X: 300, Y: 270}}
	if got := geom.Points(m.route); !slicesEqual(got, want) {
		t.Errorf("route = %v, want %v", got, want)
	}
	if m.moves != 1 {
		t.Errorf("moves = %d, want 1", m.moves)
	}
}

func TestPlayVimKeysAndRelayout(t *testing.T) {
	m := newTestPlay(t)
	m = press(m,
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")},
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")},
	)
	if m.rects[0] != geom.R(0, 0, 100, 100) {
		t.Errorf("source = %v after l then h, want original", m.rects[0])
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.last.Kind != manhattan.RepairRelayout {
		t.Errorf("kind after r = %v, want relayout", m.last.Kind)
	}
}

func TestPlayQuit(t *testing.T) {
	m := newTestPlay(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestPlayView(t *testing.T) {
	m := newTestPlay(t)
	view := m.View()
	for _, want := range []string{"A", "B", "◆", "waypoints", "h:h"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
