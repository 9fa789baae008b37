package models

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenilsonani/bytesweep/internal/classify"
	"github.com/fenilsonani/bytesweep/internal/plan"
	"github.com/fenilsonani/bytesweep/internal/scanner"
)

func buildPlan(t *testing.T, deletes int, cat classify.Category, size int64) *plan.Plan {
	t.Helper()
	b := plan.NewBuilder("/sweep")
	for i := 0; i < deletes; i++ {
		name := fmt.Sprintf("f_%d.bin", i+1)
		f := scanner.FileInfo{Path: "/sweep/" + name, Dir: "/sweep", Name: name, Size: size}
		if err := b.Delete(f, cat, "test"); err != nil {
			t.Fatal(err)
		}
	}
	return b.Build()
}

func TestCalculateRiskLevel(t *testing.T) {
	tests := []struct {
		name    string
		deletes int
		cat     classify.Category
		size    int64
		want    RiskLevel
	}{
		{"few text files", 3, classify.Text, 10, RiskLow},
		{"media", 1, classify.Video, 10, RiskMedium},
		{"many files", 60, classify.Image, 10, RiskMedium},
		{"huge count", 501, classify.Text, 1, RiskHigh},
		{"huge size", 2, classify.Image, 1 << 30, RiskHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calculateRiskLevel(buildPlan(t, tt.deletes, tt.cat, tt.size)); got != tt.want {
				t.Errorf("calculateRiskLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfirmDefaultsToCancelForHighRisk(t *testing.T) {
	m := NewConfirmModel(buildPlan(t, 501, classify.Text, 1))
	if m.cursor != buttonCancel {
		t.Errorf("cursor = %d, want cancel", m.cursor)
	}

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Confirmed() {
		t.Error("enter on cancel should not confirm")
	}
}

func TestConfirmKeys(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
		want bool
	}{
		{"y confirms", []tea.KeyMsg{runes("y")}, true},
		{"n cancels", []tea.KeyMsg{runes("n")}, false},
		{"esc cancels", []tea.KeyMsg{{Type: tea.KeyEsc}}, false},
		{"enter on yes", []tea.KeyMsg{{Type: tea.KeyEnter}}, true},
		{"right then enter", []tea.KeyMsg{{Type: tea.KeyRight}, {Type: tea.KeyEnter}}, false},
		{"right left enter", []tea.KeyMsg{{Type: tea.KeyRight}, {Type: tea.KeyLeft}, {Type: tea.KeyEnter}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewConfirmModel(buildPlan(t, 2, classify.Text, 5))
			var cmd tea.Cmd
			for _, k := range tt.keys {
				m, cmd = press(m, k)
			}
			if cmd == nil {
				t.Fatal("final key should quit")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("final key should return tea.Quit")
			}
			if m.Confirmed() != tt.want {
				t.Errorf("Confirmed() = %v, want %v", m.Confirmed(), tt.want)
			}
		})
	}
}

func TestConfirmView(t *testing.T) {
	m := NewConfirmModel(buildPlan(t, 2, classify.Image, 1024))
	view := m.View()

	for _, want := range []string{"Confirm Sweep", "/sweep", "delete 2 files", "image:", "Risk Level", "Yes, sweep", "Cancel"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *ConfirmModel, k tea.KeyMsg) (*ConfirmModel, tea.Cmd) {
	next, cmd := m.Update(k)
	return next.(*ConfirmModel), cmd
}
