package models

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenilsonani/bytesweep/internal/classify"
	"github.com/fenilsonani/bytesweep/internal/plan"
	"github.com/fenilsonani/bytesweep/internal/ui/styles"
	uiutils "github.com/fenilsonani/bytesweep/internal/ui/utils"
	"github.com/fenilsonani/bytesweep/pkg/utils"
)

// RiskLevel represents the risk level of a sweep
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
)

const (
	buttonYes = iota
	buttonCancel
)

type confirmKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
	Left    key.Binding
	Right   key.Binding
	Select  key.Binding
}

func (k confirmKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel, k.Left, k.Right, k.Select}
}

func (k confirmKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var confirmKeys = confirmKeyMap{
	Confirm: key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "confirm")),
	Cancel:  key.NewBinding(key.WithKeys("n", "N", "q", "esc", "ctrl+c"), key.WithHelp("n", "cancel")),
	Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:   key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→/l", "right")),
	Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
}

// ConfirmModel asks once whether a plan should be applied
type ConfirmModel struct {
	plan      *plan.Plan
	cursor    int
	riskLevel RiskLevel
	confirmed bool
	help      help.Model
	width     int
	height    int
}

// NewConfirmModel creates a confirm view for p
func NewConfirmModel(p *plan.Plan) *ConfirmModel {
	risk := calculateRiskLevel(p)

	cursor := buttonYes
	// Default to "Cancel" for high risk
	if risk == RiskHigh {
		cursor = buttonCancel
	}

	return &ConfirmModel{
		plan:      p,
		cursor:    cursor,
		riskLevel: risk,
		help:      help.New(),
		width:     80,
		height:    24,
	}
}

// calculateRiskLevel rates a plan by how much it deletes and of what kind
func calculateRiskLevel(p *plan.Plan) RiskLevel {
	deletes := p.Deletes()
	media := false
	for _, a := range deletes {
		if a.Category == classify.Audio || a.Category == classify.Video {
			media = true
			break
		}
	}

	// HIGH: > 500 deletions or more than a GiB
	if len(deletes) > 500 || p.DeleteBytes() > 1<<30 {
		return RiskHigh
	}

	// MEDIUM: 50-500 deletions or media files
	if len(deletes) >= 50 || media {
		return RiskMedium
	}

	return RiskLow
}

// Confirmed reports whether the operator accepted the plan
func (m *ConfirmModel) Confirmed() bool {
	return m.confirmed
}

// Init initializes the confirm view
func (m *ConfirmModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, confirmKeys.Confirm):
			m.confirmed = true
			return m, tea.Quit
		case key.Matches(msg, confirmKeys.Cancel):
			m.confirmed = false
			return m, tea.Quit
		case key.Matches(msg, confirmKeys.Left):
			if m.cursor > buttonYes {
				m.cursor--
			}
		case key.Matches(msg, confirmKeys.Right):
			m.cursor = (m.cursor + 1) % 2
		case key.Matches(msg, confirmKeys.Select):
			m.confirmed = m.cursor == buttonYes
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the confirmation view
func (m *ConfirmModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("⚠️  Confirm Sweep"))
	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render(uiutils.TruncatePath(m.plan.Root(), max(m.width-2, uiutils.MinTerminalWidth))))
	b.WriteString("\n\n")

	b.WriteString(styles.BoldStyle.Render(fmt.Sprintf("You are about to delete %d files (%s) and rename %d",
		len(m.plan.Deletes()), utils.FormatBytes(m.plan.DeleteBytes()), len(m.plan.Renames()))))
	b.WriteString("\n\n")

	// Breakdown by category, in report order
	b.WriteString(styles.SubtitleStyle.Render("Breakdown:"))
	b.WriteString("\n")
	for _, cc := range m.plan.Counts() {
		b.WriteString(fmt.Sprintf("  %-12s %3d delete (%s), %3d rename",
			styles.CategoryStyle.Render(cc.Category.String()+":"),
			cc.Deletes,
			styles.FileSizeStyle.Render(utils.FormatBytes(cc.DeleteBytes)),
			cc.Renames))
		if cc.Collisions > 0 {
			b.WriteString(styles.WarningStyle.Render(fmt.Sprintf(", %d skipped", cc.Collisions)))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	// Risk level indicator
	riskText, riskStyle, riskIcon := m.getRiskDisplay()
	b.WriteString(fmt.Sprintf("Risk Level: %s %s\n", riskIcon, riskStyle(riskText)))

	b.WriteString("\n")
	b.WriteString(styles.WarningStyle.Render("⚠️  This action cannot be undone!"))
	b.WriteString("\n\n")

	yesBtn := "[ Yes, sweep ]"
	cancelBtn := "[ Cancel ]"
	switch m.cursor {
	case buttonYes:
		yesBtn = styles.HighlightStyle.Render(yesBtn)
	case buttonCancel:
		cancelBtn = styles.HighlightStyle.Render(cancelBtn)
	}
	b.WriteString(fmt.Sprintf("%s  %s", yesBtn, cancelBtn))
	b.WriteString("\n\n")

	b.WriteString(m.help.View(confirmKeys))

	return b.String()
}

// getRiskDisplay returns the display text, style render function, and icon for the current risk level
func (m *ConfirmModel) getRiskDisplay() (string, func(...string) string, string) {
	switch m.riskLevel {
	case RiskHigh:
		return "HIGH (many deletions or large files)", styles.ErrorStyle.Render, "🔴"
	case RiskMedium:
		return "MEDIUM (includes media or many files)", styles.WarningStyle.Render, "⚠️"
	default:
		return "LOW (a few damaged copies)", styles.SuccessStyle.Render, "✓"
	}
}
