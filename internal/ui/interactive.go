package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenilsonani/bytesweep/internal/plan"
	"github.com/fenilsonani/bytesweep/internal/ui/models"
)

// RunConfirm shows the interactive confirm view for p and reports the
// operator's answer
func RunConfirm(p *plan.Plan, in io.Reader, out io.Writer) (bool, error) {
	m := models.NewConfirmModel(p)

	prog := tea.NewProgram(m, tea.WithInput(in), tea.WithOutput(out))
	final, err := prog.Run()
	if err != nil {
		return false, fmt.Errorf("error running confirm view: %w", err)
	}

	cm, ok := final.(*models.ConfirmModel)
	return ok && cm.Confirmed(), nil
}

// Confirm prints prompt and reads one line from in. Only "y" or "yes"
// (any case) confirms; EOF and everything else decline.
func Confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s (y/N): ", prompt)

	reader := bufio.NewReader(in)
	response, _ := reader.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(response)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
