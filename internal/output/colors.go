package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var colorEnabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

func render(style lipgloss.Style, text string) string {
	if !colorEnabled {
		return text
	}
	return style.Render(text)
}

// ColorHash styles a commit hash.
func ColorHash(text string) string {
	return render(lipgloss.NewStyle().Foreground(lipgloss.Color("3")), text)
}

// ColorBranchName styles a branch name, marking the checked-out branch.
func ColorBranchName(branchName string, isCurrent bool) string {
	if isCurrent {
		return render(lipgloss.NewStyle().Foreground(lipgloss.Color("6")), branchName+" (current)")
	}
	return render(lipgloss.NewStyle().Foreground(lipgloss.Color("12")), branchName)
}

// ColorAdded styles added diff lines and staged entries.
func ColorAdded(text string) string {
	return render(lipgloss.NewStyle().Foreground(lipgloss.Color("2")), text)
}

// ColorDeleted styles deleted diff lines.
func ColorDeleted(text string) string {
	return render(lipgloss.NewStyle().Foreground(lipgloss.Color("1")), text)
}

// ColorDim makes text dim/gray.
func ColorDim(text string) string {
	return render(lipgloss.NewStyle().Foreground(lipgloss.Color("8")), text)
}

// ColorConflict styles conflict markers and warnings.
func ColorConflict(text string) string {
	return render(lipgloss.NewStyle().Foreground(lipgloss.Color("5")), text)
}
