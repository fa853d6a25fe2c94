package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Terminal styles shared by all commands.
var (
	styleOK    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f"))
	styleFail  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff5f5f"))
	styleWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffd75f"))
	styleLabel = lipgloss.NewStyle().Bold(true)
	styleDim   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
)

// emitJSON writes v as indented JSON to stdout. Used when --json is set.
func emitJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// kv prints one aligned label/value row.
func kv(label, format string, args ...any) {
	fmt.Printf("  %s %s\n", styleLabel.Render(fmt.Sprintf("%-22s", label+":")), fmt.Sprintf(format, args...))
}

// verdict prints the headline outcome line.
func verdict(ok bool, text string) {
	if ok {
		fmt.Println(styleOK.Render("✓ " + text))
	} else {
		fmt.Println(styleFail.Render("✗ " + text))
	}
}

// warnings prints validation and quality warnings.
func warnings(ws []string) {
	for _, w := range ws {
		fmt.Println(styleWarn.Render("  ! " + w))
	}
}
