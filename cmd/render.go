package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-i2p/bootgate/lib/crypto/types"
)

var (
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	rejectStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	fatalStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	labelStyle  = lipgloss.NewStyle().Faint(true).Width(14)
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

func verdict(err error) string {
	switch {
	case err == nil:
		return okStyle.Render("OK")
	case types.IsFatal(err):
		return fatalStyle.Render("ABORT")
	default:
		return rejectStyle.Render("REJECTED")
	}
}

// printVerdict writes one result line, with the reason on failure.
func printVerdict(w io.Writer, subject string, err error) {
	if err == nil {
		fmt.Fprintf(w, "%s %s\n", verdict(nil), subject)
		return
	}
	fmt.Fprintf(w, "%s %s: %v\n", verdict(err), subject, err)
}

func printField(w io.Writer, label string, value any) {
	fmt.Fprintf(w, "%s %v\n", labelStyle.Render(label), value)
}

func printTitle(w io.Writer, title string) {
	fmt.Fprintln(w, titleStyle.Render(title))
}
