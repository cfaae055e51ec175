package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	infoMark    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Render("ℹ")
	successMark = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("✓")
	warningMark = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Render("⚠")
	errorMark   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true).Render("✗")
)

// Stdout and Stderr are the user output destinations. Tests swap them.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// UserInfo prints an info message to stdout.
func UserInfo(format string, args ...any) {
	fmt.Fprintf(Stdout, infoMark+" "+format+"\n", args...)
}

// UserSuccess prints a success message to stdout.
func UserSuccess(format string, args ...any) {
	fmt.Fprintf(Stdout, successMark+" "+format+"\n", args...)
}

// UserWarning prints a warning message to stderr.
func UserWarning(format string, args ...any) {
	fmt.Fprintf(Stderr, warningMark+" "+format+"\n", args...)
}

// UserError prints an error message to stderr.
func UserError(format string, args ...any) {
	fmt.Fprintf(Stderr, errorMark+" "+format+"\n", args...)
}
