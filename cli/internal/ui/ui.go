package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

var (
	// Colors
	PrimaryColor   = lipgloss.Color("#00D9FF")
	SuccessColor   = lipgloss.Color("#00FF88")
	WarningColor   = lipgloss.Color("#FFB800")
	ErrorColor     = lipgloss.Color("#FF4444")
	SecondaryColor = lipgloss.Color("#6C757D")

	// Styles
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	SecondaryStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)

	// Destructive marks operations that lose data
	Destructive = color.New(color.FgRed, color.Bold)
	// Null marks NULL cells in query output
	Null = color.New(color.Faint, color.Italic)
)

// Out is where normal output goes
var Out io.Writer = os.Stdout

func termWidth() int {
	if w := pterm.GetTerminalWidth(); w > 0 && w < 120 {
		return w
	}
	return 80
}

// PrintHeader prints a boxed title
func PrintHeader(title string, subtitle string) {
	header := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Padding(0, 2).
		Render(
			lipgloss.JoinVertical(
				lipgloss.Left,
				TitleStyle.Render(title),
				SecondaryStyle.Render(subtitle),
			),
		)

	fmt.Fprintln(Out, header)
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...any) {
	fmt.Fprintln(Out, SuccessStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

// PrintError prints an error message
func PrintError(format string, args ...any) {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...any) {
	fmt.Fprintln(Out, WarningStyle.Render("⚠ "+fmt.Sprintf(format, args...)))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...any) {
	fmt.Fprintln(Out, InfoStyle.Render("ℹ "+fmt.Sprintf(format, args...)))
}

// PrintTable prints a table using pterm
func PrintTable(headers []string, rows [][]string) error {
	data := pterm.TableData{headers}
	data = append(data, rows...)
	return pterm.DefaultTable.WithHasHeader().WithWriter(Out).WithData(data).Render()
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Fprintf(Out, "  • %s\n", item)
	}
}

// PrintMarkdown renders markdown content
func PrintMarkdown(content string) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(termWidth()),
	)
	if err != nil {
		return err
	}

	out, err := r.Render(content)
	if err != nil {
		return err
	}

	fmt.Fprint(Out, out)
	return nil
}

// PrintSection prints an underlined section title
func PrintSection(title string) {
	section := lipgloss.NewStyle().
		Width(termWidth()).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(SecondaryColor).
		Render(title)

	fmt.Fprintln(Out, section)
}

// PrintCodeBlock prints code in a styled block
func PrintCodeBlock(code string, language string) {
	codeStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(SecondaryColor).
		Padding(0, 1)

	if language != "" {
		fmt.Fprintln(Out, SecondaryStyle.Render(" "+language+" "))
	}
	fmt.Fprintln(Out, codeStyle.Render(code))
}

// PrintDiff prints a line by line diff of old and new
func PrintDiff(old string, new string) {
	oldLines := strings.Split(old, "\n")
	newLines := strings.Split(new, "\n")

	for i := 0; i < len(oldLines) || i < len(newLines); i++ {
		switch {
		case i < len(oldLines) && i < len(newLines):
			if oldLines[i] != newLines[i] {
				fmt.Fprintln(Out, ErrorStyle.Render("- "+oldLines[i]))
				fmt.Fprintln(Out, SuccessStyle.Render("+ "+newLines[i]))
			} else {
				fmt.Fprintln(Out, "  "+oldLines[i])
			}
		case i < len(oldLines):
			fmt.Fprintln(Out, ErrorStyle.Render("- "+oldLines[i]))
		default:
			fmt.Fprintln(Out, SuccessStyle.Render("+ "+newLines[i]))
		}
	}
}

// Spinner starts a spinner with message. It returns nil when styling is off.
func Spinner(message string) *pterm.SpinnerPrinter {
	if pterm.RawOutput {
		return nil
	}
	s, err := pterm.DefaultSpinner.WithWriter(Out).Start(message)
	if err != nil {
		return nil
	}
	return s
}

// StopSpinner ends s with a final message. Without a spinner the message is printed.
func StopSpinner(s *pterm.SpinnerPrinter, ok bool, message string) {
	if s == nil {
		if ok {
			PrintSuccess("%s", message)
		} else {
			PrintError("%s", message)
		}
		return
	}
	if ok {
		s.Success(message)
	} else {
		s.Fail(message)
	}
}
