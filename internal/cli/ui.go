package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // primary
	colorGreen  = lipgloss.Color("35")  // success, cache hits
	colorYellow = lipgloss.Color("220") // warnings
	colorBlue   = lipgloss.Color("75")  // commands
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // labels
	colorDim    = lipgloss.Color("240") // muted
)

var (
	// StyleTitle for headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	styleName        = lipgloss.NewStyle().Foreground(colorCyan)
	styleWarning     = lipgloss.NewStyle().Foreground(colorYellow)
	styleLabel       = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleHit         = lipgloss.NewStyle().Foreground(colorGreen)
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	sep         = " · "
)

// =============================================================================
// Report
// =============================================================================

// report prints human-readable command results. Warnings go to err,
// everything else to out.
type report struct {
	out io.Writer
	err io.Writer
}

func newReport(cmd *cobra.Command) report {
	return report{out: cmd.OutOrStdout(), err: cmd.ErrOrStderr()}
}

func (r report) success(format string, args ...any) {
	fmt.Fprintln(r.out, styleHit.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func (r report) warning(format string, args ...any) {
	fmt.Fprintln(r.err, styleWarning.Render(iconWarning+" "+fmt.Sprintf(format, args...)))
}

func (r report) info(format string, args ...any) {
	fmt.Fprintln(r.out, StyleDim.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// detail prints an indented, muted line.
func (r report) detail(format string, args ...any) {
	fmt.Fprintln(r.out, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// file prints a written path.
func (r report) file(path string) {
	fmt.Fprintln(r.out, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// job prints one job result on a single line:
//
//	sheet deck · 1024x768 · 12 cells · 41ms · fresh
func (r report) job(kind, name string, details []string, cached bool) {
	status := StyleDim.Render("fresh")
	if cached {
		status = styleHit.Render("cached")
	}
	parts := append([]string{StyleDim.Render(kind) + " " + styleName.Render(name)}, details...)
	fmt.Fprintln(r.out, "  "+strings.Join(parts, StyleDim.Render(sep))+StyleDim.Render(sep)+status)
}

func (r report) nextStep(description, command string) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, StyleDim.Render(description+":")+" "+styleCommand.Render(command))
}

// writeKeyValue writes an aligned label and value.
func writeKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, styleLabel.Render(key)+" "+StyleValue.Render(value))
}
