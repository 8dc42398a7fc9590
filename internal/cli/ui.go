package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/depmatrix/depmatrix/pkg/graph"
	"github.com/depmatrix/depmatrix/pkg/view"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)

	styleDiagonal = lipgloss.NewStyle().Foreground(colorDim)
	styleAnchor   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleGroup    = lipgloss.NewStyle().Foreground(colorYellow)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// =============================================================================
// File Output
// =============================================================================

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// =============================================================================
// Key-Value Output
// =============================================================================

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Matrix Display
// =============================================================================

// renderMatrix formats a resolved state as an aligned text grid. Row
// labels come first, then one column per visible node. The diagonal is
// dimmed, the anchor bolded, and synthetic groups tinted.
func renderMatrix(s view.State, g *graph.Graph) string {
	n := s.Matrix.Size()
	if n == 0 {
		return StyleDim.Render("(empty matrix)")
	}

	labels := make([]string, n)
	labelWidth := 0
	for i, id := range s.Matrix.Nodes {
		labels[i] = nodeLabel(g, id)
		if w := lipgloss.Width(labels[i]); w > labelWidth {
			labelWidth = w
		}
	}

	// Column width fits the largest weight, minimum 3 for readability.
	colWidth := 3
	for i := range n {
		for j := range n {
			if w := len(strconv.Itoa(s.Matrix.Weight(i, j))); w > colWidth {
				colWidth = w
			}
		}
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", labelWidth+1))
	for j := range n {
		b.WriteString(StyleDim.Render(pad(strconv.Itoa(j+1), colWidth)))
		b.WriteString(" ")
	}
	b.WriteString("\n")

	for i := range n {
		b.WriteString(labelStyle(s, g, i).Render(pad(labels[i], labelWidth)))
		b.WriteString(" ")
		for j := range n {
			w := s.Matrix.Weight(i, j)
			cell := pad(strconv.Itoa(w), colWidth)
			switch {
			case i == j:
				cell = styleDiagonal.Render(cell)
			case w == 0:
				cell = StyleDim.Render(pad("·", colWidth))
			default:
				cell = StyleNumber.Render(cell)
			}
			b.WriteString(cell)
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// nodeLabel prefers the graph's display label over the raw ID.
func nodeLabel(g *graph.Graph, id string) string {
	if g != nil {
		if n, ok := g.Node(id); ok {
			return n.DisplayLabel()
		}
	}
	return id
}

func labelStyle(s view.State, g *graph.Graph, i int) lipgloss.Style {
	id := s.Matrix.Nodes[i]
	if id == s.Config.Anchor {
		return styleAnchor
	}
	if g != nil {
		if n, ok := g.Node(id); ok && n.IsGroup() {
			return styleGroup
		}
	}
	return StyleValue
}

// pad right-pads s with spaces to width.
func pad(s string, width int) string {
	if d := width - lipgloss.Width(s); d > 0 {
		return s + strings.Repeat(" ", d)
	}
	return s
}

// =============================================================================
// Commands & Next Steps
// =============================================================================

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}
