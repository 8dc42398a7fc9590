package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/depmatrix/depmatrix/pkg/path"
	"github.com/depmatrix/depmatrix/pkg/session"
	"github.com/depmatrix/depmatrix/pkg/view"
)

// Explorer styles
var (
	styleCursorCell = lipgloss.NewStyle().Reverse(true)
	styleCursorRow  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleHelp       = lipgloss.NewStyle().Foreground(colorDim)
	styleStatusErr  = lipgloss.NewStyle().Foreground(colorRed)
)

// gridTop is the number of lines above the matrix grid in the view
// (title, path, blank, column header). Mouse mapping depends on it.
const gridTop = 4

// =============================================================================
// explorerModel - Interactive matrix exploration
// =============================================================================

// explorerModel is the bubbletea model for the explore command. Every
// accepted action re-resolves the session path through the shared view
// model; rejected actions roll the path back and surface the error in
// the status line.
type explorerModel struct {
	ctx      context.Context
	view     *view.Model
	sess     *session.Session
	viewport ViewportConfig

	state  view.State
	row    int
	col    int
	width  int
	height int
	status string
	failed bool
}

// newExplorerModel wraps an already-resolved view model for the TUI.
func newExplorerModel(ctx context.Context, vm *view.Model, sess *session.Session, vp ViewportConfig) explorerModel {
	return explorerModel{
		ctx:      ctx,
		view:     vm,
		sess:     sess,
		viewport: vp,
		state:    vm.State(),
	}
}

func (m explorerModel) Init() tea.Cmd {
	return nil
}

func (m explorerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m explorerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := m.state.Matrix.Size()
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		if m.row < n-1 {
			m.row++
		}
	case "left", "h":
		if m.col > 0 {
			m.col--
		}
	case "right", "l":
		if m.col < n-1 {
			m.col++
		}
	case "enter", "e":
		return m.apply(path.NewExpand(m.selectedNode())), nil
	case "f":
		return m.applyFocus("both"), nil
	case "i":
		return m.applyFocus("in"), nil
	case "o":
		return m.applyFocus("out"), nil
	case "u":
		return m.undo(), nil
	case "r":
		return m.reset(), nil
	}
	return m, nil
}

func (m explorerModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	row, col, ok := m.gridPosition(msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	if row == m.row && col == m.col {
		// Second click on the selection expands the row node.
		return m.apply(path.NewExpand(m.selectedNode())), nil
	}
	m.row, m.col = row, col
	m.status = ""
	m.failed = false
	return m, nil
}

// =============================================================================
// Actions
// =============================================================================

// selectedNode is the row node under the cursor.
func (m explorerModel) selectedNode() string {
	if m.row < m.state.Matrix.Size() {
		return m.state.Matrix.Nodes[m.row]
	}
	return ""
}

func (m explorerModel) applyFocus(direction string) explorerModel {
	a, err := path.ParseAction("focus:" + m.selectedNode() + ":" + direction)
	if err != nil {
		m.status = err.Error()
		m.failed = true
		return m
	}
	return m.apply(a)
}

// apply appends the action and re-resolves. A failed resolve rolls the
// appended action back so the session never records a rejected step.
func (m explorerModel) apply(a path.Action) explorerModel {
	if a.Node == "" {
		return m
	}
	before := len(m.sess.Actions)
	m.sess.Append(a)

	if err := m.refresh(); err != nil {
		m.sess.Truncate(before)
		m.status = err.Error()
		m.failed = true
		return m
	}
	m.status = fmt.Sprintf("applied %s", a.String())
	m.failed = false
	return m
}

func (m explorerModel) undo() explorerModel {
	if len(m.sess.Actions) == 0 {
		m.status = "nothing to undo"
		m.failed = false
		return m
	}
	m.sess.Truncate(len(m.sess.Actions) - 1)
	if err := m.refresh(); err != nil {
		m.status = err.Error()
		m.failed = true
		return m
	}
	m.status = "undone"
	m.failed = false
	return m
}

func (m explorerModel) reset() explorerModel {
	m.sess.Truncate(0)
	if err := m.refresh(); err != nil {
		m.status = err.Error()
		m.failed = true
		return m
	}
	m.status = "reset to root"
	m.failed = false
	return m
}

// refresh re-resolves the session path and clamps the cursor to the
// new matrix size.
func (m *explorerModel) refresh() error {
	state, err := m.view.Update(m.ctx, m.sess.Actions, m.viewport.Width, m.viewport.Height)
	if err != nil {
		return err
	}
	m.view.SetRegions(view.DefaultRegions(state))
	m.state = state

	if n := state.Matrix.Size(); n > 0 {
		if m.row >= n {
			m.row = n - 1
		}
		if m.col >= n {
			m.col = n - 1
		}
	} else {
		m.row, m.col = 0, 0
	}
	return nil
}

// =============================================================================
// Rendering
// =============================================================================

func (m explorerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Dependency Matrix"))
	b.WriteString("\n")
	b.WriteString(styleHelp.Render(m.pathLine()))
	b.WriteString("\n\n")

	b.WriteString(m.renderGrid())

	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(styleHelp.Render("↑↓←→ move  ⏎/e expand  f/i/o focus  u undo  r reset  q quit"))
	return b.String()
}

// pathLine summarizes the current action path.
func (m explorerModel) pathLine() string {
	if len(m.sess.Actions) == 0 {
		return "(root view)"
	}
	specs := make([]string, len(m.sess.Actions))
	for i, a := range m.sess.Actions {
		specs[i] = a.String()
	}
	return strings.Join(specs, "  ")
}

func (m explorerModel) renderGrid() string {
	n := m.state.Matrix.Size()
	if n == 0 {
		return StyleDim.Render("(empty matrix)") + "\n"
	}

	g := m.view.Resolver().Store.Optimized()
	labels := make([]string, n)
	labelWidth := 0
	for i, id := range m.state.Matrix.Nodes {
		labels[i] = nodeLabel(g, id)
		if w := lipgloss.Width(labels[i]); w > labelWidth {
			labelWidth = w
		}
	}
	colWidth := m.colWidth()

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", labelWidth+1))
	for j := range n {
		head := pad(strconv.Itoa(j+1), colWidth)
		if j == m.col {
			head = styleCursorRow.Render(head)
		} else {
			head = StyleDim.Render(head)
		}
		b.WriteString(head)
		b.WriteString(" ")
	}
	b.WriteString("\n")

	for i := range n {
		label := pad(labels[i], labelWidth)
		if i == m.row {
			b.WriteString(styleCursorRow.Render(label))
		} else {
			b.WriteString(labelStyle(m.state, g, i).Render(label))
		}
		b.WriteString(" ")
		for j := range n {
			b.WriteString(m.renderCell(i, j, colWidth))
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m explorerModel) renderCell(i, j, colWidth int) string {
	w := m.state.Matrix.Weight(i, j)
	cell := pad(strconv.Itoa(w), colWidth)
	if w == 0 && i != j {
		cell = pad("·", colWidth)
	}
	switch {
	case i == m.row && j == m.col:
		return styleCursorCell.Render(cell)
	case i == j:
		return styleDiagonal.Render(cell)
	case w == 0:
		return StyleDim.Render(cell)
	default:
		return StyleNumber.Render(cell)
	}
}

// statusLine shows the last action result, or the region under the
// cursor resolved through the hit-testing registry.
func (m explorerModel) statusLine() string {
	if m.status != "" {
		if m.failed {
			return styleStatusErr.Render(iconError + " " + m.status)
		}
		return StyleDim.Render(iconInfo + " " + m.status)
	}

	geo := m.state.Geometry
	if geo.Size == 0 {
		return ""
	}
	x := (float64(m.col) + 0.5) * geo.CellWidth
	y := (float64(m.row) + 0.5) * geo.CellHeight
	entry, ok := m.view.ResolvePoint(x, y)
	if !ok {
		return ""
	}
	r := entry.Region
	return StyleDim.Render(fmt.Sprintf("%s %s %s %s  weight %d",
		r.From, iconArrow, r.To, StyleDim.Render("·"), m.state.Matrix.Weight(r.Row, r.Col)))
}

// =============================================================================
// Mouse Mapping
// =============================================================================

// colWidth mirrors the grid renderer's column sizing.
func (m explorerModel) colWidth() int {
	n := m.state.Matrix.Size()
	colWidth := 3
	for i := range n {
		for j := range n {
			if w := len(strconv.Itoa(m.state.Matrix.Weight(i, j))); w > colWidth {
				colWidth = w
			}
		}
	}
	return colWidth
}

// gridPosition maps terminal coordinates to a matrix cell.
func (m explorerModel) gridPosition(x, y int) (row, col int, ok bool) {
	n := m.state.Matrix.Size()
	if n == 0 {
		return 0, 0, false
	}

	g := m.view.Resolver().Store.Optimized()
	labelWidth := 0
	for _, id := range m.state.Matrix.Nodes {
		if w := lipgloss.Width(nodeLabel(g, id)); w > labelWidth {
			labelWidth = w
		}
	}

	row = y - gridTop
	col = (x - labelWidth - 1) / (m.colWidth() + 1)
	if row < 0 || row >= n || col < 0 || col >= n || x <= labelWidth {
		return 0, 0, false
	}
	return row, col, true
}
