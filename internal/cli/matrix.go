package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/depmatrix/depmatrix/pkg/path"
)

// matrixOpts holds the command-line flags for the matrix command.
type matrixOpts struct {
	actions []string // action specs applied in order
	width   float64  // viewport width for geometry
	height  float64  // viewport height for geometry
	noCache bool     // bypass the matrix cache
	stats   bool     // print configuration details after the grid
}

// matrixCommand creates the one-shot matrix command. It loads a graph
// file, resolves the given action path, and prints the resulting
// matrix as an aligned grid.
func (c *CLI) matrixCommand() *cobra.Command {
	opts := matrixOpts{}

	cmd := &cobra.Command{
		Use:   "matrix <graph.json>",
		Short: "Compute and print a dependency structure matrix",
		Long: `Compute a dependency structure matrix for a graph file.

Actions are applied in order and describe the exploration path:

  expand:<node>             show the node's children instead of the node
  focus:<node>[:direction]  narrow the view around the node (in, out, both)

Examples:
  depmatrix matrix deps.json
  depmatrix matrix deps.json -a expand:core -a focus:core/db:in`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMatrix(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.actions, "action", "a", nil, "action spec, repeatable (expand:<node>, focus:<node>[:in|out|both])")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "viewport width (defaults to configuration)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "viewport height (defaults to configuration)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the matrix cache")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "print configuration details")

	return cmd
}

func (c *CLI) runMatrix(cmd *cobra.Command, graphPath string, opts matrixOpts) error {
	actions, err := path.ParseActions(opts.actions)
	if err != nil {
		return err
	}

	model, err := c.newModel(cmd, graphPath, opts.noCache)
	if err != nil {
		return err
	}

	w, h := opts.width, opts.height
	if w <= 0 {
		w = c.Config.Viewport.Width
	}
	if h <= 0 {
		h = c.Config.Viewport.Height
	}

	p := newProgress(c.Logger)
	state, err := model.Update(cmd.Context(), actions, w, h)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	p.done(fmt.Sprintf("Resolved %d actions into a %dx%d matrix", len(actions), state.Matrix.Size(), state.Matrix.Size()))

	g := model.Resolver().Store.Optimized()
	fmt.Println(renderMatrix(state, g))

	if opts.stats {
		printKeyValue("graph", c.shortHash(model.GraphHash()))
		printKeyValue("visible", fmt.Sprintf("%d", len(state.Config.Visible)))
		printKeyValue("expanded", fmt.Sprintf("%d", len(state.Config.Expanded)))
		if state.Config.Focused() {
			printKeyValue("anchor", state.Config.Anchor)
			printKeyValue("direction", state.Config.Kind.String())
		}
		printKeyValue("total", fmt.Sprintf("%d", state.Matrix.Total()))
		printKeyValue("cell", fmt.Sprintf("%.1fx%.1f", state.Geometry.CellWidth, state.Geometry.CellHeight))
	}
	return nil
}

// shortHash truncates a digest for display.
func (c *CLI) shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
