package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/depmatrix/depmatrix/pkg/path"
	"github.com/depmatrix/depmatrix/pkg/render"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	actions     []string // action specs applied in order
	output      string   // output file path (stdout if empty)
	format      string   // dot or svg
	detailed    bool     // include node IDs in labels
	hideWeights bool     // omit edge weight labels
	noCache     bool     // bypass the matrix cache
}

// exportCommand creates the export command producing DOT or SVG
// renderings of a resolved configuration.
func (c *CLI) exportCommand() *cobra.Command {
	opts := exportOpts{format: "dot"}

	cmd := &cobra.Command{
		Use:   "export <graph.json>",
		Short: "Export a resolved configuration as DOT or SVG",
		Long: `Export a resolved configuration as a Graphviz rendering.

The same action specs as the matrix command select what is visible.

Examples:
  depmatrix export deps.json -o deps.dot
  depmatrix export deps.json -a expand:core -f svg -o deps.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.actions, "action", "a", nil, "action spec, repeatable")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot or svg")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include node IDs in labels")
	cmd.Flags().BoolVar(&opts.hideWeights, "hide-weights", false, "omit edge weight labels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the matrix cache")

	return cmd
}

func (c *CLI) runExport(cmd *cobra.Command, graphPath string, opts exportOpts) error {
	format := strings.ToLower(opts.format)
	if format == "" && opts.output != "" {
		format = strings.TrimPrefix(filepath.Ext(opts.output), ".")
	}
	if format != "dot" && format != "svg" {
		return fmt.Errorf("unsupported format %q (want dot or svg)", opts.format)
	}

	actions, err := path.ParseActions(opts.actions)
	if err != nil {
		return err
	}

	model, err := c.newModel(cmd, graphPath, opts.noCache)
	if err != nil {
		return err
	}

	state, err := model.Update(cmd.Context(), actions, c.Config.Viewport.Width, c.Config.Viewport.Height)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	g := model.Resolver().Store.Optimized()
	dot := render.ToDOT(state.Matrix, state.Config, g, render.Options{
		Detailed:    opts.detailed,
		HideWeights: opts.hideWeights,
	})

	data := []byte(dot)
	if format == "svg" {
		p := newProgress(c.Logger)
		data, err = render.SVG(cmd.Context(), dot)
		if err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
		p.done("Rendered SVG")
	}

	if opts.output == "" {
		fmt.Print(string(data))
		return nil
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	printSuccess("Exported %d nodes", state.Matrix.Size())
	printFile(opts.output)
	return nil
}
