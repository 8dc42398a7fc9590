package cli

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/depmatrix/depmatrix/pkg/session"
	"github.com/depmatrix/depmatrix/pkg/view"
)

// exploreOpts holds the command-line flags for the explore command.
type exploreOpts struct {
	sessionID string // resume an existing session
	name      string // name for a newly created session
	noCache   bool   // bypass the matrix cache
	ephemeral bool   // do not persist the session
}

// exploreCommand creates the interactive terminal explorer.
func (c *CLI) exploreCommand() *cobra.Command {
	opts := exploreOpts{}

	cmd := &cobra.Command{
		Use:   "explore <graph.json>",
		Short: "Explore a dependency matrix interactively",
		Long: `Explore a dependency structure matrix in the terminal.

Navigate with the arrow keys, expand the selected node with enter,
focus it with f (i and o narrow to one direction), and undo with u.
The exploration path is saved as a session unless --ephemeral is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.sessionID, "session", "s", "", "resume an existing session by ID")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "name for the new session")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the matrix cache")
	cmd.Flags().BoolVar(&opts.ephemeral, "ephemeral", false, "do not persist the session")

	return cmd
}

func (c *CLI) runExplore(cmd *cobra.Command, graphPath string, opts exploreOpts) error {
	model, err := c.newModel(cmd, graphPath, opts.noCache)
	if err != nil {
		return err
	}

	var store session.Store
	if !opts.ephemeral {
		store, err = c.newSessionStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	sess, err := c.openSession(cmd, store, model, opts)
	if err != nil {
		return err
	}

	state, err := model.Update(cmd.Context(), sess.Actions, c.Config.Viewport.Width, c.Config.Viewport.Height)
	if err != nil {
		return fmt.Errorf("resolve session path: %w", err)
	}
	model.SetRegions(view.DefaultRegions(state))

	em := newExplorerModel(cmd.Context(), model, sess, c.Config.Viewport)
	p := tea.NewProgram(em, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("explorer: %w", err)
	}

	if store != nil {
		fm := final.(explorerModel)
		if err := store.Set(cmd.Context(), fm.sess); err != nil {
			printWarning("Could not save session: %v", err)
		} else {
			printSuccess("Session saved")
			printKeyValue("id", fm.sess.ID)
			printKeyValue("actions", fmt.Sprintf("%d", len(fm.sess.Actions)))
			printNextStep("Resume with", fmt.Sprintf("depmatrix explore %s -s %s", graphPath, fm.sess.ID))
		}
	}
	return nil
}

// openSession resumes the requested session or creates a fresh one
// bound to the loaded graph.
func (c *CLI) openSession(cmd *cobra.Command, store session.Store, model *view.Model, opts exploreOpts) (*session.Session, error) {
	if opts.sessionID == "" || store == nil {
		return session.New(opts.name, model.GraphHash()), nil
	}
	sess, err := store.Get(cmd.Context(), opts.sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return nil, fmt.Errorf("no session with ID %s", opts.sessionID)
	}
	if err != nil {
		return nil, err
	}
	if err := sess.CheckGraph(model.GraphHash()); err != nil {
		return nil, fmt.Errorf("session %s was recorded against a different graph", opts.sessionID)
	}
	return sess, nil
}
