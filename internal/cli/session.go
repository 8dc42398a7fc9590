package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/depmatrix/depmatrix/pkg/session"
)

// sessionCommand creates the session management command.
func (c *CLI) sessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage saved exploration sessions",
	}

	cmd.AddCommand(c.sessionListCommand())
	cmd.AddCommand(c.sessionShowCommand())
	cmd.AddCommand(c.sessionDeleteCommand())

	return cmd
}

// sessionListCommand creates the "session list" subcommand.
func (c *CLI) sessionListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved sessions, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.newSessionStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			sessions, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			if len(sessions) == 0 {
				printInfo("No saved sessions")
				return nil
			}
			for _, s := range sessions {
				name := s.Name
				if name == "" {
					name = StyleDim.Render("(unnamed)")
				}
				fmt.Printf("%s  %s  %s\n",
					StyleHighlight.Render(s.ID),
					name,
					StyleDim.Render(fmt.Sprintf("%d actions, updated %s", len(s.Actions), s.UpdatedAt.Format(time.DateTime))))
			}
			return nil
		},
	}
}

// sessionShowCommand creates the "session show" subcommand.
func (c *CLI) sessionShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a session's action path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.newSessionStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			s, err := store.Get(cmd.Context(), args[0])
			if errors.Is(err, session.ErrNotFound) {
				return fmt.Errorf("no session with ID %s", args[0])
			}
			if err != nil {
				return fmt.Errorf("load session: %w", err)
			}

			printKeyValue("id", s.ID)
			if s.Name != "" {
				printKeyValue("name", s.Name)
			}
			printKeyValue("graph", c.shortHash(s.GraphHash))
			printKeyValue("created", s.CreatedAt.Format(time.DateTime))
			printKeyValue("updated", s.UpdatedAt.Format(time.DateTime))
			printNewline()
			if len(s.Actions) == 0 {
				printDetail("(no actions)")
				return nil
			}
			for i, a := range s.Actions {
				fmt.Printf("  %s %s\n", StyleDim.Render(fmt.Sprintf("%2d", i+1)), a.String())
			}
			return nil
		},
	}
}

// sessionDeleteCommand creates the "session delete" subcommand.
func (c *CLI) sessionDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.newSessionStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
			printSuccess("Deleted session %s", args[0])
			return nil
		},
	}
}
