package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProjectsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"p"},
		Short:   "Manage projects and their timers",
	}

	cmd.AddCommand(
		newProjectsListCmd(a),
		newProjectsAddCmd(a),
		newProjectsRemoveCmd(a),
		newProjectsStartCmd(a),
		newProjectsStopCmd(a),
	)

	return cmd
}

func newProjectsListCmd(a *app) *cobra.Command {
	var (
		page    int
		perPage int
		search  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects, most recently used first",
		Long: `List projects page by page. The running project is shown on top.

Examples:
  timetrack projects list                  # First page
  timetrack projects list --page 2 -n 10   # Second page of ten
  timetrack projects list -s web           # Names containing "web"`,
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.client.ListProjects(cmd.Context(), page, perPage, search)
			if err != nil {
				return describe(err)
			}
			fmt.Fprint(a.out, renderProjectPage(result, a.now()))
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVarP(&perPage, "per-page", "n", 20, "Projects per page")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive name filter")

	return cmd
}

func newProjectsAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.client.AddProject(cmd.Context(), args[0])
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(a.out, "Created %s\n", titleStyle.Render(p.Name))
			return nil
		},
	}
}

func newProjectsRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm NAME",
		Aliases: []string{"delete"},
		Short:   "Delete a project and its activities",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.DeleteProject(cmd.Context(), args[0]); err != nil {
				return describe(err)
			}
			fmt.Fprintf(a.out, "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newProjectsStartCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "start NAME",
		Short: "Start the timer of a project, stopping any other",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.client.StartProject(cmd.Context(), args[0])
			if err != nil {
				return describe(err)
			}
			fmt.Fprintln(a.out, renderProject(p, a.now()))
			return nil
		},
	}
}

func newProjectsStopCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stop NAME",
		Short: "Stop the timer of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.client.StopProject(cmd.Context(), args[0])
			if err != nil {
				return describe(err)
			}
			fmt.Fprintln(a.out, renderProject(p, a.now()))
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.client.ListProjects(cmd.Context(), 1, 1, "")
			if err != nil {
				return describe(err)
			}
			fmt.Fprintln(a.out, renderActiveProject(result.ActiveProject, a.now()))
			return nil
		},
	}
}

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.HealthCheck(cmd.Context()); err != nil {
				return fmt.Errorf("server %s is not healthy: %w", a.cfg.Client.BaseURL, err)
			}
			fmt.Fprintf(a.out, "%s %s\n", activeStyle.Render("ok"), a.cfg.Client.BaseURL)
			return nil
		},
	}
}
