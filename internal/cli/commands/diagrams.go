package commands

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/leaperd/internal/cli/output"
	"github.com/leapstack-labs/leaperd/internal/state"
	"github.com/spf13/cobra"
)

// NewDiagramsCommand creates the diagrams command and its subcommands.
func NewDiagramsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagrams",
		Short: "Manage saved diagrams",
		Long: `List, inspect and delete the diagrams saved in the state database.

Without a subcommand, lists all diagrams.`,
		Example: `  # List diagrams
  leaperd diagrams

  # Show recent collection runs of one diagram
  leaperd diagrams runs sales

  # Delete a diagram
  leaperd diagrams delete sales`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDiagramsList(cmd)
		},
	}

	cmd.AddCommand(newDiagramsListCommand())
	cmd.AddCommand(newDiagramsRunsCommand())
	cmd.AddCommand(newDiagramsDeleteCommand())

	return cmd
}

func newDiagramsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved diagrams",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDiagramsList(cmd)
		},
	}
}

func newDiagramsRunsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [diagram]",
		Short: "List recent collection runs",
		Long:  `List recent collection runs, newest first. Without a diagram name, runs of all diagrams are listed.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runDiagramsRuns(cmd, name, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")

	return cmd
}

func newDiagramsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <diagram>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved diagram",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagramsDelete(cmd, args[0])
		},
	}
}

func runDiagramsList(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	store, err := openStore(cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	infos, err := store.ListDiagrams(cmd.Context())
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		if infos == nil {
			infos = []state.DiagramInfo{}
		}
		return r.JSON(infos)
	}

	r.Header(1, fmt.Sprintf("Diagrams (%d total)", len(infos)))
	if len(infos) == 0 {
		r.Muted("No diagrams saved yet. Run 'leaperd collect' to create one.")
		return nil
	}

	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{
			info.Name,
			fmt.Sprintf("%d", info.Nodes),
			fmt.Sprintf("%d", info.Relations),
			info.AttributeVisibility,
			info.UpdatedAt.Local().Format(time.DateTime),
		})
	}
	r.Table([]string{"Name", "Nodes", "Relations", "Attributes", "Updated"}, rows)
	return nil
}

func runDiagramsRuns(cmd *cobra.Command, name string, limit int) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	store, err := openStore(cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(cmd.Context(), name, limit)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		if runs == nil {
			runs = []*state.Run{}
		}
		return r.JSON(runs)
	}

	title := "Collection Runs"
	if name != "" {
		title = fmt.Sprintf("Collection Runs for %s", name)
	}
	r.Header(1, title)
	if len(runs) == 0 {
		r.Muted("No runs recorded.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.Diagram,
			string(run.Status),
			run.StartedAt.Local().Format(time.DateTime),
			runDuration(run),
			fmt.Sprintf("%d", run.Nodes),
			fmt.Sprintf("%d", run.Relations),
			run.Error,
		})
	}
	r.Table([]string{"Run", "Diagram", "Status", "Started", "Duration", "Nodes", "Relations", "Error"}, rows)
	return nil
}

func runDuration(run *state.Run) string {
	if run.CompletedAt == nil {
		return "-"
	}
	return run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
}

func runDiagramsDelete(cmd *cobra.Command, name string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	store, err := openStore(cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.DeleteDiagram(cmd.Context(), name); err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(map[string]string{"deleted": name})
	}
	r.Success(fmt.Sprintf("Deleted diagram %s", name))
	return nil
}
