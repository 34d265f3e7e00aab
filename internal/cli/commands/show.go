package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leaperd/internal/cli/output"
	"github.com/leapstack-labs/leaperd/internal/diagram"
	"github.com/spf13/cobra"
)

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [diagram]",
		Short: "Show the nodes and relations of a diagram",
		Long: `Display a saved diagram: its nodes with their attributes, and the
relations between them.

The diagram defaults to diagram.name from the configuration.`,
		Example: `  # Show the configured diagram
  leaperd show

  # Show a named diagram as JSON
  leaperd show sales --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args)
		},
	}

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	name := cmdCtx.Cfg.Diagram.Name
	if len(args) == 1 {
		name = args[0]
	}

	store, err := openStore(cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	d, err := store.LoadDiagram(cmd.Context(), name)
	if err != nil {
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(output.NewDiagramOutput(d))
	case output.ModeMarkdown:
		showMarkdown(r, d)
	default:
		showText(r, d)
	}
	return nil
}

func showText(r *output.Renderer, d *diagram.Diagram) {
	styles := r.Styles()

	r.Header(1, fmt.Sprintf("Diagram %s", d.Name()))
	r.Table([]string{"Entity", "Type", "Primary key", "Attributes"}, nodeRows(d))
	r.Println("")

	rels := d.Relations()
	if len(rels) > 0 {
		r.Header(2, "Relations")
		r.Table([]string{"Name", "Source", "Target", "Columns"}, relationRows(rels))
		r.Println("")
	}

	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d nodes, %d relations (attributes: %s)",
		d.Len(), len(rels), d.AttributeVisibility())))
}

func showMarkdown(r *output.Renderer, d *diagram.Diagram) {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Diagram %s", d.Name())))
	r.Println("")
	r.Println(output.FormatKeyValue("Attributes", string(d.AttributeVisibility())))
	r.Println("")

	for _, n := range d.Nodes() {
		r.Println(output.FormatHeader(2, n.EntityID))
		r.Println(output.FormatKeyValue("Type", string(n.Type)))
		if pk := n.PrimaryKey(); len(pk) > 0 {
			r.Println(output.FormatKeyValue("Primary key", strings.Join(pk, ", ")))
		}
		for _, a := range n.Attributes {
			r.Printf("  - %s `%s`\n", a.Name, a.Type)
		}
		for _, rel := range n.Associations() {
			r.Println(output.FormatKeyValue("References", fmt.Sprintf("%s (%s)", rel.Target.EntityID, rel.Name)))
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Total Nodes", fmt.Sprintf("%d", d.Len())))
	r.Println(output.FormatKeyValue("Total Relations", fmt.Sprintf("%d", len(d.Relations()))))
}

func nodeRows(d *diagram.Diagram) [][]string {
	rows := make([][]string, 0, d.Len())
	for _, n := range d.Nodes() {
		names := make([]string, len(n.Attributes))
		for i, a := range n.Attributes {
			names[i] = a.Name
		}
		rows = append(rows, []string{
			n.EntityID,
			string(n.Type),
			output.FormatList(n.PrimaryKey()),
			output.FormatList(names),
		})
	}
	return rows
}

func relationRows(rels []*diagram.Relation) [][]string {
	rows := make([][]string, 0, len(rels))
	for _, rel := range rels {
		rows = append(rows, []string{
			rel.Name,
			rel.Source.EntityID,
			rel.Target.EntityID,
			fmt.Sprintf("(%s) -> (%s)", strings.Join(rel.SourceColumns, ", "), strings.Join(rel.TargetColumns, ", ")),
		})
	}
	return rows
}
