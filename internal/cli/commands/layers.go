package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leaperd/internal/cli/output"
	"github.com/leapstack-labs/leaperd/internal/diagram"
	"github.com/spf13/cobra"
)

// NewLayersCommand creates the layers command.
func NewLayersCommand() *cobra.Command {
	var entity string

	cmd := &cobra.Command{
		Use:   "layers [diagram]",
		Short: "Show the layout tiers of a diagram",
		Long: `Group the nodes of a saved diagram into layout tiers by their relations.

Level 0 holds tables that reference no other table; every other table sits one
level above the highest table it references. Tables in a reference cycle share
one level.

With --entity, show everything the entity references and everything that
references it, directly or transitively.`,
		Example: `  # Show tiers of the configured diagram
  leaperd layers

  # Show what depends on customers
  leaperd layers --entity shop.main.customers

  # Output as JSON
  leaperd layers --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayers(cmd, args, entity)
		},
	}

	cmd.Flags().StringVar(&entity, "entity", "", "Show upstream and downstream entities of one entity ID")

	return cmd
}

func runLayers(cmd *cobra.Command, args []string, entity string) error {
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
	index := diagram.NewRelationIndex(d)

	if entity != "" {
		if !d.ContainsEntity(entity) {
			return fmt.Errorf("entity %q is not in diagram %q", entity, d.Name())
		}
		return entityLineage(r, index, entity)
	}

	levels := index.Levels()
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return layersJSON(r, index, levels)
	case output.ModeMarkdown:
		layersMarkdown(r, index, levels)
	default:
		layersText(r, index, levels)
	}
	return nil
}

// layersText outputs tiers in styled text format.
func layersText(r *output.Renderer, index *diagram.RelationIndex, levels [][]string) {
	styles := r.Styles()

	r.Header(1, "Layout Tiers")

	for i, level := range levels {
		r.Println(styles.Header2.Render(fmt.Sprintf("Level %d:", i)))
		for _, id := range level {
			r.Printf("  %s\n", styles.NodeID.Render(id))
			if refs := index.References(id); len(refs) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("references:"), strings.Join(refs, ", "))
			}
			if by := index.ReferencedBy(id); len(by) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("referenced by:"), strings.Join(by, ", "))
			}
		}
		r.Println("")
	}

	if cyclic, cycle := index.HasCycle(); cyclic {
		r.Println(styles.Warning.Render("Reference cycle: " + strings.Join(cycle, ", ")))
	}
	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d nodes, %d relations", index.NodeCount(), index.EdgeCount())))
}

// layersMarkdown outputs tiers in markdown format.
func layersMarkdown(r *output.Renderer, index *diagram.RelationIndex, levels [][]string) {
	r.Println(output.FormatHeader(1, "Layout Tiers"))
	r.Println("")

	for i, level := range levels {
		levelName := fmt.Sprintf("Level %d", i)
		if i == 0 {
			levelName = "Level 0 (Referenced only)"
		}
		r.Println(output.FormatHeader(2, levelName))

		for _, id := range level {
			r.Printf("- %s\n", id)
			if refs := index.References(id); len(refs) > 0 {
				r.Printf("  - references: %s\n", strings.Join(refs, ", "))
			}
			if by := index.ReferencedBy(id); len(by) > 0 {
				r.Printf("  - referenced by: %s\n", strings.Join(by, ", "))
			}
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Total Nodes", fmt.Sprintf("%d", index.NodeCount())))
	r.Println(output.FormatKeyValue("Total Relations", fmt.Sprintf("%d", index.EdgeCount())))
	if cyclic, cycle := index.HasCycle(); cyclic {
		r.Println(output.FormatKeyValue("Cycle", strings.Join(cycle, ", ")))
	}
}

// layersJSON outputs tiers in JSON format.
func layersJSON(r *output.Renderer, index *diagram.RelationIndex, levels [][]string) error {
	cyclic, cycle := index.HasCycle()
	out := output.LayersOutput{
		Levels:         make([]output.LayerLevel, 0, len(levels)),
		HasCycle:       cyclic,
		Cycle:          cycle,
		TotalNodes:     index.NodeCount(),
		TotalRelations: index.EdgeCount(),
	}

	for i, level := range levels {
		layer := output.LayerLevel{
			Level: i,
			Nodes: make([]output.LayerNode, 0, len(level)),
		}
		for _, id := range level {
			layer.Nodes = append(layer.Nodes, output.LayerNode{
				ID:           id,
				References:   index.References(id),
				ReferencedBy: index.ReferencedBy(id),
			})
		}
		out.Levels = append(out.Levels, layer)
	}

	return r.JSON(out)
}

// entityLineage prints the transitive neighbourhood of one entity.
func entityLineage(r *output.Renderer, index *diagram.RelationIndex, id string) error {
	upstream := index.Upstream(id)
	downstream := index.Downstream(id)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(map[string]any{
			"id":         id,
			"upstream":   upstream,
			"downstream": downstream,
		})
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, id))
		r.Println("")
		r.Println(output.FormatKeyValue("Upstream", output.FormatList(upstream)))
		r.Println(output.FormatKeyValue("Downstream", output.FormatList(downstream)))
	default:
		styles := r.Styles()
		r.Header(1, id)
		r.Printf("  %s %s\n", styles.Muted.Render("upstream:"), output.FormatList(upstream))
		r.Printf("  %s %s\n", styles.Muted.Render("downstream:"), output.FormatList(downstream))
	}
	return nil
}
