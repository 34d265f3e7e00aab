package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/leapstack-labs/leaperd/internal/cli/output"
	"github.com/leapstack-labs/leaperd/internal/collector"
	"github.com/leapstack-labs/leaperd/internal/diagram"
	"github.com/leapstack-labs/leaperd/internal/state"
	"github.com/spf13/cobra"
)

// NewCollectCommand creates the collect command.
func NewCollectCommand() *cobra.Command {
	var (
		paths  []string
		dryRun bool
		watch  bool
	)

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect catalog entities into a diagram",
		Long: `Walk the configured catalog and add every reachable table and view to a
diagram, together with the foreign-key relations between them.

Entities already in the diagram are kept as they are; only new entities are
added. The diagram and a record of the run are saved to the state database.

Press Ctrl+C to stop early: the entities collected so far are still saved.

With --watch and a catalog file, collection repeats whenever the file changes.`,
		Example: `  # Collect everything from the configured target into the default diagram
  leaperd collect

  # Collect one schema into a named diagram
  leaperd collect --diagram sales --path shop/sales

  # Collect from a YAML catalog without saving
  leaperd collect --catalog-file catalog.yaml --dry-run

  # Re-collect whenever the catalog file changes
  leaperd collect --catalog-file catalog.yaml --watch

  # Output the result as JSON
  leaperd collect --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCollect(cmd, paths, dryRun, watch)
		},
	}

	cmd.Flags().StringSliceVar(&paths, "path", nil, "Catalog path to collect from (db/schema/table); repeatable")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Collect without saving the diagram")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Collect again whenever the catalog file changes")

	return cmd
}

func runCollect(cmd *cobra.Command, paths []string, dryRun, watch bool) error {
	cmdCtx := NewCommandContext(cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if !watch {
		return collectOnce(ctx, cmdCtx, paths, dryRun)
	}

	if !cmdCtx.Cfg.UsesCatalogFile() {
		return errors.New("--watch requires a catalog file")
	}
	if err := collectOnce(ctx, cmdCtx, paths, dryRun); err != nil {
		cmdCtx.Renderer.Error(err.Error())
	}
	cmdCtx.Renderer.Muted(fmt.Sprintf("Watching %s for changes. Press Ctrl+C to stop.", cmdCtx.Cfg.CatalogFile))

	return watchFile(ctx, cmdCtx.Cfg.CatalogFile, cmdCtx.Logger, func() {
		if err := collectOnce(ctx, cmdCtx, paths, dryRun); err != nil {
			cmdCtx.Renderer.Error(err.Error())
		}
	})
}

// collectOnce runs a single collection into the configured diagram and saves it.
func collectOnce(ctx context.Context, cmdCtx *CommandContext, paths []string, dryRun bool) error {
	cfg := cmdCtx.Cfg
	logger := cmdCtx.Logger
	r := cmdCtx.Renderer

	roots, cleanup, err := loadRoots(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	objects, err := selectRoots(ctx, roots, paths)
	if err != nil {
		return err
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	d, err := loadOrCreateDiagram(ctx, store, cfg.Diagram.Name, cfg.Diagram.Attributes)
	if err != nil {
		return err
	}

	var run *state.Run
	if !dryRun {
		run, err = store.CreateRun(ctx, d.Name())
		if err != nil {
			return err
		}
	}

	start := time.Now()
	c := collector.New(d,
		collector.WithShowViews(cfg.Diagram.ShowViews),
		collector.WithLogger(logger),
	)
	nodes, collectErr := c.Start(ctx, collector.Roots(objects)).Wait()
	stats := c.Stats()

	added := d.Merge(nodes)
	status := state.RunStatusCompleted
	switch {
	case collectErr != nil:
		status = state.RunStatusFailed
	case stats.Canceled:
		status = state.RunStatusCancelled
	}

	logger.Info("collection finished",
		slog.String("diagram", d.Name()),
		slog.String("status", string(status)),
		slog.Int("added", added),
		slog.Int("relations", stats.Relations),
		slog.Duration("elapsed", time.Since(start)))

	if !dryRun {
		// The collection context may be cancelled; persistence must still finish.
		saveCtx := context.WithoutCancel(ctx)
		if collectErr == nil {
			if err := store.SaveDiagram(saveCtx, d); err != nil {
				return err
			}
		}
		errMsg := ""
		if collectErr != nil {
			errMsg = collectErr.Error()
		}
		if err := store.CompleteRun(saveCtx, run.ID, status, added, stats.Relations, errMsg); err != nil {
			return err
		}
	}

	result := output.CollectOutput{
		Diagram:   d.Name(),
		Status:    string(status),
		Added:     nodeIDs(nodes),
		Nodes:     d.Len(),
		Relations: len(d.Relations()),
		Stats: output.CollectStats{
			Entities:  stats.Entities,
			Skipped:   stats.Skipped,
			Declined:  stats.Declined,
			Relations: stats.Relations,
			Canceled:  stats.Canceled,
		},
	}
	if run != nil {
		result.RunID = run.ID
	}
	if collectErr != nil {
		result.Error = collectErr.Error()
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(result); err != nil {
			return err
		}
	case output.ModeMarkdown:
		collectMarkdown(r, result, dryRun)
	default:
		collectText(r, result, dryRun)
	}

	if collectErr != nil {
		return collectErr
	}
	return nil
}

// loadOrCreateDiagram loads the named diagram, or starts an empty one.
// The configured attribute visibility applies to nodes built from now on.
func loadOrCreateDiagram(ctx context.Context, store *state.SQLiteStore, name, attributes string) (*diagram.Diagram, error) {
	visibility, err := diagram.ParseAttributeVisibility(attributes)
	if err != nil {
		return nil, err
	}

	d, err := store.LoadDiagram(ctx, name)
	if errors.Is(err, state.ErrNotFound) {
		d = diagram.New(name)
	} else if err != nil {
		return nil, err
	}
	d.SetAttributeVisibility(visibility)
	return d, nil
}

func nodeIDs(nodes []*diagram.Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.EntityID
	}
	return ids
}

func collectText(r *output.Renderer, res output.CollectOutput, dryRun bool) {
	styles := r.Styles()

	r.Header(1, fmt.Sprintf("Diagram %s", res.Diagram))
	for _, id := range res.Added {
		r.Printf("  %s %s\n", styles.Success.Render("+"), styles.NodeID.Render(id))
	}
	if len(res.Added) > 0 {
		r.Println("")
	}

	detail := fmt.Sprintf("(%d added, %d skipped, %d relations)", len(res.Added), res.Stats.Skipped, res.Stats.Relations)
	r.StatusLine(res.Diagram, res.Status, detail)
	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d nodes, %d relations", res.Nodes, res.Relations)))
	if dryRun {
		r.Muted("Dry run: diagram not saved")
	}
}

func collectMarkdown(r *output.Renderer, res output.CollectOutput, dryRun bool) {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Diagram %s", res.Diagram)))
	r.Println("")
	r.Println(output.FormatKeyValue("Status", res.Status))
	if res.RunID != "" {
		r.Println(output.FormatKeyValue("Run", res.RunID))
	}
	r.Println(output.FormatKeyValue("Entities", fmt.Sprintf("%d", res.Stats.Entities)))
	r.Println(output.FormatKeyValue("Added", fmt.Sprintf("%d", len(res.Added))))
	r.Println(output.FormatKeyValue("Skipped", fmt.Sprintf("%d", res.Stats.Skipped)))
	r.Println(output.FormatKeyValue("Relations added", fmt.Sprintf("%d", res.Stats.Relations)))
	r.Println(output.FormatKeyValue("Total nodes", fmt.Sprintf("%d", res.Nodes)))
	if res.Error != "" {
		r.Println(output.FormatKeyValue("Error", res.Error))
	}
	if dryRun {
		r.Println(output.FormatKeyValue("Saved", "no (dry run)"))
	}

	if len(res.Added) > 0 {
		r.Println("")
		r.Println(output.FormatHeader(2, "Added"))
		for _, id := range res.Added {
			r.Printf("- %s\n", id)
		}
	}
}
