package commands

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/leapstack-labs/leaperd/internal/cli/output"
	"github.com/leapstack-labs/leaperd/internal/cli/testutil"
	"github.com/leapstack-labs/leaperd/internal/collector"
	"github.com/leapstack-labs/leaperd/internal/diagram"
	"github.com/leapstack-labs/leaperd/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shopDiagram collects the shop test catalog into a fresh diagram.
func shopDiagram(t *testing.T) *diagram.Diagram {
	t.Helper()
	cat, err := catalog.LoadYAML(strings.NewReader(testutil.ShopCatalog), nil)
	require.NoError(t, err)

	d := diagram.New("shop")
	nodes, err := collector.New(d).Run(t.Context(), cat.Roots())
	require.NoError(t, err)
	d.Merge(nodes)
	return d
}

func TestShowRendering(t *testing.T) {
	d := shopDiagram(t)

	t.Run("markdown", func(t *testing.T) {
		tr := testutil.NewTestRendererMarkdown()
		showMarkdown(tr.Renderer, d)

		out := tr.Output()
		testutil.AssertOutputMode(t, tr, output.ModeMarkdown)
		testutil.AssertValidMarkdown(t, out)
		assert.Contains(t, out, "# Diagram shop")
		assert.Contains(t, out, "## shop.main.orders")
		assert.Contains(t, out, "- **Primary key**: id")
		assert.Contains(t, out, "- **References**: shop.main.customers (fk_orders_customer)")
	})

	t.Run("text", func(t *testing.T) {
		tr := testutil.NewTestRenderer(output.ModeText, false)
		showText(tr.Renderer, d)

		out := tr.Output()
		assert.Contains(t, out, "Diagram shop")
		assert.Contains(t, out, "fk_orders_customer")
		assert.Contains(t, out, "(customer_id) -> (id)")
		assert.Contains(t, out, "Total: 3 nodes, 1 relations")
	})
}

func TestLayersRendering(t *testing.T) {
	d := shopDiagram(t)
	index := diagram.NewRelationIndex(d)
	levels := index.Levels()

	t.Run("text", func(t *testing.T) {
		tr := testutil.NewTestRenderer(output.ModeText, false)
		layersText(tr.Renderer, index, levels)

		out := tr.Output()
		assert.Contains(t, out, "Level 0:")
		assert.Contains(t, out, "Level 1:")
		assert.Contains(t, out, "references: shop.main.customers")
		assert.NotContains(t, out, "Reference cycle")
	})

	t.Run("markdown", func(t *testing.T) {
		tr := testutil.NewTestRendererMarkdown()
		layersMarkdown(tr.Renderer, index, levels)

		testutil.AssertOutputMode(t, tr, output.ModeMarkdown)
		testutil.AssertValidMarkdown(t, tr.Output())
		assert.Contains(t, tr.Output(), "## Level 0 (Referenced only)")
		assert.Contains(t, tr.Output(), "- **Total Relations**: 1")
	})

	t.Run("json", func(t *testing.T) {
		tr := testutil.NewTestRendererJSON()
		require.NoError(t, layersJSON(tr.Renderer, index, levels))

		var got output.LayersOutput
		require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &got))
		testutil.AssertOutputMode(t, tr, output.ModeJSON)
		assert.Len(t, got.Levels, 2)
		assert.False(t, got.HasCycle)
	})

	t.Run("entity lineage", func(t *testing.T) {
		tr := testutil.NewTestRendererAuto()
		require.NoError(t, entityLineage(tr.Renderer, index, "shop.main.orders"))

		assert.Contains(t, tr.Output(), "# shop.main.orders")
		assert.Contains(t, tr.Output(), "- **Upstream**: shop.main.customers")
		assert.Contains(t, tr.Output(), "- **Downstream**: -")

		tr.Reset()
		assert.Empty(t, tr.Output())
	})
}

func TestCollectRendering(t *testing.T) {
	res := output.CollectOutput{
		Diagram:   "shop",
		RunID:     "run-1",
		Status:    "completed",
		Added:     []string{"shop.main.customers", "shop.main.orders"},
		Nodes:     2,
		Relations: 1,
		Stats:     output.CollectStats{Entities: 2, Relations: 1},
	}

	t.Run("text dry run", func(t *testing.T) {
		tr := testutil.NewTestRenderer(output.ModeText, false)
		collectText(tr.Renderer, res, true)

		out := tr.Output()
		assert.Contains(t, out, "+ shop.main.orders")
		assert.Contains(t, out, "completed shop")
		assert.Contains(t, out, "Dry run: diagram not saved")
		assert.Empty(t, tr.ErrorOutput())
	})

	t.Run("markdown", func(t *testing.T) {
		tr := testutil.NewTestRendererMarkdown()
		collectMarkdown(tr.Renderer, res, false)

		out := tr.Output()
		testutil.AssertValidMarkdown(t, out)
		assert.Contains(t, out, "- **Run**: run-1")
		assert.Contains(t, out, "## Added")
		assert.NotContains(t, out, "dry run")
	})
}
