// Package main provides tests for the leaperd CLI.
package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/leapstack-labs/leaperd/internal/cli"
	"github.com/leapstack-labs/leaperd/internal/cli/output"
	"github.com/leapstack-labs/leaperd/internal/cli/testutil"
	"github.com/leapstack-labs/leaperd/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

// executeJSON runs the root command with --output json and decodes stdout into v.
func executeJSON(t *testing.T, v any, args ...string) {
	t.Helper()
	stdout, err := execute(t, append(args, "--output", "json")...)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(stdout), v), "stdout: %s", stdout)
}

func TestVersionCommand(t *testing.T) {
	stdout, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "leaperd")
}

func TestHelpCommand(t *testing.T) {
	stdout, err := execute(t, "--help")
	require.NoError(t, err)

	for _, expected := range []string{"collect", "show", "layers", "diagrams", "completion"} {
		assert.Contains(t, stdout, expected)
	}
}

func TestCompletionCommand(t *testing.T) {
	stdout, err := execute(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, stdout, "leaperd")

	_, err = execute(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestCollectWorkflow(t *testing.T) {
	p := testutil.SetupTestProject(t)

	var first output.CollectOutput
	executeJSON(t, &first, p.Args("collect")...)

	assert.Equal(t, "default", first.Diagram)
	assert.Equal(t, string(state.RunStatusCompleted), first.Status)
	assert.NotEmpty(t, first.RunID)
	assert.ElementsMatch(t, []string{
		"shop.main.customers",
		"shop.main.orders",
		"shop.main.order_summary",
	}, first.Added)
	assert.Equal(t, 3, first.Nodes)
	assert.Equal(t, 1, first.Relations)

	t.Run("second collect adds nothing", func(t *testing.T) {
		var second output.CollectOutput
		executeJSON(t, &second, p.Args("collect")...)

		assert.Empty(t, second.Added)
		assert.Equal(t, 3, second.Nodes)
		assert.Equal(t, 1, second.Relations)
	})

	t.Run("show", func(t *testing.T) {
		var d output.DiagramOutput
		executeJSON(t, &d, p.Args("show")...)

		assert.Equal(t, "default", d.Name)
		assert.Equal(t, "all", d.AttributeVisibility)
		assert.Len(t, d.Nodes, 3)
		require.Len(t, d.Relations, 1)
		assert.Equal(t, "fk_orders_customer", d.Relations[0].Name)
		assert.Equal(t, "shop.main.orders", d.Relations[0].Source)
		assert.Equal(t, "shop.main.customers", d.Relations[0].Target)
		assert.Equal(t, []string{"customer_id"}, d.Relations[0].SourceColumns)
	})

	t.Run("layers", func(t *testing.T) {
		var layers output.LayersOutput
		executeJSON(t, &layers, p.Args("layers")...)

		require.Len(t, layers.Levels, 2)
		assert.False(t, layers.HasCycle)
		assert.Equal(t, 3, layers.TotalNodes)
		assert.Equal(t, 1, layers.TotalRelations)
		require.Len(t, layers.Levels[1].Nodes, 1)
		assert.Equal(t, "shop.main.orders", layers.Levels[1].Nodes[0].ID)
		assert.Equal(t, []string{"shop.main.customers"}, layers.Levels[1].Nodes[0].References)
	})

	t.Run("layers entity", func(t *testing.T) {
		var lineage struct {
			ID         string   `json:"id"`
			Upstream   []string `json:"upstream"`
			Downstream []string `json:"downstream"`
		}
		executeJSON(t, &lineage, p.Args("layers", "--entity", "shop.main.customers")...)

		assert.Equal(t, "shop.main.customers", lineage.ID)
		assert.Empty(t, lineage.Upstream)
		assert.Equal(t, []string{"shop.main.orders"}, lineage.Downstream)

		_, err := execute(t, p.Args("layers", "--entity", "shop.main.missing")...)
		assert.ErrorContains(t, err, "not in diagram")
	})

	t.Run("diagrams list and runs", func(t *testing.T) {
		var infos []state.DiagramInfo
		executeJSON(t, &infos, p.Args("diagrams")...)
		require.Len(t, infos, 1)
		assert.Equal(t, "default", infos[0].Name)
		assert.Equal(t, 3, infos[0].Nodes)
		assert.Equal(t, 1, infos[0].Relations)

		var runs []state.Run
		executeJSON(t, &runs, p.Args("diagrams", "runs", "default")...)
		require.Len(t, runs, 2)
		for _, run := range runs {
			assert.Equal(t, state.RunStatusCompleted, run.Status)
			assert.NotNil(t, run.CompletedAt)
		}
	})

	t.Run("markdown output", func(t *testing.T) {
		stdout, err := execute(t, p.Args("show", "--output", "markdown")...)
		require.NoError(t, err)

		testutil.AssertNoANSI(t, stdout)
		testutil.AssertValidMarkdown(t, stdout)
		assert.Contains(t, stdout, "# Diagram default")
		assert.Contains(t, stdout, "## shop.main.orders")
	})

	t.Run("delete", func(t *testing.T) {
		_, err := execute(t, p.Args("diagrams", "delete", "default")...)
		require.NoError(t, err)

		_, err = execute(t, p.Args("show")...)
		assert.ErrorIs(t, err, state.ErrNotFound)
	})
}

func TestCollectOptions(t *testing.T) {
	t.Run("path restricts roots", func(t *testing.T) {
		p := testutil.SetupTestProject(t)

		var res output.CollectOutput
		executeJSON(t, &res, p.Args("collect", "--diagram", "sales", "--path", "shop/main/orders")...)

		assert.Equal(t, "sales", res.Diagram)
		assert.Equal(t, []string{"shop.main.orders"}, res.Added)
		assert.Equal(t, 0, res.Relations)
	})

	t.Run("views hidden", func(t *testing.T) {
		p := testutil.SetupTestProject(t)

		var res output.CollectOutput
		executeJSON(t, &res, p.Args("collect", "--show-views=false")...)

		assert.NotContains(t, res.Added, "shop.main.order_summary")
		assert.Contains(t, res.Added, "shop.main.orders")
	})

	t.Run("key attributes only", func(t *testing.T) {
		p := testutil.SetupTestProject(t)

		executeJSON(t, &output.CollectOutput{}, p.Args("collect", "--attributes", "keys")...)

		var d output.DiagramOutput
		executeJSON(t, &d, p.Args("show")...)
		assert.Equal(t, "keys", d.AttributeVisibility)
		for _, n := range d.Nodes {
			if n.ID == "shop.main.customers" {
				require.Len(t, n.Attributes, 1)
				assert.Equal(t, "id", n.Attributes[0].Name)
			}
		}
	})

	t.Run("dry run saves nothing", func(t *testing.T) {
		p := testutil.SetupTestProject(t)

		var res output.CollectOutput
		executeJSON(t, &res, p.Args("collect", "--dry-run")...)
		assert.Empty(t, res.RunID)
		assert.Len(t, res.Added, 3)

		var infos []state.DiagramInfo
		executeJSON(t, &infos, p.Args("diagrams", "list")...)
		assert.Empty(t, infos)
	})

	t.Run("unknown path", func(t *testing.T) {
		p := testutil.SetupTestProject(t)

		_, err := execute(t, p.Args("collect", "--path", "shop/nope")...)
		assert.ErrorContains(t, err, "shop/nope")
	})

	t.Run("no catalog source", func(t *testing.T) {
		p := testutil.SetupTestProject(t)

		_, err := execute(t, "collect", "--state", p.StatePath)
		assert.ErrorContains(t, err, "no catalog source configured")
	})

	t.Run("watch needs a catalog file", func(t *testing.T) {
		p := testutil.SetupTestProject(t)

		_, err := execute(t, "collect", "--watch", "--state", p.StatePath, "--database", ":memory:")
		assert.ErrorContains(t, err, "--watch requires a catalog file")
	})

	t.Run("invalid attributes", func(t *testing.T) {
		p := testutil.SetupTestProject(t)

		_, err := execute(t, p.Args("collect", "--attributes", "some")...)
		assert.Error(t, err)
	})
}
