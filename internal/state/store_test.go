package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leaperd/internal/diagram"
	"github.com/leapstack-labs/leaperd/internal/testutil"
	"github.com/leapstack-labs/leaperd/pkg/catalog"
	"github.com/leapstack-labs/leaperd/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// shopDiagram builds customers <- orders with both nodes resolved.
func shopDiagram(t *testing.T) *diagram.Diagram {
	t.Helper()
	ctx := context.Background()

	schema := catalog.NewDatabase("shop", nil).AddSchema("main")
	customers := schema.AddTable("customers", core.EntityTable).
		AddColumn(core.Attribute{Name: "id", Type: "INTEGER", PrimaryKey: true})
	orders := schema.AddTable("orders", core.EntityTable).
		AddColumn(core.Attribute{Name: "id", Type: "INTEGER", PrimaryKey: true}).
		AddColumn(core.Attribute{Name: "customer_id", Type: "INTEGER", Nullable: true}).
		AddForeignKey(core.Association{
			Name:               "fk_orders_customer",
			ReferencedEntityID: customers.ID(),
			Columns:            []string{"customer_id"},
			ReferencedColumns:  []string{"id"},
		})

	d := diagram.New("sales")
	d.SetAttributeVisibility(diagram.AttributesKeys)
	nodes := diagram.NewNodeMap()
	for _, e := range []core.Entity{customers, orders} {
		n := diagram.BuildNode(ctx, d, e)
		require.NotNil(t, n)
		nodes.Put(n)
	}
	for _, n := range nodes.Nodes() {
		_, err := diagram.AddRelations(ctx, n, nodes, false)
		require.NoError(t, err)
	}
	d.Merge(nodes.Nodes())
	return d
}

func TestSQLiteStore_OpenMigrate(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.MigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	for _, table := range []string{"diagrams", "diagram_nodes", "diagram_relations", "collection_runs"} {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		require.NoError(t, err, table)
		_ = rows.Close()
	}

	// a second migration is a no-op
	require.NoError(t, store.Migrate())
}

func TestSQLiteStore_FileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(path))
	require.NoError(t, store.Migrate())
	require.NoError(t, store.SaveDiagram(ctx, shopDiagram(t)))
	require.NoError(t, store.Close())

	reopened := NewSQLiteStore(nil)
	require.NoError(t, reopened.Open(path))
	defer reopened.Close()
	assert.Equal(t, path, reopened.Path())

	d, err := reopened.LoadDiagram(ctx, "sales")
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)
	ctx := context.Background()

	assert.Error(t, store.Migrate())
	assert.Error(t, store.SaveDiagram(ctx, diagram.New("x")))
	_, err := store.LoadDiagram(ctx, "x")
	assert.Error(t, err)
	_, err = store.CreateRun(ctx, "x")
	assert.Error(t, err)
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_DiagramRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	original := shopDiagram(t)

	require.NoError(t, store.SaveDiagram(ctx, original))

	loaded, err := store.LoadDiagram(ctx, "sales")
	require.NoError(t, err)
	assert.Equal(t, "sales", loaded.Name())
	assert.Equal(t, diagram.AttributesKeys, loaded.AttributeVisibility())

	var ids []string
	for _, n := range loaded.Nodes() {
		ids = append(ids, n.EntityID)
		assert.Nil(t, n.Entity(), "restored nodes carry no entity")
	}
	assert.Equal(t, []string{"shop.main.customers", "shop.main.orders"}, ids)

	orders, ok := loaded.Node("shop.main.orders")
	require.True(t, ok)
	assert.Equal(t, core.EntityTable, orders.Type)
	assert.Equal(t, []string{"id"}, orders.PrimaryKey())
	assert.Len(t, orders.Attributes, 2)

	rels := loaded.Relations()
	require.Len(t, rels, 1)
	assert.Equal(t, "fk_orders_customer", rels[0].Name)
	assert.Equal(t, []string{"customer_id"}, rels[0].SourceColumns)
	assert.Equal(t, []string{"id"}, rels[0].TargetColumns)

	customers, _ := loaded.Node("shop.main.customers")
	assert.Same(t, customers, rels[0].Target)

	// restored nodes never resolve again
	added, err := diagram.AddRelations(ctx, orders, loaded.NodeMap(), false)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
}

func TestSQLiteStore_SaveReplaces(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDiagram(ctx, shopDiagram(t)))
	require.NoError(t, store.SaveDiagram(ctx, diagram.New("sales")))

	loaded, err := store.LoadDiagram(ctx, "sales")
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
	assert.Empty(t, loaded.Relations())
}

func TestSQLiteStore_ListAndDeleteDiagrams(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	infos, err := store.ListDiagrams(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)

	require.NoError(t, store.SaveDiagram(ctx, shopDiagram(t)))
	require.NoError(t, store.SaveDiagram(ctx, diagram.New("empty")))

	infos, err = store.ListDiagrams(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "empty", infos[0].Name)
	assert.Equal(t, 0, infos[0].Nodes)
	assert.Equal(t, "sales", infos[1].Name)
	assert.Equal(t, 2, infos[1].Nodes)
	assert.Equal(t, 1, infos[1].Relations)
	assert.Equal(t, "keys", infos[1].AttributeVisibility)
	assert.False(t, infos[1].UpdatedAt.IsZero())

	require.NoError(t, store.DeleteDiagram(ctx, "sales"))
	_, err = store.LoadDiagram(ctx, "sales")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.DeleteDiagram(ctx, "sales"), ErrNotFound)
}

func TestSQLiteStore_LoadMissing(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.LoadDiagram(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		status    RunStatus
		nodes     int
		relations int
		errMsg    string
	}{
		{name: "completed", status: RunStatusCompleted, nodes: 4, relations: 2},
		{name: "failed", status: RunStatusFailed, errMsg: "catalog list children \"main\": connection refused"},
		{name: "cancelled", status: RunStatusCancelled, nodes: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupTestStore(t)

			run, err := store.CreateRun(ctx, "sales")
			require.NoError(t, err)
			assert.NotEmpty(t, run.ID)
			assert.Equal(t, RunStatusRunning, run.Status)
			assert.Nil(t, run.CompletedAt)

			require.NoError(t, store.CompleteRun(ctx, run.ID, tt.status, tt.nodes, tt.relations, tt.errMsg))

			got, err := store.GetRun(ctx, run.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.nodes, got.Nodes)
			assert.Equal(t, tt.relations, got.Relations)
			assert.Equal(t, tt.errMsg, got.Error)
			require.NotNil(t, got.CompletedAt)
		})
	}
}

func TestSQLiteStore_RunErrors(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.CompleteRun(ctx, "missing", RunStatusCompleted, 0, 0, ""), ErrNotFound)

	_, err := store.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"sales", "sales", "audit"} {
		run, err := store.CreateRun(ctx, name)
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}

	tests := []struct {
		name    string
		diagram string
		limit   int
		want    []string
	}{
		{name: "all diagrams newest first", diagram: "", limit: 10, want: []string{ids[2], ids[1], ids[0]}},
		{name: "one diagram", diagram: "sales", limit: 10, want: []string{ids[1], ids[0]}},
		{name: "limited", diagram: "", limit: 1, want: []string{ids[2]}},
		{name: "unknown diagram", diagram: "hr", limit: 10, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := store.ListRuns(ctx, tt.diagram, tt.limit)
			require.NoError(t, err)

			var got []string
			for _, r := range runs {
				got = append(got, r.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
