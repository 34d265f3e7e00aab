package collector

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/leaperd/internal/diagram"
	"github.com/leapstack-labs/leaperd/internal/task"
	"github.com/leapstack-labs/leaperd/pkg/core"
)

// Builder wraps an entity in a new node, or returns nil to decline it.
type Builder func(ctx context.Context, d *diagram.Diagram, e core.Entity) *diagram.Node

// Resolver records the relations of n against nodes and returns how many it added.
type Resolver func(ctx context.Context, n *diagram.Node, nodes *diagram.NodeMap, reflect bool) (int, error)

// Collector runs one collection against a diagram. Create a new one per run.
type Collector struct {
	diagram   *diagram.Diagram
	showViews bool
	build     Builder
	resolve   Resolver
	logger    *slog.Logger
	monitor   *task.Monitor

	nodes   []*diagram.Node
	nodeMap *diagram.NodeMap
	stats   Stats
	ran     bool
}

// Stats summarises a finished run.
type Stats struct {
	Entities  int  // reachable entities found by the walk
	Skipped   int  // entities already present, hidden, or suppressed views
	Declined  int  // entities the builder returned no node for
	Nodes     int  // nodes created
	Relations int  // relations recorded on new nodes
	Canceled  bool // the run stopped early
}

// Option configures a Collector.
type Option func(*Collector)

// WithShowViews controls whether view entities become nodes. Views are
// included by default.
func WithShowViews(show bool) Option {
	return func(c *Collector) { c.showViews = show }
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBuilder replaces diagram.BuildNode.
func WithBuilder(b Builder) Option {
	return func(c *Collector) {
		if b != nil {
			c.build = b
		}
	}
}

// WithResolver replaces diagram.AddRelations.
func WithResolver(r Resolver) Option {
	return func(c *Collector) {
		if r != nil {
			c.resolve = r
		}
	}
}

// WithMonitor reports per-phase progress to m.
func WithMonitor(m *task.Monitor) Option {
	return func(c *Collector) { c.monitor = m }
}

// New creates a collector for d. The collector's node map starts as a
// snapshot of the nodes d already holds.
func New(d *diagram.Diagram, opts ...Option) *Collector {
	c := &Collector{
		diagram:   d,
		showViews: true,
		build:     diagram.BuildNode,
		resolve:   diagram.AddRelations,
		logger:    slog.New(slog.DiscardHandler),
		nodeMap:   d.NodeMap(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run collects the entities reachable from roots, builds a node for each one
// the diagram does not already hold, then resolves relations for the new
// nodes against every node known to the run.
//
// The diagram itself is not modified; callers merge the returned nodes.
// Cancellation returns the nodes built so far with a nil error. A catalog
// failure during the walk returns a *CollectionError and no nodes.
func (c *Collector) Run(ctx context.Context, roots []core.Object) ([]*diagram.Node, error) {
	if c.ran {
		return nil, ErrCollectorReused
	}
	c.ran = true
	log := c.logger.With(slog.String("diagram", c.diagram.Name()))

	c.begin("collect entities", len(roots))
	entities, err := CollectEntities(ctx, roots)
	if err != nil {
		return nil, &CollectionError{Diagram: c.diagram.Name(), Err: err}
	}
	c.stats.Entities = entities.Len()

	c.begin("build nodes", entities.Len())
	for _, e := range entities.Entities() {
		if ctx.Err() != nil {
			break
		}
		c.addEntity(ctx, log, e)
		c.worked()
	}

	if ctx.Err() == nil {
		c.begin("resolve relations", len(c.nodes))
		for _, n := range c.nodes {
			if ctx.Err() != nil {
				break
			}
			added, err := c.resolve(ctx, n, c.nodeMap, false)
			if err != nil {
				log.Warn("failed to resolve relations", slog.String("entity", n.EntityID), slog.Any("error", err))
			}
			c.stats.Relations += added
			c.worked()
		}
	}

	c.stats.Nodes = len(c.nodes)
	c.stats.Canceled = ctx.Err() != nil
	log.Debug("collected diagram entities",
		slog.Int("entities", c.stats.Entities),
		slog.Int("nodes", c.stats.Nodes),
		slog.Int("relations", c.stats.Relations),
		slog.Bool("canceled", c.stats.Canceled))

	return c.Nodes(), nil
}

func (c *Collector) addEntity(ctx context.Context, log *slog.Logger, e core.Entity) {
	id := e.ID()
	switch {
	case c.nodeMap.Has(id):
		c.stats.Skipped++
		return
	case core.IsHidden(e):
		log.Debug("skipping hidden entity", slog.String("entity", id))
		c.stats.Skipped++
		return
	case !c.showViews && core.IsView(e):
		log.Debug("skipping view", slog.String("entity", id))
		c.stats.Skipped++
		return
	}

	n := c.build(ctx, c.diagram, e)
	if n == nil {
		log.Debug("builder declined entity", slog.String("entity", id), slog.String("type", string(e.EntityType())))
		c.stats.Declined++
		return
	}
	c.nodeMap.Put(n)
	c.nodes = append(c.nodes, n)
}

func (c *Collector) begin(step string, total int) {
	if c.monitor != nil {
		c.monitor.BeginTask(step, total)
	}
}

func (c *Collector) worked() {
	if c.monitor != nil {
		c.monitor.Worked(1)
	}
}

// Nodes returns the nodes created by the run in creation order.
func (c *Collector) Nodes() []*diagram.Node {
	out := make([]*diagram.Node, len(c.nodes))
	copy(out, c.nodes)
	return out
}

// NodeMap returns the run's node map: the diagram's prior nodes plus the new ones.
func (c *Collector) NodeMap() *diagram.NodeMap {
	return c.nodeMap
}

// Stats returns counters for the finished run.
func (c *Collector) Stats() Stats {
	return c.stats
}
