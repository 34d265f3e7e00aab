package collector

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/leaperd/internal/diagram"
	"github.com/leapstack-labs/leaperd/internal/task"
	"github.com/leapstack-labs/leaperd/pkg/core"
)

// Roots keeps the catalog objects among objects and drops everything else.
func Roots(objects []any) []core.Object {
	roots := make([]core.Object, 0, len(objects))
	for _, o := range objects {
		if obj, ok := o.(core.Object); ok {
			roots = append(roots, obj)
		}
	}
	return roots
}

// StartEntityList runs a collection for d in a background job. The job
// reports progress through its monitor and can be cancelled with Job.Cancel.
func StartEntityList(ctx context.Context, d *diagram.Diagram, objects []any, opts ...Option) *task.Job[[]*diagram.Node] {
	return New(d, opts...).Start(ctx, Roots(objects))
}

// Start runs the collector in a background job named after the diagram.
// Progress is reported through the job's monitor.
func (c *Collector) Start(ctx context.Context, roots []core.Object) *task.Job[[]*diagram.Node] {
	return task.Start(ctx, "collect "+c.diagram.Name(), c.logger, func(ctx context.Context, m *task.Monitor) ([]*diagram.Node, error) {
		c.monitor = m
		return c.Run(ctx, roots)
	})
}

// GenerateEntityList collects nodes for objects and waits for the result.
// It never fails: a catalog error or panic is logged and yields an empty list.
// Non-catalog values in objects are ignored.
func GenerateEntityList(ctx context.Context, d *diagram.Diagram, objects []any, opts ...Option) []*diagram.Node {
	c := New(d, opts...)
	nodes, err := c.Start(ctx, Roots(objects)).Wait()
	if err != nil {
		c.logger.Error("failed to collect diagram entities", slog.String("diagram", d.Name()), slog.Any("error", err))
		return []*diagram.Node{}
	}
	if nodes == nil {
		nodes = []*diagram.Node{}
	}
	return nodes
}
