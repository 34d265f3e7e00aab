package catalog

import (
	"context"
	"sync"

	"github.com/leapstack-labs/leaperd/pkg/core"
)

// Loader fills a container's children on first access.
type Loader func(ctx context.Context) ([]core.Object, error)

// Cacher bulk-loads the structure below a container for the given scope.
type Cacher func(ctx context.Context, scope core.StructScope) error

// lazy holds a value that is loaded at most once. A failed load is retried
// on the next access.
type lazy[T any] struct {
	mu   sync.Mutex
	done bool
	val  T
	load func(ctx context.Context) (T, error)
}

func (l *lazy[T]) get(ctx context.Context) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.done && l.load != nil {
		v, err := l.load(ctx)
		if err != nil {
			var zero T
			return zero, err
		}
		l.val = v
		l.done = true
	}
	return l.val, nil
}

func (l *lazy[T]) set(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.val = v
	l.done = true
}

func (l *lazy[T]) setLoader(load func(ctx context.Context) (T, error)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.load = load
	l.done = false
}

// update applies fn to the current value without triggering a load.
func (l *lazy[T]) update(fn func(T) T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.val = fn(l.val)
}
