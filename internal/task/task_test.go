package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leapstack-labs/leaperd/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart_Result(t *testing.T) {
	job := Start(context.Background(), "sum", testutil.NewTestLogger(t), func(_ context.Context, mon *Monitor) (int, error) {
		mon.BeginTask("adding", 3)
		total := 0
		for i := 1; i <= 3; i++ {
			total += i
			mon.Worked(1)
		}
		return total, nil
	})

	got, err := job.Wait()
	require.NoError(t, err)
	assert.Equal(t, 6, got)
	assert.Equal(t, Progress{Step: "adding", Done: 3, Total: 3}, job.Monitor().Progress())
	assert.Equal(t, "sum", job.Name())

	select {
	case <-job.Done():
	default:
		t.Fatal("Done must be closed after Wait returns")
	}
}

func TestStart_Error(t *testing.T) {
	boom := errors.New("boom")
	_, err := Run(context.Background(), "fail", nil, func(context.Context, *Monitor) (string, error) {
		return "partial", boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestStart_Panic(t *testing.T) {
	_, err := Run(context.Background(), "explode", nil, func(context.Context, *Monitor) (int, error) {
		panic("kaboom")
	})

	var panicErr *PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "explode", panicErr.Task)
	assert.Equal(t, "kaboom", panicErr.Value)
	assert.NotEmpty(t, panicErr.Stack)
	assert.Contains(t, err.Error(), "task explode panicked: kaboom")
}

func TestJob_Cancel(t *testing.T) {
	started := make(chan struct{})
	job := Start(context.Background(), "loop", nil, func(_ context.Context, mon *Monitor) (int, error) {
		close(started)
		n := 0
		for !mon.IsCanceled() {
			n++
			time.Sleep(time.Millisecond)
		}
		return n, nil
	})

	<-started
	job.Cancel()

	n, err := job.Wait()
	require.NoError(t, err, "cancellation is not an error")
	assert.GreaterOrEqual(t, n, 0)
}

func TestJob_ParentContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	canceled, err := Run(ctx, "pre-cancelled", nil, func(_ context.Context, mon *Monitor) (bool, error) {
		return mon.IsCanceled(), nil
	})
	require.NoError(t, err)
	assert.True(t, canceled)
}

func TestNewMonitor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mon := NewMonitor(ctx, "sync", nil)
	assert.False(t, mon.IsCanceled())
	assert.Equal(t, ctx, mon.Context())

	cancel()
	assert.True(t, mon.IsCanceled())
}
