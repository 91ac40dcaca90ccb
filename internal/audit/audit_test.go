package audit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vpsbridge/vpsbridge/internal/db"
	"github.com/vpsbridge/vpsbridge/internal/registry"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	// a named in-memory database keeps each test isolated while still
	// surviving gorm's connection pooling
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := db.NewDBConnection(dsn)
	require.NoError(t, err)

	store, err := NewStore(conn, zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestObserverRecordsSuccess(t *testing.T) {
	store := newTestStore(t)
	observe := store.Observer()

	observe(context.Background(), "vps_run_command", registry.Arguments{"cmd": "uptime"}, nil, 12*time.Millisecond)

	calls, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, calls, 1)

	assert.Equal(t, "vps_run_command", calls[0].Tool)
	assert.Equal(t, "success", calls[0].Outcome)
	assert.Empty(t, calls[0].Error)
	assert.Equal(t, int64(12), calls[0].DurationMs)
	assert.JSONEq(t, `{"cmd":"uptime"}`, string(calls[0].Arguments))
}

func TestObserverRecordsFailure(t *testing.T) {
	store := newTestStore(t)
	observe := store.Observer()

	observe(context.Background(), "vps_read_file", registry.Arguments{"path": "/x"}, errors.New("boom"), time.Millisecond)

	calls, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, calls, 1)

	assert.Equal(t, "error", calls[0].Outcome)
	assert.Equal(t, "boom", calls[0].Error)
}

func TestRecentReturnsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	observe := store.Observer()

	for _, tool := range []string{"first", "second", "third"} {
		observe(context.Background(), tool, nil, nil, 0)
	}

	calls, err := store.Recent(2)
	require.NoError(t, err)
	require.Len(t, calls, 2)

	assert.Equal(t, "third", calls[0].Tool)
	assert.Equal(t, "second", calls[1].Tool)
}

func TestObserverIntegratesWithRegistry(t *testing.T) {
	store := newTestStore(t)

	reg := registry.NewRegistry(&registry.Config{
		Observers: []registry.InvocationObserver{store.Observer()},
	})
	require.NoError(t, reg.Register(&registry.ToolDefinition{
		Name: "probe",
		Params: []registry.ParamSpec{
			{Name: "path", Type: registry.ParamTypeString, Required: true, MinLength: 1},
		},
		Handler: func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
			return registry.NewTextResult("ok"), nil
		},
	}))

	_, err := reg.Dispatch(context.Background(), "probe", map[string]any{"path": "/tmp"})
	require.NoError(t, err)

	_, err = reg.Dispatch(context.Background(), "probe", map[string]any{})
	require.Error(t, err)

	calls, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, calls, 2)

	// newest first: the failed dispatch comes back on top
	assert.Equal(t, "error", calls[0].Outcome)
	assert.Equal(t, "success", calls[1].Outcome)
}
