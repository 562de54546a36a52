package service_test

import (
	"context"
	"testing"
	"time"

	"blocknotes/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunningGuard_TryLock(t *testing.T) {
	var g service.ExportedRunningGuard

	require.True(t, g.TryLock("job-1"))
	assert.False(t, g.TryLock("job-1"), "same key is already running")
	require.True(t, g.TryLock("job-2"))
	g.Unlock("job-1")
	g.Unlock("job-2")

	assert.True(t, g.TryLock("job-1"), "key is free again after unlock")
	g.Unlock("job-1")
}

func TestRunningGuard_WaitAll(t *testing.T) {
	var g service.ExportedRunningGuard
	require.True(t, g.TryLock("job-a"))

	done := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		g.WaitAll(ctx)
		close(done)
	}()
	go func() {
		time.Sleep(20 * time.Millisecond)
		g.Unlock("job-a")
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WaitAll timed out")
	}
}

func TestMockEmitter_RecordsEvents(t *testing.T) {
	m := &service.MockEmitter{}
	ctx := context.Background()

	m.Emit(ctx, "a", "first")
	m.Emit(ctx, "b", nil)

	require.Len(t, m.Events, 2)
	assert.Equal(t, "first", m.Events[0].Data)
	assert.Equal(t, []string{"a", "b"}, m.Names())
}

func TestMultiEmitter(t *testing.T) {
	a, b := &service.MockEmitter{}, &service.MockEmitter{}
	multi := service.MultiEmitter{a, nil, b}

	multi.Emit(context.Background(), "x", 1)

	assert.Equal(t, []string{"x"}, a.Names())
	assert.Equal(t, []string{"x"}, b.Names())
}
