// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedComputer returns results in call order; a call waits on its gate
// (if any) before returning.
type scriptedComputer struct {
	calls atomic.Int32
	gates map[int32]chan struct{}
	err   error
}

func (s *scriptedComputer) Compute(ctx context.Context) (*Result, error) {
	n := s.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if gate, ok := s.gates[n]; ok {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &Result{Counts: Counts{Total: int(n)}}, nil
}

func TestLiveRefreshPublishes(t *testing.T) {
	live := NewLive(&scriptedComputer{}, quietLogger, nil)
	assert.Nil(t, live.Latest())

	updates, unsubscribe := live.Subscribe()
	defer unsubscribe()

	result, err := live.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Counts.Total)
	assert.Same(t, result, live.Latest())

	select {
	case got := <-updates:
		assert.NoError(t, got.Err)
		assert.Same(t, result, got.Result)
	case <-time.After(time.Second):
		t.Fatal("Expected subscriber to receive the result")
	}
}

// An older refresh still in flight is cancelled and never overwrites a newer result.
func TestLiveRefreshSupersedesInFlight(t *testing.T) {
	gate := make(chan struct{})
	computer := &scriptedComputer{gates: map[int32]chan struct{}{1: gate}}
	live := NewLive(computer, quietLogger, nil)

	var wg sync.WaitGroup
	var oldErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, oldErr = live.Refresh(context.Background())
	}()

	// Wait until the first refresh is in Compute
	require.Eventually(t, func() bool { return computer.calls.Load() == 1 }, time.Second, time.Millisecond)

	newer, err := live.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, newer.Counts.Total)

	wg.Wait()
	assert.ErrorIs(t, oldErr, ErrSuperseded)
	assert.Same(t, newer, live.Latest())
}

// A failed refresh replaces the previous tally; viewers never keep stale numbers.
func TestLiveRefreshFailureIsPublished(t *testing.T) {
	computer := &scriptedComputer{}
	live := NewLive(computer, quietLogger, nil)

	updates, unsubscribe := live.Subscribe()
	defer unsubscribe()

	_, err := live.Refresh(context.Background())
	require.NoError(t, err)
	first := <-updates
	require.NotNil(t, first.Result)

	computer.err = fmt.Errorf("%w: db down", ErrDataUnavailable)
	_, err = live.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrDataUnavailable)

	select {
	case got := <-updates:
		assert.Nil(t, got.Result)
		assert.ErrorIs(t, got.Err, ErrDataUnavailable)
	case <-time.After(time.Second):
		t.Fatal("Expected subscriber to receive the failure")
	}
	assert.Nil(t, live.Latest())
	assert.ErrorIs(t, live.Current().Err, ErrDataUnavailable)

	// Recovery publishes a result again
	computer.err = nil
	recovered, err := live.Refresh(context.Background())
	require.NoError(t, err)
	assert.Same(t, recovered, live.Latest())
	assert.NoError(t, live.Current().Err)
}

// A refresh started with an abandoned context still completes, and the
// refresh it replaced reports ErrSuperseded.
func TestLiveRefreshIgnoresCallerCancel(t *testing.T) {
	gate := make(chan struct{})
	computer := &scriptedComputer{gates: map[int32]chan struct{}{1: gate}}
	live := NewLive(computer, quietLogger, nil)

	var wg sync.WaitGroup
	var olderErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, olderErr = live.Refresh(context.Background())
	}()

	require.Eventually(t, func() bool { return computer.calls.Load() == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	newer, err := live.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, newer.Counts.Total)

	wg.Wait()
	assert.ErrorIs(t, olderErr, ErrSuperseded)
	assert.Same(t, newer, live.Latest())
}

func TestLiveSubscriberSeesNewestOnly(t *testing.T) {
	live := NewLive(&scriptedComputer{}, quietLogger, nil)
	updates, unsubscribe := live.Subscribe()
	defer unsubscribe()

	for i := 0; i < 3; i++ {
		_, err := live.Refresh(context.Background())
		require.NoError(t, err)
	}

	got := <-updates
	assert.Equal(t, 3, got.Result.Counts.Total)
	select {
	case extra := <-updates:
		t.Fatalf("Unexpected extra update %+v", extra)
	default:
	}
}

func TestLiveUnsubscribe(t *testing.T) {
	live := NewLive(&scriptedComputer{}, quietLogger, nil)
	updates, unsubscribe := live.Subscribe()
	unsubscribe()
	unsubscribe()

	_, err := live.Refresh(context.Background())
	require.NoError(t, err)

	select {
	case <-updates:
		t.Fatal("Unsubscribed channel should not receive updates")
	default:
	}
}

func TestLiveRunRefreshesOnEvents(t *testing.T) {
	computer := &scriptedComputer{}
	live := NewLive(computer, quietLogger, nil)
	events := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		live.Run(ctx, 0, events)
		close(done)
	}()

	require.Eventually(t, func() bool { return live.Latest() != nil }, time.Second, time.Millisecond)

	events <- struct{}{}
	events <- struct{}{}
	require.Eventually(t, func() bool { return computer.calls.Load() >= 3 }, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestLiveRunPolls(t *testing.T) {
	computer := &scriptedComputer{}
	live := NewLive(computer, quietLogger, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go live.Run(ctx, 5*time.Millisecond, nil)

	require.Eventually(t, func() bool { return computer.calls.Load() >= 3 }, time.Second, time.Millisecond)
}

func TestLiveRunLogsFailures(t *testing.T) {
	computer := &scriptedComputer{err: errors.New("boom")}
	live := NewLive(computer, quietLogger, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		live.Run(ctx, 0, nil)
		close(done)
	}()

	require.Eventually(t, func() bool { return computer.calls.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	<-done
	assert.Nil(t, live.Latest())
}
