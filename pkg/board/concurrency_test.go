package board

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waiterDepth(b *Board, row, col int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.waits.depth(b.index(row, col))
}

func waitForWaiterDepth(t *testing.T, b *Board, row, col, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if waiterDepth(b, row, col) == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d waiters on (%d,%d), have %d", want, row, col, waiterDepth(b, row, col))
}

func TestFlip_ContendedFirstPickWaitsForRelease(t *testing.T) {
	b := newTestBoard(t)

	require.NoError(t, b.Flip("p1", 0, 0))

	p2Done := make(chan error, 1)
	go func() {
		p2Done <- b.Flip("p2", 0, 0)
	}()
	waitForWaiterDepth(t, b, 0, 0, 1)

	select {
	case err := <-p2Done:
		t.Fatalf("p2 returned %v before p1 released the card", err)
	case <-time.After(50 * time.Millisecond):
	}

	// p1 mismatches, releasing both cards and waking p2
	require.NoError(t, b.Flip("p1", 1, 0))

	select {
	case err := <-p2Done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("p2 was not woken by the release")
	}

	controller, err := b.ControllerOf(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "p2", controller)
}

func TestFlip_WaiterWokenByRemovalGetsNoCard(t *testing.T) {
	b := newTestBoard(t)

	require.NoError(t, b.Flip("p1", 0, 0))
	require.NoError(t, b.Flip("p1", 0, 1)) // match held by p1

	p2Done := make(chan error, 1)
	go func() {
		p2Done <- b.Flip("p2", 0, 0)
	}()
	waitForWaiterDepth(t, b, 0, 0, 1)

	// committing the match removes the card p2 is waiting on
	require.NoError(t, b.Flip("p1", 1, 0))

	select {
	case err := <-p2Done:
		assert.True(t, IsNoCard(err))
	case <-time.After(5 * time.Second):
		t.Fatal("p2 was not woken by the removal")
	}
}

func TestFlip_SecondPickNeverBlocks(t *testing.T) {
	b := newTestBoard(t)

	require.NoError(t, b.Flip("p1", 0, 0))
	require.NoError(t, b.Flip("p2", 1, 0))

	// p1's second pick targets p2's card; it must fail without suspending
	done := make(chan error, 1)
	go func() {
		done <- b.Flip("p1", 1, 0)
	}()

	select {
	case err := <-done:
		assert.True(t, IsAlreadyControlled(err))
	case <-time.After(time.Second):
		t.Fatal("second pick on a contended card suspended the caller")
	}

	// the failed second pick released p1's first card
	controller, err := b.ControllerOf(0, 0)
	require.NoError(t, err)
	assert.Empty(t, controller)
}

func TestFlip_WaitersWokenInArrivalOrder(t *testing.T) {
	b := newTestBoard(t)

	require.NoError(t, b.Flip("p1", 0, 0))

	var mu sync.Mutex
	var order []string

	waiters := []string{"w1", "w2", "w3"}
	done := make(chan struct{})
	for i, name := range waiters {
		go func(name string) {
			if err := b.Flip(name, 0, 0); err != nil {
				t.Errorf("waiter %s: %v", name, err)
			}
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			done <- struct{}{}
		}(name)
		waitForWaiterDepth(t, b, 0, 0, i+1)
	}

	// every mismatch releases (0,0), waking exactly the oldest waiter, which
	// claims it and in turn mismatches against (1,1)
	require.NoError(t, b.Flip("p1", 1, 0))
	for range waiters {
		<-done
		holder, err := b.ControllerOf(0, 0)
		require.NoError(t, err)
		require.NoError(t, b.Flip(holder, 1, 1))
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, waiters, order)
}

func TestBoard_ConcurrentUseKeepsInvariants(t *testing.T) {
	// four players working disjoint quadrants, with transforms and watchers
	// in flight; any invariant violation panics and fails the test
	contents := make([]string, 16)
	for i := range contents {
		contents[i] = fmt.Sprintf("c%d", i/2)
	}
	b, err := New(4, 4, contents)
	require.NoError(t, err)

	quadrants := map[string][]position{
		"p1": {{0, 0}, {0, 1}, {1, 0}, {1, 1}},
		"p2": {{0, 2}, {0, 3}, {1, 2}, {1, 3}},
		"p3": {{2, 0}, {2, 1}, {3, 0}, {3, 1}},
		"p4": {{2, 2}, {2, 3}, {3, 2}, {3, 3}},
	}

	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				b.Watch()
			}
		}
	}()

	var wg sync.WaitGroup
	for player, cells := range quadrants {
		wg.Add(1)
		go func(player string, cells []position) {
			defer wg.Done()
			for turn := 0; turn < 50; turn++ {
				for _, pos := range cells {
					err := b.Flip(player, pos.row, pos.col)
					if err != nil && !IsNoCard(err) {
						t.Errorf("player %s flip (%d,%d): %v", player, pos.row, pos.col, err)
					}
				}
			}
		}(player, cells)
	}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Transform(func(content string) string { return content })
		}()
	}
	wg.Wait()
	close(stop)

	// one last flip to force a final invariant sweep
	err = b.Flip("p1", 0, 0)
	if err != nil {
		assert.True(t, IsNoCard(err))
	}
}
