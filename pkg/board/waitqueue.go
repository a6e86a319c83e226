package board

// waitTable holds one FIFO queue of wake channels per cell. It is the board's
// only blocking mechanism: a contended first pick appends a channel and parks
// on it, and every release of a cell closes at most one channel, oldest
// first. An ordered queue of channels (not a broadcast) is what guarantees
// waiters are served in arrival order.
//
// The table is guarded by the board mutex; none of its methods lock.
type waitTable struct {
	queues [][]chan struct{}
}

func newWaitTable(cells int) *waitTable {
	return &waitTable{
		queues: make([][]chan struct{}, cells),
	}
}

// enqueue appends a new waiter for cell idx and returns its wake channel.
// The caller is expected to release the board mutex and park on the channel.
func (w *waitTable) enqueue(idx int) chan struct{} {
	ch := make(chan struct{})
	w.queues[idx] = append(w.queues[idx], ch)
	return ch
}

// wakeNext wakes the oldest waiter for cell idx, if any. The woken caller
// re-validates the cell under the board mutex: its card may have been removed
// or re-claimed while it was parked.
func (w *waitTable) wakeNext(idx int) {
	q := w.queues[idx]
	if len(q) == 0 {
		return
	}
	close(q[0])
	w.queues[idx] = q[1:]
}

// depth returns the number of parked waiters for cell idx.
func (w *waitTable) depth(idx int) int {
	return len(w.queues[idx])
}
