package board

// notifier wakes watchers awaiting the next visible board change. A
// broadcast closes the channel every currently-registered watcher holds and
// clears the registry, so watchers registered after a broadcast began only
// see the following one.
//
// Guarded by the board mutex; none of its methods lock.
type notifier struct {
	watchers []chan struct{}
}

func newNotifier() *notifier {
	return &notifier{}
}

// register adds a watcher and returns the channel that the next broadcast
// closes.
func (n *notifier) register() chan struct{} {
	ch := make(chan struct{})
	n.watchers = append(n.watchers, ch)
	return ch
}

// broadcast wakes all registered watchers exactly once and clears the
// registry.
func (n *notifier) broadcast() {
	for _, ch := range n.watchers {
		close(ch)
	}
	n.watchers = nil
}
