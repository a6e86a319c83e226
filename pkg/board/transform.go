package board

import "sync"

// Transform applies f to the content of every live card, concurrently, and
// waits for every application to finish. The computations run outside the
// board lock so in-flight flips are neither blocked nor delayed; each result
// is written back only if the card still exists at write time, since a flip
// may remove it while f is computing. One notification is issued at the end
// if anything was written.
//
// f must return a non-blank replacement content and may be called from
// multiple goroutines at once.
func (b *Board) Transform(f func(content string) string) {
	type liveCard struct {
		idx     int
		content string
	}

	b.mu.Lock()
	live := make([]liveCard, 0, len(b.cells))
	for i := range b.cells {
		if b.cells[i].content != "" {
			live = append(live, liveCard{idx: i, content: b.cells[i].content})
		}
	}
	b.mu.Unlock()

	var wg sync.WaitGroup
	var changed bool
	for _, card := range live {
		wg.Add(1)
		go func(card liveCard) {
			defer wg.Done()
			result := f(card.content)

			b.mu.Lock()
			c := &b.cells[card.idx]
			if c.content != "" {
				c.content = result
				changed = true
			}
			b.mu.Unlock()
		}(card)
	}
	wg.Wait()

	if changed {
		b.mu.Lock()
		b.checkInvariants()
		b.notifier.broadcast()
		b.mu.Unlock()
	}
}
