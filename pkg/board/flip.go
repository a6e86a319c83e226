package board

// Flip handles one flip request by player at (row, col).
//
// A first pick on a card held by another player parks the caller until that
// card is released; there is no timeout. A second pick never parks: if the
// target is held by another player it fails immediately with
// ErrAlreadyControlled and releases the first pick, so two players holding
// one card each cannot wait on each other forever.
//
// Before a new turn starts, the previous turn's outcome is settled: a match
// removes its cards, a mismatch turns them back face down. Settlement is
// deferred to this point so a completed pair stays visible for one extra
// turn.
//
// The player name must be non-empty.
func (b *Board) Flip(player string, row, col int) error {
	if player == "" {
		return &ErrProtocolViolation{Player: player, Reason: "player name is required"}
	}
	if !b.inBounds(row, col) {
		return &ErrInvalidCoordinates{Row: row, Col: col}
	}

	b.mu.Lock()
	err := b.flipLocked(player, row, col)
	b.checkInvariants()
	b.mu.Unlock()
	return err
}

func (b *Board) flipLocked(player string, row, col int) error {
	s := b.session(player)
	if s.state == stateIdle {
		b.settlePrevious(s)
	}

	switch s.state {
	case stateIdle:
		return b.firstPick(s, player, row, col)
	case stateHoldingFirst:
		return b.secondPick(s, player, row, col)
	default:
		return &ErrProtocolViolation{Player: player, Reason: "already holds two picks"}
	}
}

// settlePrevious applies the player's unsettled previous turn. Callers must
// hold b.mu. Settling twice is a no-op: the pending record is consumed and
// every per-cell effect re-checks the cell's current state first.
func (b *Board) settlePrevious(s *session) {
	p := s.pending
	if p == nil {
		return
	}
	s.pending = nil

	switch p.outcome {
	case outcomeMatch:
		for _, pos := range p.cells {
			idx := b.index(pos.row, pos.col)
			c := &b.cells[idx]
			if c.content == "" {
				continue
			}
			c.content = ""
			c.faceUp = false
			c.controller = ""
			b.waits.wakeNext(idx)
			b.notifier.broadcast()
		}
	case outcomeMismatch:
		for _, pos := range p.cells {
			c := &b.cells[b.index(pos.row, pos.col)]
			// Another player may have removed the card or taken control of
			// it since the mismatch; it is theirs to deal with now.
			if c.content == "" || !c.faceUp || c.controller != "" {
				continue
			}
			c.faceUp = false
			b.notifier.broadcast()
		}
	}
}

// firstPick takes the player's first card of a turn. Callers must hold b.mu;
// firstPick releases and reacquires it while parked on a contended cell.
func (b *Board) firstPick(s *session, player string, row, col int) error {
	idx := b.index(row, col)
	c := &b.cells[idx]

	for c.faceUp && c.controller != "" && c.controller != player {
		ch := b.waits.enqueue(idx)
		b.mu.Unlock()
		<-ch
		b.mu.Lock()
	}

	if c.content == "" {
		return &ErrNoCard{Row: row, Col: col}
	}
	if c.controller != "" && c.controller != player {
		return &ErrControlledByOther{Row: row, Col: col, Controller: c.controller}
	}

	if !c.faceUp {
		c.faceUp = true
		b.notifier.broadcast()
	}
	c.controller = player
	s.state = stateHoldingFirst
	s.first = pick{pos: position{row: row, col: col}, content: c.content}
	return nil
}

// secondPick takes the player's second card and resolves the pair. Callers
// must hold b.mu. Never parks.
func (b *Board) secondPick(s *session, player string, row, col int) error {
	if s.first.pos.row == row && s.first.pos.col == col {
		// double flip of the held card, ignore
		return nil
	}

	firstIdx := b.index(s.first.pos.row, s.first.pos.col)
	firstCell := &b.cells[firstIdx]
	idx := b.index(row, col)
	c := &b.cells[idx]

	if c.content == "" {
		b.relinquishFirst(s, firstCell, firstIdx)
		return &ErrNoCard{Row: row, Col: col}
	}
	if c.controller != "" && c.controller != player {
		b.relinquishFirst(s, firstCell, firstIdx)
		return &ErrAlreadyControlled{Row: row, Col: col, Controller: c.controller}
	}

	if !c.faceUp {
		c.faceUp = true
		b.notifier.broadcast()
	}
	c.controller = player

	if firstCell.content == c.content {
		// Both cards stay face up under the player's control; they are
		// removed when the player starts its next turn.
		s.pending = &pendingOutcome{
			outcome: outcomeMatch,
			cells:   []position{s.first.pos, {row: row, col: col}},
		}
	} else {
		firstCell.controller = ""
		c.controller = ""
		b.waits.wakeNext(firstIdx)
		b.waits.wakeNext(idx)
		s.pending = &pendingOutcome{
			outcome: outcomeMismatch,
			cells:   []position{s.first.pos, {row: row, col: col}},
		}
	}

	s.first = pick{}
	s.state = stateIdle
	return nil
}

// relinquishFirst gives up the player's held first pick after a failed second
// pick. The card stays face up and becomes the pending mismatch to turn back
// down on the player's next turn.
func (b *Board) relinquishFirst(s *session, firstCell *cell, firstIdx int) {
	firstCell.controller = ""
	b.waits.wakeNext(firstIdx)
	s.pending = &pendingOutcome{
		outcome: outcomeMismatch,
		cells:   []position{s.first.pos},
	}
	s.first = pick{}
	s.state = stateIdle
}
