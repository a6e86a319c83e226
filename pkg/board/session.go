package board

// turnState is a player's position in the two-card flip protocol.
type turnState int

const (
	// stateIdle means the player holds no pick. The previous turn's outcome,
	// if any, is still pending settlement.
	stateIdle turnState = iota
	// stateHoldingFirst means the player holds one face-up, controlled card
	// and its next flip is a second pick.
	stateHoldingFirst
)

type outcome int

const (
	outcomeMatch outcome = iota
	outcomeMismatch
)

// position is a (row, col) cell address.
type position struct {
	row int
	col int
}

// pick records one card a player has flipped this turn.
type pick struct {
	pos     position
	content string
}

// pendingOutcome is the unsettled result of a player's previous turn. A match
// removes its cards and a mismatch turns them back face down, but only at the
// start of the player's next flip, so a completed pair stays visible for one
// extra turn.
type pendingOutcome struct {
	outcome outcome
	cells   []position
}

// session is a player's transient per-turn state. Sessions are created on a
// player's first flip and kept for the board's whole lifetime.
type session struct {
	state   turnState
	first   pick
	pending *pendingOutcome
}

// session returns the player's session, creating it on first use. Callers
// must hold b.mu.
func (b *Board) session(player string) *session {
	s, ok := b.sessions[player]
	if !ok {
		s = &session{}
		b.sessions[player] = s
	}
	return s
}
