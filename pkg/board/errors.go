package board

import "fmt"

// The board rejects illegal flips with one of the error types below. All of
// them are ordinary game-rule rejections the caller is expected to surface to
// the player; none of them leaves the board in a modified-but-inconsistent
// state beyond the documented side effects of the flip protocol.

// ErrInvalidCoordinates is returned when a row/col pair is outside the grid.
type ErrInvalidCoordinates struct {
	Row int
	Col int
}

func (e *ErrInvalidCoordinates) Error() string {
	return fmt.Sprintf("invalid coordinates (%d,%d)", e.Row, e.Col)
}

func IsInvalidCoordinates(err error) bool {
	_, ok := err.(*ErrInvalidCoordinates)
	return ok
}

// ErrNoCard is returned when the target cell's card has been removed.
type ErrNoCard struct {
	Row int
	Col int
}

func (e *ErrNoCard) Error() string {
	return fmt.Sprintf("no card at (%d,%d)", e.Row, e.Col)
}

func IsNoCard(err error) bool {
	_, ok := err.(*ErrNoCard)
	return ok
}

// ErrAlreadyControlled is returned when a second pick targets a card held by
// another player. Second picks fail fast instead of waiting: two players each
// holding one card the other wants would otherwise deadlock.
type ErrAlreadyControlled struct {
	Row        int
	Col        int
	Controller string
}

func (e *ErrAlreadyControlled) Error() string {
	return fmt.Sprintf("card at (%d,%d) is controlled by %s", e.Row, e.Col, e.Controller)
}

func IsAlreadyControlled(err error) bool {
	_, ok := err.(*ErrAlreadyControlled)
	return ok
}

// ErrControlledByOther is returned when a first pick finds the target card
// controlled by another player after its wait completed. The wait loop only
// exits when the card is free, so this should not occur in practice.
type ErrControlledByOther struct {
	Row        int
	Col        int
	Controller string
}

func (e *ErrControlledByOther) Error() string {
	return fmt.Sprintf("card at (%d,%d) is still controlled by %s", e.Row, e.Col, e.Controller)
}

func IsControlledByOther(err error) bool {
	_, ok := err.(*ErrControlledByOther)
	return ok
}

// ErrProtocolViolation is returned when a player attempts a flip its session
// state cannot accept, such as a third outstanding pick.
type ErrProtocolViolation struct {
	Player string
	Reason string
}

func (e *ErrProtocolViolation) Error() string {
	return fmt.Sprintf("protocol violation by %s: %s", e.Player, e.Reason)
}

func IsProtocolViolation(err error) bool {
	_, ok := err.(*ErrProtocolViolation)
	return ok
}

// InvariantViolation indicates the board reached an inconsistent state. It is
// a bug in the flip protocol, not a caller error, and is raised as a panic
// value rather than returned.
type InvariantViolation struct {
	Row    int
	Col    int
	Reason string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("board invariant violated at (%d,%d): %s", e.Row, e.Col, e.Reason)
}
