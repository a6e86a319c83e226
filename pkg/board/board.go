package board

import (
	"fmt"
	"strings"
	"sync"
)

// Board is the shared game board for a multiplayer matching game. Any number
// of players may flip cards concurrently; the board serializes access to its
// cells, parks contended first picks in per-cell FIFO queues, and notifies
// watchers whenever the visible state changes.
//
// All exported methods are safe for concurrent use. Flip is the only method
// that can suspend the caller.
type Board struct {
	rows int
	cols int

	mu       sync.Mutex
	cells    []cell
	waits    *waitTable
	sessions map[string]*session
	notifier *notifier
}

// cell is one board position. An empty content marks a removed card; removed
// cards never come back.
type cell struct {
	content    string
	faceUp     bool
	controller string
}

// New creates a board of rows x cols cells with the given contents in
// row-major order. Every card starts face down and uncontrolled.
func New(rows, cols int, contents []string) (*Board, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("board dimensions must be positive, got %dx%d", rows, cols)
	}
	if len(contents) != rows*cols {
		return nil, fmt.Errorf("board %dx%d requires %d cards, got %d", rows, cols, rows*cols, len(contents))
	}

	b := &Board{
		rows:     rows,
		cols:     cols,
		cells:    make([]cell, rows*cols),
		waits:    newWaitTable(rows * cols),
		sessions: make(map[string]*session),
		notifier: newNotifier(),
	}
	for i, content := range contents {
		if strings.TrimSpace(content) == "" {
			return nil, fmt.Errorf("card %d is blank", i)
		}
		b.cells[i].content = content
	}
	return b, nil
}

// Rows returns the number of rows.
func (b *Board) Rows() int {
	return b.rows
}

// Cols returns the number of columns.
func (b *Board) Cols() int {
	return b.cols
}

func (b *Board) inBounds(row, col int) bool {
	return row >= 0 && row < b.rows && col >= 0 && col < b.cols
}

func (b *Board) index(row, col int) int {
	return row*b.cols + col
}

// IsFaceUp reports whether the card at (row, col) is face up. Removed cards
// are never face up.
func (b *Board) IsFaceUp(row, col int) (bool, error) {
	if !b.inBounds(row, col) {
		return false, &ErrInvalidCoordinates{Row: row, Col: col}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cells[b.index(row, col)].faceUp, nil
}

// ControllerOf returns the player currently controlling the card at
// (row, col), or the empty string if nobody does.
func (b *Board) ControllerOf(row, col int) (string, error) {
	if !b.inBounds(row, col) {
		return "", &ErrInvalidCoordinates{Row: row, Col: col}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cells[b.index(row, col)].controller, nil
}

// Render returns the board as player sees it: a "<rows>x<cols>" header
// followed by one line per cell in row-major order, each line one of "none",
// "down", "my <content>" or "up <content>".
func (b *Board) Render(player string) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, "%dx%d\n", b.rows, b.cols)
	for i := range b.cells {
		c := &b.cells[i]
		switch {
		case c.content == "":
			sb.WriteString("none\n")
		case !c.faceUp:
			sb.WriteString("down\n")
		case c.controller == player:
			fmt.Fprintf(&sb, "my %s\n", c.content)
		default:
			fmt.Fprintf(&sb, "up %s\n", c.content)
		}
	}
	return sb.String()
}

// Watch parks the caller until the next visible board mutation: a card's
// content changing, a card turning face up or face down, or a card being
// removed. Changes of control alone are not visible and do not wake watchers.
func (b *Board) Watch() {
	b.mu.Lock()
	ch := b.notifier.register()
	b.mu.Unlock()
	<-ch
}

// checkInvariants verifies every cell's consistency. Callers must hold b.mu.
// A violation is a flip protocol bug and panics rather than returning.
func (b *Board) checkInvariants() {
	for i := range b.cells {
		c := &b.cells[i]
		row, col := i/b.cols, i%b.cols
		if c.content == "" && c.faceUp {
			panic(&InvariantViolation{Row: row, Col: col, Reason: "removed card is face up"})
		}
		if c.content == "" && c.controller != "" {
			panic(&InvariantViolation{Row: row, Col: col, Reason: "removed card has a controller"})
		}
		if c.controller != "" && !c.faceUp {
			panic(&InvariantViolation{Row: row, Col: col, Reason: "controlled card is face down"})
		}
	}
}
