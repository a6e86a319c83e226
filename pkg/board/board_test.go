package board

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBoard(t *testing.T) *Board {
	t.Helper()
	// A A
	// B B
	b, err := New(2, 2, []string{"A", "A", "B", "B"})
	require.NoError(t, err)
	return b
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		rows     int
		cols     int
		contents []string
		wantErr  bool
	}{
		{
			name:     "valid 2x2",
			rows:     2,
			cols:     2,
			contents: []string{"A", "A", "B", "B"},
		},
		{
			name:     "valid 1x1",
			rows:     1,
			cols:     1,
			contents: []string{"X"},
		},
		{
			name:     "zero rows",
			rows:     0,
			cols:     2,
			contents: []string{},
			wantErr:  true,
		},
		{
			name:     "negative cols",
			rows:     2,
			cols:     -1,
			contents: []string{},
			wantErr:  true,
		},
		{
			name:     "wrong card count",
			rows:     2,
			cols:     2,
			contents: []string{"A", "A", "B"},
			wantErr:  true,
		},
		{
			name:     "blank card",
			rows:     1,
			cols:     2,
			contents: []string{"A", "  "},
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New(tt.rows, tt.cols, tt.contents)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.rows, b.Rows())
			assert.Equal(t, tt.cols, b.Cols())
		})
	}
}

func TestRender_InitialBoard(t *testing.T) {
	b := newTestBoard(t)
	want := "2x2\ndown\ndown\ndown\ndown\n"
	assert.Equal(t, want, b.Render("p1"))
}

func TestRender_DistinguishesViewers(t *testing.T) {
	b := newTestBoard(t)
	require.NoError(t, b.Flip("p1", 0, 0))

	assert.Equal(t, "2x2\nmy A\ndown\ndown\ndown\n", b.Render("p1"))
	assert.Equal(t, "2x2\nup A\ndown\ndown\ndown\n", b.Render("p2"))
}

func TestQueries(t *testing.T) {
	b := newTestBoard(t)

	faceUp, err := b.IsFaceUp(0, 0)
	require.NoError(t, err)
	assert.False(t, faceUp)

	controller, err := b.ControllerOf(0, 0)
	require.NoError(t, err)
	assert.Empty(t, controller)

	require.NoError(t, b.Flip("p1", 0, 0))

	faceUp, err = b.IsFaceUp(0, 0)
	require.NoError(t, err)
	assert.True(t, faceUp)

	controller, err = b.ControllerOf(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "p1", controller)

	_, err = b.IsFaceUp(5, 0)
	assert.True(t, IsInvalidCoordinates(err))
	_, err = b.ControllerOf(0, -1)
	assert.True(t, IsInvalidCoordinates(err))
}

func TestCheckInvariants_PanicsOnCorruptCell(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(c *cell)
	}{
		{
			name: "removed card face up",
			corrupt: func(c *cell) {
				c.content = ""
				c.faceUp = true
			},
		},
		{
			name: "removed card with controller",
			corrupt: func(c *cell) {
				c.content = ""
				c.controller = "p1"
			},
		},
		{
			name: "controlled card face down",
			corrupt: func(c *cell) {
				c.faceUp = false
				c.controller = "p1"
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBoard(t)
			tt.corrupt(&b.cells[0])
			assert.Panics(t, func() {
				b.checkInvariants()
			})
		})
	}
}

func TestRender_LineCountMatchesGrid(t *testing.T) {
	b, err := New(3, 4, []string{
		"A", "B", "C", "D",
		"D", "C", "B", "A",
		"E", "E", "F", "F",
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(b.Render("p1"), "\n"), "\n")
	require.Len(t, lines, 13)
	assert.Equal(t, "3x4", lines[0])
	for _, line := range lines[1:] {
		assert.Equal(t, "down", line)
	}
}
