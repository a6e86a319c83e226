package handlers

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/cardwall/scramble/pkg/board"
	"github.com/gorilla/mux"
)

// transforms are the content transformations clients can request by name.
var transforms = map[string]func(string) string{
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
}

func HandleLook(b *board.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player := mux.Vars(r)["player"]
		if player == "" {
			http.Error(w, "player is required", http.StatusBadRequest)
			return
		}

		writeView(w, b, player)
	}
}

func HandleFlip(b *board.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		player := vars["player"]
		if player == "" {
			http.Error(w, "player is required", http.StatusBadRequest)
			return
		}

		row, err := strconv.Atoi(vars["row"])
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid row %q", vars["row"]), http.StatusBadRequest)
			return
		}
		col, err := strconv.Atoi(vars["col"])
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid column %q", vars["col"]), http.StatusBadRequest)
			return
		}

		// blocks while the card is contested
		if err := b.Flip(player, row, col); err != nil {
			http.Error(w, err.Error(), flipErrorStatus(err))
			return
		}

		writeView(w, b, player)
	}
}

func HandleWatch(b *board.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player := mux.Vars(r)["player"]
		if player == "" {
			http.Error(w, "player is required", http.StatusBadRequest)
			return
		}

		// parks until the next visible change
		b.Watch()
		writeView(w, b, player)
	}
}

func HandleTransform(b *board.Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		player := vars["player"]
		if player == "" {
			http.Error(w, "player is required", http.StatusBadRequest)
			return
		}

		f, ok := transforms[vars["fn"]]
		if !ok {
			http.Error(w, fmt.Sprintf("unknown transform %q", vars["fn"]), http.StatusBadRequest)
			return
		}

		b.Transform(f)
		writeView(w, b, player)
	}
}

// AccessStats reports how many times each resource path has been requested.
type AccessStats interface {
	Snapshot() map[string]int
}

func HandleStats(stats AccessStats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts := stats.Snapshot()
		paths := make([]string, 0, len(counts))
		for path := range counts {
			paths = append(paths, path)
		}
		sort.Strings(paths)

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for _, path := range paths {
			fmt.Fprintf(w, "%s %d\n", path, counts[path])
		}
	}
}

func writeView(w http.ResponseWriter, b *board.Board, player string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, b.Render(player))
}

func flipErrorStatus(err error) int {
	if board.IsInvalidCoordinates(err) {
		return http.StatusBadRequest
	}
	return http.StatusConflict
}
