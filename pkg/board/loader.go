package board

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Parse reads a board description: a "<rows>x<cols>" size line followed by
// exactly rows*cols non-blank card lines in row-major order. Any deviation is
// a parse error.
func Parse(r io.Reader) (*Board, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read size line: %v", err)
		}
		return nil, fmt.Errorf("board description is empty")
	}
	sizeLine := strings.TrimSpace(scanner.Text())
	rows, cols, err := parseSize(sizeLine)
	if err != nil {
		return nil, err
	}

	contents := make([]string, 0, rows*cols)
	for scanner.Scan() {
		card := strings.TrimSpace(scanner.Text())
		if card == "" {
			return nil, fmt.Errorf("blank card line %d", len(contents)+2)
		}
		contents = append(contents, card)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read card lines: %v", err)
	}
	if len(contents) != rows*cols {
		return nil, fmt.Errorf("board %dx%d requires %d cards, got %d", rows, cols, rows*cols, len(contents))
	}

	return New(rows, cols, contents)
}

// Load reads a board description from a file.
func Load(path string) (*Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open board file: %v", err)
	}
	defer f.Close()

	b, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse board file %s: %v", path, err)
	}
	return b, nil
}

func parseSize(line string) (rows, cols int, err error) {
	left, right, ok := strings.Cut(line, "x")
	if !ok {
		return 0, 0, fmt.Errorf("malformed size line %q", line)
	}
	rows, err = strconv.Atoi(left)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed size line %q: %v", line, err)
	}
	cols, err = strconv.Atoi(right)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed size line %q: %v", line, err)
	}
	if rows <= 0 || cols <= 0 {
		return 0, 0, fmt.Errorf("board dimensions must be positive, got %dx%d", rows, cols)
	}
	return rows, cols, nil
}
