package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/aryann/difflib"
)

type Op int

const (
	Equal Op = iota
	Insert
	Delete
)

// Line is one page of an order diff.
type Line struct {
	Op   Op
	Name string
}

// Move records a page whose position changed. Positions are 1-based.
type Move struct {
	Name string `json:"name"`
	From int    `json:"from"`
	To   int    `json:"to"`
}

// OrderDiff compares the upload order of a chapter with its narrative order.
type OrderDiff struct {
	Before []string
	After  []string
	Lines  []Line
	Moves  []Move
}

// Orders diffs two orders of the same pages. Pages that appear in only one of the orders are
// reported as inserted or deleted lines and never as moves.
func Orders(before, after []string) OrderDiff {
	recs := difflib.Diff(before, after)
	lines := make([]Line, 0, len(recs))
	for _, r := range recs {
		switch r.Delta {
		case difflib.Common:
			lines = append(lines, Line{Op: Equal, Name: r.Payload})
		case difflib.LeftOnly:
			lines = append(lines, Line{Op: Delete, Name: r.Payload})
		case difflib.RightOnly:
			lines = append(lines, Line{Op: Insert, Name: r.Payload})
		}
	}

	from := make(map[string]int, len(before))
	for i, name := range before {
		if _, ok := from[name]; !ok {
			from[name] = i + 1
		}
	}
	var moves []Move
	for i, name := range after {
		if pos, ok := from[name]; ok && pos != i+1 {
			moves = append(moves, Move{Name: name, From: pos, To: i + 1})
		}
	}

	return OrderDiff{Before: before, After: after, Lines: lines, Moves: moves}
}

// Unchanged reports whether both orders are identical.
func (d OrderDiff) Unchanged() bool {
	for _, l := range d.Lines {
		if l.Op != Equal {
			return false
		}
	}
	return true
}

const (
	ansiReset = "\x1b[0m"
	fgGreen   = "\x1b[32m"
	fgRed     = "\x1b[31m"
	fgYellow  = "\x1b[33m"
	fgCyan    = "\x1b[36m"
	faint     = "\x1b[2m"
)

// Print writes a colored report of the diff.
func (d OrderDiff) Print(w io.Writer) {
	if d.Unchanged() {
		fmt.Fprintln(w, faint+"Order unchanged from upload order"+ansiReset)
		return
	}
	fmt.Fprintln(w, fgCyan+"Pages"+ansiReset)
	for _, l := range d.Lines {
		tag := map[Op]string{
			Equal:  faint + "[=]" + ansiReset,
			Insert: fgGreen + "[+]" + ansiReset,
			Delete: fgRed + "[-]" + ansiReset,
		}[l.Op]
		fmt.Fprintf(w, "  %s %s\n", tag, l.Name)
	}
	if len(d.Moves) > 0 {
		fmt.Fprintln(w, fgCyan+"Moves"+ansiReset)
		for _, m := range d.Moves {
			fmt.Fprintf(w, "  %s[~]%s %s %d -> %d\n", fgYellow, ansiReset, m.Name, m.From, m.To)
		}
	}
}

// Summary is a single line description of the moves, suitable for logs.
func (d OrderDiff) Summary() string {
	if len(d.Moves) == 0 {
		return "unchanged"
	}
	parts := make([]string, len(d.Moves))
	for i, m := range d.Moves {
		parts[i] = fmt.Sprintf("%s:%d->%d", m.Name, m.From, m.To)
	}
	return strings.Join(parts, " ")
}
