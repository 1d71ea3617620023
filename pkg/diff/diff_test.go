package diff

import (
	"bytes"
	"strings"
	"testing"
)

func TestOrdersMoves(t *testing.T) {
	d := Orders(
		[]string{"a1x.webp", "q9z.webp", "m3k.webp"},
		[]string{"q9z.webp", "a1x.webp", "m3k.webp"},
	)
	if d.Unchanged() {
		t.Fatal("Unchanged() = true for reordered pages")
	}
	want := []Move{{Name: "q9z.webp", From: 2, To: 1}, {Name: "a1x.webp", From: 1, To: 2}}
	if len(d.Moves) != len(want) {
		t.Fatalf("Moves = %+v, want %+v", d.Moves, want)
	}
	for i := range want {
		if d.Moves[i] != want[i] {
			t.Errorf("Moves[%d] = %+v, want %+v", i, d.Moves[i], want[i])
		}
	}
	if got := d.Summary(); got != "q9z.webp:2->1 a1x.webp:1->2" {
		t.Errorf("Summary() = %q", got)
	}
}

func TestOrdersUnchanged(t *testing.T) {
	pages := []string{"p1", "p2", "p3"}
	d := Orders(pages, pages)
	if !d.Unchanged() || len(d.Moves) != 0 {
		t.Fatalf("diff of identical orders = %+v", d)
	}
	if d.Summary() != "unchanged" {
		t.Errorf("Summary() = %q", d.Summary())
	}
	var buf bytes.Buffer
	d.Print(&buf)
	if !strings.Contains(buf.String(), "unchanged") {
		t.Errorf("Print() = %q", buf.String())
	}
}

func TestOrdersPrint(t *testing.T) {
	d := Orders([]string{"b", "a"}, []string{"a", "b"})
	var buf bytes.Buffer
	d.Print(&buf)
	out := buf.String()
	for _, want := range []string{"Pages", "Moves", "a 2 -> 1", "b 1 -> 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("Print() missing %q in %q", want, out)
		}
	}
}
