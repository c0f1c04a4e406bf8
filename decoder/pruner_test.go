package decoder

import "testing"

func TestPruneByCornersExactMatch(t *testing.T) {
	b := &Bank{Words: []string{"a", "b", "c", "d"}, Corners: []int{0, 1, 2, 5}}
	got := PruneByCorners(b, []int{1, 2, 3, 4}, false)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("got %v, want indices [1 2]", got)
	}
}

func TestPruneByCornersAlwaysIncludesSingleLetterTemplates(t *testing.T) {
	b := &Bank{Words: []string{"a", "bb", "ccc"}, Corners: []int{-1, 0, 9}}
	got := PruneByCorners(b, []int{5, 6, 7}, false)
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("got %v, want only the -1 (single-letter) template", got)
	}
}

func TestPruneByCornersLexiconNeverFallsBack(t *testing.T) {
	b := &Bank{Words: []string{"a", "b"}, Corners: []int{20, 21}}
	got := PruneByCorners(b, []int{0, 1, 2, 3}, false)
	if len(got) != 0 {
		t.Fatalf("lexicon pruning should not fall back to every template, got %v", got)
	}
}

func TestPruneByCornersCommandBankFallsBackToAll(t *testing.T) {
	b := &Bank{Words: []string{"select", "undo"}, Corners: []int{50, 60}}
	got := PruneByCorners(b, []int{0, 1, 2, 3}, true)
	if len(got) != 2 {
		t.Fatalf("command-bank pruning should fall back to every template, got %v", got)
	}
}
