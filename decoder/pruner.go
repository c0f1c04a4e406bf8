package decoder

// PruneByCorners returns the indices of bank templates whose Corners value
// appears in band, or is -1 (a single-letter template: always a candidate,
// regardless of the stroke's own corner band). If nothing matches and
// isCommand is true, every template is returned instead - the command bank
// never prunes down to nothing. The lexicon bank (isCommand=false) performs
// no such fallback: an empty lexicon result is the caller's
// ErrEmptyCandidateSet (§4.5, §7).
func PruneByCorners(b *Bank, band []int, isCommand bool) []int {
	inBand := func(c int) bool {
		if c == -1 {
			return true
		}
		for _, v := range band {
			if v == c {
				return true
			}
		}
		return false
	}

	var out []int
	for i, c := range b.Corners {
		if inBand(c) {
			out = append(out, i)
		}
	}
	if len(out) == 0 && isCommand {
		return allIndices(b.Len())
	}
	return out
}

func allIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
