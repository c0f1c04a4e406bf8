package decoder

import (
	"math"
	"sort"
)

// Fusion exponents combine geometric and linguistic evidence into a single
// integrated score (§3 magic constants): shape and location combine as
// p_shape^ShapeExponent * p_loc^LocationExponent, then the active language
// score is raised to BigramExponent or NeuralExponent depending on which
// language source served the request.
const (
	ShapeExponent    = 1.0
	LocationExponent = 0.1
	BigramExponent   = 0.03
	NeuralExponent   = 0.5
)

// TopKLexicon and TopKCommand bound how many ranked results a DECODE or
// CMD_DECODE request returns (§3 magic constants: top-k lexicon=20,
// top-k command=229).
const (
	TopKLexicon = 20
	TopKCommand = 229
)

// Candidate is one ranked result: a bank word plus its component and
// integrated scores.
type Candidate struct {
	Word         string
	ShapeProb    float64
	LocationProb float64
	LangScore    float64
	Integrated   float64
}

// Integrate computes the geometric*linguistic integrated score for each
// candidate and returns them sorted best-first, L1-normalized over the
// full candidate set before truncation (§4.9).
func Integrate(words []string, shape, location, lang []float64, langExponent float64) []Candidate {
	n := len(words)
	out := make([]Candidate, n)
	var sum float64
	for i := 0; i < n; i++ {
		g := math.Pow(shape[i], ShapeExponent) * math.Pow(location[i], LocationExponent)
		l := math.Pow(lang[i], langExponent)
		score := g * l
		out[i] = Candidate{
			Word:         words[i],
			ShapeProb:    shape[i],
			LocationProb: location[i],
			LangScore:    lang[i],
			Integrated:   score,
		}
		sum += score
	}
	if sum > 0 {
		for i := range out {
			out[i].Integrated /= sum
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Integrated > out[j].Integrated })
	return out
}

// TopK truncates a ranked candidate list to k entries.
func TopK(ranked []Candidate, k int) []Candidate {
	if len(ranked) <= k {
		return ranked
	}
	return ranked[:k]
}

// FilterUndoWord removes any candidate whose word appears in undoWords, the
// request's exclusion set, applied after ranking (§4.9 post-ranking filter,
// §6 UNDO_WORDS).
func FilterUndoWord(ranked []Candidate, undoWords []string) []Candidate {
	if len(undoWords) == 0 {
		return ranked
	}
	banned := make(map[string]struct{}, len(undoWords))
	for _, w := range undoWords {
		banned[w] = struct{}{}
	}
	out := ranked[:0:0]
	for _, c := range ranked {
		if _, ok := banned[c.Word]; !ok {
			out = append(out, c)
		}
	}
	return out
}
