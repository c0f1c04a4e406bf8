package decoder

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/paulmach/orb"
)

// SharpCornerDegrees is the interior-angle threshold below which three
// consecutive run-length-collapsed letter centroids count as a sharp
// corner (§3 magic constants: sharp-corner degree threshold=90).
const SharpCornerDegrees = 90.0

// Tokenizer produces neural-LM subword ids for a word or phrase. Satisfied
// by a tiktoken-go-backed adapter (see NewTiktokenizer); the template bank
// only needs Encode.
type Tokenizer interface {
	Encode(text string) []int
}

// Template is the immutable per-word geometric and linguistic record §3
// describes: a resampled, normalized letter-centroid polyline plus the
// bookkeeping the pruner and language scorer need.
type Template struct {
	Word     string
	Length   int // run-length-collapsed letter count
	Corners  int // sharp-corner count, or -1 for 1-letter words
	Sampled  [2][SamplePoints]float64
	Normal   [2][SamplePoints]float64
	TokenIDs []int
}

// Bank is the struct-of-arrays template collection §3/§4.4 describe: one
// bank is built from the lexicon, a second from the command vocabulary,
// both sharing this schema. Banks are immutable after Build/Load.
type Bank struct {
	Words    []string
	Length   []int
	Corners  []int
	SampledX [][SamplePoints]float64
	SampledY [][SamplePoints]float64
	NormalX  [][SamplePoints]float64
	NormalY  [][SamplePoints]float64
	TokenIDs [][]int
}

// Len returns the number of templates in the bank.
func (b *Bank) Len() int { return len(b.Words) }

// CollapseRepeats removes consecutive duplicate letters, e.g. "hello" ->
// "helo" (§3 Template.length, §4.4 step 4).
func CollapseRepeats(word string) string {
	var sb strings.Builder
	var prev byte
	for i := 0; i < len(word); i++ {
		c := word[i]
		if i == 0 || c != prev {
			sb.WriteByte(c)
		}
		prev = c
	}
	return sb.String()
}

// SharpCornerCount counts interior angles below SharpCornerDegrees between
// consecutive centroid triples of the run-length-collapsed word. Returns
// -1 for collapsed length 1 and 0 for collapsed length 2, matching
// original_source's getSharpWordCorner exactly.
func SharpCornerCount(word string, kb *Keyboard) (int, error) {
	collapsed := CollapseRepeats(word)
	if len(collapsed) == 1 {
		return -1, nil
	}
	if len(collapsed) == 2 {
		return 0, nil
	}
	count := 0
	for i := 1; i < len(collapsed)-1; i++ {
		p1, err := kb.Centroid(collapsed[i-1])
		if err != nil {
			return 0, err
		}
		p2, err := kb.Centroid(collapsed[i])
		if err != nil {
			return 0, err
		}
		p3, err := kb.Centroid(collapsed[i+1])
		if err != nil {
			return 0, err
		}
		if threePointDegrees(p1, p2, p3) < SharpCornerDegrees {
			count++
		}
	}
	return count, nil
}

func threePointDegrees(a, b, c orb.Point) float64 {
	bax, bay := a.X()-b.X(), a.Y()-b.Y()
	bcx, bcy := c.X()-b.X(), c.Y()-b.Y()
	dot := bax*bcx + bay*bcy
	norm := math.Hypot(bax, bay) * math.Hypot(bcx, bcy)
	if norm == 0 {
		return 0
	}
	cos := dot / norm
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos) * 180 / math.Pi
}

// wordPolyline returns the centroid polyline (letter order, duplicates
// included) for a word.
func wordPolyline(word string, kb *Keyboard) ([]float64, []float64, error) {
	xs := make([]float64, len(word))
	ys := make([]float64, len(word))
	for i := 0; i < len(word); i++ {
		p, err := kb.Centroid(word[i])
		if err != nil {
			return nil, nil, fmt.Errorf("template: word %q: %w", word, err)
		}
		xs[i] = p.X()
		ys[i] = p.Y()
	}
	return xs, ys, nil
}

// BuildTemplate constructs a single Template from a lowercase a-z word
// (§4.4).
func BuildTemplate(word string, kb *Keyboard, tok Tokenizer) (Template, error) {
	xs, ys, err := wordPolyline(word, kb)
	if err != nil {
		return Template{}, err
	}
	sampled, err := Resample(xs, ys, SamplePoints)
	if err != nil {
		return Template{}, fmt.Errorf("template: word %q: %w", word, err)
	}
	normal := Normalize(sampled, NormalizeRange)

	corners, err := SharpCornerCount(word, kb)
	if err != nil {
		return Template{}, err
	}

	var ids []int
	if tok != nil {
		ids = tok.Encode(word)
	}

	return Template{
		Word:     word,
		Length:   len(CollapseRepeats(word)),
		Corners:  corners,
		Sampled:  [2][SamplePoints]float64{sampled.X, sampled.Y},
		Normal:   [2][SamplePoints]float64{normal.X, normal.Y},
		TokenIDs: ids,
	}, nil
}

// validWord reports whether word is non-empty and entirely ASCII a-z.
//
// original_source's command-bank build guards with `if not word.isalpha:`
// — a truthy bound method reference, never called, so the guard never
// actually filtered anything. We perform the validation it was meant to
// perform instead of reproducing the no-op (§9 open question 2).
func validWord(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		if word[i] < 'a' || word[i] > 'z' {
			return false
		}
	}
	return true
}

// BuildBank constructs a Bank from a word list, skipping any word that
// isn't pure lowercase ASCII a-z. Build is deterministic in the words'
// input order (§4.4).
func BuildBank(words []string, kb *Keyboard, tok Tokenizer) (*Bank, error) {
	b := &Bank{}
	for _, w := range words {
		if !validWord(w) {
			continue
		}
		t, err := BuildTemplate(w, kb, tok)
		if err != nil {
			return nil, err
		}
		b.Words = append(b.Words, t.Word)
		b.Length = append(b.Length, t.Length)
		b.Corners = append(b.Corners, t.Corners)
		b.SampledX = append(b.SampledX, t.Sampled[0])
		b.SampledY = append(b.SampledY, t.Sampled[1])
		b.NormalX = append(b.NormalX, t.Normal[0])
		b.NormalY = append(b.NormalY, t.Normal[1])
		b.TokenIDs = append(b.TokenIDs, t.TokenIDs)
	}
	return b, nil
}

// LoadCommandList builds the command bank from a plain word-per-line file
// (§6 Persisted state: command word list).
func LoadCommandList(path string, kb *Keyboard, tok Tokenizer) (*Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("template: opening command list: %w", err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		w := strings.TrimSpace(scanner.Text())
		if w != "" {
			words = append(words, w)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("template: reading command list: %w", err)
	}
	return BuildBank(words, kb, tok)
}

// gobBank is the on-disk shape of the lexicon snapshot (§6: "words,
// lengths, corners, normalized_xs, normalized_ys, sampled_xs, sampled_ys,
// token_ids", in that order). The schema is process-private and
// rebuildable from the word list, so a bespoke gob struct is enough; no
// library in the pack targets this shape more specifically than gob does.
type gobBank struct {
	Words    []string
	Length   []int
	Corners  []int
	NormalX  [][SamplePoints]float64
	NormalY  [][SamplePoints]float64
	SampledX [][SamplePoints]float64
	SampledY [][SamplePoints]float64
	TokenIDs [][]int
}

// SaveLexicon persists a Bank as a gob-encoded snapshot.
func SaveLexicon(path string, b *Bank) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("template: creating lexicon snapshot: %w", err)
	}
	defer f.Close()

	payload := gobBank{
		Words: b.Words, Length: b.Length, Corners: b.Corners,
		NormalX: b.NormalX, NormalY: b.NormalY,
		SampledX: b.SampledX, SampledY: b.SampledY,
		TokenIDs: b.TokenIDs,
	}
	if err := gob.NewEncoder(f).Encode(payload); err != nil {
		return fmt.Errorf("template: encoding lexicon snapshot: %w", err)
	}
	return nil
}

// LoadLexicon reads a gob-encoded lexicon snapshot built by SaveLexicon.
func LoadLexicon(path string) (*Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("template: opening lexicon snapshot: %w", err)
	}
	defer f.Close()

	var payload gobBank
	if err := gob.NewDecoder(f).Decode(&payload); err != nil {
		return nil, fmt.Errorf("template: decoding lexicon snapshot: %w", err)
	}
	return &Bank{
		Words: payload.Words, Length: payload.Length, Corners: payload.Corners,
		NormalX: payload.NormalX, NormalY: payload.NormalY,
		SampledX: payload.SampledX, SampledY: payload.SampledY,
		TokenIDs: payload.TokenIDs,
	}, nil
}
