package decoder

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Canonical layout dimensions the centroid table below is defined against.
// Keyboard.Scale maps centroids from this layout to any other keyboard size.
const (
	canonicalKeyboardWidth  = 1200
	canonicalKeyboardHeight = 900
)

// ReferenceKeyboardWidth and ReferenceKeyboardHeight are the fixed keyboard
// size CONFIRM and the location scorer measure their offset against,
// independent of the request's actual keyboard size (§3 magic constants:
// reference keyboard size (381,318) for CONFIRM).
const (
	ReferenceKeyboardWidth  = 381.0
	ReferenceKeyboardHeight = 318.0
)

// Keyboard holds the per-letter centroid table for a 3x10 QWERTY touch
// layout and the coordinate transforms that depend on it. It has no
// mutable state and is safe for concurrent use.
type Keyboard struct {
	centroidX, centroidY [26]float64
}

// NewQWERTYKeyboard builds the canonical centroid table. The values are the
// key centers of a standard QWERTY layout on a 1200x900 canvas, offset by
// half a key width so that index i lands on the center of letter 'a'+i.
func NewQWERTYKeyboard() *Keyboard {
	const keyWidth = canonicalKeyboardWidth / 10.0
	const keyHeight = canonicalKeyboardHeight / 3.0

	// Column (in key-widths) of each letter's key on row 1/2/3 of QWERTY.
	col := [26]float64{
		0.5, 5.5, 3.5, 2.5, 2, // a b c d e
		3.5, 4.5, 5.5, 7.0, 6.5, // f g h i j
		7.5, 8.5, 7.5, 6.5, 8.0, // k l m n o
		9.0, 0.0, 3.0, 1.5, 4.0, // p q r s t
		6.0, 4.5, 1.0, 2.5, 5.0, 1.5, // u v w x y z
	}
	row := [26]float64{
		1.5, 2.5, 2.5, 1.5, 0.5, // a b c d e
		1.5, 1.5, 1.5, 0.5, 1.5, // f g h i j
		1.5, 1.5, 2.5, 2.5, 0.5, // k l m n o
		0.5, 0.5, 0.5, 1.5, 0.5, // p q r s t
		0.5, 2.5, 0.5, 2.5, 0.5, 2.5, // u v w x y z
	}

	kb := &Keyboard{}
	for i := 0; i < 26; i++ {
		kb.centroidX[i] = col[i]*keyWidth + keyWidth*0.5
		kb.centroidY[i] = row[i] * keyHeight
	}
	return kb
}

// Centroid returns the canonical-layout centroid of an ASCII lowercase
// letter. It errors on anything outside a-z, since the lexicon and command
// vocabularies are restricted to that alphabet.
func (k *Keyboard) Centroid(letter byte) (orb.Point, error) {
	if letter < 'a' || letter > 'z' {
		return orb.Point{}, fmt.Errorf("keyboard: letter %q out of range a-z", letter)
	}
	i := letter - 'a'
	return orb.Point{k.centroidX[i], k.centroidY[i]}, nil
}

// Scale maps a canonical-layout point to a keyboard of size (kbW, kbH).
func (k *Keyboard) Scale(p orb.Point, kbW, kbH float64) orb.Point {
	return orb.Point{
		p.X() * kbW / canonicalKeyboardWidth,
		p.Y() * kbH / canonicalKeyboardHeight,
	}
}

// letterSampleIndices picks, for a letter-centroid polyline (xs, ys) of
// length n, the indices into a `count`-point resampling that correspond to
// each vertex, by cumulative-arc-length proportional allocation. Mirrors
// original_source's get_template_sample_points. When the polyline has zero
// total length (every letter on the same key) the step is zero, and every
// interior vertex is assigned index 0 instead of dividing by it.
func letterSampleIndices(xs, ys []float64, count int) []int {
	indices := []int{0}
	dists := make([]float64, 0, len(xs)-1)
	var length float64
	for i := 1; i < len(xs); i++ {
		d := math.Hypot(xs[i]-xs[i-1], ys[i]-ys[i-1])
		dists = append(dists, d)
		length += d
	}
	step := length / float64(count-1)
	length = 0
	for i := 0; i < len(dists)-1; i++ {
		length += dists[i]
		idx := 0
		if step != 0 {
			idx = int(math.Round(length / step))
		}
		if idx < 0 {
			idx = 0
		} else if idx > count-1 {
			idx = count - 1
		}
		indices = append(indices, idx)
	}
	indices = append(indices, count-1)
	return indices
}

// wordOffset computes the (dx, dy) displacement between a confirmed word's
// gesture anchor points - the resampled stroke's points at the indices
// corresponding to each letter - and that word's canonical centroids scaled
// to (kbW, kbH) (§4.10 CONFIRM).
func wordOffset(word string, kb *Keyboard, sampled Sampled, kbW, kbH float64) (dx, dy float64, err error) {
	tx, ty, err := wordPolyline(word, kb)
	if err != nil {
		return 0, 0, err
	}
	indices := letterSampleIndices(tx, ty, SamplePoints)
	n := len(tx)
	if len(indices) < n {
		n = len(indices)
	}
	if n == 0 {
		return 0, 0, nil
	}
	var sumX, sumY float64
	for i := 0; i < n; i++ {
		gx := sampled.X[indices[i]]
		gy := sampled.Y[indices[i]]
		tX := tx[i] * kbW / canonicalKeyboardWidth
		tY := ty[i] * kbH / canonicalKeyboardHeight
		sumX += gx - tX
		sumY += gy - tY
	}
	return sumX / float64(n), sumY / float64(n), nil
}
