package decoder

import "math"

// ShapeSigma and LocationSigma are the Gaussian widths that convert a
// weighted mean distance into a probability (§3 magic constants: shape
// Gaussian sigma=60, location Gaussian sigma=10 applied to score/10).
// LocationRefOX/OY are the fixed per-axis centroid mean at the reference
// keyboard size that the sanity gate compares the stroke's own mean against
// (§4.7 step 1) - not derived from the request's keyboard size.
const (
	ShapeSigma        = 60.0
	LocationSigma     = 10.0
	LocationSanityGap = 150.0
	LocationRefOX     = 190.5
	LocationRefOY     = 159.0
)

// weightedMeanDistance returns sum(weight[i] * euclid(ax[i],ay[i],bx[i],by[i]))
// / sum(weight).
func weightedMeanDistance(ax, ay, bx, by [SamplePoints]float64, w Weights) float64 {
	var num, den float64
	for i := 0; i < SamplePoints; i++ {
		d := math.Hypot(ax[i]-bx[i], ay[i]-by[i])
		num += w[i] * d
		den += w[i]
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// ShapeScore computes the un-normalized shape probability of a single
// candidate template against a normalized, weighted user stroke (§4.6):
// a weighted mean Euclidean distance between normalized point clouds,
// passed through a zero-mean Gaussian of width ShapeSigma.
func ShapeScore(strokeX, strokeY [SamplePoints]float64, w Weights, tmplX, tmplY [SamplePoints]float64) float64 {
	d := weightedMeanDistance(strokeX, strokeY, tmplX, tmplY, w)
	return Gaussian(d, 0, ShapeSigma)
}

// ShapeScores computes and L1-normalizes ShapeScore across every candidate
// index in cand.
func ShapeScores(strokeX, strokeY [SamplePoints]float64, w Weights, b *Bank, cand []int) []float64 {
	raw := make([]float64, len(cand))
	var sum float64
	for i, idx := range cand {
		raw[i] = ShapeScore(strokeX, strokeY, w, b.NormalX[idx], b.NormalY[idx])
		sum += raw[i]
	}
	if sum > 0 {
		for i := range raw {
			raw[i] /= sum
		}
	}
	return raw
}

// LocationGateOK runs the per-request location sanity gate (§4.7 steps 1-2):
// it compares the stroke's own mean offset from the reference centroid
// against the session's calibrated offset. It is only meaningful once the
// caller has confirmed the session offset is non-zero ("engaged").
func LocationGateOK(dx, dy float64, xs, ys []float64) bool {
	meanx := mean(xs) - LocationRefOX
	meany := mean(ys) - LocationRefOY
	change := math.Abs(math.Hypot(dx, dy) - math.Hypot(meanx, meany))
	return change < LocationSanityGap
}

// LocationScore computes the location probability of a single candidate
// template against the raw (non-normalized) resampled stroke, after
// translating the template's own raw sampled coordinates by the session's
// keyboard offset at the reference keyboard size (§4.7 steps 3-4).
func LocationScore(strokeX, strokeY [SamplePoints]float64, w Weights, tmplX, tmplY [SamplePoints]float64, dx, dy float64) float64 {
	var transX, transY [SamplePoints]float64
	for i := 0; i < SamplePoints; i++ {
		transX[i] = tmplX[i]*ReferenceKeyboardWidth/canonicalKeyboardWidth + dx
		transY[i] = tmplY[i]*ReferenceKeyboardHeight/canonicalKeyboardHeight + dy
	}
	d := weightedMeanDistance(strokeX, strokeY, transX, transY, w)
	return Gaussian(d/10, 0, LocationSigma)
}

// LocationScores computes LocationScore for every candidate in cand against
// a translated template, then L1-normalizes across the candidate set (§4.7
// step 5). Callers only reach this once LocationGateOK has passed; the
// gated-off case is a flat 1 for every candidate, handled by the caller
// rather than here (§9 open question 3: the gated branch is not
// normalized, so it cannot share this function's normalization).
func LocationScores(strokeX, strokeY [SamplePoints]float64, w Weights, b *Bank, cand []int, dx, dy float64) []float64 {
	raw := make([]float64, len(cand))
	var sum float64
	for i, idx := range cand {
		raw[i] = LocationScore(strokeX, strokeY, w, b.SampledX[idx], b.SampledY[idx], dx, dy)
		sum += raw[i]
	}
	if sum > 0 {
		for i := range raw {
			raw[i] /= sum
		}
	}
	return raw
}

// CommandShapeScores implements the command bank's shape scoring, which
// does not use the lexicon's Gaussian conversion: raw weighted-mean
// distances are min-max inverted (closer candidates score higher) and then
// L1-normalized (§4.8 "Command decoding ignores language scores"; mirrors
// original_source's decodingCommandGesture).
func CommandShapeScores(strokeX, strokeY [SamplePoints]float64, w Weights, b *Bank, cand []int) []float64 {
	raw := make([]float64, len(cand))
	for i, idx := range cand {
		raw[i] = weightedMeanDistance(strokeX, strokeY, b.NormalX[idx], b.NormalY[idx], w)
	}
	min, max := raw[0], raw[0]
	for _, v := range raw[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max != min {
		for i := range raw {
			raw[i] = (max - raw[i]) / (max - min)
		}
	}
	var sum float64
	for _, v := range raw {
		sum += v
	}
	if sum > 0 {
		for i := range raw {
			raw[i] /= sum
		}
	}
	return raw
}

// constantScores fills a slice of n entries with v, used where a scorer is
// not engaged (command-bank language scores, an un-gated location branch).
func constantScores(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
