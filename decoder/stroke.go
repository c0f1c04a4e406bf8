package decoder

import (
	"fmt"
	"math"
)

// SamplePoints is the fixed resampling size every Template and every
// decoded stroke is compared at (§3 magic constants: N=300).
const SamplePoints = 300

// NormalizeRange is the L in §3's normalization formula.
const NormalizeRange = 100

// LengthWiseGap is the fixed step used for the secondary, variable-length
// resampling that feeds angle/corner features (§3 magic constants: gap=30).
const LengthWiseGap = 30.0

// RawStroke is the immutable, decoding-relevant projection of a client
// stroke: only X/Y affect decoding (§3), so orientation/timestamp/velocity
// are accepted by the request parser but never carried past it.
type RawStroke struct {
	X, Y []float64
}

// Sampled is a stroke (or template) resampled to exactly SamplePoints
// equidistant points by cumulative arc length (§3 SampledStroke).
type Sampled struct {
	X, Y [SamplePoints]float64
}

// Normalized is a Sampled stroke linearly rescaled into [0, NormalizeRange-1]
// on its longer axis, preserving aspect ratio (§3 NormalizedStroke).
type Normalized struct {
	X, Y [SamplePoints]float64
}

// Weights holds the per-sample-point density weight used by ShapeScore and
// LocationScore (§3 Weights).
type Weights [SamplePoints]float64

// Resample parameterizes (xs, ys) by normalized cumulative chord length and
// linearly interpolates n equidistant samples from it. A one-point stroke is
// repeated n times; a stroke of several points that are all identical is an
// error. Mirrors original_source's generateSamplePoints.
func Resample(xs, ys []float64, n int) (Sampled, error) {
	var out Sampled
	if len(xs) == 0 || len(xs) != len(ys) {
		return out, fmt.Errorf("stroke: resample needs matching non-empty xs/ys, got %d/%d", len(xs), len(ys))
	}
	if len(xs) == 1 {
		for i := 0; i < n; i++ {
			out.X[i] = xs[0]
			out.Y[i] = ys[0]
		}
		return out, nil
	}

	cum := make([]float64, len(xs))
	for i := 1; i < len(xs); i++ {
		dx := xs[i] - xs[i-1]
		dy := ys[i] - ys[i-1]
		cum[i] = cum[i-1] + math.Hypot(dx, dy)
	}
	total := cum[len(cum)-1]
	if total == 0 {
		return out, fmt.Errorf("stroke: resample failed: all points identical")
	}
	for i := range cum {
		cum[i] /= total
	}

	step := 1.0 / float64(n-1)
	j := 0
	for i := 0; i < n; i++ {
		target := float64(i) * step
		for j < len(cum)-2 && cum[j+1] < target {
			j++
		}
		span := cum[j+1] - cum[j]
		var frac float64
		if span > 0 {
			frac = (target - cum[j]) / span
		}
		out.X[i] = xs[j] + frac*(xs[j+1]-xs[j])
		out.Y[i] = ys[j] + frac*(ys[j+1]-ys[j])
	}
	return out, nil
}

// ResampleLengthWise resamples (xs, ys) at a fixed spatial step rather than
// a fixed point count: it computes the polyline length and resamples to
// floor(length/gap)+1 points, and never fewer than 2 (§4.2
// resample_length_wise). A one-point stroke is returned as that one point.
func ResampleLengthWise(xs, ys []float64, gap float64) ([]float64, []float64, error) {
	if len(xs) == 1 {
		return []float64{xs[0]}, []float64{ys[0]}, nil
	}
	length := 0.0
	for i := 1; i < len(xs); i++ {
		length += math.Hypot(xs[i]-xs[i-1], ys[i]-ys[i-1])
	}
	n := int(length/gap) + 1
	if n < 2 {
		n = 2
	}
	s, err := Resample(xs, ys, n)
	if err != nil {
		return nil, nil, err
	}
	return s.X[:n], s.Y[:n], nil
}

// Normalize rescales a Sampled stroke so the longer of (width, height) maps
// to [0, l-1], translating the minimum to 0, preserving aspect ratio
// (§3 NormalizedStroke, §4.2 normalize). A degenerate stroke (zero extent
// on both axes) is returned unchanged.
func Normalize(s Sampled, l float64) Normalized {
	minX, maxX := minMax(s.X[:])
	minY, maxY := minMax(s.Y[:])

	w := maxX - minX
	h := maxY - minY
	m := math.Max(w, h)

	var out Normalized
	if m == 0 {
		out.X, out.Y = s.X, s.Y
		return out
	}
	scale := (l - 1) / m
	for i := 0; i < SamplePoints; i++ {
		out.X[i] = s.X[i]*scale - minX*scale
		out.Y[i] = s.Y[i]*scale - minY*scale
	}
	return out
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func minMax(v []float64) (min, max float64) {
	min, max = v[0], v[0]
	for _, x := range v[1:] {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	return
}

// NearestIndices returns, for each point in a Sampled stroke, the index of
// the raw-stroke point closest to it in squared Euclidean distance.
//
// original_source computes this via two independent outer-difference
// matrices (diff_x = outer(sampled_x, x), diff_y = outer(sampled_y, y)) and
// argmin's their summed squares along axis 1. That is not a latent bug: for
// a fixed pairing (i, j), diff_x[i,j]^2 + diff_y[i,j]^2 is exactly the
// squared distance between sampled point i and raw point j, so the outer
// product formulation and a direct nearest-neighbor search compute the same
// thing. This implements the nearest-neighbor search directly.
func NearestIndices(s Sampled, xs, ys []float64) [SamplePoints]int {
	var out [SamplePoints]int
	for i := 0; i < SamplePoints; i++ {
		best := 0
		bestD := math.MaxFloat64
		for j := range xs {
			dx := s.X[i] - xs[j]
			dy := s.Y[i] - ys[j]
			d := dx*dx + dy*dy
			if d < bestD {
				bestD = d
				best = j
			}
		}
		out[i] = best
	}
	return out
}

// Density computes the per-sample step length of a raw stroke, with the
// leading difference defined as xs[1]-xs[0] rather than 0 (§3 Weights,
// §4.3 density), then normalizes it to sum 1.
func Density(xs, ys []float64) []float64 {
	d := make([]float64, len(xs))
	if len(xs) < 2 {
		return d
	}
	d[0] = math.Hypot(xs[1]-xs[0], ys[1]-ys[0])
	for i := 1; i < len(xs); i++ {
		d[i] = math.Hypot(xs[i]-xs[i-1], ys[i]-ys[i-1])
	}
	sum := 0.0
	for _, v := range d {
		sum += v
	}
	if sum == 0 {
		return d
	}
	for i := range d {
		d[i] /= sum
	}
	return d
}

// Gaussian evaluates exp(-((v-mu)/sigma)^2/2) / sigma * sqrt(2*pi) (§4.3).
func Gaussian(v, mu, sigma float64) float64 {
	z := (v - mu) / sigma
	return math.Exp(-(z*z)/2) / sigma * math.Sqrt2 * math.SqrtPi
}

// GaussianAll applies Gaussian element-wise.
func GaussianAll(vs []float64, mu, sigma float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = Gaussian(v, mu, sigma)
	}
	return out
}

// Degrees computes atan2(dy,dx) in degrees with the same non-zero leading
// difference convention as Density (§4.3 degrees).
func Degrees(xs, ys []float64) []float64 {
	out := make([]float64, len(xs))
	if len(xs) < 2 {
		return out
	}
	dx0 := xs[1] - xs[0]
	dy0 := ys[1] - ys[0]
	out[0] = math.Atan2(dy0, dx0) * 180 / math.Pi
	for i := 1; i < len(xs); i++ {
		dx := xs[i] - xs[i-1]
		dy := ys[i] - ys[i-1]
		out[i] = math.Atan2(dy, dx) * 180 / math.Pi
	}
	return out
}

// Gradient is numpy.gradient's central-difference scheme: interior points
// use a centered difference, the endpoints use a one-sided difference.
func Gradient(v []float64) []float64 {
	out := make([]float64, len(v))
	if len(v) == 0 {
		return out
	}
	if len(v) == 1 {
		return out
	}
	out[0] = v[1] - v[0]
	out[len(v)-1] = v[len(v)-1] - v[len(v)-2]
	for i := 1; i < len(v)-1; i++ {
		out[i] = (v[i+1] - v[i-1]) / 2
	}
	return out
}

// FallbackBandWidth is the widened corner band substituted when the initial
// 4-wide band's upper edge reaches 7 or more (§3 magic constants: fallback
// band width=12).
const FallbackBandWidth = 12

// CornerBand counts rising edges where the angle-gradient magnitude crosses
// a fixed threshold, then returns the 4-wide integer band around that count
// used to prune candidate templates (§4.3 corner_count). A band whose max
// reaches 7 or more is widened to the full fallback range [0,FallbackBandWidth).
func CornerBand(gradient []float64, high float64) []int {
	h := 0
	for i := 1; i < len(gradient); i++ {
		v1 := math.Abs(gradient[i-1])
		v2 := math.Abs(gradient[i])
		if v2 >= high && v1 < high {
			h++
		}
	}
	base := h - 2
	if base < 0 {
		base = 0
	}
	band := make([]int, 4)
	for i := range band {
		band[i] = base + i
	}
	if band[len(band)-1] >= 7 {
		band = make([]int, FallbackBandWidth)
		for i := range band {
			band[i] = i
		}
	}
	return band
}
