package decoder

// DensitySigma is the Gaussian kernel width applied to step-length density
// to derive per-point weights (§3 magic constants: sigma≈0.006).
const DensitySigma = 0.006

// CornerHighBound is the angle-gradient magnitude, in degrees, that counts
// as a sharp directional change for corner counting (§3: corner
// high-bound=50).
const CornerHighBound = 50.0

// ExtractedFeatures bundles the per-request derived quantities the pruner
// and shape scorer need: per-point weights and the corner band used to
// prune the candidate set.
type ExtractedFeatures struct {
	Weights    Weights
	CornerBand []int
}

// ExtractFeatures computes density-derived weights and the corner band for
// a raw stroke already resampled to sampled/lengthWise forms (§4.3).
//
// A single-point stroke takes the degenerate path spec.md calls out
// explicitly: uniform weight 1 and corner band [-1], so the pruner keeps
// only the templates whose corner count is -1 (single-letter words).
func ExtractFeatures(raw RawStroke, lengthWiseX, lengthWiseY []float64, nearest [SamplePoints]int) ExtractedFeatures {
	if len(raw.X) == 1 {
		var w Weights
		for i := range w {
			w[i] = 1
		}
		return ExtractedFeatures{Weights: w, CornerBand: []int{-1}}
	}

	density := Density(raw.X, raw.Y)
	gaussDensity := GaussianAll(density, 0, DensitySigma)

	var weights Weights
	for i, idx := range nearest {
		weights[i] = gaussDensity[idx]
	}

	degrees := Degrees(lengthWiseX, lengthWiseY)
	gradient := Gradient(degrees)
	band := CornerBand(gradient, CornerHighBound)

	return ExtractedFeatures{Weights: weights, CornerBand: band}
}
