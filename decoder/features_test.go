package decoder

import "testing"

func TestExtractFeaturesSinglePointDegenerate(t *testing.T) {
	raw := RawStroke{X: []float64{3}, Y: []float64{4}}
	var nearest [SamplePoints]int
	f := ExtractFeatures(raw, []float64{3}, []float64{4}, nearest)
	for _, w := range f.Weights {
		if w != 1 {
			t.Fatalf("single-point stroke should have uniform weight 1, got %v", w)
		}
	}
	if len(f.CornerBand) != 1 || f.CornerBand[0] != -1 {
		t.Fatalf("single-point stroke should have corner band [-1], got %v", f.CornerBand)
	}
}

func TestExtractFeaturesMultiPoint(t *testing.T) {
	// Enough points that each normalized step density (1/n) stays within a
	// few DensitySigma of zero; with only a handful of points the Gaussian
	// underflows to 0.
	const n = 100
	raw := RawStroke{X: make([]float64, n), Y: make([]float64, n)}
	for i := range raw.X {
		raw.X[i] = float64(i)
	}
	lwX, lwY, err := ResampleLengthWise(raw.X, raw.Y, LengthWiseGap)
	if err != nil {
		t.Fatalf("ResampleLengthWise: %v", err)
	}
	sampled, err := Resample(raw.X, raw.Y, SamplePoints)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	nearest := NearestIndices(sampled, raw.X, raw.Y)

	f := ExtractFeatures(raw, lwX, lwY, nearest)
	var sum float64
	for _, w := range f.Weights {
		sum += w
	}
	if sum <= 0 {
		t.Fatalf("expected positive total weight, got %v", sum)
	}
	if len(f.CornerBand) != 4 && len(f.CornerBand) != 12 {
		t.Fatalf("corner band should be width 4 or the widened 12, got %d", len(f.CornerBand))
	}
}
