package decoder

import (
	"testing"
)

func TestParsePointListBracketed(t *testing.T) {
	got, err := parsePointList("[1, 2.5, -3]")
	if err != nil {
		t.Fatalf("parsePointList: %v", err)
	}
	want := []float64{1, 2.5, -3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Fatalf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestParsePointListEmpty(t *testing.T) {
	got, err := parsePointList("[]")
	if err != nil {
		t.Fatalf("parsePointList: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty slice, got %v", got)
	}
}

func TestParsePointListMalformed(t *testing.T) {
	if _, err := parsePointList("[1, two, 3]"); err == nil {
		t.Fatalf("expected an error for a non-numeric entry")
	}
}

func TestEndToEndDecodeRanksExpectedWord(t *testing.T) {
	kb := NewQWERTYKeyboard()
	bank, err := BuildBank([]string{"cat", "dog", "bird"}, kb, nil)
	if err != nil {
		t.Fatalf("BuildBank: %v", err)
	}

	target := 0 // "cat"
	xs := bank.SampledX[target][:]
	ys := bank.SampledY[target][:]

	raw := RawStroke{X: append([]float64{}, xs...), Y: append([]float64{}, ys...)}
	sampled, err := Resample(raw.X, raw.Y, SamplePoints)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	normal := Normalize(sampled, NormalizeRange)
	lwX, lwY, err := ResampleLengthWise(raw.X, raw.Y, LengthWiseGap)
	if err != nil {
		t.Fatalf("ResampleLengthWise: %v", err)
	}
	nearest := NearestIndices(sampled, raw.X, raw.Y)
	features := ExtractFeatures(raw, lwX, lwY, nearest)

	cand := PruneByCorners(bank, features.CornerBand, false)
	shape := ShapeScores(normal.X, normal.Y, features.Weights, bank, cand)

	best := 0
	for i, s := range shape {
		if s > shape[best] {
			best = i
		}
	}
	if bank.Words[cand[best]] != "cat" {
		t.Fatalf("expected the identical template to win shape scoring, got %q", bank.Words[cand[best]])
	}
}
