package decoder

import "testing"

func TestShapeScoreHigherForCloserTemplate(t *testing.T) {
	var strokeX, strokeY, closeX, closeY, farX, farY [SamplePoints]float64
	var w Weights
	for i := range w {
		w[i] = 1
		strokeX[i] = float64(i)
		strokeY[i] = 0
		closeX[i] = float64(i) + 1
		closeY[i] = 0
		farX[i] = float64(i) + 50
		farY[i] = 0
	}

	closeScore := ShapeScore(strokeX, strokeY, w, closeX, closeY)
	farScore := ShapeScore(strokeX, strokeY, w, farX, farY)
	if closeScore <= farScore {
		t.Fatalf("closer template should score higher: close=%v far=%v", closeScore, farScore)
	}
}

func TestShapeScoresL1Normalized(t *testing.T) {
	b := &Bank{
		Words:   []string{"a", "b"},
		NormalX: make([][SamplePoints]float64, 2),
		NormalY: make([][SamplePoints]float64, 2),
	}
	var strokeX, strokeY [SamplePoints]float64
	var w Weights
	for i := range w {
		w[i] = 1
	}
	scores := ShapeScores(strokeX, strokeY, w, b, []int{0, 1})
	var sum float64
	for _, s := range scores {
		sum += s
	}
	if !almostEqual(sum, 1) {
		t.Fatalf("shape scores should sum to 1, got %v", sum)
	}
}

func TestLocationGateOKRejectsDivergentOffset(t *testing.T) {
	xs := []float64{500, 500}
	ys := []float64{500, 500}
	if LocationGateOK(0, 0, xs, ys) {
		t.Fatalf("a stroke far from the reference centroid with a near-zero offset should fail the gate")
	}
}

func TestLocationGateOKAcceptsConsistentOffset(t *testing.T) {
	dx, dy := 20.0, -5.0
	xs := []float64{LocationRefOX + dx, LocationRefOX + dx}
	ys := []float64{LocationRefOY + dy, LocationRefOY + dy}
	if !LocationGateOK(dx, dy, xs, ys) {
		t.Fatalf("a stroke whose own mean offset matches the session offset should pass the gate")
	}
}

func TestLocationScoreHigherForCloserTranslatedTemplate(t *testing.T) {
	var strokeX, strokeY, tmplX, tmplY [SamplePoints]float64
	var w Weights
	for i := range w {
		w[i] = 1
		strokeX[i] = 100 + float64(i)
		strokeY[i] = 100
		tmplX[i] = float64(i) * canonicalKeyboardWidth / ReferenceKeyboardWidth
		tmplY[i] = 0
	}
	close := LocationScore(strokeX, strokeY, w, tmplX, tmplY, 100, 100)
	far := LocationScore(strokeX, strokeY, w, tmplX, tmplY, 1000, 1000)
	if close <= far {
		t.Fatalf("translating the template closer to the stroke should score higher: close=%v far=%v", close, far)
	}
}

func TestCommandShapeScoresInvertsDistance(t *testing.T) {
	b := &Bank{
		Words:   []string{"near", "far"},
		NormalX: make([][SamplePoints]float64, 2),
		NormalY: make([][SamplePoints]float64, 2),
	}
	var strokeX, strokeY [SamplePoints]float64
	var w Weights
	for i := range w {
		w[i] = 1
		strokeX[i] = float64(i)
		b.NormalX[0][i] = float64(i) + 1
		b.NormalX[1][i] = float64(i) + 50
	}
	scores := CommandShapeScores(strokeX, strokeY, w, b, []int{0, 1})
	if scores[0] <= scores[1] {
		t.Fatalf("closer command template should score higher: near=%v far=%v", scores[0], scores[1])
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	if !almostEqual(sum, 1) {
		t.Fatalf("command shape scores should sum to 1, got %v", sum)
	}
}
