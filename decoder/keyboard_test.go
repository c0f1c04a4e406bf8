package decoder

import "testing"

func TestKeyboardCentroidRejectsNonLetters(t *testing.T) {
	kb := NewQWERTYKeyboard()
	for _, c := range []byte{'A', '0', ' ', '{'} {
		if _, err := kb.Centroid(c); err == nil {
			t.Fatalf("expected error for non a-z byte %q", c)
		}
	}
}

func TestKeyboardCentroidCoversAlphabet(t *testing.T) {
	kb := NewQWERTYKeyboard()
	for c := byte('a'); c <= 'z'; c++ {
		p, err := kb.Centroid(c)
		if err != nil {
			t.Fatalf("Centroid(%q): %v", c, err)
		}
		if p.X() < 0 || p.X() > canonicalKeyboardWidth {
			t.Fatalf("Centroid(%q).X() = %v out of canonical bounds", c, p.X())
		}
		if p.Y() < 0 || p.Y() > canonicalKeyboardHeight {
			t.Fatalf("Centroid(%q).Y() = %v out of canonical bounds", c, p.Y())
		}
	}
}

func TestKeyboardScalePreservesRatio(t *testing.T) {
	kb := NewQWERTYKeyboard()
	p, err := kb.Centroid('q')
	if err != nil {
		t.Fatalf("Centroid: %v", err)
	}
	scaled := kb.Scale(p, 600, 450)
	if !almostEqual(scaled.X(), p.X()*0.5) || !almostEqual(scaled.Y(), p.Y()*0.5) {
		t.Fatalf("Scale at half size: got (%v,%v), want (%v,%v)", scaled.X(), scaled.Y(), p.X()*0.5, p.Y()*0.5)
	}
}
