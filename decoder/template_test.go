package decoder

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCollapseRepeats(t *testing.T) {
	cases := map[string]string{
		"hello":  "helo",
		"book":   "bok",
		"a":      "a",
		"aabbcc": "abc",
		"goose":  "gose",
	}
	for in, want := range cases {
		if got := CollapseRepeats(in); got != want {
			t.Errorf("CollapseRepeats(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSharpCornerCountDegenerateLengths(t *testing.T) {
	kb := NewQWERTYKeyboard()
	if c, err := SharpCornerCount("a", kb); err != nil || c != -1 {
		t.Fatalf("1-letter word: got (%d,%v), want (-1,nil)", c, err)
	}
	if c, err := SharpCornerCount("aab", kb); err != nil || c != 0 {
		t.Fatalf("2-letter collapsed word: got (%d,%v), want (0,nil)", c, err)
	}
}

func TestBuildBankSkipsInvalidWords(t *testing.T) {
	kb := NewQWERTYKeyboard()
	bank, err := BuildBank([]string{"hello", "Hello", "h3llo", "", "world"}, kb, nil)
	if err != nil {
		t.Fatalf("BuildBank: %v", err)
	}
	if bank.Len() != 2 {
		t.Fatalf("expected 2 valid words, got %d: %v", bank.Len(), bank.Words)
	}
	if bank.Words[0] != "hello" || bank.Words[1] != "world" {
		t.Fatalf("unexpected words: %v", bank.Words)
	}
}

func TestBuildBankTemplatesAreSampledAndNormalized(t *testing.T) {
	kb := NewQWERTYKeyboard()
	bank, err := BuildBank([]string{"cat"}, kb, nil)
	if err != nil {
		t.Fatalf("BuildBank: %v", err)
	}
	if bank.Len() != 1 {
		t.Fatalf("expected 1 template, got %d", bank.Len())
	}
	minX, maxX := minMax(bank.NormalX[0][:])
	if minX < -epsilon {
		t.Fatalf("normalized template has negative X: %v", minX)
	}
	if maxX > NormalizeRange-1+epsilon {
		t.Fatalf("normalized template exceeds normalization range: %v", maxX)
	}
}

func TestSaveAndLoadLexiconRoundTrip(t *testing.T) {
	kb := NewQWERTYKeyboard()
	bank, err := BuildBank([]string{"quick", "brown", "fox"}, kb, nil)
	if err != nil {
		t.Fatalf("BuildBank: %v", err)
	}

	path := filepath.Join(t.TempDir(), "lexicon.gob")
	if err := SaveLexicon(path, bank); err != nil {
		t.Fatalf("SaveLexicon: %v", err)
	}

	loaded, err := LoadLexicon(path)
	if err != nil {
		t.Fatalf("LoadLexicon: %v", err)
	}
	if loaded.Len() != bank.Len() {
		t.Fatalf("round trip length mismatch: got %d, want %d", loaded.Len(), bank.Len())
	}
	for i := range bank.Words {
		if loaded.Words[i] != bank.Words[i] {
			t.Fatalf("word[%d]: got %q, want %q", i, loaded.Words[i], bank.Words[i])
		}
		if loaded.SampledX[i] != bank.SampledX[i] {
			t.Fatalf("SampledX[%d] mismatch after round trip", i)
		}
	}
}

func TestLoadCommandListSkipsBlankLines(t *testing.T) {
	kb := NewQWERTYKeyboard()
	path := filepath.Join(t.TempDir(), "commands.txt")
	if err := os.WriteFile(path, []byte("select\n\nundo\n  \ncopy\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	bank, err := LoadCommandList(path, kb, nil)
	if err != nil {
		t.Fatalf("LoadCommandList: %v", err)
	}
	if bank.Len() != 3 {
		t.Fatalf("expected 3 commands, got %d: %v", bank.Len(), bank.Words)
	}
}
