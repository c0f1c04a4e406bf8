package decoder

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// TiktokenTokenizer adapts tiktoken-go's cl100k_base encoding to the
// Tokenizer interface, used to populate Bank.TokenIDs for the neural
// language scorer.
type TiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenizer loads the cl100k_base encoding.
func NewTiktokenizer() (*TiktokenTokenizer, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("tokenizer: loading cl100k_base: %w", err)
	}
	return &TiktokenTokenizer{enc: enc}, nil
}

// Encode returns the subword token ids for text.
func (t *TiktokenTokenizer) Encode(text string) []int {
	if t.enc == nil {
		return nil
	}
	return t.enc.Encode(text, nil, nil)
}
