//go:build go1.18
// +build go1.18

package calc

import "testing"

func FuzzTokenize(f *testing.F) {
	f.Add("2(3+4)")
	f.Add("X=-Y")
	f.Add("1.2.3")
	f.Fuzz(func(t *testing.T, s string) {
		tokens, err := Tokenize(s, 64)
		if err != nil && tokens != nil {
			t.Errorf("%q: tokens %s with error %v", s, FormatTokens(tokens), err)
		}
		if len(tokens) > 2*len(s) {
			t.Errorf("%q: %d tokens", s, len(tokens))
		}
	})
}
