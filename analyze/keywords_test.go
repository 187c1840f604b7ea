package analyze

import "testing"

func TestKeywordInText(t *testing.T) {
	tests := []struct {
		name string
		text string
		kw   string
		want bool
	}{
		{"exact word", "check the balance", "check", true},
		{"word at start", "if payment cleared", "if", true},
		{"word at end", "see what happens then", "then", true},
		{"no boundary match inside word", "verify the data", "if", false},
		{"no boundary match inside vendor", "call the vendor", "end", false},
		{"phrase matches as substring", "please type in the amount", "type in", true},
		{"question mark matches as substring", "is it valid?", "?", true},
		{"absent keyword", "ship the order", "refund", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := keywordInText(tt.text, tt.kw); got != tt.want {
				t.Errorf("keywordInText(%q, %q) = %v, want %v", tt.text, tt.kw, got, tt.want)
			}
		})
	}
}

func TestKeywordSetCountDistinct(t *testing.T) {
	set := keywordSet{"and", "then", "also"}
	got := set.countDistinct("do this and that and then more")
	if got != 2 {
		t.Errorf("countDistinct = %d, want 2 (repeats count once)", got)
	}
}

func TestExtractKeywords(t *testing.T) {
	t.Run("drops stop words and short tokens", func(t *testing.T) {
		kws := extractKeywords("Send the invoice to an account")
		if _, ok := kws["the"]; ok {
			t.Error("stop word 'the' survived extraction")
		}
		if _, ok := kws["to"]; ok {
			t.Error("short token 'to' survived extraction")
		}
		for _, want := range []string{"send", "invoice", "account"} {
			if _, ok := kws[want]; !ok {
				t.Errorf("expected keyword %q", want)
			}
		}
	})

	t.Run("strips punctuation and lowercases", func(t *testing.T) {
		kws := extractKeywords("Verify: PAYMENT, (cleared)!")
		for _, want := range []string{"verify", "payment", "cleared"} {
			if _, ok := kws[want]; !ok {
				t.Errorf("expected keyword %q, got %v", want, kws)
			}
		}
	})
}
