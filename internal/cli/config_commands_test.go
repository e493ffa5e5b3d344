package cli

import "testing"

func TestMaskToken(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"", "(not set)"},
		{"short", "********"},
		{"abcd1234", "********"},
		{"tok_1234567890abcdef", "tok_************cdef"},
	}

	for _, tt := range tests {
		if got := maskToken(tt.token); got != tt.want {
			t.Errorf("maskToken(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestTrimToken(t *testing.T) {
	if got := trimToken("  tok_abc\n"); got != "tok_abc" {
		t.Errorf("trimToken stripped wrong: %q", got)
	}
}
