package textutil

import "testing"

func TestNormalizeDigits(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"خصم ٥٠ ريال", "خصم 50 ريال"},
		{"۱۲/۳/۲۰۲۶", "12/3/2026"},
		{"plain 42", "plain 42"},
	}
	for _, tt := range tests {
		if got := NormalizeDigits(tt.in); got != tt.want {
			t.Errorf("NormalizeDigits(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
