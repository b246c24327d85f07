package csvimport

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1 200,50 грн", "1200.5"},
		{"1200.50", "1200.5"},
		{"-", "0"},
		{"", "0"},
		{"₴ 350", "350"},
		{"1,5,6", "1.5"},
		{"12.", "12"},
		{".75", "0.75"},
		{"abc", "0"},
		{"1.200.000", "1.2"},
		{"  42  ", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParsePrice(tt.in)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ParsePrice(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}
