package csvimport

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestBOMSkippingReader(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"with BOM", append([]byte{0xEF, 0xBB, 0xBF}, "a,b"...), "a,b"},
		{"without BOM", []byte("a,b"), "a,b"},
		{"empty", nil, ""},
		{"only BOM", []byte{0xEF, 0xBB, 0xBF}, ""},
		{"partial BOM kept", []byte{0xEF, 0xBB, 'x'}, string([]byte{0xEF, 0xBB, 'x'})},
		{"short input", []byte("a"), "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(NewBOMSkippingReader(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUTF8Sanitizer(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"ascii", []byte("a,b"), "a,b"},
		{"cyrillic", []byte("Ціна,Назва"), "Ціна,Назва"},
		{"invalid byte", []byte{'a', 0x80, 'b'}, "a?b"},
		{"truncated sequence at end", []byte{'a', 0xD0}, "a?"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(NewUTF8Sanitizer(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUTF8Sanitizer_SplitSequences(t *testing.T) {
	input := strings.Repeat("Лялька Марічка, ", 50)

	// OneByteReader splits every multi-byte rune across reads.
	got, err := io.ReadAll(NewUTF8Sanitizer(iotest.OneByteReader(strings.NewReader(input))))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != input {
		t.Errorf("split runes were corrupted: %q", got[:40])
	}
}

func TestReadSheet(t *testing.T) {
	input := "\ufeffНазва,Ціна\nМашинка,1\xff0\n"

	text, n, err := ReadSheet(strings.NewReader(input), 0)
	if err != nil {
		t.Fatal(err)
	}
	if text != "Назва,Ціна\nМашинка,1?0\n" {
		t.Errorf("text = %q", text)
	}
	if n != int64(len(input)) {
		t.Errorf("bytes = %d, want %d", n, len(input))
	}
}

func TestReadSheet_TooLarge(t *testing.T) {
	input := strings.Repeat("x", 100)

	if _, _, err := ReadSheet(strings.NewReader(input), 100); err != nil {
		t.Errorf("exact limit rejected: %v", err)
	}
	_, _, err := ReadSheet(strings.NewReader(input), 99)
	if !errors.Is(err, ErrSourceTooLarge) {
		t.Errorf("error = %v, want ErrSourceTooLarge", err)
	}
}

func TestCountingReader(t *testing.T) {
	c := NewCountingReader(strings.NewReader(strings.Repeat("y", 1234)))
	if _, err := io.Copy(io.Discard, c); err != nil {
		t.Fatal(err)
	}
	if c.BytesRead != 1234 {
		t.Errorf("BytesRead = %d, want 1234", c.BytesRead)
	}
}
