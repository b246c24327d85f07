package csvimport

// streaming.go cleans up spreadsheet downloads before tokenizing:
//
//   - BOMSkippingReader drops a leading UTF-8 byte-order mark
//   - UTF8Sanitizer replaces invalid UTF-8 bytes with '?'
//   - CountingReader counts raw bytes so oversized sources can be rejected

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// ErrSourceTooLarge is returned by ReadSheet when the body exceeds its limit.
var ErrSourceTooLarge = errors.New("csv source exceeds size limit")

var bomBytes = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader removes a UTF-8 BOM from the start of the stream.
type BOMSkippingReader struct {
	r       *bufio.Reader
	checked bool
}

func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{r: bufio.NewReader(r)}
}

func (b *BOMSkippingReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		if head, err := b.r.Peek(len(bomBytes)); err == nil && bytes.Equal(head, bomBytes) {
			_, _ = b.r.Discard(len(bomBytes))
		}
	}
	return b.r.Read(p)
}

const sanitizeChunk = 32 * 1024

// UTF8Sanitizer replaces each invalid UTF-8 byte with '?'. Multi-byte
// sequences split across reads are held back until complete.
type UTF8Sanitizer struct {
	r    io.Reader
	raw  []byte
	keep int    // raw[:keep] is an incomplete sequence from the last read
	out  []byte // sanitized bytes not yet returned
	err  error
}

func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{r: r, raw: make([]byte, sanitizeChunk)}
}

func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for len(s.out) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		n, err := s.r.Read(s.raw[s.keep:])
		s.err = err
		s.sanitize(s.raw[:s.keep+n], err != nil)
	}
	n := copy(p, s.out)
	s.out = s.out[n:]
	return n, nil
}

func (s *UTF8Sanitizer) sanitize(data []byte, final bool) {
	out := s.out[:0]
	for len(data) > 0 {
		if data[0] < utf8.RuneSelf {
			out = append(out, data[0])
			data = data[1:]
			continue
		}
		if !final && !utf8.FullRune(data) {
			break
		}
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			out = append(out, '?')
		} else {
			out = append(out, data[:size]...)
		}
		data = data[size:]
	}
	s.out = out
	s.keep = copy(s.raw, data)
}

// CountingReader counts the bytes read through it.
type CountingReader struct {
	r         io.Reader
	BytesRead int64
}

func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{r: r}
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.BytesRead += int64(n)
	return n, err
}

// ReadSheet reads a whole spreadsheet body as text: the BOM is dropped and
// invalid UTF-8 is replaced. A positive maxBytes caps the raw body size.
// It returns the text and the raw byte count.
func ReadSheet(r io.Reader, maxBytes int64) (string, int64, error) {
	src := r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}
	counter := NewCountingReader(src)

	var b strings.Builder
	if _, err := io.Copy(&b, NewUTF8Sanitizer(NewBOMSkippingReader(counter))); err != nil {
		return "", counter.BytesRead, fmt.Errorf("read csv source: %w", err)
	}
	if maxBytes > 0 && counter.BytesRead > maxBytes {
		return "", counter.BytesRead, fmt.Errorf("%w: more than %d bytes", ErrSourceTooLarge, maxBytes)
	}
	return b.String(), counter.BytesRead, nil
}
