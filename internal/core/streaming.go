package core

// streaming.go provides readers applied to CSV input before parsing:
//
//   - skipBOM: drops a leading UTF-8 BOM (0xEF 0xBB 0xBF) written by Excel
//   - utf8Sanitizer: replaces invalid UTF-8 bytes with '?' without buffering the file
//   - limitedReader: fails with ErrFileTooLarge once a byte budget is exceeded
//
// Use wrapForParsing to apply the first two in the correct order.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// wrapForParsing strips the BOM first, then sanitizes UTF-8.
func wrapForParsing(r io.Reader) io.Reader {
	return newUTF8Sanitizer(skipBOM(r))
}

// skipBOM returns a reader positioned after a leading UTF-8 BOM, if any.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(utf8BOM))
	if bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// utf8Sanitizer replaces invalid UTF-8 sequences with '?' on the fly.
// Multi-byte runes split across source reads are carried over in carry, and
// sanitized bytes that do not fit the caller's buffer are kept in out.
type utf8Sanitizer struct {
	r      io.Reader
	buf    []byte
	out    []byte
	carry  [utf8.UTFMax]byte
	ncarry int
	err    error
}

const sanitizerBufferSize = 32 << 10

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{r: r, buf: make([]byte, sanitizerBufferSize)}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for len(s.out) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		s.fill()
	}
	n := copy(p, s.out)
	s.out = s.out[n:]
	return n, nil
}

// fill reads the next chunk behind any carried bytes and sanitizes it into out.
func (s *utf8Sanitizer) fill() {
	offset := copy(s.buf, s.carry[:s.ncarry])
	s.ncarry = 0

	n, err := s.r.Read(s.buf[offset:])
	n += offset
	s.err = err
	if n == 0 {
		return
	}
	s.out = s.buf[:s.sanitize(s.buf[:n], err != nil)]
}

// sanitize rewrites data in place and returns the number of bytes to emit.
// When atEOF is false, an incomplete trailing rune is held back in carry.
func (s *utf8Sanitizer) sanitize(data []byte, atEOF bool) int {
	write := 0
	for read := 0; read < len(data); {
		if data[read] < utf8.RuneSelf {
			data[write] = data[read]
			write++
			read++
			continue
		}

		if !atEOF && !utf8.FullRune(data[read:]) {
			s.ncarry = copy(s.carry[:], data[read:])
			return write
		}

		r, size := utf8.DecodeRune(data[read:])
		if r == utf8.RuneError && size == 1 {
			// one byte out, one byte in: no expansion
			data[write] = '?'
			write++
			read++
			continue
		}
		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}

// limitedReader reads at most limit bytes and returns ErrFileTooLarge when
// the source holds more.
type limitedReader struct {
	r     io.Reader
	limit int64
	n     int64
}

func newLimitedReader(r io.Reader, limit int64) *limitedReader {
	return &limitedReader{r: r, limit: limit}
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.limit > 0 && l.n >= l.limit {
		// Read one more byte to tell "exactly at limit" from "over limit".
		var extra [1]byte
		n, err := l.r.Read(extra[:])
		if n > 0 {
			return 0, ErrFileTooLarge
		}
		return 0, err
	}
	if l.limit > 0 && int64(len(p)) > l.limit-l.n {
		p = p[:l.limit-l.n]
	}
	n, err := l.r.Read(p)
	l.n += int64(n)
	return n, err
}

// BytesRead returns the number of bytes passed through so far.
func (l *limitedReader) BytesRead() int64 {
	return l.n
}
