package ingest

// reader.go provides streaming readers that clean uploaded files before
// parsing:
//
//   - a leading UTF-8 BOM (0xEF 0xBB 0xBF) from Windows programs is dropped
//   - invalid UTF-8 bytes are replaced with '?'
//   - reading past a size limit fails with core.ErrFileTooLarge
//
// Use Clean and Limit to apply them.

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/JonMunkholm/tableview/internal/core"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// cleanReader strips the BOM on first read and sanitizes UTF-8 on the fly.
type cleanReader struct {
	br         *bufio.Reader
	bomChecked bool

	// Encoded bytes of the last rune that did not fit the caller's buffer
	pending []byte
}

// Clean wraps r so that a leading BOM is skipped and invalid UTF-8 bytes
// read as '?'. Memory use is bounded by the buffer size.
func Clean(r io.Reader) io.Reader {
	return &cleanReader{br: bufio.NewReader(r)}
}

// Read implements io.Reader.
func (c *cleanReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if !c.bomChecked {
		c.bomChecked = true
		if head, _ := c.br.Peek(len(utf8BOM)); bytes.Equal(head, utf8BOM) {
			c.br.Discard(len(utf8BOM))
		}
	}

	n := copy(p, c.pending)
	c.pending = c.pending[n:]

	var enc [utf8.UTFMax]byte
	for n < len(p) {
		// Fast path for ASCII
		if b, err := c.br.ReadByte(); err != nil {
			return c.finish(n, err)
		} else if b < utf8.RuneSelf {
			p[n] = b
			n++
			continue
		}
		c.br.UnreadByte()

		r, size, err := c.br.ReadRune()
		if err != nil {
			return c.finish(n, err)
		}
		if r == utf8.RuneError && size == 1 {
			p[n] = '?'
			n++
			continue
		}

		w := utf8.EncodeRune(enc[:], r)
		copied := copy(p[n:], enc[:w])
		n += copied
		if copied < w {
			c.pending = append(c.pending[:0], enc[copied:w]...)
		}
	}
	return n, nil
}

func (c *cleanReader) finish(n int, err error) (int, error) {
	if n > 0 && err == io.EOF {
		return n, nil
	}
	return n, err
}

// limitReader fails once more than max bytes have been read.
type limitReader struct {
	r    io.Reader
	max  int64
	read int64
}

// Limit wraps r so that reading more than max bytes returns an error
// wrapping core.ErrFileTooLarge. A non-positive max disables the limit.
func Limit(r io.Reader, max int64) io.Reader {
	if max <= 0 {
		return r
	}
	return &limitReader{r: r, max: max}
}

// Read implements io.Reader.
func (l *limitReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.read += int64(n)
	if l.read > l.max {
		return n, fmt.Errorf("read %d bytes, limit %d: %w", l.read, l.max, core.ErrFileTooLarge)
	}
	return n, err
}
