package listener

import (
	"bytes"
	"io"
)

// lineConn normalizes line endings between a network client and the
// console. Reads turn CRLF, CR NUL and a lone CR into LF, even when the
// pair is split across two reads. Writes turn a bare LF into CRLF.
type lineConn struct {
	rw    io.ReadWriter
	sawCR bool
}

func newLineConn(rw io.ReadWriter) *lineConn {
	return &lineConn{rw: rw}
}

func (c *lineConn) Read(p []byte) (int, error) {
	for {
		n, err := c.rw.Read(p)

		// out never overtakes the read index, so rewriting p in place is safe.
		out := p[:0]
		for _, b := range p[:n] {
			switch {
			case b == '\r':
				out = append(out, '\n')
				c.sawCR = true
				continue
			case c.sawCR && (b == '\n' || b == 0):
			default:
				out = append(out, b)
			}
			c.sawCR = false
		}

		if len(out) > 0 || err != nil || n == 0 {
			return len(out), err
		}
	}
}

func (c *lineConn) Write(p []byte) (int, error) {
	var buf bytes.Buffer
	buf.Grow(len(p) + bytes.Count(p, []byte{'\n'}))
	for i, b := range p {
		if b == '\n' && (i == 0 || p[i-1] != '\r') {
			buf.WriteByte('\r')
		}
		buf.WriteByte(b)
	}

	if _, err := c.rw.Write(buf.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}
