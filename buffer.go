package whaturl

import (
	"unicode/utf8"

	"github.com/urlcore/whaturl/percentencode"
)

// buffer is the parser's growable output: bytes are appended as the
// serialization is built, and occasionally truncated, inserted into, or
// spliced to implement path-shortening and the leading-empty-segment fixup.
type buffer struct {
	b []byte
}

func (buf *buffer) Len() int { return len(buf.b) }

func (buf *buffer) String() string { return string(buf.b) }

func (buf *buffer) Bytes() []byte { return buf.b }

func (buf *buffer) PushRune(r rune) {
	buf.b = utf8.AppendRune(buf.b, r)
}

func (buf *buffer) PushByte(c byte) {
	buf.b = append(buf.b, c)
}

func (buf *buffer) PushString(s string) {
	buf.b = append(buf.b, s...)
}

// PushEncoded percent-encodes text against set and appends the result.
func (buf *buffer) PushEncoded(text string, set percentencode.AsciiSet) {
	enc := percentencode.UTF8PercentEncode(text, set)
	for {
		s, ok := enc.Next()
		if !ok {
			return
		}
		buf.PushString(s)
	}
}

// PushEncodedBytes percent-encodes an already-encoded byte sequence (e.g. the
// output of a non-UTF-8 query encoding) against set and appends the result.
func (buf *buffer) PushEncodedBytes(data []byte, set percentencode.AsciiSet) {
	enc := percentencode.PercentEncode(data, set)
	for {
		s, ok := enc.Next()
		if !ok {
			return
		}
		buf.PushString(s)
	}
}

func (buf *buffer) Truncate(n int) {
	buf.b = buf.b[:n]
}

func (buf *buffer) Pop() {
	buf.b = buf.b[:len(buf.b)-1]
}

func (buf *buffer) EndsWith(suffix string) bool {
	n := len(buf.b)
	m := len(suffix)
	return n >= m && string(buf.b[n-m:]) == suffix
}

// InsertString splices s into the buffer at byte offset at.
func (buf *buffer) InsertString(at int, s string) {
	out := make([]byte, 0, len(buf.b)+len(s))
	out = append(out, buf.b[:at]...)
	out = append(out, s...)
	out = append(out, buf.b[at:]...)
	buf.b = out
}

// ReplaceRange replaces the byte range [lo, hi) with s.
func (buf *buffer) ReplaceRange(lo, hi int, s string) {
	out := make([]byte, 0, len(buf.b)-(hi-lo)+len(s))
	out = append(out, buf.b[:lo]...)
	out = append(out, s...)
	out = append(out, buf.b[hi:]...)
	buf.b = out
}

// Drain removes the byte range [lo, hi).
func (buf *buffer) Drain(lo, hi int) {
	buf.b = append(buf.b[:lo], buf.b[hi:]...)
}

// SplitOff removes and returns everything from byte offset at onward.
func (buf *buffer) SplitOff(at int) string {
	tail := string(buf.b[at:])
	buf.b = buf.b[:at]
	return tail
}
