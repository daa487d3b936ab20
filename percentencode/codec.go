package percentencode

import (
	"strings"
	"unicode/utf8"
	"unsafe"
)

// encTable holds the three-character "%HH" (uppercase hex) encoding of every
// byte value 0..255, laid out contiguously so a single byte's encoding is a
// fixed-offset 3-byte slice rather than computed per call.
const encTable = "" +
	"%00%01%02%03%04%05%06%07%08%09%0A%0B%0C%0D%0E%0F" +
	"%10%11%12%13%14%15%16%17%18%19%1A%1B%1C%1D%1E%1F" +
	"%20%21%22%23%24%25%26%27%28%29%2A%2B%2C%2D%2E%2F" +
	"%30%31%32%33%34%35%36%37%38%39%3A%3B%3C%3D%3E%3F" +
	"%40%41%42%43%44%45%46%47%48%49%4A%4B%4C%4D%4E%4F" +
	"%50%51%52%53%54%55%56%57%58%59%5A%5B%5C%5D%5E%5F" +
	"%60%61%62%63%64%65%66%67%68%69%6A%6B%6C%6D%6E%6F" +
	"%70%71%72%73%74%75%76%77%78%79%7A%7B%7C%7D%7E%7F" +
	"%80%81%82%83%84%85%86%87%88%89%8A%8B%8C%8D%8E%8F" +
	"%90%91%92%93%94%95%96%97%98%99%9A%9B%9C%9D%9E%9F" +
	"%A0%A1%A2%A3%A4%A5%A6%A7%A8%A9%AA%AB%AC%AD%AE%AF" +
	"%B0%B1%B2%B3%B4%B5%B6%B7%B8%B9%BA%BB%BC%BD%BE%BF" +
	"%C0%C1%C2%C3%C4%C5%C6%C7%C8%C9%CA%CB%CC%CD%CE%CF" +
	"%D0%D1%D2%D3%D4%D5%D6%D7%D8%D9%DA%DB%DC%DD%DE%DF" +
	"%E0%E1%E2%E3%E4%E5%E6%E7%E8%E9%EA%EB%EC%ED%EE%EF" +
	"%F0%F1%F2%F3%F4%F5%F6%F7%F8%F9%FA%FB%FC%FD%FE%FF"

// PercentEncodeByte returns the unconditional percent-encoding of b, e.g.
// PercentEncodeByte(' ') == "%20".
func PercentEncodeByte(b byte) string {
	i := int(b) * 3
	return encTable[i : i+3]
}

// bytesToString reinterprets b as a string without copying.
//
// Safety: callers only ever pass valid UTF-8: either the maximal runs of bytes
// that ShouldPercentEncode declined to flag, which by construction
// (ShouldPercentEncode always flags bytes >= 0x80) are pure ASCII, or decoded
// bytes that DecodeUTF8Strict / DecodeUTF8Lossy have just validated.
func bytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

// Encode is a lazy sequence of text fragments whose concatenation is the
// percent-encoding of the original input under its AsciiSet. Each fragment is
// either a borrowed maximal run of non-encoded bytes or a single "%HH"
// literal. Encode is a single-consumer value: calling Next drains it.
type Encode struct {
	bytes []byte
	set   AsciiSet
}

// PercentEncode begins a lazy percent-encoding of input under set.
func PercentEncode(input []byte, set AsciiSet) *Encode {
	return &Encode{bytes: input, set: set}
}

// UTF8PercentEncode begins a lazy percent-encoding of the UTF-8 bytes of input.
func UTF8PercentEncode(input string, set AsciiSet) *Encode {
	return PercentEncode([]byte(input), set)
}

// Next returns the next fragment, or ("", false) when exhausted.
func (e *Encode) Next() (string, bool) {
	if len(e.bytes) == 0 {
		return "", false
	}
	first := e.bytes[0]
	if e.set.ShouldPercentEncode(first) {
		e.bytes = e.bytes[1:]
		return PercentEncodeByte(first), true
	}
	for i := 1; i < len(e.bytes); i++ {
		if e.set.ShouldPercentEncode(e.bytes[i]) {
			out := bytesToString(e.bytes[:i])
			e.bytes = e.bytes[i:]
			return out, true
		}
	}
	out := bytesToString(e.bytes)
	e.bytes = nil
	return out, true
}

// SizeHint bounds the number of fragments still to come: a lower bound of 1
// if any input remains, and an upper bound of the number of remaining bytes
// (each could become its own fragment in the worst case).
func (e *Encode) SizeHint() (lower, upper int) {
	if len(e.bytes) == 0 {
		return 0, 0
	}
	return 1, len(e.bytes)
}

// String drains the encoder and returns the concatenation of all fragments.
// When no byte required encoding, this returns the single borrowed fragment
// directly rather than copying it through a builder.
func (e *Encode) String() string {
	first, ok := e.Next()
	if !ok {
		return ""
	}
	second, ok := e.Next()
	if !ok {
		return first
	}
	var b strings.Builder
	b.WriteString(first)
	b.WriteString(second)
	for {
		s, ok := e.Next()
		if !ok {
			break
		}
		b.WriteString(s)
	}
	return b.String()
}

// AppendTo drains the encoder, writing each fragment to b in turn.
func (e *Encode) AppendTo(b *strings.Builder) {
	for {
		s, ok := e.Next()
		if !ok {
			return
		}
		b.WriteString(s)
	}
}

// decodeHexPair decodes the two leading ASCII hex digits of b, if present.
func decodeHexPair(b []byte) (byte, bool) {
	if len(b) < 2 {
		return 0, false
	}
	hi, ok := hexDigit(b[0])
	if !ok {
		return 0, false
	}
	lo, ok := hexDigit(b[1])
	if !ok {
		return 0, false
	}
	return hi<<4 | lo, true
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// Decode is a lazy percent-decoding byte sequence: a %HH triple of hex
// digits becomes the byte it encodes; anything else passes through
// unchanged. Decode never fails: a trailing "%" or "%X" with no complete hex
// pair is emitted verbatim.
type Decode struct {
	bytes []byte
}

// PercentDecode begins a lazy percent-decoding of input.
func PercentDecode(input []byte) *Decode {
	return &Decode{bytes: input}
}

// PercentDecodeString begins a lazy percent-decoding of the UTF-8 bytes of
// input.
func PercentDecodeString(input string) *Decode {
	return PercentDecode([]byte(input))
}

// Next returns the next decoded byte, or (0, false) when exhausted.
func (d *Decode) Next() (byte, bool) {
	if len(d.bytes) == 0 {
		return 0, false
	}
	b := d.bytes[0]
	if b == '%' {
		if decoded, ok := decodeHexPair(d.bytes[1:]); ok {
			d.bytes = d.bytes[3:]
			return decoded, true
		}
	}
	d.bytes = d.bytes[1:]
	return b, true
}

// SizeHint bounds the number of bytes still to come: lower bound
// (n+2)/3 in integer division (that is, ceil(n/3)), upper bound n, where n
// is the number of remaining input bytes.
func (d *Decode) SizeHint() (lower, upper int) {
	n := len(d.bytes)
	return (n + 2) / 3, n
}

// Bytes drains the decoder and returns the decoded bytes. When no %HH triple
// ever decoded, the original input slice is returned unchanged (no copy).
func (d *Decode) Bytes() []byte {
	idx := -1
	var decoded byte
	for i := 0; i < len(d.bytes); i++ {
		if d.bytes[i] == '%' {
			if db, ok := decodeHexPair(d.bytes[i+1:]); ok {
				idx, decoded = i, db
				break
			}
		}
	}
	if idx == -1 {
		out := d.bytes
		d.bytes = nil
		return out
	}
	out := make([]byte, 0, len(d.bytes))
	out = append(out, d.bytes[:idx]...)
	out = append(out, decoded)
	d.bytes = d.bytes[idx+3:]
	for {
		b, ok := d.Next()
		if !ok {
			break
		}
		out = append(out, b)
	}
	return out
}

// UTF8Error reports that percent-decoded bytes were not well-formed UTF-8.
type UTF8Error struct {
	// ValidUpTo is the number of leading bytes that were valid.
	ValidUpTo int
	// ErrorLen is the length, in bytes, of the invalid sequence.
	ErrorLen int
}

func (e *UTF8Error) Error() string {
	return "percent-decoded bytes are not valid UTF-8"
}

func firstInvalidUTF8(b []byte) (offset, length int, found bool) {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i, 1, true
		}
		i += size
	}
	return 0, 0, false
}

// DecodeUTF8Strict drains the decoder and validates the result as UTF-8,
// returning a *UTF8Error naming the first invalid byte's offset and length
// if validation fails.
func (d *Decode) DecodeUTF8Strict() (string, error) {
	decoded := d.Bytes()
	if offset, length, bad := firstInvalidUTF8(decoded); bad {
		return "", &UTF8Error{ValidUpTo: offset, ErrorLen: length}
	}
	return bytesToString(decoded), nil
}

// DecodeUTF8Lossy drains the decoder and decodes the result as UTF-8,
// replacing invalid sequences with U+FFFD.
func (d *Decode) DecodeUTF8Lossy() string {
	decoded := d.Bytes()
	if utf8.Valid(decoded) {
		return bytesToString(decoded)
	}
	return strings.ToValidUTF8(string(decoded), string(utf8.RuneError))
}
