package percentencode

import (
	"testing"
	"unsafe"
)

func TestPercentEncodeByte_Table(t *testing.T) {
	for i := 0; i <= 0xFF; i++ {
		got := PercentEncodeByte(byte(i))
		want := "%" + hexUpper(byte(i))
		if got != want {
			t.Fatalf("PercentEncodeByte(%d) = %q, want %q", i, got, want)
		}
	}
}

func hexUpper(b byte) string {
	const digits = "0123456789ABCDEF"
	return string([]byte{digits[b>>4], digits[b&0xF]})
}

func TestPercentEncode_Collect(t *testing.T) {
	tests := []struct {
		name  string
		input string
		set   AsciiSet
		want  string
	}{
		{name: "spec scenario 1", input: "foo bar?", set: NON_ALPHANUMERIC, want: "foo%20bar%3F"},
		{name: "all controls", input: "\x00\x01\x02\x03", set: CONTROLS, want: "%00%01%02%03"},
		{name: "nothing to encode", input: "foo bar?", set: EMPTY, want: "foo bar?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UTF8PercentEncode(tt.input, tt.set).String()
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPercentEncode_BorrowPreservation(t *testing.T) {
	input := []byte("unchanged")
	enc := PercentEncode(input, EMPTY)
	first, ok := enc.Next()
	if !ok {
		t.Fatal("expected a fragment")
	}
	if _, ok := enc.Next(); ok {
		t.Fatal("expected exactly one fragment when nothing is encoded")
	}
	if &input[0] != unsafe.StringData(first) {
		t.Fatal("single unchanged fragment must borrow the original input, not copy it")
	}
}

func TestPercentDecode_RoundTrip(t *testing.T) {
	sets := []AsciiSet{EMPTY, CONTROLS, NON_ALPHANUMERIC}
	inputs := []string{"", "plain", "foo bar?", "\x00\x01\xff", "100% sure", "%", "%2", "%2x", "%2Ghello"}
	for _, set := range sets {
		for _, in := range inputs {
			encoded := UTF8PercentEncode(in, set).String()
			decoded := PercentDecode([]byte(encoded)).Bytes()
			if string(decoded) != in {
				t.Errorf("round trip failed for set=%v input=%q: encoded=%q decoded=%q", set, in, encoded, decoded)
			}
		}
	}
}

func TestPercentDecode_Scenario2(t *testing.T) {
	got, err := PercentDecode([]byte("foo%20bar%3f")).DecodeUTF8Strict()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "foo bar?" {
		t.Errorf("got %q, want %q", got, "foo bar?")
	}
}

func TestPercentDecode_TrailingIncomplete(t *testing.T) {
	tests := []string{"abc%", "abc%2", "abc%2g", "abc%gg"}
	for _, in := range tests {
		got := string(PercentDecode([]byte(in)).Bytes())
		if got != in {
			t.Errorf("incomplete escape %q should decode verbatim, got %q", in, got)
		}
	}
}

func TestPercentDecode_BorrowPreservation(t *testing.T) {
	input := []byte("no percent escapes here")
	out := PercentDecode(input).Bytes()
	if &out[0] != &input[0] {
		t.Fatal("decode of input with no %HH triple must return the original slice unchanged")
	}
}

func TestPercentDecode_InvalidUTF8(t *testing.T) {
	_, err := PercentDecode([]byte("%00%9F%92%96")).DecodeUTF8Strict()
	uerr, ok := err.(*UTF8Error)
	if !ok {
		t.Fatalf("expected *UTF8Error, got %T (%v)", err, err)
	}
	if uerr.ValidUpTo != 1 || uerr.ErrorLen != 1 {
		t.Errorf("got ValidUpTo=%d ErrorLen=%d, want 1,1", uerr.ValidUpTo, uerr.ErrorLen)
	}
}

func TestPercentDecode_Lossy(t *testing.T) {
	got := PercentDecode([]byte("%F0%9F%92%96")).DecodeUTF8Lossy()
	if got != "\U0001F496" {
		t.Errorf("got %q", got)
	}
}

func TestEncode_IdempotentUnderSupersets(t *testing.T) {
	// s1 is a subset of s2, and input contains no '%' byte, so encoding
	// under s1 first introduces no new bytes that s2 would treat specially;
	// encoding that result under s2 must equal encoding the original
	// directly under s2.
	input := []byte("a b\x01?d#e")
	s1 := CONTROLS
	s2 := CONTROLS.Add(' ').Add('#').Add('?')
	encoded1 := PercentEncode(input, s1).String()
	direct := PercentEncode(input, s2).String()
	reencoded := PercentEncode([]byte(encoded1), s2).String()
	if reencoded != direct {
		t.Errorf("encode(encode(B,S1).bytes(),S2) = %q, want encode(B,S2) = %q", reencoded, direct)
	}
}
