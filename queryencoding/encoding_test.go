package queryencoding

import (
	"bytes"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func TestOverride_ZeroValueIsUTF8(t *testing.T) {
	var o Override
	if !o.IsUTF8() {
		t.Fatal("zero value must be UTF-8")
	}
	out, err := o.Encode("héllo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(out, []byte("héllo")) {
		t.Errorf("got %q", out)
	}
}

func TestOverride_FromCharmap(t *testing.T) {
	o := FromCharmap(charmap.Windows1252)
	if o.IsUTF8() {
		t.Fatal("charmap override must not report UTF-8")
	}
	out, err := o.Encode("café")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{'c', 'a', 'f', 0xE9}
	if !bytes.Equal(out, want) {
		t.Errorf("got %v, want %v", out, want)
	}
}

func TestOverride_String(t *testing.T) {
	var o Override
	if o.String() != "UTF-8" {
		t.Errorf("got %q", o.String())
	}
	o2 := FromCharmap(charmap.Windows1252)
	if o2.String() == "UTF-8" {
		t.Error("charmap override must not stringify as UTF-8")
	}
}
