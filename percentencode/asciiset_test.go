package percentencode

import "testing"

func TestAsciiSet_ShouldPercentEncode(t *testing.T) {
	tests := []struct {
		name string
		set  AsciiSet
		b    byte
		want bool
	}{
		{name: "empty set, ascii letter", set: EMPTY, b: 'a', want: false},
		{name: "empty set, non-ascii byte always encoded", set: EMPTY, b: 0x80, want: true},
		{name: "controls, NUL", set: CONTROLS, b: 0x00, want: true},
		{name: "controls, DEL", set: CONTROLS, b: 0x7F, want: true},
		{name: "controls, space not included", set: CONTROLS, b: ' ', want: false},
		{name: "non-alphanumeric, digit", set: NON_ALPHANUMERIC, b: '7', want: false},
		{name: "non-alphanumeric, letter", set: NON_ALPHANUMERIC, b: 'Z', want: false},
		{name: "non-alphanumeric, question mark", set: NON_ALPHANUMERIC, b: '?', want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.set.ShouldPercentEncode(tt.b); got != tt.want {
				t.Errorf("ShouldPercentEncode(%q) = %v, want %v", tt.b, got, tt.want)
			}
		})
	}
}

func TestAsciiSet_AddRemoveArePure(t *testing.T) {
	base := CONTROLS
	fragment := base.Add(' ').Add('"').Add('<').Add('>').Add('`')
	if base.Contains(' ') {
		t.Fatalf("Add must not mutate the receiver")
	}
	if !fragment.Contains(' ') || !fragment.Contains('`') {
		t.Fatalf("fragment set missing added bytes")
	}
	removed := fragment.Remove(' ')
	if removed.Contains(' ') {
		t.Fatalf("Remove did not remove byte")
	}
	if !fragment.Contains(' ') {
		t.Fatalf("Remove must not mutate the receiver")
	}
}

func TestAsciiSet_Subsets(t *testing.T) {
	// Every component set in the parser is built by adding to CONTROLS or QUERY;
	// spot check that composition is monotonic (superset still contains subset).
	fragment := CONTROLS.Add(' ').Add('"').Add('<').Add('>').Add('`')
	path := fragment.Add('#').Add('?').Add('{').Add('}')
	for b := 0; b < 128; b++ {
		if fragment.Contains(byte(b)) && !path.Contains(byte(b)) {
			t.Fatalf("PATH must be a superset of FRAGMENT, missing byte %d", b)
		}
	}
}
