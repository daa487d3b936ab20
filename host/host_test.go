package host

import "testing"

func TestParseHost_IPv4(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"127.0.0.1", "127.0.0.1"},
		{"0x7f.0.0.1", "127.0.0.1"},
		{"0177.0.0.1", "127.0.0.1"},
		{"1.2.3", "1.2.0.3"},
		{"1.2", "1.0.0.2"},
		{"1", "0.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			h, err := ParseHost(tt.in, true)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if h.Kind != KindIPv4 {
				t.Fatalf("expected KindIPv4, got %v", h.Kind)
			}
			if got := h.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseHost_IPv4_Invalid(t *testing.T) {
	tests := []string{"256.0.0.1", "1.2.3.4.5", "1.2.3.256", "not.a.number.at.all.but.digits.9"}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			h, err := ParseHost(in, true)
			if err == nil && h.Kind == KindIPv4 {
				t.Fatalf("expected non-IPv4 classification or error for %q, got %+v", in, h)
			}
		})
	}
}

func TestParseHost_IPv6(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"[::1]", "[::1]"},
		{"[::]", "[::]"},
		{"[2001:db8::1]", "[2001:db8::1]"},
		{"[2001:0db8:0000:0000:0000:0000:0000:0001]", "[2001:db8::1]"},
		{"[::ffff:192.0.2.1]", "[::ffff:c000:201]"},
		{"[ff02::1]", "[ff02::1]"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			h, err := ParseHost(tt.in, true)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if h.Kind != KindIPv6 {
				t.Fatalf("expected KindIPv6, got %v", h.Kind)
			}
			if got := h.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseHost_IPv6_Invalid(t *testing.T) {
	tests := []string{"[::1", "[1:2:3:4:5:6:7:8:9]", "[1::2::3]", "[gggg::1]"}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			if _, err := ParseHost(in, true); err == nil {
				t.Fatalf("expected error for %q", in)
			}
		})
	}
}

func TestParseHost_Domain(t *testing.T) {
	h, err := ParseHost("example.com", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Kind != KindDomain || h.String() != "example.com" {
		t.Fatalf("got %+v", h)
	}
}

func TestParseHost_Domain_IDNA(t *testing.T) {
	h, err := ParseHost("xn--nxasmq6b.example", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Kind != KindDomain {
		t.Fatalf("expected KindDomain, got %v", h.Kind)
	}
}

func TestParseHost_Domain_ForbiddenCharacter(t *testing.T) {
	if _, err := ParseHost("exa mple.com", true); err == nil {
		t.Fatal("expected error for space in domain")
	}
}

func TestParseHost_Opaque(t *testing.T) {
	h, err := ParseHost("so%20me.host", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Kind != KindDomain {
		t.Fatalf("expected KindDomain for opaque host, got %v", h.Kind)
	}
	if h.String() != "so%20me.host" {
		t.Errorf("got %q", h.String())
	}
}

func TestParseHost_Opaque_ForbiddenCharacter(t *testing.T) {
	if _, err := ParseHost("exa mple", false); err == nil {
		t.Fatal("expected error for space in opaque host")
	}
}

func TestParseHost_EmptyDomain(t *testing.T) {
	h, err := ParseHost("", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.IsEmptyDomain() {
		t.Fatalf("expected empty domain, got %+v", h)
	}
}

func TestEndsInANumber(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"example.com", false},
		{"example.1", true},
		{"example.0x1", true},
		{"example.", false},
		{"1.2.3.4", true},
		{"just-text", false},
	}
	for _, tt := range tests {
		if got := endsInANumber(tt.in); got != tt.want {
			t.Errorf("endsInANumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
