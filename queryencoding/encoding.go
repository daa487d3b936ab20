package queryencoding

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

// Override selects the character encoding used to turn a query string's code
// points into bytes before percent-encoding. The zero value is UTF-8, the
// default the parser otherwise always uses.
type Override struct {
	cm *charmap.Charmap
}

// FromCharmap builds an Override from a legacy 8-bit encoding, e.g.
// charmap.Windows1252 for a document served as text/html;charset=windows-1252.
func FromCharmap(cm *charmap.Charmap) Override {
	return Override{cm: cm}
}

// IsUTF8 reports whether o leaves query encoding at the default.
func (o Override) IsUTF8() bool {
	return o.cm == nil
}

// Encode converts s to bytes using the overridden encoding, or returns its
// UTF-8 bytes unchanged if no override was set.
func (o Override) Encode(s string) ([]byte, error) {
	if o.cm == nil {
		return []byte(s), nil
	}
	out, err := o.cm.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("queryencoding: %w", err)
	}
	return out, nil
}

// String names the override for diagnostics.
func (o Override) String() string {
	if o.cm == nil {
		return "UTF-8"
	}
	return o.cm.String()
}
