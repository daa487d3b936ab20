package host

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/idna"

	"github.com/urlcore/whaturl/percentencode"
)

// Kind classifies which variant a Host holds.
type Kind int

const (
	// KindDomain covers both ASCII/IDNA domains and opaque (percent-encoded)
	// hosts of non-special schemes; both serialize as plain text.
	KindDomain Kind = iota
	KindIPv4
	KindIPv6
)

// Host is the result of parsing a URL's host substring: a tagged union of a
// domain (or opaque host) string, an IPv4 address, or an IPv6 address.
type Host struct {
	Kind Kind
	Domain string
	IPv4   uint32
	IPv6   [8]uint16
}

// String renders the host in its canonical display form, the form the
// parser writes verbatim into the URL serialization.
func (h Host) String() string {
	switch h.Kind {
	case KindIPv4:
		return formatIPv4(h.IPv4)
	case KindIPv6:
		return "[" + formatIPv6(h.IPv6) + "]"
	default:
		return h.Domain
	}
}

// IsEmptyDomain reports whether h is the empty domain (the "no host, but an
// authority was present" case the parser must still reject for special
// schemes).
func (h Host) IsEmptyDomain() bool {
	return h.Kind == KindDomain && h.Domain == ""
}

// Errors returned by the parsing functions below. These map 1:1 onto the
// fatal ParseError variants the caller surfaces for a bad host.
var (
	ErrInvalidIPv4Address     = errors.New("invalid IPv4 address")
	ErrInvalidIPv6Address     = errors.New("invalid IPv6 address")
	ErrInvalidDomainCharacter = errors.New("invalid domain character")
	ErrIDNA                   = errors.New("invalid international domain name")
)

var idnaProfile = idna.New(
	idna.MapForLookup(),
	idna.Transitional(false),
	idna.BidiRule(),
)

// DomainToASCII applies IDNA/UTS-46 normalization the way
// https://url.spec.whatwg.org/#concept-domain-to-ascii requires.
func DomainToASCII(s string) (string, error) {
	out, err := idnaProfile.ToASCII(s)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrIDNA, err)
	}
	return out, nil
}

// ParseHost parses a host substring. special selects domain parsing (special
// schemes: http, https, ws, wss, ftp) vs. opaque-host parsing (any other
// non-file scheme). File hosts have their own quirks and are parsed with
// ParseFileHost instead.
func ParseHost(s string, special bool) (Host, error) {
	if strings.HasPrefix(s, "[") {
		if !strings.HasSuffix(s, "]") {
			return Host{}, ErrInvalidIPv6Address
		}
		pieces, err := parseIPv6(s[1 : len(s)-1])
		if err != nil {
			return Host{}, err
		}
		return Host{Kind: KindIPv6, IPv6: pieces}, nil
	}
	if !special {
		return parseOpaqueHost(s)
	}
	return parseDomain(s)
}

// ParseOpaqueHost parses a host substring for a non-special scheme.
func ParseOpaqueHost(s string) (Host, error) {
	return ParseHost(s, false)
}

// ParseFileHost parses the host substring of a file: URL. Unlike ParseHost,
// it always takes the domain path regardless of the Windows-drive-letter
// rewind the caller performs on the raw string first.
func ParseFileHost(s string) (Host, error) {
	if s == "" {
		return Host{Kind: KindDomain, Domain: ""}, nil
	}
	return ParseHost(s, true)
}

func parseDomain(s string) (Host, error) {
	if s == "" {
		return Host{Kind: KindDomain, Domain: ""}, nil
	}
	decoded := percentencode.PercentDecode([]byte(s)).DecodeUTF8Lossy()
	ascii, err := DomainToASCII(decoded)
	if err != nil {
		return Host{}, err
	}
	for _, r := range ascii {
		if isForbiddenDomainCodePoint(r) {
			return Host{}, ErrInvalidDomainCharacter
		}
	}
	if endsInANumber(ascii) {
		ipv4, err := parseIPv4(ascii)
		if err != nil {
			return Host{}, ErrInvalidIPv4Address
		}
		return Host{Kind: KindIPv4, IPv4: ipv4}, nil
	}
	return Host{Kind: KindDomain, Domain: ascii}, nil
}

func parseOpaqueHost(s string) (Host, error) {
	for _, r := range s {
		if isForbiddenHostCodePoint(r) {
			return Host{}, ErrInvalidDomainCharacter
		}
	}
	encoded := percentencode.UTF8PercentEncode(s, percentencode.CONTROLS).String()
	return Host{Kind: KindDomain, Domain: encoded}, nil
}

func isForbiddenHostCodePoint(r rune) bool {
	switch r {
	case 0x00, 0x09, 0x0A, 0x0D, 0x20,
		'#', '/', ':', '<', '>', '?', '@', '[', '\\', ']', '^', '|':
		return true
	}
	return false
}

func isForbiddenDomainCodePoint(r rune) bool {
	if r <= 0x1F || r == 0x7F || r == '%' {
		return true
	}
	return isForbiddenHostCodePoint(r)
}

// endsInANumber implements the WHATWG "ends in a number" checker used to
// decide whether a domain should instead be parsed as an IPv4 address.
func endsInANumber(domain string) bool {
	parts := strings.Split(domain, ".")
	if len(parts) == 0 {
		return false
	}
	last := parts[len(parts)-1]
	if last == "" {
		if len(parts) == 1 {
			return false
		}
		last = parts[len(parts)-2]
	}
	if last != "" && isASCIIDigits(last) {
		return true
	}
	_, ok := parseIPv4Number(last)
	return ok
}

func isASCIIDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func parseIPv4Number(part string) (uint64, bool) {
	if part == "" {
		return 0, false
	}
	radix := 10
	rest := part
	switch {
	case len(part) >= 2 && part[0] == '0' && (part[1] == 'x' || part[1] == 'X'):
		radix = 16
		rest = part[2:]
	case len(part) >= 2 && part[0] == '0':
		radix = 8
		rest = part[1:]
	}
	if rest == "" {
		return 0, true
	}
	v, err := strconv.ParseUint(rest, radix, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseIPv4(domain string) (uint32, error) {
	parts := strings.Split(domain, ".")
	if len(parts) > 0 && parts[len(parts)-1] == "" && len(parts) > 1 {
		parts = parts[:len(parts)-1]
	}
	if len(parts) > 4 {
		return 0, ErrInvalidIPv4Address
	}
	numbers := make([]uint64, 0, len(parts))
	for _, part := range parts {
		n, ok := parseIPv4Number(part)
		if !ok {
			return 0, ErrInvalidIPv4Address
		}
		numbers = append(numbers, n)
	}
	for _, n := range numbers[:len(numbers)-1] {
		if n > 255 {
			return 0, ErrInvalidIPv4Address
		}
	}
	last := numbers[len(numbers)-1]
	maxLast := uint64(1)
	for i := 0; i < 5-len(numbers); i++ {
		maxLast *= 256
	}
	if last >= maxLast {
		return 0, ErrInvalidIPv4Address
	}
	var ipv4 uint64 = last
	for i, n := range numbers[:len(numbers)-1] {
		shift := uint(3-i) * 8
		ipv4 += n << shift
	}
	return uint32(ipv4), nil
}

func formatIPv4(addr uint32) string {
	return fmt.Sprintf("%d.%d.%d.%d",
		(addr>>24)&0xFF, (addr>>16)&0xFF, (addr>>8)&0xFF, addr&0xFF)
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexValue(c rune) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return int(c-'A') + 10
	}
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }

// parseIPv6 implements https://url.spec.whatwg.org/#concept-ipv6-parser
// over the substring between the brackets.
func parseIPv6(input string) ([8]uint16, error) {
	var addr [8]uint16
	chars := []rune(input)
	n := len(chars)
	pos := 0
	at := func(i int) (rune, bool) {
		if i < n {
			return chars[i], true
		}
		return 0, false
	}

	pieceIndex := 0
	compress := -1

	if c, ok := at(pos); ok && c == ':' {
		if c2, ok2 := at(pos + 1); !ok2 || c2 != ':' {
			return addr, ErrInvalidIPv6Address
		}
		pos += 2
		pieceIndex++
		compress = pieceIndex
	}

	for {
		c, ok := at(pos)
		if !ok {
			break
		}
		if pieceIndex == 8 {
			return addr, ErrInvalidIPv6Address
		}
		if c == ':' {
			if compress != -1 {
				return addr, ErrInvalidIPv6Address
			}
			pos++
			pieceIndex++
			compress = pieceIndex
			continue
		}
		value := 0
		length := 0
		for length < 4 {
			c, ok := at(pos)
			if !ok || !isHexDigit(c) {
				break
			}
			value = value*16 + hexValue(c)
			pos++
			length++
		}
		if c, ok := at(pos); ok && c == '.' {
			if length == 0 {
				return addr, ErrInvalidIPv6Address
			}
			pos -= length
			if pieceIndex > 6 {
				return addr, ErrInvalidIPv6Address
			}
			numbersSeen := 0
			for {
				c, ok := at(pos)
				if !ok {
					break
				}
				if numbersSeen > 0 {
					if c == '.' && numbersSeen < 4 {
						pos++
					} else {
						return addr, ErrInvalidIPv6Address
					}
				}
				c, ok = at(pos)
				if !ok || !isDigit(c) {
					return addr, ErrInvalidIPv6Address
				}
				ipv4Piece := -1
				for {
					c, ok := at(pos)
					if !ok || !isDigit(c) {
						break
					}
					digit := int(c - '0')
					switch {
					case ipv4Piece == -1:
						ipv4Piece = digit
					case ipv4Piece == 0:
						return addr, ErrInvalidIPv6Address
					default:
						ipv4Piece = ipv4Piece*10 + digit
					}
					if ipv4Piece > 255 {
						return addr, ErrInvalidIPv6Address
					}
					pos++
				}
				addr[pieceIndex] = addr[pieceIndex]*0x100 + uint16(ipv4Piece)
				numbersSeen++
				if numbersSeen == 2 || numbersSeen == 4 {
					pieceIndex++
				}
			}
			if numbersSeen != 4 {
				return addr, ErrInvalidIPv6Address
			}
			break
		} else if ok && c == ':' {
			pos++
			if _, ok := at(pos); !ok {
				return addr, ErrInvalidIPv6Address
			}
		} else if ok {
			return addr, ErrInvalidIPv6Address
		}
		addr[pieceIndex] = uint16(value)
		pieceIndex++
	}

	if compress != -1 {
		swaps := pieceIndex - compress
		pieceIndex = 7
		for pieceIndex != 0 && swaps > 0 {
			addr[pieceIndex], addr[compress+swaps-1] = addr[compress+swaps-1], addr[pieceIndex]
			pieceIndex--
			swaps--
		}
	} else if pieceIndex != 8 {
		return addr, ErrInvalidIPv6Address
	}
	return addr, nil
}

// formatIPv6 implements https://url.spec.whatwg.org/#concept-ipv6-serializer
func formatIPv6(pieces [8]uint16) string {
	compressStart, compressLen := -1, 0
	curStart, curLen := -1, 0
	for i := 0; i < 8; i++ {
		if pieces[i] == 0 {
			if curStart == -1 {
				curStart = i
			}
			curLen++
		} else {
			if curLen > compressLen {
				compressStart, compressLen = curStart, curLen
			}
			curStart, curLen = -1, 0
		}
	}
	if curLen > compressLen {
		compressStart, compressLen = curStart, curLen
	}
	if compressLen < 2 {
		compressStart = -1
	}

	var b strings.Builder
	ignore0 := false
	for i := 0; i < 8; i++ {
		if ignore0 {
			if pieces[i] == 0 {
				continue
			}
			ignore0 = false
		}
		if compressStart == i {
			if i == 0 {
				b.WriteString("::")
			} else {
				b.WriteString(":")
			}
			ignore0 = true
			continue
		}
		b.WriteString(strconv.FormatUint(uint64(pieces[i]), 16))
		if i != 7 {
			b.WriteString(":")
		}
	}
	return b.String()
}
