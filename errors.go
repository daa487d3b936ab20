package whaturl

import (
	"errors"

	"github.com/urlcore/whaturl/host"
)

// ParseError is the closed set of fatal conditions the parser can report.
// New variants may be added in the future; callers should not exhaustively
// switch over it.
type ParseError int

const (
	EmptyHost ParseError = iota
	IdnaError
	InvalidPort
	InvalidIPv4Address
	InvalidIPv6Address
	InvalidDomainCharacter
	RelativeURLWithoutBase
	RelativeURLWithCannotBeABaseBase
	SetHostOnCannotBeABaseURL
	Overflow
)

func (e ParseError) Error() string {
	switch e {
	case EmptyHost:
		return "empty host"
	case IdnaError:
		return "invalid international domain name"
	case InvalidPort:
		return "invalid port number"
	case InvalidIPv4Address:
		return "invalid IPv4 address"
	case InvalidIPv6Address:
		return "invalid IPv6 address"
	case InvalidDomainCharacter:
		return "invalid domain character"
	case RelativeURLWithoutBase:
		return "relative URL without a base"
	case RelativeURLWithCannotBeABaseBase:
		return "relative URL with a cannot-be-a-base base"
	case SetHostOnCannotBeABaseURL:
		return "a cannot-be-a-base URL doesn't have a host to set"
	case Overflow:
		return "URLs more than 4 GB are not supported"
	default:
		return "unknown parse error"
	}
}

// hostErrorToParseError maps the host package's error values onto the
// ParseError variants the caller expects.
func hostErrorToParseError(err error) ParseError {
	switch {
	case errors.Is(err, host.ErrInvalidIPv4Address):
		return InvalidIPv4Address
	case errors.Is(err, host.ErrInvalidIPv6Address):
		return InvalidIPv6Address
	case errors.Is(err, host.ErrIDNA):
		return IdnaError
	case errors.Is(err, host.ErrInvalidDomainCharacter):
		return InvalidDomainCharacter
	default:
		return InvalidDomainCharacter
	}
}

// toU32 guards a serialization length against the 4 GiB ceiling the format
// imposes by storing component offsets as uint32.
func toU32(n int) (uint32, error) {
	if n > 0xFFFFFFFF {
		return 0, Overflow
	}
	return uint32(n), nil
}
