package whaturl

import "github.com/urlcore/whaturl/host"

// HostInternal is the host slot stored on a parsed URL: either absent (no
// authority, or an authority with no host component) or a fully classified
// Host value.
type HostInternal struct {
	Present bool
	Host    host.Host
}

func hostInternalNone() HostInternal { return HostInternal{} }

func hostInternalSome(h host.Host) HostInternal {
	return HostInternal{Present: true, Host: h}
}

// URL is the parsed form of a URL string: the fully serialized, normalized
// text plus the byte offsets of each component within it.
type URL struct {
	Serialization string
	SchemeEnd     uint32
	UsernameEnd   uint32
	HostStart     uint32
	HostEnd       uint32
	Host          HostInternal
	Port          *uint16
	PathStart     uint32
	QueryStart    *uint32
	FragmentStart *uint32
	CannotBeABase bool
}

func (u *URL) byteAt(i uint32) byte { return u.Serialization[i] }

func (u *URL) slice(lo, hi int) string { return u.Serialization[lo:hi] }

// String returns the normalized serialization, same as Serialization.
func (u *URL) String() string { return u.Serialization }

// Scheme returns the URL's scheme, without the trailing colon.
func (u *URL) Scheme() string { return u.Serialization[:u.SchemeEnd] }

// SchemeType classifies the URL's scheme.
func (u *URL) SchemeType() SchemeType { return SchemeTypeFromString(u.Scheme()) }

// HasAuthority reports whether the URL has an authority component (the
// "//" form), regardless of whether a host was present within it.
func (u *URL) HasAuthority() bool {
	return u.SchemeEnd+2 < uint32(len(u.Serialization)) &&
		u.Serialization[u.SchemeEnd:u.SchemeEnd+3] == "://"
}

// Username returns the percent-encoded username, empty if none.
func (u *URL) Username() string {
	if !u.HasAuthority() {
		return ""
	}
	start := u.SchemeEnd + 3
	if start > u.UsernameEnd {
		return ""
	}
	return u.Serialization[start:u.UsernameEnd]
}

// Password returns the percent-encoded password and whether one was present.
func (u *URL) Password() (string, bool) {
	if u.UsernameEnd >= uint32(len(u.Serialization)) || u.byteAt(u.UsernameEnd) != ':' {
		return "", false
	}
	// host_start points just after "@"; the password runs up to host_start-1.
	if u.HostStart == 0 || u.byteAt(u.HostStart-1) != '@' {
		return "", false
	}
	return u.Serialization[u.UsernameEnd+1 : u.HostStart-1], true
}

// HostString returns the host's canonical text and whether a host is present.
func (u *URL) HostString() (string, bool) {
	if !u.Host.Present {
		return "", false
	}
	return u.Serialization[u.HostStart:u.HostEnd], true
}

// PortOrDefault returns the explicit port, falling back to the scheme's
// default port.
func (u *URL) PortOrDefault() (uint16, bool) {
	if u.Port != nil {
		return *u.Port, true
	}
	return DefaultPort(u.Scheme())
}

// Path returns the path component, including its leading slash for
// hierarchical URLs.
func (u *URL) Path() string {
	end := len(u.Serialization)
	if u.QueryStart != nil {
		end = int(*u.QueryStart)
	} else if u.FragmentStart != nil {
		end = int(*u.FragmentStart)
	}
	return u.Serialization[u.PathStart:end]
}

// Query returns the query component (without the leading "?") and whether
// one is present.
func (u *URL) Query() (string, bool) {
	if u.QueryStart == nil {
		return "", false
	}
	end := len(u.Serialization)
	if u.FragmentStart != nil {
		end = int(*u.FragmentStart)
	}
	return u.Serialization[*u.QueryStart+1 : end], true
}

// Fragment returns the fragment component (without the leading "#") and
// whether one is present.
func (u *URL) Fragment() (string, bool) {
	if u.FragmentStart == nil {
		return "", false
	}
	return u.Serialization[*u.FragmentStart+1:], true
}
