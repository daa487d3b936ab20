package whaturl

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/urlcore/whaturl/host"
	"github.com/urlcore/whaturl/percentencode"
	"github.com/urlcore/whaturl/queryencoding"
)

// Context distinguishes the three entry points into the basic URL parser:
// parsing a whole URL, a setter rewriting one component of an existing URL,
// and a setter rewriting a single path segment.
type Context int

const (
	ContextURLParser Context = iota
	ContextSetter
	ContextPathSegmentSetter
)

// Parser holds the mutable state threaded through a single basic-URL-parser
// run: the serialization under construction, the base URL (if any) relative
// URLs resolve against, and the caller's hooks.
type Parser struct {
	serialization         buffer
	baseURL               *URL
	queryEncodingOverride queryencoding.Override
	observer              Observer
	context               Context
}

// NewParser builds a Parser for parsing a complete URL, optionally relative
// to base.
func NewParser(base *URL, override queryencoding.Override, obs Observer) *Parser {
	return &Parser{baseURL: base, queryEncodingOverride: override, observer: obs, context: ContextURLParser}
}

// ForSetter builds a Parser seeded with an existing serialization, for a
// setter that rewrites one component in place.
func ForSetter(serialization string) *Parser {
	p := &Parser{context: ContextSetter}
	p.serialization.PushString(serialization)
	return p
}

// WithContext overrides the parse context, for setters that re-enter the
// parser on a single path segment rather than a whole component.
func (p *Parser) WithContext(ctx Context) *Parser {
	p.context = ctx
	return p
}

// ParseURL runs the basic URL parser over rawInput, the parser's entry point.
func (p *Parser) ParseURL(rawInput string) (*URL, error) {
	input := NewInputTrimC0ControlAndSpace(rawInput, p.observer)
	if remaining, ok := p.parseScheme(input); ok {
		return p.parseWithScheme(remaining)
	}
	if p.baseURL == nil {
		return nil, RelativeURLWithoutBase
	}
	base := p.baseURL
	if input.StartsWith(Char('#')) {
		return p.fragmentOnly(base, input)
	}
	if base.CannotBeABase {
		return nil, RelativeURLWithCannotBeABaseBase
	}
	if base.SchemeType().IsFile() {
		return p.parseFile(input, base.SchemeType(), base)
	}
	return p.parseRelative(input, base.SchemeType(), base)
}

// parseScheme consumes a leading "scheme:" if one is present, lower-casing
// it into the serialization. On failure it leaves the serialization empty
// and returns the original input.
func (p *Parser) parseScheme(input Input) (Input, bool) {
	if !input.StartsWith(Func(isAsciiAlpha)) {
		return input, false
	}
	cur := input
	for {
		r, rest, ok := cur.Next()
		if !ok {
			if p.context == ContextSetter {
				return cur, true
			}
			p.serialization.Truncate(0)
			return input, false
		}
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '+' || r == '-' || r == '.':
			p.serialization.PushRune(r)
		case r >= 'A' && r <= 'Z':
			p.serialization.PushRune(r - 'A' + 'a')
		case r == ':':
			return rest, true
		default:
			p.serialization.Truncate(0)
			return input, false
		}
		cur = rest
	}
}

func (p *Parser) parseWithScheme(input Input) (*URL, error) {
	schemeEnd, err := toU32(p.serialization.Len())
	if err != nil {
		return nil, err
	}
	schemeType := SchemeTypeFromString(p.serialization.String())
	p.serialization.PushByte(':')
	switch schemeType {
	case File:
		p.observer.reportIf(ExpectedFileDoubleSlash, func() bool { return !input.StartsWith(Str("//")) })
		var baseFileURL *URL
		if p.baseURL != nil && p.baseURL.Scheme() == "file" {
			baseFileURL = p.baseURL
		}
		p.serialization.Truncate(0)
		return p.parseFile(input, schemeType, baseFileURL)
	case SpecialNotFile:
		scheme := p.serialization.String()[:schemeEnd]
		slashesCount, remaining := input.CountMatching(func(r rune) bool { return r == '/' || r == '\\' })
		if p.baseURL != nil && slashesCount < 2 && p.baseURL.Scheme() == scheme {
			p.serialization.Truncate(0)
			return p.parseRelative(input, schemeType, p.baseURL)
		}
		p.observer.reportIf(ExpectedDoubleSlash, func() bool {
			return input.TakeWhile(func(r rune) bool { return r == '/' || r == '\\' }) != "//"
		})
		return p.afterDoubleSlash(remaining, schemeType, schemeEnd)
	default:
		return p.parseNonSpecial(input, schemeType, schemeEnd)
	}
}

func (p *Parser) parseNonSpecial(input Input, schemeType SchemeType, schemeEnd uint32) (*URL, error) {
	if rest, ok := input.SplitPrefix(Str("//")); ok {
		return p.afterDoubleSlash(rest, schemeType, schemeEnd)
	}
	pathStart, err := toU32(p.serialization.Len())
	if err != nil {
		return nil, err
	}
	var remaining Input
	cannotBeABase := false
	if rest, ok := input.SplitPrefix(Char('/')); ok {
		p.serialization.PushByte('/')
		hasHost := false
		remaining = p.parsePath(schemeType, &hasHost, int(pathStart), rest)
	} else {
		cannotBeABase = true
		remaining = p.parseCannotBeABasePath(input)
	}
	return p.withQueryAndFragment(schemeType, schemeEnd, pathStart, pathStart, pathStart, pathStart,
		hostInternalNone(), nil, remaining, cannotBeABase)
}

func (p *Parser) afterDoubleSlash(input Input, schemeType SchemeType, schemeEnd uint32) (*URL, error) {
	p.serialization.PushByte('/')
	p.serialization.PushByte('/')
	beforeAuthority := p.serialization.Len()
	usernameEnd, remaining, err := p.parseUserinfo(input, schemeType)
	if err != nil {
		return nil, err
	}
	hasAuthority := beforeAuthority != p.serialization.Len()
	hostStart, err := toU32(p.serialization.Len())
	if err != nil {
		return nil, err
	}
	hostEnd, hostInternal, port, remaining2, err := p.parseHostAndPort(remaining, schemeEnd, schemeType)
	if err != nil {
		return nil, err
	}
	if !hostInternal.Present && hasAuthority {
		return nil, EmptyHost
	}
	pathStart, err := toU32(p.serialization.Len())
	if err != nil {
		return nil, err
	}
	hasHost := true
	remaining3 := p.parsePathStart(schemeType, &hasHost, remaining2)
	return p.withQueryAndFragment(schemeType, schemeEnd, usernameEnd, hostStart, hostEnd, pathStart,
		hostInternal, port, remaining3, false)
}

// parseUserinfo consumes an optional "user:pass@" prefix, returning the
// offset of the end of the username within the serialization.
func (p *Parser) parseUserinfo(input Input, schemeType SchemeType) (uint32, Input, error) {
	count := 0
	atIndex := -1
	var afterAt Input
	cur := input
scan:
	for {
		r, rest, ok := cur.Next()
		if !ok {
			break
		}
		switch r {
		case '@':
			if atIndex >= 0 {
				p.observer.report(UnencodedAtSign)
			} else {
				p.observer.report(EmbeddedCredentials)
			}
			atIndex = count
			afterAt = rest
		case '/', '?', '#':
			break scan
		case '\\':
			if schemeType.IsSpecial() {
				break scan
			}
		}
		count++
		cur = rest
	}

	if atIndex == -1 {
		n, err := toU32(p.serialization.Len())
		return n, input, err
	}
	if atIndex == 0 {
		if afterAt.StartsWith(Func(func(r rune) bool {
			return r == '/' || r == '?' || r == '#' || (schemeType.IsSpecial() && r == '\\')
		})) {
			return 0, input, EmptyHost
		}
		n, err := toU32(p.serialization.Len())
		return n, afterAt, err
	}

	userinfoCharCount := atIndex
	var usernameEnd *uint32
	hasPassword := false
	hasUsername := false
	walker := input
	for userinfoCharCount > 0 {
		r, text, rest, ok := walker.NextUTF8()
		if !ok {
			break
		}
		walker = rest
		userinfoCharCount--
		if r == ':' && usernameEnd == nil {
			n, err := toU32(p.serialization.Len())
			if err != nil {
				return 0, input, err
			}
			usernameEnd = &n
			if userinfoCharCount > 0 {
				p.serialization.PushByte(':')
				hasPassword = true
			}
		} else {
			if !hasPassword {
				hasUsername = true
			}
			p.checkURLCodePoint(r, walker)
			p.serialization.PushEncoded(text, USERINFO)
		}
	}
	var finalUsernameEnd uint32
	if usernameEnd != nil {
		finalUsernameEnd = *usernameEnd
	} else {
		n, err := toU32(p.serialization.Len())
		if err != nil {
			return 0, input, err
		}
		finalUsernameEnd = n
	}
	if hasUsername || hasPassword {
		p.serialization.PushByte('@')
	}
	return finalUsernameEnd, afterAt, nil
}

// checkURLCodePoint reports a non-fatal violation for a code point the
// parser accepts but that isn't a proper URL code point, or for a "%" not
// followed by two hex digits. input is the cursor positioned just after c.
func (p *Parser) checkURLCodePoint(c rune, input Input) {
	if p.observer == nil {
		return
	}
	if c == '%' {
		r1, rest, ok1 := input.Next()
		if !ok1 || !isHexDigit(r1) {
			p.observer.report(PercentDecode)
			return
		}
		r2, _, ok2 := rest.Next()
		if !ok2 || !isHexDigit(r2) {
			p.observer.report(PercentDecode)
		}
		return
	}
	if !isURLCodePoint(c) {
		p.observer.report(NonURLCodePoint)
	}
}

// parseHostAndPort parses a "host[:port]" authority, appending the host's
// canonical text (and an explicit port, if any and non-default) to the
// serialization.
func (p *Parser) parseHostAndPort(input Input, schemeEnd uint32, schemeType SchemeType) (uint32, HostInternal, *uint16, Input, error) {
	h, remaining, err := p.parseHostGeneric(input, schemeType)
	if err != nil {
		return 0, HostInternal{}, nil, input, err
	}
	p.serialization.PushString(h.String())
	hostEnd, err := toU32(p.serialization.Len())
	if err != nil {
		return 0, HostInternal{}, nil, input, err
	}
	if h.IsEmptyDomain() {
		if remaining.StartsWith(Char(':')) {
			return 0, HostInternal{}, nil, input, EmptyHost
		}
		if schemeType.IsSpecial() {
			return 0, HostInternal{}, nil, input, EmptyHost
		}
	}
	var port *uint16
	if rest, ok := remaining.SplitPrefix(Char(':')); ok {
		scheme := p.serialization.String()[:schemeEnd]
		parsedPort, rem2, err := p.parsePort(rest, func() (uint16, bool) { return DefaultPort(scheme) })
		if err != nil {
			return 0, HostInternal{}, nil, input, err
		}
		if parsedPort != nil {
			p.serialization.PushByte(':')
			p.serialization.PushString(strconv.FormatUint(uint64(*parsedPort), 10))
		}
		port = parsedPort
		remaining = rem2
	}
	// An empty (but legal, for non-special schemes) host is recorded as the
	// absent host, so the "userinfo with no host" check in the caller fires.
	hi := hostInternalSome(h)
	if h.IsEmptyDomain() {
		hi = hostInternalNone()
	}
	return hostEnd, hi, port, remaining, nil
}

// parseHostGeneric scans the host portion of a non-file authority (up to the
// next ":", "/", "?", "#", or, for special schemes, "\\"), stripping any
// embedded ASCII tab/newline, then classifies it via the host package.
func (p *Parser) parseHostGeneric(input Input, schemeType SchemeType) (host.Host, Input, error) {
	s := input.Raw()
	insideBrackets := false
	hasIgnored := false
	nonIgnoredChars := 0
	bytes := 0
scan:
	for _, c := range s {
		switch {
		case c == ':' && !insideBrackets:
			break scan
		case c == '\\' && schemeType.IsSpecial():
			break scan
		case c == '/' || c == '?' || c == '#':
			break scan
		case isAsciiTabOrNewline(c):
			hasIgnored = true
		case c == '[':
			insideBrackets = true
			nonIgnoredChars++
		case c == ']':
			insideBrackets = false
			nonIgnoredChars++
		default:
			nonIgnoredChars++
		}
		bytes += utf8.RuneLen(c)
	}

	var hostStr string
	cur := input
	if hasIgnored {
		var b strings.Builder
		for i := 0; i < nonIgnoredChars; i++ {
			r, rest, ok := cur.Next()
			if !ok {
				break
			}
			b.WriteRune(r)
			cur = rest
		}
		hostStr = b.String()
	} else {
		hostStr = s[:bytes]
		for i := 0; i < nonIgnoredChars; i++ {
			_, rest, ok := cur.Next()
			if !ok {
				break
			}
			cur = rest
		}
	}

	if schemeType == SpecialNotFile && hostStr == "" {
		return host.Host{}, input, EmptyHost
	}
	var h host.Host
	var err error
	if !schemeType.IsSpecial() {
		h, err = host.ParseOpaqueHost(hostStr)
	} else {
		h, err = host.ParseHost(hostStr, true)
	}
	if err != nil {
		return host.Host{}, input, hostErrorToParseError(err)
	}
	return h, cur, nil
}

// fileHost scans the host portion of a file URL's authority, up to the next
// "/", "\\", "?", or "#". A result that looks like a Windows drive letter is
// reported back to the caller as "not a host" rather than parsed as one.
func fileHost(input Input) (isHost bool, hostStr string, remaining Input, err error) {
	s := input.Raw()
	hasIgnored := false
	nonIgnored := 0
	bytes := 0
scan:
	for _, c := range s {
		switch c {
		case '/', '\\', '?', '#':
			break scan
		default:
			if isAsciiTabOrNewline(c) {
				hasIgnored = true
			} else {
				nonIgnored++
			}
		}
		bytes += utf8.RuneLen(c)
	}

	cur := input
	if hasIgnored {
		var b strings.Builder
		for i := 0; i < nonIgnored; i++ {
			r, rest, ok := cur.Next()
			if !ok {
				break
			}
			b.WriteRune(r)
			cur = rest
		}
		hostStr = b.String()
	} else {
		hostStr = s[:bytes]
		for i := 0; i < nonIgnored; i++ {
			_, rest, ok := cur.Next()
			if !ok {
				break
			}
			cur = rest
		}
	}
	if isWindowsDriveLetter(hostStr) {
		return false, "", input, nil
	}
	return true, hostStr, cur, nil
}

// parseFileHost parses a file URL's host, writing its canonical text to the
// serialization. "localhost" is folded to the absent host, matching the
// file-URL host-parsing quirk.
func (p *Parser) parseFileHost(input Input) (isHost bool, hostInternal HostInternal, remaining Input, err error) {
	isHost, hostStr, remaining, err := fileHost(input)
	if err != nil || !isHost {
		return isHost, hostInternalNone(), remaining, err
	}
	if hostStr == "" {
		return true, hostInternalNone(), remaining, nil
	}
	h, err := host.ParseFileHost(hostStr)
	if err != nil {
		return false, HostInternal{}, input, hostErrorToParseError(err)
	}
	if h.Kind == host.KindDomain && h.Domain == "localhost" {
		return true, hostInternalNone(), remaining, nil
	}
	p.serialization.PushString(h.String())
	return true, hostInternalSome(h), remaining, nil
}

func (p *Parser) parsePort(input Input, defaultPort func() (uint16, bool)) (*uint16, Input, error) {
	var port uint32
	hasDigit := false
	cur := input
	for {
		r, ok, rest := cur.SplitFirst()
		if !ok {
			break
		}
		if r >= '0' && r <= '9' {
			port = port*10 + uint32(r-'0')
			if port > 0xFFFF {
				return nil, input, InvalidPort
			}
			hasDigit = true
		} else if p.context == ContextURLParser && !(r == '/' || r == '\\' || r == '?' || r == '#') {
			return nil, input, InvalidPort
		} else {
			break
		}
		cur = rest
	}
	if !hasDigit {
		if p.context == ContextSetter && !cur.IsEmpty() {
			return nil, input, InvalidPort
		}
		return nil, cur, nil
	}
	p16 := uint16(port)
	if def, ok := defaultPort(); ok && def == p16 {
		return nil, cur, nil
	}
	return &p16, cur, nil
}

func (p *Parser) parsePathStart(schemeType SchemeType, hasHost *bool, input Input) Input {
	pathStart := p.serialization.Len()
	if schemeType.IsSpecial() {
		c, ok, remaining := input.SplitFirst()
		if ok && c == '\\' {
			p.observer.report(Backslash)
		}
		if !p.serialization.EndsWith("/") {
			p.serialization.PushByte('/')
			if ok && (c == '/' || c == '\\') {
				return p.parsePath(schemeType, hasHost, pathStart, remaining)
			}
		}
		return p.parsePath(schemeType, hasHost, pathStart, input)
	}
	if c, ok, _ := input.SplitFirst(); ok && (c == '?' || c == '#') {
		return input
	}
	if c, ok, _ := input.SplitFirst(); ok && c != '/' {
		p.serialization.PushByte('/')
	}
	return p.parsePath(schemeType, hasHost, pathStart, input)
}

// parsePath consumes path segments up to the next "?" or "#" (or, outside
// the top-level URL parser, end of input), resolving "." and ".." segments
// and the Windows drive-letter quirk along the way.
func (p *Parser) parsePath(schemeType SchemeType, hasHost *bool, pathStart int, input Input) Input {
	pushPending := func(text string) {
		if text == "" {
			return
		}
		var set percentencode.AsciiSet
		switch {
		case p.context == ContextPathSegmentSetter && schemeType.IsSpecial():
			set = SPECIAL_PATH_SEGMENT
		case p.context == ContextPathSegmentSetter:
			set = PATH_SEGMENT
		default:
			set = PATH
		}
		p.serialization.PushEncoded(text, set)
	}

outer:
	for {
		segmentStart := p.serialization.Len()
		endsWithSlash := false
		s := input.Raw()
		start := 0
		i := 0
	inner:
		for {
			if i >= len(s) {
				pushPending(s[start:i])
				input = Input{}
				break inner
			}
			r, size := utf8.DecodeRuneInString(s[i:])
			switch {
			case isAsciiTabOrNewline(r):
				// Tab/LF/CR never reach the serialization, even mid-segment:
				// flush the text seen so far and resume scanning past it
				// without it, the same explicit exclude-and-flush the manual
				// scans in parseQuery and parseFragment use.
				pushPending(s[start:i])
				i += size
				start = i
			case r == '/' && p.context != ContextPathSegmentSetter:
				pushPending(s[start:i])
				p.serialization.PushByte('/')
				endsWithSlash = true
				input = Input{s: s[i+size:]}
				break inner
			case r == '\\' && p.context != ContextPathSegmentSetter && schemeType.IsSpecial():
				pushPending(s[start:i])
				p.observer.report(Backslash)
				p.serialization.PushByte('/')
				endsWithSlash = true
				input = Input{s: s[i+size:]}
				break inner
			case (r == '?' || r == '#') && p.context == ContextURLParser:
				pushPending(s[start:i])
				input = Input{s: s[i:]}
				break inner
			default:
				p.checkURLCodePoint(r, Input{s: s[i+size:]})
				if schemeType.IsFile() && p.serialization.Len() > pathStart &&
					isNormalizedWindowsDriveLetter(p.serialization.String()[pathStart+1:]) {
					pushPending(s[start:i])
					start = i
					p.serialization.PushByte('/')
					segmentStart++
				}
				i += size
			}
		}

		var segmentBeforeSlash string
		if endsWithSlash {
			segmentBeforeSlash = p.serialization.String()[segmentStart : p.serialization.Len()-1]
		} else {
			segmentBeforeSlash = p.serialization.String()[segmentStart:p.serialization.Len()]
		}
		switch segmentBeforeSlash {
		case "..", ".%2e", ".%2E", "%2e.", "%2E.",
			"%2e%2e", "%2e%2E", "%2E%2e", "%2E%2E":
			p.serialization.Truncate(segmentStart)
			if p.serialization.EndsWith("/") && lastSlashCanBeRemoved(p.serialization.String(), pathStart) {
				p.serialization.Pop()
			}
			p.shortenPath(schemeType, pathStart)
			if endsWithSlash && !p.serialization.EndsWith("/") {
				p.serialization.PushByte('/')
			}
		case ".", "%2e", "%2E":
			p.serialization.Truncate(segmentStart)
			if !p.serialization.EndsWith("/") {
				p.serialization.PushByte('/')
			}
		default:
			if schemeType.IsFile() && segmentStart == pathStart+1 && isWindowsDriveLetter(segmentBeforeSlash) {
				first := segmentBeforeSlash[0]
				p.serialization.Truncate(segmentStart)
				p.serialization.PushByte(first)
				p.serialization.PushByte(':')
				if endsWithSlash {
					p.serialization.PushByte('/')
				}
				if *hasHost {
					p.observer.report(FileWithHostAndWindowsDrive)
					*hasHost = false
				}
			}
		}
		if !endsWithSlash {
			break outer
		}
	}

	if schemeType.IsFile() {
		path := p.serialization.SplitOff(pathStart)
		p.serialization.PushByte('/')
		p.serialization.PushString(strings.TrimLeft(path, "/"))
	}
	return input
}

// lastSlashCanBeRemoved reports whether the "/" preceding a just-truncated
// ".." segment can itself be removed: it can't if doing so would delete the
// root slash of a Windows drive-letter path.
func lastSlashCanBeRemoved(serialization string, pathStart int) bool {
	urlBeforeSegment := serialization[:len(serialization)-1]
	idx := strings.LastIndexByte(urlBeforeSegment, '/')
	if idx < pathStart {
		return false
	}
	return !pathStartsWithWindowsDriveLetter(serialization[idx:])
}

func (p *Parser) shortenPath(schemeType SchemeType, pathStart int) {
	if p.serialization.Len() == pathStart {
		return
	}
	if schemeType.IsFile() && isNormalizedWindowsDriveLetter(p.serialization.String()[pathStart:]) {
		return
	}
	p.popPath(schemeType, pathStart)
}

func (p *Parser) popPath(schemeType SchemeType, pathStart int) {
	if p.serialization.Len() <= pathStart {
		return
	}
	s := p.serialization.String()
	idx := strings.LastIndexByte(s[pathStart:], '/')
	segmentStart := pathStart
	if idx >= 0 {
		segmentStart = pathStart + idx + 1
	}
	if schemeType.IsFile() && isNormalizedWindowsDriveLetter(s[segmentStart:]) {
		return
	}
	p.serialization.Truncate(segmentStart)
}

// parseCannotBeABasePath consumes the opaque path of a cannot-be-a-base URL
// verbatim (percent-encoded under the CONTROLS set) up to "?" or "#".
func (p *Parser) parseCannotBeABasePath(input Input) Input {
	cur := input
	for {
		inputBeforeC := cur
		r, text, rest, ok := cur.NextUTF8()
		if !ok {
			return cur
		}
		if (r == '?' || r == '#') && p.context == ContextURLParser {
			return inputBeforeC
		}
		p.checkURLCodePoint(r, rest)
		p.serialization.PushEncoded(text, percentencode.CONTROLS)
		cur = rest
	}
}

// withQueryAndFragment applies the anarchist-URL "/." fixup to a
// non-special, non-file URL whose path could otherwise be confused with an
// authority on reserialization, then parses the remaining query/fragment and
// assembles the final URL.
func (p *Parser) withQueryAndFragment(schemeType SchemeType, schemeEnd, usernameEnd, hostStart, hostEnd uint32,
	pathStart uint32, hostInternal HostInternal, port *uint16, remaining Input, cannotBeABase bool) (*URL, error) {
	schemeEndI := int(schemeEnd)
	pathStartI := int(pathStart)
	if pathStartI == schemeEndI+1 {
		if strings.HasPrefix(p.serialization.String()[pathStartI:], "//") {
			p.serialization.InsertString(pathStartI, "/.")
			pathStart += 2
		}
	} else if pathStartI == schemeEndI+3 && p.serialization.String()[schemeEndI:pathStartI] == ":/." {
		if pathStartI+1 >= p.serialization.Len() || p.serialization.Bytes()[pathStartI+1] != '/' {
			p.serialization.ReplaceRange(schemeEndI, pathStartI, ":")
			pathStart -= 2
		}
	}

	queryStart, fragmentStart, err := p.parseQueryAndFragment(schemeType, schemeEnd, remaining)
	if err != nil {
		return nil, err
	}
	return &URL{
		Serialization: p.serialization.String(),
		SchemeEnd:     schemeEnd,
		UsernameEnd:   usernameEnd,
		HostStart:     hostStart,
		HostEnd:       hostEnd,
		Host:          hostInternal,
		Port:          port,
		PathStart:     pathStart,
		QueryStart:    queryStart,
		FragmentStart: fragmentStart,
		CannotBeABase: cannotBeABase,
	}, nil
}

func (p *Parser) parseQueryAndFragment(schemeType SchemeType, schemeEnd uint32, input Input) (*uint32, *uint32, error) {
	r, rest, ok := input.Next()
	if !ok {
		return nil, nil, nil
	}
	var queryStart *uint32
	remainingForFragment := rest
	switch r {
	case '#':
		// remainingForFragment already sits right after the '#'.
	case '?':
		n, err := toU32(p.serialization.Len())
		if err != nil {
			return nil, nil, err
		}
		queryStart = &n
		p.serialization.PushByte('?')
		afterQuery, found := p.parseQuery(schemeType, schemeEnd, rest)
		if !found {
			return queryStart, nil, nil
		}
		remainingForFragment = afterQuery
	default:
		return nil, nil, nil
	}

	fragmentStart, err := toU32(p.serialization.Len())
	if err != nil {
		return queryStart, nil, err
	}
	p.serialization.PushByte('#')
	p.parseFragment(remainingForFragment)
	return queryStart, &fragmentStart, nil
}

// parseQuery consumes a query string up to (and past) a terminating "#" when
// parsing a full URL, percent-encoding each chunk and applying a non-UTF-8
// document encoding override for the schemes that honor one. It reports
// whether a "#" was found, and if so the Input positioned just after it.
func (p *Parser) parseQuery(schemeType SchemeType, schemeEnd uint32, input Input) (Input, bool) {
	set := QUERY
	if schemeType.IsSpecial() {
		set = SPECIAL_QUERY
	}
	var override queryencoding.Override
	if !p.queryEncodingOverride.IsUTF8() {
		switch p.serialization.String()[:schemeEnd] {
		case "http", "https", "file", "ftp":
			override = p.queryEncodingOverride
		}
	}

	s := input.Raw()
	for {
		cut := -1
		finished := false
		i := 0
		for i < len(s) {
			r, size := utf8.DecodeRuneInString(s[i:])
			if isAsciiTabOrNewline(r) {
				cut = i
				break
			}
			if r == '#' && p.context == ContextURLParser {
				cut = i
				finished = true
				break
			}
			p.checkURLCodePoint(r, Input{s: s[i+size:]})
			i += size
		}

		var text, rest string
		if cut == -1 {
			text, rest = s, ""
		} else {
			_, size := utf8.DecodeRuneInString(s[cut:])
			text, rest = s[:cut], s[cut+size:]
		}
		if text != "" {
			if override.IsUTF8() {
				p.serialization.PushEncoded(text, set)
			} else if encoded, encErr := override.Encode(text); encErr == nil {
				p.serialization.PushEncodedBytes(encoded, set)
			} else {
				p.serialization.PushEncoded(text, set)
			}
		}
		if finished {
			return Input{s: rest}, true
		}
		if cut == -1 {
			return Input{}, false
		}
		s = rest
	}
}

// parseFragment consumes the remainder of input as the fragment, reporting
// embedded NULs and percent-encoding the result.
func (p *Parser) parseFragment(input Input) {
	s := input.Raw()
	for len(s) > 0 {
		cut := -1
		i := 0
		for i < len(s) {
			r, size := utf8.DecodeRuneInString(s[i:])
			if isAsciiTabOrNewline(r) {
				cut = i
				break
			}
			if r == 0 {
				p.observer.report(NullInFragment)
			} else {
				p.checkURLCodePoint(r, Input{s: s[i+size:]})
			}
			i += size
		}
		var text string
		if cut == -1 {
			text = s
		} else {
			text = s[:cut]
		}
		p.serialization.PushEncoded(text, FRAGMENT)
		if cut == -1 {
			break
		}
		_, size := utf8.DecodeRuneInString(s[cut:])
		s = s[cut+size:]
	}
}

func (p *Parser) fragmentOnly(base *URL, input Input) (*URL, error) {
	var beforeFragment string
	if base.FragmentStart != nil {
		beforeFragment = base.slice(0, int(*base.FragmentStart))
	} else {
		beforeFragment = base.Serialization
	}
	p.serialization.PushString(beforeFragment)
	p.serialization.PushByte('#')
	_, rest, _ := input.Next()
	p.parseFragment(rest)
	fragStart, err := toU32(len(beforeFragment))
	if err != nil {
		return nil, err
	}
	result := *base
	result.Serialization = p.serialization.String()
	result.FragmentStart = &fragStart
	return &result, nil
}

func beforeQueryOf(base *URL) string {
	switch {
	case base.QueryStart == nil && base.FragmentStart == nil:
		return base.Serialization
	case base.QueryStart != nil:
		return base.slice(0, int(*base.QueryStart))
	default:
		return base.slice(0, int(*base.FragmentStart))
	}
}

func (p *Parser) parseRelative(input Input, schemeType SchemeType, base *URL) (*URL, error) {
	firstChar, hasFirst, inputAfterFirst := input.SplitFirst()
	switch {
	case !hasFirst:
		var beforeFragment string
		if base.FragmentStart != nil {
			beforeFragment = base.slice(0, int(*base.FragmentStart))
		} else {
			beforeFragment = base.Serialization
		}
		p.serialization.PushString(beforeFragment)
		result := *base
		result.Serialization = p.serialization.String()
		result.FragmentStart = nil
		return &result, nil

	case firstChar == '?':
		p.serialization.PushString(beforeQueryOf(base))
		queryStart, fragmentStart, err := p.parseQueryAndFragment(schemeType, base.SchemeEnd, input)
		if err != nil {
			return nil, err
		}
		result := *base
		result.Serialization = p.serialization.String()
		result.QueryStart = queryStart
		result.FragmentStart = fragmentStart
		return &result, nil

	case firstChar == '#':
		return p.fragmentOnly(base, input)

	case firstChar == '/' || firstChar == '\\':
		slashesCount, remaining := input.CountMatching(func(r rune) bool { return r == '/' || r == '\\' })
		if slashesCount >= 2 {
			p.observer.reportIf(ExpectedDoubleSlash, func() bool {
				return input.TakeWhile(func(r rune) bool { return r == '/' || r == '\\' }) != "//"
			})
			schemeEnd := base.SchemeEnd
			p.serialization.PushString(base.slice(0, int(schemeEnd)+1))
			if afterPrefix, ok := input.SplitPrefix(Str("//")); ok {
				return p.afterDoubleSlash(afterPrefix, schemeType, schemeEnd)
			}
			return p.afterDoubleSlash(remaining, schemeType, schemeEnd)
		}
		pathStart := base.PathStart
		p.serialization.PushString(base.slice(0, int(pathStart)))
		p.serialization.PushByte('/')
		hasHost := true
		remaining2 := p.parsePath(schemeType, &hasHost, int(pathStart), inputAfterFirst)
		return p.withQueryAndFragment(schemeType, base.SchemeEnd, base.UsernameEnd, base.HostStart, base.HostEnd,
			pathStart, base.Host, base.Port, remaining2, false)

	default:
		p.serialization.PushString(beforeQueryOf(base))
		p.popPath(schemeType, int(base.PathStart))
		if p.serialization.Len() == int(base.PathStart) && (schemeType.IsSpecial() || !input.IsEmpty()) {
			p.serialization.PushByte('/')
		}
		hasHost := true
		var remaining2 Input
		if r0, ok0, rest0 := input.SplitFirst(); ok0 && r0 == '/' {
			remaining2 = p.parsePath(schemeType, &hasHost, int(base.PathStart), rest0)
		} else {
			remaining2 = p.parsePath(schemeType, &hasHost, int(base.PathStart), input)
		}
		return p.withQueryAndFragment(schemeType, base.SchemeEnd, base.UsernameEnd, base.HostStart, base.HostEnd,
			base.PathStart, base.Host, base.Port, remaining2, false)
	}
}

// firstPathSegment returns the first "/"-delimited segment of a URL's path,
// ignoring the leading slash.
func firstPathSegment(u *URL) string {
	path := strings.TrimPrefix(u.Path(), "/")
	if idx := strings.IndexByte(path, '/'); idx >= 0 {
		return path[:idx]
	}
	return path
}

// parseFile implements the file-scheme parsing path, including the several
// quirks around inheriting a base URL's host or Windows drive letter.
func (p *Parser) parseFile(input Input, schemeType SchemeType, baseFileURL *URL) (*URL, error) {
	firstChar, hasFirst, inputAfterFirst := input.SplitFirst()

	if hasFirst && (firstChar == '/' || firstChar == '\\') {
		p.observer.reportIf(Backslash, func() bool { return firstChar == '\\' })
		nextChar, hasNext, inputAfterNext := inputAfterFirst.SplitFirst()
		if hasNext && (nextChar == '/' || nextChar == '\\') {
			p.observer.reportIf(Backslash, func() bool { return nextChar == '\\' })
			p.serialization.PushString("file://")
			schemeEnd := uint32(len("file"))
			hostStart := uint32(p.serialization.Len())
			isHost, hostInternal, remaining, err := p.parseFileHost(inputAfterNext)
			if err != nil {
				return nil, err
			}
			hostEnd, err := toU32(p.serialization.Len())
			if err != nil {
				return nil, err
			}
			hasHost := hostInternal.Present
			var remaining2 Input
			if isHost {
				remaining2 = p.parsePathStart(File, &hasHost, remaining)
			} else {
				pathStart := p.serialization.Len()
				p.serialization.PushByte('/')
				remaining2 = p.parsePath(File, &hasHost, pathStart, remaining)
			}
			if !hasHost {
				p.serialization.Drain(int(hostStart), int(hostEnd))
				hostEnd = hostStart
				hostInternal = hostInternalNone()
			}
			queryStart, fragmentStart, err := p.parseQueryAndFragment(schemeType, schemeEnd, remaining2)
			if err != nil {
				return nil, err
			}
			return &URL{
				Serialization: p.serialization.String(),
				SchemeEnd:     schemeEnd,
				UsernameEnd:   hostStart,
				HostStart:     hostStart,
				HostEnd:       hostEnd,
				Host:          hostInternal,
				PathStart:     hostEnd,
				QueryStart:    queryStart,
				FragmentStart: fragmentStart,
			}, nil
		}

		// "file:/..." — a single slash. When the base URL's first path segment
		// is a drive letter, that segment is carried over as the start of the
		// path; otherwise the base URL's host, if any, is carried over.
		p.serialization.PushString("file://")
		schemeEnd := uint32(len("file"))
		hostStartI := len("file://")
		hostEndI := hostStartI
		hostInternal := hostInternalNone()
		if !startsWithWindowsDriveLetterSegment(inputAfterFirst) && baseFileURL != nil {
			if seg := firstPathSegment(baseFileURL); isNormalizedWindowsDriveLetter(seg) {
				p.serialization.PushByte('/')
				p.serialization.PushString(seg)
			} else if hostStr, ok := baseFileURL.HostString(); ok {
				p.serialization.PushString(hostStr)
				hostEndI = p.serialization.Len()
				hostInternal = baseFileURL.Host
			}
		}
		var parsePathInput Input
		if hasFirst {
			parsePathInput = input
		} else {
			parsePathInput = inputAfterFirst
		}
		hasHost := false
		remaining := p.parsePath(File, &hasHost, hostEndI, parsePathInput)
		hostStart := uint32(hostStartI)
		hostEnd := uint32(hostEndI)
		queryStart, fragmentStart, err := p.parseQueryAndFragment(schemeType, schemeEnd, remaining)
		if err != nil {
			return nil, err
		}
		return &URL{
			Serialization: p.serialization.String(),
			SchemeEnd:     schemeEnd,
			UsernameEnd:   hostStart,
			HostStart:     hostStart,
			HostEnd:       hostEnd,
			Host:          hostInternal,
			PathStart:     hostEnd,
			QueryStart:    queryStart,
			FragmentStart: fragmentStart,
		}, nil
	}

	if baseFileURL != nil {
		base := baseFileURL
		switch {
		case !hasFirst:
			var beforeFragment string
			if base.FragmentStart != nil {
				beforeFragment = base.slice(0, int(*base.FragmentStart))
			} else {
				beforeFragment = base.Serialization
			}
			p.serialization.PushString(beforeFragment)
			result := *base
			result.Serialization = p.serialization.String()
			result.FragmentStart = nil
			return &result, nil

		case firstChar == '?':
			p.serialization.PushString(beforeQueryOf(base))
			queryStart, fragmentStart, err := p.parseQueryAndFragment(schemeType, base.SchemeEnd, input)
			if err != nil {
				return nil, err
			}
			result := *base
			result.Serialization = p.serialization.String()
			result.QueryStart = queryStart
			result.FragmentStart = fragmentStart
			return &result, nil

		case firstChar == '#':
			return p.fragmentOnly(base, input)

		default:
			if !startsWithWindowsDriveLetterSegment(input) {
				p.serialization.PushString(beforeQueryOf(base))
				p.shortenPath(File, int(base.PathStart))
				hasHost := true
				remaining := p.parsePath(File, &hasHost, int(base.PathStart), input)
				return p.withQueryAndFragment(schemeType, base.SchemeEnd, base.UsernameEnd, base.HostStart, base.HostEnd,
					base.PathStart, base.Host, base.Port, remaining, false)
			}
			p.serialization.PushString("file:///")
			schemeEnd := uint32(len("file"))
			pathStartI := len("file://")
			hasHost := false
			remaining := p.parsePath(File, &hasHost, pathStartI, input)
			queryStart, fragmentStart, err := p.parseQueryAndFragment(File, schemeEnd, remaining)
			if err != nil {
				return nil, err
			}
			pathStart := uint32(pathStartI)
			return &URL{
				Serialization: p.serialization.String(),
				SchemeEnd:     schemeEnd,
				UsernameEnd:   pathStart,
				HostStart:     pathStart,
				HostEnd:       pathStart,
				Host:          hostInternalNone(),
				PathStart:     pathStart,
				QueryStart:    queryStart,
				FragmentStart: fragmentStart,
			}, nil
		}
	}

	p.serialization.PushString("file:///")
	schemeEnd := uint32(len("file"))
	pathStartI := len("file://")
	hasHost := false
	remaining := p.parsePath(File, &hasHost, pathStartI, input)
	queryStart, fragmentStart, err := p.parseQueryAndFragment(File, schemeEnd, remaining)
	if err != nil {
		return nil, err
	}
	pathStart := uint32(pathStartI)
	return &URL{
		Serialization: p.serialization.String(),
		SchemeEnd:     schemeEnd,
		UsernameEnd:   pathStart,
		HostStart:     pathStart,
		HostEnd:       pathStart,
		Host:          hostInternalNone(),
		PathStart:     pathStart,
		QueryStart:    queryStart,
		FragmentStart: fragmentStart,
	}, nil
}
