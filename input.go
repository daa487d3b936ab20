package whaturl

import "unicode/utf8"

// Input is a cursor over a URL string, in front of which any ASCII tab or
// newline is silently skipped. Input is a value type wrapping only the
// remaining string, so copying one to checkpoint the cursor, try a pattern,
// and rewind on failure is free.
type Input struct {
	s string
}

// NewInputNoTrim wraps s with no trimming, for use on fragments already
// known to need no further stripping (e.g. a setter's raw argument).
func NewInputNoTrim(s string) Input { return Input{s: s} }

// NewInputTrimTabAndNewlines strips leading/trailing ASCII tab and newline
// characters, reporting violations for both that and any such character
// remaining in the middle of the string.
func NewInputTrimTabAndNewlines(original string, obs Observer) Input {
	trimmed := trimFunc(original, isAsciiTabOrNewline)
	if len(trimmed) < len(original) {
		obs.report(C0SpaceIgnored)
	}
	if containsFunc(trimmed, isAsciiTabOrNewline) {
		obs.report(TabOrNewlineIgnored)
	}
	return Input{s: trimmed}
}

// NewInputTrimC0ControlAndSpace strips leading/trailing C0 controls and
// spaces, the trimming the basic URL parser applies to its whole input.
func NewInputTrimC0ControlAndSpace(original string, obs Observer) Input {
	trimmed := trimFunc(original, isC0ControlOrSpace)
	if len(trimmed) < len(original) {
		obs.report(C0SpaceIgnored)
	}
	if containsFunc(trimmed, isAsciiTabOrNewline) {
		obs.report(TabOrNewlineIgnored)
	}
	return Input{s: trimmed}
}

func trimFunc(s string, f func(rune) bool) string {
	start := 0
	for start < len(s) {
		r, size := utf8.DecodeRuneInString(s[start:])
		if !f(r) {
			break
		}
		start += size
	}
	end := len(s)
	for end > start {
		r, size := utf8.DecodeLastRuneInString(s[start:end])
		if !f(r) {
			break
		}
		end -= size
	}
	return s[start:end]
}

func containsFunc(s string, f func(rune) bool) bool {
	for _, r := range s {
		if f(r) {
			return true
		}
	}
	return false
}

// Raw exposes the underlying remaining text, for call sites that want to
// scan or slice it in bulk rather than rune-by-rune.
func (in Input) Raw() string { return in.s }

// IsEmpty reports whether no more non-tab/newline characters remain.
func (in Input) IsEmpty() bool {
	_, _, ok := in.Next()
	return !ok
}

// Next returns the next code point after skipping tabs/newlines, along with
// the Input positioned after it.
func (in Input) Next() (rune, Input, bool) {
	s := in.s
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		if !isAsciiTabOrNewline(r) {
			return r, Input{s: s}, true
		}
	}
	return 0, Input{s: ""}, false
}

// NextUTF8 is like Next, but also returns the source substring the code
// point was decoded from.
func (in Input) NextUTF8() (rune, string, Input, bool) {
	s := in.s
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if !isAsciiTabOrNewline(r) {
			return r, s[:size], Input{s: s[size:]}, true
		}
		s = s[size:]
	}
	return 0, "", Input{s: ""}, false
}

// SplitFirst returns the next code point (if any) and the Input after it.
func (in Input) SplitFirst() (rune, bool, Input) {
	r, rest, ok := in.Next()
	if !ok {
		return 0, false, in
	}
	return r, true, rest
}

// CountMatching consumes a run of code points satisfying f and returns how
// many there were, along with the Input after them.
func (in Input) CountMatching(f func(rune) bool) (int, Input) {
	count := 0
	cur := in
	for {
		r, rest, ok := cur.Next()
		if !ok || !f(r) {
			return count, cur
		}
		cur = rest
		count++
	}
}

// TakeWhile collects the run of leading code points satisfying f as a string.
func (in Input) TakeWhile(f func(rune) bool) string {
	var b []byte
	cur := in
	for {
		r, rest, ok := cur.Next()
		if !ok || !f(r) {
			return string(b)
		}
		b = utf8.AppendRune(b, r)
		cur = rest
	}
}

// Pattern is something that can be matched as a prefix of an Input.
type Pattern interface {
	splitPrefix(in Input) (Input, bool)
}

type charPattern rune

func (p charPattern) splitPrefix(in Input) (Input, bool) {
	r, rest, ok := in.Next()
	if ok && r == rune(p) {
		return rest, true
	}
	return in, false
}

// Char builds a Pattern matching a single code point.
func Char(r rune) Pattern { return charPattern(r) }

type strPattern string

func (p strPattern) splitPrefix(in Input) (Input, bool) {
	cur := in
	for _, want := range string(p) {
		r, rest, ok := cur.Next()
		if !ok || r != want {
			return in, false
		}
		cur = rest
	}
	return cur, true
}

// Str builds a Pattern matching a literal string, code point by code point.
func Str(s string) Pattern { return strPattern(s) }

type funcPattern func(rune) bool

func (p funcPattern) splitPrefix(in Input) (Input, bool) {
	r, rest, ok := in.Next()
	if ok && p(r) {
		return rest, true
	}
	return in, false
}

// Func builds a Pattern matching a single code point satisfying f.
func Func(f func(rune) bool) Pattern { return funcPattern(f) }

// StartsWith reports whether p matches a prefix of in.
func (in Input) StartsWith(p Pattern) bool {
	_, ok := p.splitPrefix(in)
	return ok
}

// SplitPrefix matches p against the front of in, returning the remainder if
// it matched.
func (in Input) SplitPrefix(p Pattern) (Input, bool) {
	return p.splitPrefix(in)
}
