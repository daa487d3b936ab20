package whaturl

import "github.com/urlcore/whaturl/queryencoding"

// Parse parses a standalone, absolute URL string.
func Parse(input string) (*URL, error) {
	return NewParser(nil, queryencoding.Override{}, nil).ParseURL(input)
}

// ParseRef parses input relative to base, which may be a cannot-be-a-base
// URL, or nil for none.
func ParseRef(input string, base *URL) (*URL, error) {
	return NewParser(base, queryencoding.Override{}, nil).ParseURL(input)
}

// ParseOptions configures a non-default parse: a non-fatal violation
// observer and/or a document encoding override applied to query strings of
// http(s)/file/ftp URLs, per https://url.spec.whatwg.org/#concept-encoding.
type ParseOptions struct {
	Base                  *URL
	Observer              Observer
	QueryEncodingOverride queryencoding.Override
}

// ParseWithOptions parses input under the given options.
func ParseWithOptions(input string, opts ParseOptions) (*URL, error) {
	return NewParser(opts.Base, opts.QueryEncodingOverride, opts.Observer).ParseURL(input)
}

// IsSpecialScheme reports whether scheme (without its trailing colon) is one
// of the special schemes: http, https, ws, wss, ftp, or file.
func IsSpecialScheme(scheme string) bool {
	return SchemeTypeFromString(scheme).IsSpecial()
}
