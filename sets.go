package whaturl

import "github.com/urlcore/whaturl/percentencode"

// Component percent-encode sets, each built by adding to CONTROLS or to a set
// declared before it — the same compositional style the codec package
// documents.
//
// https://url.spec.whatwg.org/#fragment-percent-encode-set
var FRAGMENT = percentencode.CONTROLS.Add(' ').Add('"').Add('<').Add('>').Add('`')

// https://url.spec.whatwg.org/#path-percent-encode-set
var PATH = FRAGMENT.Add('#').Add('?').Add('{').Add('}')

// https://url.spec.whatwg.org/#userinfo-percent-encode-set
var USERINFO = PATH.Add('/').Add(':').Add(';').Add('=').Add('@').Add('[').Add('\\').Add(']').Add('^').Add('|')

var PATH_SEGMENT = PATH.Add('/').Add('%')

// The backslash is a path separator in special URLs, so it must be escaped
// in a path segment that is itself being inserted into one.
var SPECIAL_PATH_SEGMENT = PATH_SEGMENT.Add('\\')

// https://url.spec.whatwg.org/#query-state
var QUERY = percentencode.CONTROLS.Add(' ').Add('"').Add('#').Add('<').Add('>')

var SPECIAL_QUERY = QUERY.Add('\'')
