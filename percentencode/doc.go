// Package percentencode implements percent-encoding and percent-decoding of
// bytes, parameterized by an AsciiSet describing which ASCII bytes a given
// URL component must escape.
//
// https://url.spec.whatwg.org/#percent-encoded-bytes
package percentencode
