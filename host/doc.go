// Package host implements host parsing as an opaque service the whaturl
// parser consumes: domain parsing and IDNA normalization, opaque-host
// validation for non-special schemes, and the IPv4/IPv6 literal parsers. It
// is a supporting package, not part of the parser core: the core only
// depends on the Host value and its classification, never on how a domain,
// IPv4, or IPv6 literal is validated.
package host
