// Package whaturl implements the WHATWG URL Standard's basic URL parser:
// parsing a URL string (optionally relative to a base URL) into its
// normalized serialization and component offsets, exactly as a browser or
// any other URL-consuming user agent is required to.
//
// Percent-encoding and -decoding live in the percentencode subpackage, host
// parsing (domains, IDNA, IPv4, IPv6, opaque hosts) in host, and the
// optional non-UTF-8 query encoding override in queryencoding.
package whaturl
