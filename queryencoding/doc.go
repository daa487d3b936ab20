// Package queryencoding implements the query-string encoding override that
// a caller may supply when a non-UTF-8 document encoding applies to the
// query string of an http, https, ftp or file URL (the parser ignores it for
// every other scheme, ws and wss included). Most callers never need this package: the
// zero value of Override leaves query encoding at UTF-8.
package queryencoding
