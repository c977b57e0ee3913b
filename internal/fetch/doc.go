// Package fetch downloads template archives over HTTP(S). A fetch is a single
// synchronous GET that buffers the complete response body in memory; it never
// touches the disk and never retries.
package fetch
