// Package archive unpacks template zip archives onto the local filesystem and
// normalizes the resulting layout. Entry names are treated as untrusted:
// every name is resolved against the destination root before anything is
// written, and entries that would land outside it are rejected.
package archive
