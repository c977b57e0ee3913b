package archive

import "errors"

var (
	// ErrMalformedArchive marks bytes that cannot be read as a zip container:
	// corrupt headers, truncated streams, unsupported compression methods, or
	// checksum mismatches.
	ErrMalformedArchive = errors.New("malformed archive")

	// ErrUnsafeEntry marks an entry whose name would escape the destination
	// root or whose type could redirect later writes (symlinks, devices).
	ErrUnsafeEntry = errors.New("unsafe archive entry")

	// ErrIO marks a failed local filesystem operation.
	ErrIO = errors.New("filesystem error")
)
