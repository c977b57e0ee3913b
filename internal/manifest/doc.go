// Package manifest builds, validates, and writes the manifest.json descriptor
// that the host platform reads from every plugin. Validation combines an
// embedded JSON Schema with semantic-version checks on the version fields.
package manifest
