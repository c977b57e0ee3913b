// Package scaffold runs the create pipeline: it downloads a starter template,
// extracts it into a hidden staging directory next to the destination,
// flattens the archive's wrapper folder, writes the plugin manifest and then
// renames the staging directory into place. A failed run leaves nothing
// behind at the destination.
package scaffold
