// Package manparse converts manual-page source into a canonical,
// strongly-typed document model: sections, flags, examples, cross
// references, keywords and a complexity tier, plus a content hash used for
// change detection.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency or the format they handle (e.g., sqlite/,
// troff/, toml/).
package manparse

// ParseVersion is bumped whenever extraction heuristics change in a way that
// could alter output for previously parsed input. Caches treat a different
// version as stale.
const ParseVersion = "2.1.0"
