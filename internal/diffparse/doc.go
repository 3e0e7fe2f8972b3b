// Package diffparse builds the normalized diff model: unified-diff text (or
// an inline code snippet) is parsed into immutable hunks of added and
// removed lines, and a deterministic fingerprint is derived from the
// normalized form for cache keying.
package diffparse
