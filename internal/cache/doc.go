// Package cache provides the in-memory review result cache: fingerprint
// keyed, LRU and TTL bounded, with single-owner computation per key so
// identical in-flight diffs never trigger duplicate LLM calls.
package cache
