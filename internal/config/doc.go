// Package config loads reviewd configuration by layering defaults, an
// optional YAML file, and environment variable overrides.
package config
