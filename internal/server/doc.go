// Package server exposes the review pipeline over HTTP: a manual review
// endpoint, the GitHub webhook receiver, health, and Prometheus metrics.
package server
