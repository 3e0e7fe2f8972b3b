// Package cli implements the reviewd command line interface.
package cli
