// Package id generates prefixed identifiers for stream clients and load runs.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes used across the dashboard.
const (
	PrefixClient = "sse"
	PrefixLoad   = "load"
)

// size of the random part; matches the nanoid default.
const size = 21

// Generate creates an ID of the form prefix-nanoid (e.g. "sse-V1StGXR8_Z5jdHi6B-myT").
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New(size)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Prefix returns the prefix of an ID produced by Generate.
// ok is false when the value is not shaped like a generated ID.
func Prefix(id string) (prefix string, ok bool) {
	if len(id) < size+2 {
		return "", false
	}
	cut := len(id) - size - 1
	if id[cut] != '-' {
		return "", false
	}
	prefix = id[:cut]
	return prefix, prefix != "" && !strings.ContainsAny(prefix, " \t")
}
