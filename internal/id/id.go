// Package id generates short opaque identifiers for in-process handles
// such as store subscriptions.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// handleLength keeps handles short; they never leave the process.
const handleLength = 12

// Generate creates a prefixed identifier, e.g. "sub-V1StGXR8_Z5j".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New(handleLength)
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
