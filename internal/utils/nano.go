package utils

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// NanoidSize is the length of a donor ID.
const NanoidSize = 20

// Donor IDs travel in forms, logs and CLI flags, so punctuation is left out.
const nanoidAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func NanoID() string {
	return gonanoid.MustGenerate(nanoidAlphabet, NanoidSize)
}

// NanoIDSize generates an ID of the given length.
func NanoIDSize(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("nanoid size must be positive, got %d", size)
	}
	return gonanoid.Generate(nanoidAlphabet, size)
}

// IsNanoID reports whether id could have come from NanoID.
func IsNanoID(id string) bool {
	if len(id) != NanoidSize {
		return false
	}
	for _, r := range id {
		if !strings.ContainsRune(nanoidAlphabet, r) {
			return false
		}
	}
	return true
}
