package anki

import (
	"strings"
)

const (
	ANKI_CONNECT_VERSION = 6
)

// deckHierarchy splits "Parent::Child" into its parts.
func deckHierarchy(deckName string) []string {
	parts := strings.Split(deckName, "::")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeDeckName trims every level of a deck path.
func NormalizeDeckName(deckName string) string {
	return strings.Join(deckHierarchy(deckName), "::")
}
