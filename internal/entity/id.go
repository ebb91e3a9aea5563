package entity

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ID identifies an entity. Content-defined entities use the namespaced form
// "mod:identifier" (e.g. "core:goblin_456"); entities minted at runtime use
// a UUID.
type ID string

var namespacedPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*:[A-Za-z0-9_][A-Za-z0-9_-]*$`)

// Valid reports whether the string is a well-formed entity ID in either
// accepted form.
func Valid(s string) bool {
	if namespacedPattern.MatchString(s) {
		return true
	}
	if _, err := uuid.Parse(s); err == nil {
		return true
	}
	return false
}

// ParseID validates s and returns it as an ID.
func ParseID(s string) (ID, error) {
	if !Valid(s) {
		return "", fmt.Errorf("invalid entity id: %q", s)
	}
	return ID(s), nil
}

// Namespace returns the mod prefix of a namespaced ID, or "" for UUIDs.
func (id ID) Namespace() string {
	before, _, ok := strings.Cut(string(id), ":")
	if !ok {
		return ""
	}
	return before
}

func (id ID) String() string {
	return string(id)
}
