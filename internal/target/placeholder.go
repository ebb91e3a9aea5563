// Package target canonicalizes raw per-category candidate lists into a
// TargetExtractionResult: one entity ID per placeholder plus a single
// designated primary target for legacy consumers.
package target

import (
	"fmt"
	"regexp"
)

// Placeholder names a slot a scope resolution fills for one action attempt.
// The controlled vocabulary below carries the legacy primary-selection
// priority; anything else matching the identifier alphabet is a custom
// category ("weapon", "tool", ...).
type Placeholder string

const (
	Primary   Placeholder = "primary"
	Target    Placeholder = "target"
	Secondary Placeholder = "secondary"
	Tertiary  Placeholder = "tertiary"
)

var placeholderPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// NewPlaceholder validates a category name. Rejecting malformed names at
// construction keeps the vocabulary open without admitting junk keys.
func NewPlaceholder(name string) (Placeholder, error) {
	if !placeholderPattern.MatchString(name) {
		return "", fmt.Errorf("invalid placeholder name: %q", name)
	}
	return Placeholder(name), nil
}

func (p Placeholder) String() string {
	return string(p)
}

// selectionOrder is the documented compatibility contract for choosing the
// primary target among resolved categories. It must not be reordered.
var selectionOrder = []Placeholder{Primary, Target, Secondary, Tertiary}
