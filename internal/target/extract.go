package target

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/entity"
)

// RawCategory is one named candidate list as produced by scope resolution or
// carried in legacy rule content. Value accepts the mixed legacy formats: a
// single string or an array of strings. Invalid entries (nil, empty string,
// empty array, non-string values) are dropped without failing the whole
// extraction.
type RawCategory struct {
	Name  string
	Value any
}

// CategoryFromIDs adapts a scope-resolution result into a raw category.
func CategoryFromIDs(name string, ids []entity.ID) RawCategory {
	values := make([]any, 0, len(ids))
	for _, id := range ids {
		values = append(values, string(id))
	}
	return RawCategory{Name: name, Value: values}
}

// Resolved is one canonicalized placeholder.
type Resolved struct {
	Name Placeholder
	ID   entity.ID
}

// Extraction is the canonical mapping of placeholders to entity IDs. Every
// category maps to exactly one ID; categories with no valid candidate are
// absent, never nil.
type Extraction struct {
	categories []Resolved
	index      map[Placeholder]entity.ID
	primary    entity.ID
	hasPrimary bool
}

// Len reports how many placeholders resolved.
func (x *Extraction) Len() int {
	if x == nil {
		return 0
	}
	return len(x.categories)
}

// Categories lists resolved placeholders in input insertion order.
func (x *Extraction) Categories() []Resolved {
	if x == nil {
		return nil
	}
	return append([]Resolved(nil), x.categories...)
}

// Get returns the ID a placeholder resolved to.
func (x *Extraction) Get(name Placeholder) (entity.ID, bool) {
	if x == nil {
		return "", false
	}
	id, ok := x.index[name]
	return id, ok
}

// Primary returns the designated primary target, when any category resolved.
func (x *Extraction) Primary() (entity.ID, bool) {
	if x == nil {
		return "", false
	}
	return x.primary, x.hasPrimary
}

// TargetsMap renders the extraction as the wire-format targets object.
func (x *Extraction) TargetsMap() map[string]string {
	if x == nil || len(x.categories) == 0 {
		return nil
	}
	targets := make(map[string]string, len(x.categories))
	for _, c := range x.categories {
		targets[string(c.Name)] = string(c.ID)
	}
	return targets
}

// Extractor is the target extraction service.
type Extractor struct {
	log *zap.Logger
}

func NewExtractor(log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{log: log}
}

// Extract canonicalizes raw categories. Malformed candidate values are
// dropped from their category; a category left with no valid value is
// omitted entirely. The returned error is structural (an invalid category
// name) and marks the whole extraction as failed — the payload builder
// absorbs it, callers upstream never see it.
//
// Primary selection, in order: primary, target, secondary, tertiary, then
// the first resolved category by input insertion order.
func (x *Extractor) Extract(raw []RawCategory) (*Extraction, error) {
	result := &Extraction{index: make(map[Placeholder]entity.ID)}

	for _, category := range raw {
		name, err := NewPlaceholder(category.Name)
		if err != nil {
			return nil, fmt.Errorf("extracting targets: %w", err)
		}
		if _, dup := result.index[name]; dup {
			x.log.Debug("duplicate target category ignored", zap.String("category", category.Name))
			continue
		}
		id, ok := x.firstValid(category)
		if !ok {
			continue
		}
		result.categories = append(result.categories, Resolved{Name: name, ID: id})
		result.index[name] = id
	}

	result.primary, result.hasPrimary = selectPrimary(result)
	return result, nil
}

// firstValid coerces the category's raw value and returns the first valid
// candidate. First element wins when multiple candidates were supplied.
func (x *Extractor) firstValid(category RawCategory) (entity.ID, bool) {
	switch value := category.Value.(type) {
	case nil:
		return "", false
	case string:
		if value == "" {
			return "", false
		}
		return entity.ID(value), true
	case []string:
		for _, s := range value {
			if s != "" {
				return entity.ID(s), true
			}
		}
		return "", false
	case []any:
		for _, item := range value {
			s, ok := item.(string)
			if !ok {
				if item != nil {
					x.log.Debug("malformed target candidate dropped",
						zap.String("category", category.Name),
						zap.Any("candidate", item))
				}
				continue
			}
			if s != "" {
				return entity.ID(s), true
			}
		}
		return "", false
	default:
		x.log.Debug("malformed target candidate dropped",
			zap.String("category", category.Name),
			zap.Any("candidate", value))
		return "", false
	}
}

func selectPrimary(x *Extraction) (entity.ID, bool) {
	for _, name := range selectionOrder {
		if id, ok := x.index[name]; ok {
			return id, true
		}
	}
	if len(x.categories) > 0 {
		return x.categories[0].ID, true
	}
	return "", false
}
