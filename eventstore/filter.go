package eventstore

import (
	"slices"
	"strings"
)

// Predicate matches a top-level string property of an event payload.
type Predicate struct {
	key string
	val string
}

// P builds a Predicate for the payload property key with the value val.
func P(key string, val string) Predicate {
	return Predicate{key: key, val: val}
}

// Key returns the payload property name.
func (p Predicate) Key() string {
	return p.key
}

// Val returns the expected payload property value.
func (p Predicate) Val() string {
	return p.val
}

// FilterItem matches events whose type is one of EventTypes and whose payload satisfies the predicates.
//
// An item without event types matches any type, an item without predicates matches any payload.
type FilterItem struct {
	eventTypes    []string
	predicates    []Predicate
	allPredicates bool
}

// Types starts a FilterItem matching any of the given event types.
func Types(eventTypes ...string) FilterItem {
	return FilterItem{eventTypes: dedupe(eventTypes)}
}

// WhereAny restricts the item to events matching at least one of the predicates.
func (i FilterItem) WhereAny(predicates ...Predicate) FilterItem {
	i.predicates = slices.Clone(predicates)
	i.allPredicates = false

	return i
}

// WhereAll restricts the item to events matching all the predicates.
func (i FilterItem) WhereAll(predicates ...Predicate) FilterItem {
	i.predicates = slices.Clone(predicates)
	i.allPredicates = true

	return i
}

// EventTypes returns the event types of this item.
func (i FilterItem) EventTypes() []string {
	return i.eventTypes
}

// Predicates returns the payload predicates of this item.
func (i FilterItem) Predicates() []Predicate {
	return i.predicates
}

// AllPredicatesMustMatch reports whether the predicates are combined with AND instead of OR.
func (i FilterItem) AllPredicatesMustMatch() bool {
	return i.allPredicates
}

func (i FilterItem) matches(eventType string, payload PayloadLookup) bool {
	if len(i.eventTypes) > 0 && !slices.Contains(i.eventTypes, eventType) {
		return false
	}

	if len(i.predicates) == 0 {
		return true
	}

	for _, predicate := range i.predicates {
		val, ok := payload(predicate.key)
		hit := ok && val == predicate.val

		switch {
		case hit && !i.allPredicates:
			return true
		case !hit && i.allPredicates:
			return false
		}
	}

	return i.allPredicates
}

// PayloadLookup resolves a top-level string property of an event payload.
type PayloadLookup func(key string) (string, bool)

// Filter is a disjunction of FilterItems. The zero Filter matches every event.
type Filter struct {
	items []FilterItem
}

// NewFilter combines the given items with OR.
func NewFilter(items ...FilterItem) Filter {
	return Filter{items: slices.Clone(items)}
}

// Items returns the items of the filter.
func (f Filter) Items() []FilterItem {
	return f.items
}

// Matches reports whether an event with the given type and payload belongs to the filter's boundary.
func (f Filter) Matches(eventType string, payload PayloadLookup) bool {
	if len(f.items) == 0 {
		return true
	}

	for _, item := range f.items {
		if item.matches(eventType, payload) {
			return true
		}
	}

	return false
}

// String renders the filter for logs and span attributes.
func (f Filter) String() string {
	parts := make([]string, 0, len(f.items))

	for _, item := range f.items {
		predicates := make([]string, 0, len(item.predicates))
		for _, p := range item.predicates {
			predicates = append(predicates, p.key+"="+p.val)
		}

		logic := "OR"
		if item.allPredicates {
			logic = "AND"
		}

		parts = append(parts, "types:["+strings.Join(item.eventTypes, ",")+"] "+logic+":["+strings.Join(predicates, ",")+"]")
	}

	return strings.Join(parts, " | ")
}

func dedupe(values []string) []string {
	result := make([]string, 0, len(values))

	for _, v := range values {
		if !slices.Contains(result, v) {
			result = append(result, v)
		}
	}

	return result
}
