// Package domains holds the set of domain names URLs are sorted into and loads it
// from a domain list file.
package domains

import (
	"sort"
	"strings"
)

// Unknown is the group for URLs whose host is not in the registry.
const Unknown = "unknown"

// Registry is the immutable set of recognized domain groups for a run.
// Unknown is always a member.
type Registry struct {
	names map[string]struct{}
	order []string
}

// NewRegistry creates a registry from names. Names are trimmed and lowercased,
// blanks and duplicates are dropped, and the original order is kept.
func NewRegistry(names []string) (*Registry, error) {
	r := &Registry{
		names: make(map[string]struct{}, len(names)+1),
		order: make([]string, 0, len(names)+1),
	}

	for _, raw := range names {
		name := Normalize(raw)
		if name == "" {
			continue
		}
		if err := validateName(name); err != nil {
			return nil, err
		}
		if _, exists := r.names[name]; exists {
			continue
		}
		r.names[name] = struct{}{}
		r.order = append(r.order, name)
	}

	if _, exists := r.names[Unknown]; !exists {
		r.names[Unknown] = struct{}{}
		r.order = append(r.order, Unknown)
	}

	return r, nil
}

// Normalize trims and lowercases a domain name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Has reports whether name is a group of the registry.
func (r *Registry) Has(name string) bool {
	_, ok := r.names[name]
	return ok
}

// Groups returns the group names in list order, Unknown included.
func (r *Registry) Groups() []string {
	groups := make([]string, len(r.order))
	copy(groups, r.order)

	return groups
}

// Sorted returns the group names in lexical order.
func (r *Registry) Sorted() []string {
	groups := r.Groups()
	sort.Strings(groups)

	return groups
}

// Len returns the number of groups, Unknown included.
func (r *Registry) Len() int {
	return len(r.order)
}

// validateName rejects names that cannot be used as an output file name.
func validateName(name string) error {
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." || strings.ContainsRune(name, 0) {
		return &ListError{
			Type:    ErrorTypeInvalidName,
			Message: "domain name '" + name + "' cannot be used as an output file name",
		}
	}

	return nil
}
