// Package codes maps course and product display names to short reference codes.
package codes

import (
	"fmt"
	"sort"
	"strings"
)

// Resolver is an immutable name → code table. The zero value resolves everything to "".
type Resolver struct {
	codes map[string]string
}

// New builds a resolver from a display-name → code mapping. Names are trimmed;
// several names may share one code. Two entries that trim to the same name with
// different codes are rejected.
func New(mapping map[string]string) (*Resolver, error) {
	r := &Resolver{codes: make(map[string]string, len(mapping))}
	for name, code := range mapping {
		if err := r.add(name, code); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Entry is one mapping line, kept in declaration order by template loaders.
type Entry struct {
	Name string
	Code string
}

// FromEntries builds a resolver from ordered entries.
func FromEntries(entries []Entry) (*Resolver, error) {
	r := &Resolver{codes: make(map[string]string, len(entries))}
	for _, e := range entries {
		if err := r.add(e.Name, e.Code); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Resolver) add(name, code string) error {
	key := strings.TrimSpace(name)
	if key == "" {
		return fmt.Errorf("codes: empty display name for code %q", code)
	}
	code = strings.TrimSpace(code)
	if prev, ok := r.codes[key]; ok && prev != code {
		return fmt.Errorf("codes: %q mapped to both %q and %q", key, prev, code)
	}
	r.codes[key] = code
	return nil
}

// Resolve returns the code for displayName, or "" when the name is not mapped.
// Leading and trailing whitespace is ignored; matching is otherwise exact.
func (r *Resolver) Resolve(displayName string) string {
	if r == nil {
		return ""
	}
	return r.codes[strings.TrimSpace(displayName)]
}

// Len returns the number of mapped names.
func (r *Resolver) Len() int {
	if r == nil {
		return 0
	}
	return len(r.codes)
}

// Names lists mapped names in sorted order.
func (r *Resolver) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.codes))
	for name := range r.codes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
