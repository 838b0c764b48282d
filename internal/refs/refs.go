// Package refs discovers local schema references in an OpenAPI document tree
// and computes their transitive closure over a schema pool.
package refs

import (
	"maps"
	"slices"
	"strings"
)

// SchemaPrefix is the pointer prefix of references into components.schemas.
const SchemaPrefix = "#/components/schemas/"

var (
	pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
	pointerEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
)

// Set is an unordered collection of schema names.
type Set map[string]struct{}

func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, name := range names {
		s.Add(name)
	}
	return s
}

func (s Set) Add(name string) {
	s[name] = struct{}{}
}

func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

// Sorted returns the names in ascending order.
func (s Set) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// SchemaName returns the schema named by a local schema pointer. Pointers
// into a schema's interior name the enclosing schema. References to any
// other location report false.
func SchemaName(ref string) (string, bool) {
	rest, ok := strings.CutPrefix(ref, SchemaPrefix)
	if !ok {
		return "", false
	}
	segment, _, _ := strings.Cut(rest, "/")
	if segment == "" {
		return "", false
	}
	return pointerUnescaper.Replace(segment), true
}

// SchemaRef returns the local pointer for a schema name.
func SchemaRef(name string) string {
	return SchemaPrefix + pointerEscaper.Replace(name)
}
