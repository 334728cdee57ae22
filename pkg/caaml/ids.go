package caaml

import "strconv"

// idRegistry hands out gml:id values that are unique within one document.
type idRegistry map[string]bool

// next returns id, or kind when id is empty, suffixed with 1, 2, ... until
// it has not been issued yet.
func (r idRegistry) next(id, kind string) string {
	if id == "" {
		id = kind
	}
	if id == "" {
		id = "id"
	}
	candidate := id
	for i := 1; r[candidate]; i++ {
		candidate = id + strconv.Itoa(i)
	}
	r[candidate] = true
	return candidate
}
