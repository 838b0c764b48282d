package refs

import "go.yaml.in/yaml/v4"

// Resolve expands needed into every schema name reachable from it through
// the definitions in all. Names without a definition are kept in the result
// but contribute no further references. Cycles are visited once.
func Resolve(all map[string]*yaml.Node, needed Set) Set {
	resolved := make(Set, len(needed))
	queue := needed.Sorted()

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		if resolved.Has(name) {
			continue
		}
		resolved.Add(name)

		schema, ok := all[name]
		if !ok {
			continue
		}
		for _, ref := range FindRefs(schema).Sorted() {
			if !resolved.Has(ref) {
				queue = append(queue, ref)
			}
		}
	}

	return resolved
}

// Dangling returns the sorted names of resolved that have no definition in all.
func Dangling(all map[string]*yaml.Node, resolved Set) []string {
	var missing []string
	for _, name := range resolved.Sorted() {
		if _, ok := all[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
