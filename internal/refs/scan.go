package refs

import "go.yaml.in/yaml/v4"

const refKey = "$ref"

// FindRefs returns the names of all schemas referenced anywhere within node.
// Only direct references are reported; see Resolve for the transitive closure.
func FindRefs(node *yaml.Node) Set {
	found := make(Set)
	scan(node, found, make(map[*yaml.Node]bool))
	return found
}

func scan(node *yaml.Node, found Set, followed map[*yaml.Node]bool) {
	if node == nil {
		return
	}

	switch node.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, child := range node.Content {
			scan(child, found, followed)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			if key.Value == refKey && isString(value) {
				if name, ok := SchemaName(value.Value); ok {
					found.Add(name)
				}
			}
			// $ref siblings and nested structures are still visited
			scan(value, found, followed)
		}
	case yaml.AliasNode:
		if followed[node] {
			return
		}
		followed[node] = true
		scan(node.Alias, found, followed)
	}
}

func isString(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str"
}
