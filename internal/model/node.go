package model

import (
	"iter"

	"go.yaml.in/yaml/v4"
)

// Unwrap skips document wrappers and follows aliases to the node they name.
func Unwrap(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch n.Kind {
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return nil
			}
			n = n.Content[0]
		case yaml.AliasNode:
			n = n.Alias
		default:
			return n
		}
	}
	return nil
}

// Lookup returns the value stored under key in a mapping node. When a key
// repeats, the last occurrence wins.
func Lookup(mapping *yaml.Node, key string) *yaml.Node {
	var found *yaml.Node
	for k, v := range Pairs(mapping) {
		if k.Value == key {
			found = v
		}
	}
	return Unwrap(found)
}

// Pairs iterates the key/value pairs of a mapping node in source order.
// Anything that is not a mapping yields nothing.
func Pairs(mapping *yaml.Node) iter.Seq2[*yaml.Node, *yaml.Node] {
	return func(yield func(*yaml.Node, *yaml.Node) bool) {
		mapping = Unwrap(mapping)
		if mapping == nil || mapping.Kind != yaml.MappingNode {
			return
		}
		for i := 0; i+1 < len(mapping.Content); i += 2 {
			if !yield(mapping.Content[i], mapping.Content[i+1]) {
				return
			}
		}
	}
}

// Items returns the elements of a sequence node with aliases resolved.
func Items(seq *yaml.Node) []*yaml.Node {
	seq = Unwrap(seq)
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return nil
	}
	items := make([]*yaml.Node, 0, len(seq.Content))
	for _, item := range seq.Content {
		if item = Unwrap(item); item != nil {
			items = append(items, item)
		}
	}
	return items
}

func NewMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func NewSequence(items ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: items}
}

func NewString(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// Set appends key: value to a mapping node.
func Set(mapping *yaml.Node, key string, value *yaml.Node) {
	mapping.Content = append(mapping.Content, NewString(key), value)
}

// SetString appends key: "value" to a mapping node.
func SetString(mapping *yaml.Node, key, value string) {
	Set(mapping, key, NewString(value))
}

// Clone returns a standalone deep copy of n suitable for emitting into a new
// document: aliases are expanded, anchors and comments dropped and collection
// styles reset to block.
func Clone(n *yaml.Node) *yaml.Node {
	return clone(n, make(map[*yaml.Node]bool))
}

func clone(n *yaml.Node, expanding map[*yaml.Node]bool) *yaml.Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
		}
		return clone(n.Content[0], expanding)
	case yaml.AliasNode:
		if n.Alias == nil || expanding[n.Alias] {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
		}
		expanding[n.Alias] = true
		out := clone(n.Alias, expanding)
		delete(expanding, n.Alias)
		return out
	case yaml.ScalarNode:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: n.Tag, Value: n.Value}
	}

	out := &yaml.Node{Kind: n.Kind, Tag: n.Tag, Content: make([]*yaml.Node, 0, len(n.Content))}
	for _, child := range n.Content {
		out.Content = append(out.Content, clone(child, expanding))
	}
	return out
}
