package model

import (
	"errors"

	"go.yaml.in/yaml/v4"
)

var ErrNotMapping = errors.New("document root is not a mapping")

// Document is a read-only view over a parsed OpenAPI document tree.
type Document struct {
	root *yaml.Node
}

// PathItem is one entry of the paths object. Operations is the raw
// method-to-operation mapping and is never modified.
type PathItem struct {
	Path       string
	Operations *yaml.Node
}

func NewDocument(node *yaml.Node) (*Document, error) {
	root := Unwrap(node)
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}
	return &Document{root: root}, nil
}

func (d *Document) Root() *yaml.Node {
	return d.root
}

// Version returns the declared openapi (or swagger) version, or "" when absent.
func (d *Document) Version() string {
	for _, key := range []string{"openapi", "swagger"} {
		if v := Lookup(d.root, key); v != nil && v.Kind == yaml.ScalarNode {
			return v.Value
		}
	}
	return ""
}

// Paths returns the path items in source order.
func (d *Document) Paths() []PathItem {
	var items []PathItem
	for key, value := range Pairs(Lookup(d.root, "paths")) {
		items = append(items, PathItem{Path: key.Value, Operations: value})
	}
	return items
}

// Schemas returns the components.schemas pool keyed by schema name.
func (d *Document) Schemas() map[string]*yaml.Node {
	schemas := make(map[string]*yaml.Node)
	components := Lookup(d.root, "components")
	for key, value := range Pairs(Lookup(components, "schemas")) {
		schemas[key.Value] = value
	}
	return schemas
}

// Tags returns the top-level tag definitions in source order.
func (d *Document) Tags() []*yaml.Node {
	return Items(Lookup(d.root, "tags"))
}

// OperationTags returns the tag names listed by each operation of the path
// item. Entries that are not operation mappings (summary, parameters, ...)
// contribute nothing.
func (p PathItem) OperationTags() []string {
	var tags []string
	for _, op := range Pairs(p.Operations) {
		op = Unwrap(op)
		if op == nil || op.Kind != yaml.MappingNode {
			continue
		}
		for _, tag := range Items(Lookup(op, "tags")) {
			if tag.Kind == yaml.ScalarNode {
				tags = append(tags, tag.Value)
			}
		}
	}
	return tags
}
