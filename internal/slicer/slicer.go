// Package slicer extracts a self-contained OpenAPI document holding the
// operations under one path prefix and the schemas they depend on.
package slicer

import (
	"errors"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/kolah/oaslice/internal/model"
	"github.com/kolah/oaslice/internal/refs"
	"go.yaml.in/yaml/v4"
)

var ErrEmptyPrefix = errors.New("path prefix is required")

type Options struct {
	Prefix      string
	Title       string
	Description string
	Version     string
	// Metadata fields left empty fall back to DefaultMetadata.
	Metadata Metadata
	Logger   *slog.Logger
}

type Result struct {
	Document *yaml.Node
	Paths    int
	Schemas  int
	Tags     int
	// Names lists the emitted schema names in output order.
	Names []string
	// Dangling lists referenced schema names missing from the source pool.
	Dangling []string
}

// Extract builds a new document from the paths of doc starting with
// opts.Prefix, the closure of schemas they reference and the tags they use.
// Paths and schemas are emitted in ascending key order, tags in source order.
func Extract(doc *model.Document, opts Options) (*Result, error) {
	if opts.Prefix == "" {
		return nil, ErrEmptyPrefix
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	selected := selectPaths(doc.Paths(), opts.Prefix)
	paths := model.NewMapping()
	for _, item := range selected {
		model.Set(paths, item.Path, model.Clone(item.Operations))
	}

	all := doc.Schemas()
	resolved := refs.Resolve(all, refs.FindRefs(paths))

	schemas := model.NewMapping()
	var names []string
	for _, name := range resolved.Sorted() {
		if def, ok := all[name]; ok {
			model.Set(schemas, name, model.Clone(def))
			names = append(names, name)
		}
	}

	dangling := refs.Dangling(all, resolved)
	for _, name := range dangling {
		logger.Warn("referenced schema is not defined in source",
			"schema", name,
			"ref", refs.SchemaRef(name),
			"prefix", opts.Prefix,
		)
	}

	tags := selectTags(doc.Tags(), selected)

	meta := opts.Metadata.withDefaults()
	components := model.NewMapping()
	model.Set(components, "schemas", schemas)
	model.Set(components, "securitySchemes", securitySchemesNode(meta))

	root := model.NewMapping()
	model.SetString(root, "openapi", meta.OpenAPI)
	model.Set(root, "info", opts.infoNode(meta))
	model.Set(root, "servers", serversNode(meta))
	model.Set(root, "security", securityNode(meta))
	model.Set(root, "paths", paths)
	model.Set(root, "components", components)
	if len(tags) > 0 {
		model.Set(root, "tags", model.NewSequence(tags...))
	}

	logger.Debug("extracted subset",
		"prefix", opts.Prefix,
		"paths", len(selected),
		"schemas", len(names),
		"tags", len(tags),
	)

	return &Result{
		Document: &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}},
		Paths:    len(selected),
		Schemas:  len(names),
		Tags:     len(tags),
		Names:    names,
		Dangling: dangling,
	}, nil
}

// selectPaths returns the path items whose key starts with prefix, sorted by
// key. A key repeated in the source keeps its last definition.
func selectPaths(items []model.PathItem, prefix string) []model.PathItem {
	byPath := make(map[string]model.PathItem)
	for _, item := range items {
		if strings.HasPrefix(item.Path, prefix) {
			byPath[item.Path] = item
		}
	}

	selected := make([]model.PathItem, 0, len(byPath))
	for _, path := range slices.Sorted(maps.Keys(byPath)) {
		selected = append(selected, byPath[path])
	}
	return selected
}

// selectTags keeps the tag definitions named by any selected operation.
func selectTags(defs []*yaml.Node, selected []model.PathItem) []*yaml.Node {
	used := make(map[string]bool)
	for _, item := range selected {
		for _, tag := range item.OperationTags() {
			used[tag] = true
		}
	}
	if len(used) == 0 {
		return nil
	}

	var tags []*yaml.Node
	for _, def := range defs {
		name := model.Lookup(def, "name")
		if name != nil && name.Kind == yaml.ScalarNode && used[name.Value] {
			tags = append(tags, model.Clone(def))
		}
	}
	return tags
}
