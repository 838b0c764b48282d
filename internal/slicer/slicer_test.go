package slicer

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/kolah/oaslice/internal/model"
	"github.com/kolah/oaslice/internal/output"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"
)

const sourceSpec = `
openapi: 3.0.3
info:
  title: Platform
  version: "1"
tags:
  - name: x
    description: tag x
  - name: y
    description: tag y
  - name: z
paths:
  /v3beta/y:
    get:
      tags: [y]
      responses:
        "200":
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Bar"
  /v3/x:
    post:
      tags: [x]
      requestBody:
        content:
          application/json:
            schema:
              $ref: "#/components/schemas/Foo"
      responses:
        "204":
          description: ok
  /v3beta/a:
    parameters:
      - name: id
        in: path
        required: true
        schema:
          type: string
    summary: not an operation
    delete:
      responses:
        "204":
          description: deleted
  /v2/a:
    get:
      tags: [z]
      responses:
        "200":
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Legacy"
components:
  schemas:
    Foo:
      type: object
      properties:
        name:
          type: string
    Bar:
      type: object
      properties:
        baz:
          $ref: "#/components/schemas/Baz"
    Baz:
      type: string
      description: "Größe – unicode survives"
    Legacy:
      type: integer
`

func loadDoc(t *testing.T, src string) *model.Document {
	t.Helper()
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &node))
	doc, err := model.NewDocument(&node)
	require.NoError(t, err)
	return doc
}

func decode(t *testing.T, res *Result) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, res.Document.Decode(&m))
	return m
}

func keys(t *testing.T, node *yaml.Node, path ...string) []string {
	t.Helper()
	n := model.Unwrap(node)
	for _, p := range path {
		n = model.Lookup(n, p)
		require.NotNil(t, n, "missing %v", path)
	}
	var out []string
	for k := range model.Pairs(n) {
		out = append(out, k.Value)
	}
	return out
}

func TestExtractEndToEnd(t *testing.T) {
	doc := loadDoc(t, sourceSpec)

	res, err := Extract(doc, Options{
		Prefix:      "/v3beta/",
		Title:       "Beta API",
		Description: "Public beta",
		Version:     "v3beta",
	})
	require.NoError(t, err)

	require.Equal(t, 2, res.Paths)
	require.Equal(t, 2, res.Schemas)
	require.Equal(t, 1, res.Tags)
	require.Empty(t, res.Dangling)

	require.Equal(t, []string{"/v3beta/a", "/v3beta/y"}, keys(t, res.Document, "paths"))
	require.Equal(t, []string{"Bar", "Baz"}, keys(t, res.Document, "components", "schemas"))
	require.Equal(t, []string{"openapi", "info", "servers", "security", "paths", "components", "tags"},
		keys(t, res.Document))
}

func TestExtractPrefixExactness(t *testing.T) {
	doc := loadDoc(t, `
paths:
  /v3/a: {get: {}}
  /v3beta/a: {get: {}}
  /v2/a: {get: {}}
`)

	tests := []struct {
		prefix   string
		expected []string
	}{
		{"/v3beta/", []string{"/v3beta/a"}},
		{"/v3/", []string{"/v3/a"}},
		{"/v3", []string{"/v3/a", "/v3beta/a"}},
		{"/v4", nil},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			res, err := Extract(doc, Options{Prefix: tt.prefix, Title: "t", Version: "1"})
			require.NoError(t, err)
			require.Equal(t, tt.expected, keys(t, res.Document, "paths"))
			require.Equal(t, len(tt.expected), res.Paths)
		})
	}
}

func TestExtractTags(t *testing.T) {
	t.Run("only used tags in source order", func(t *testing.T) {
		doc := loadDoc(t, `
tags:
  - name: x
  - name: y
paths:
  /p/one:
    get:
      tags: [y]
`)
		res, err := Extract(doc, Options{Prefix: "/p/", Title: "t", Version: "1"})
		require.NoError(t, err)
		require.Equal(t, []any{map[string]any{"name": "y"}}, decode(t, res)["tags"])
	})

	t.Run("order follows source not usage", func(t *testing.T) {
		doc := loadDoc(t, `
tags:
  - name: b
  - name: a
paths:
  /p/one:
    get:
      tags: [a, b]
`)
		res, err := Extract(doc, Options{Prefix: "/p/", Title: "t", Version: "1"})
		require.NoError(t, err)
		require.Equal(t, []any{map[string]any{"name": "b"}, map[string]any{"name": "a"}}, decode(t, res)["tags"])
	})

	t.Run("no tags used omits attribute", func(t *testing.T) {
		doc := loadDoc(t, `
tags:
  - name: x
paths:
  /p/one:
    get:
      responses: {}
  /q/two:
    get:
      tags: [x]
`)
		res, err := Extract(doc, Options{Prefix: "/p/", Title: "t", Version: "1"})
		require.NoError(t, err)
		require.NotContains(t, decode(t, res), "tags")
		require.Equal(t, 0, res.Tags)
	})

	t.Run("used tag without definition", func(t *testing.T) {
		doc := loadDoc(t, `
paths:
  /p/one:
    get:
      tags: [ghost]
`)
		res, err := Extract(doc, Options{Prefix: "/p/", Title: "t", Version: "1"})
		require.NoError(t, err)
		require.NotContains(t, decode(t, res), "tags")
	})
}

func TestExtractDanglingTolerated(t *testing.T) {
	doc := loadDoc(t, `
paths:
  /p/one:
    get:
      responses:
        "200":
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/A"
components:
  schemas:
    A:
      properties:
        x:
          $ref: "#/components/schemas/X"
        ext:
          $ref: "shared.yaml#/components/schemas/External"
`)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	res, err := Extract(doc, Options{Prefix: "/p/", Title: "t", Version: "1", Logger: logger})
	require.NoError(t, err)
	require.Equal(t, []string{"X"}, res.Dangling)
	require.Equal(t, []string{"A"}, keys(t, res.Document, "components", "schemas"))
	require.Contains(t, logs.String(), "schema=X")
	require.NotContains(t, logs.String(), "External")
}

func TestExtractMinimality(t *testing.T) {
	doc := loadDoc(t, sourceSpec)

	res, err := Extract(doc, Options{Prefix: "/v3/", Title: "t", Version: "1"})
	require.NoError(t, err)

	schemas := keys(t, res.Document, "components", "schemas")
	require.Equal(t, []string{"Foo"}, schemas)
	require.NotContains(t, schemas, "Legacy")
	require.NotContains(t, schemas, "Bar")
}

func TestExtractEmptySchemasStillEmitsContainer(t *testing.T) {
	doc := loadDoc(t, `
paths:
  /p/one:
    get: {}
`)
	res, err := Extract(doc, Options{Prefix: "/p/", Title: "t", Version: "1"})
	require.NoError(t, err)

	components := decode(t, res)["components"].(map[string]any)
	require.Contains(t, components, "schemas")
	require.Contains(t, components, "securitySchemes")
}

func TestExtractMetadata(t *testing.T) {
	doc := loadDoc(t, sourceSpec)

	res, err := Extract(doc, Options{
		Prefix:      "/v3",
		Title:       "Platform API",
		Description: "line one\n\nline two",
		Version:     "v3",
	})
	require.NoError(t, err)

	m := decode(t, res)
	require.Equal(t, "3.0.3", m["openapi"])
	require.Equal(t, map[string]any{
		"title":       "Platform API",
		"description": "line one\n\nline two",
		"version":     "v3",
		"contact": map[string]any{
			"name": "CloudBees",
			"url":  "https://www.cloudbees.com",
		},
	}, m["info"])
	require.Equal(t, []any{map[string]any{
		"url":         "https://api.cloudbees.io",
		"description": "CloudBees Platform",
	}}, m["servers"])
	require.Equal(t, []any{map[string]any{"BearerAuth": []any{}}}, m["security"])

	schemes := m["components"].(map[string]any)["securitySchemes"]
	require.Equal(t, map[string]any{
		"BearerAuth": map[string]any{
			"type":         "http",
			"scheme":       "bearer",
			"bearerFormat": "JWT",
			"description":  "OIDC token or Personal Access Token (PAT)",
		},
	}, schemes)
}

func TestExtractCustomMetadata(t *testing.T) {
	doc := loadDoc(t, sourceSpec)

	res, err := Extract(doc, Options{
		Prefix:  "/v3",
		Title:   "t",
		Version: "1",
		Metadata: Metadata{
			Server:   Server{URL: "https://api.example.com"},
			Security: SecurityScheme{Name: "Token"},
		},
	})
	require.NoError(t, err)

	m := decode(t, res)
	require.Equal(t, []any{map[string]any{
		"url":         "https://api.example.com",
		"description": "CloudBees Platform",
	}}, m["servers"])
	require.Equal(t, []any{map[string]any{"Token": []any{}}}, m["security"])
	require.Contains(t, m["components"].(map[string]any)["securitySchemes"], "Token")
}

func TestExtractStringScalarsStayStrings(t *testing.T) {
	doc := loadDoc(t, sourceSpec)

	res, err := Extract(doc, Options{Prefix: "/v3", Title: "true", Version: "1.0"})
	require.NoError(t, err)

	info := decode(t, res)["info"].(map[string]any)
	require.Equal(t, "true", info["title"])
	require.Equal(t, "1.0", info["version"])
}

func TestExtractDeterministic(t *testing.T) {
	opts := Options{Prefix: "/v3", Title: "Platform", Description: "desc", Version: "v3"}

	var outputs [][]byte
	for range 3 {
		res, err := Extract(loadDoc(t, sourceSpec), opts)
		require.NoError(t, err)
		data, err := output.Encode(res.Document, output.FormatYAML)
		require.NoError(t, err)
		outputs = append(outputs, data)
	}

	require.Equal(t, outputs[0], outputs[1])
	require.Equal(t, outputs[0], outputs[2])
	require.Contains(t, string(outputs[0]), "Größe – unicode survives")
}

func TestExtractDoesNotModifySource(t *testing.T) {
	doc := loadDoc(t, sourceSpec)
	before, err := output.Encode(doc.Root(), output.FormatYAML)
	require.NoError(t, err)

	_, err = Extract(doc, Options{Prefix: "/v3", Title: "t", Version: "1"})
	require.NoError(t, err)

	after, err := output.Encode(doc.Root(), output.FormatYAML)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestExtractAliasesExpanded(t *testing.T) {
	doc := loadDoc(t, `
x-shared: &ok
  "200":
    content:
      application/json:
        schema:
          $ref: "#/components/schemas/A"
paths:
  /p/one:
    get:
      responses: *ok
components:
  schemas:
    A: {type: string}
`)
	res, err := Extract(doc, Options{Prefix: "/p/", Title: "t", Version: "1"})
	require.NoError(t, err)
	require.Equal(t, []string{"A"}, keys(t, res.Document, "components", "schemas"))

	data, err := output.Encode(res.Document, output.FormatYAML)
	require.NoError(t, err)
	require.NotContains(t, string(data), "*ok")
	require.NotContains(t, string(data), "&ok")
}

func TestExtractEmptyPrefix(t *testing.T) {
	_, err := Extract(loadDoc(t, sourceSpec), Options{Title: "t", Version: "1"})
	require.ErrorIs(t, err, ErrEmptyPrefix)
}

func TestExtractNoPaths(t *testing.T) {
	res, err := Extract(loadDoc(t, "openapi: 3.0.3\n"), Options{Prefix: "/v3", Title: "t", Version: "1"})
	require.NoError(t, err)
	require.Equal(t, 0, res.Paths)
	require.Equal(t, 0, res.Schemas)
}
