// Package output serializes extracted documents and writes them to disk.
package output

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"go.yaml.in/yaml/v4"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

const lineWidth = 120

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("invalid format: %s (valid: yaml, json)", s)
}

// FormatFromPath infers the format from a file extension, defaulting to YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Encode renders node keeping the key order it was built with.
func Encode(node *yaml.Node, format Format) ([]byte, error) {
	switch format {
	case FormatYAML, "":
		data, err := yaml.Dump(node, yaml.WithIndent(2), yaml.WithLineWidth(lineWidth))
		if err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		return data, nil
	case FormatJSON:
		var raw bytes.Buffer
		if err := writeJSON(&raw, node, ""); err != nil {
			return nil, fmt.Errorf("encoding json: %w", err)
		}
		var out bytes.Buffer
		if err := json.Indent(&out, raw.Bytes(), "", "  "); err != nil {
			return nil, fmt.Errorf("indenting json: %w", err)
		}
		out.WriteByte('\n')
		return out.Bytes(), nil
	}
	return nil, fmt.Errorf("invalid format: %s", format)
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func marshalJSON(v any) ([]byte, error) {
	return json.MarshalWithOption(v, json.DisableHTMLEscape())
}

// writeJSON appends node to buf. pointer is the JSON pointer of node within
// the document and only serves error messages.
func writeJSON(buf *bytes.Buffer, node *yaml.Node, pointer string) error {
	if node == nil {
		buf.WriteString("null")
		return nil
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return writeJSON(buf, node.Content[0], pointer)
	case yaml.AliasNode:
		return writeJSON(buf, node.Alias, pointer)
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(node.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			name := node.Content[i].Value
			key, err := marshalJSON(name)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeJSON(buf, node.Content[i+1], pointer+"/"+pointerEscaper.Replace(name)); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, item := range node.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item, pointer+"/"+strconv.Itoa(i)); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case yaml.ScalarNode:
		var v any
		if err := node.Decode(&v); err != nil {
			return fmt.Errorf("%s: %w", location(pointer), err)
		}
		data, err := marshalJSON(v)
		if err != nil {
			return fmt.Errorf("%s: %w", location(pointer), err)
		}
		buf.Write(data)
	default:
		return fmt.Errorf("%s: unsupported node kind %v", location(pointer), node.Kind)
	}
	return nil
}

func location(pointer string) string {
	if pointer == "" {
		return "at document root"
	}
	return "at " + pointer
}

// WriteFile replaces path with data. The content goes to a temporary file in
// the same directory first, so a failed write never leaves a partial document.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
