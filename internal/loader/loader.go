package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/kolah/oaslice/internal/model"
	"go.yaml.in/yaml/v4"
)

var ErrSourceNotFound = errors.New("source document not found")

type Result struct {
	Document *model.Document
	Version  string
	Warnings []string
	RawData  []byte
}

func LoadFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("reading source file: %w", err)
	}
	return Load(data)
}

// Load parses a YAML or JSON OpenAPI document. The document is not validated.
func Load(data []byte) (*Result, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing source document: %w", err)
	}

	doc, err := model.NewDocument(&root)
	if err != nil {
		return nil, fmt.Errorf("parsing source document: %w", err)
	}

	result := &Result{
		Document: doc,
		Version:  doc.Version(),
		RawData:  data,
	}

	switch {
	case result.Version == "":
		result.Warnings = append(result.Warnings, "source does not declare an OpenAPI version")
	case !strings.HasPrefix(result.Version, "3."):
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("source declares version %s; only components.schemas references are followed", result.Version))
	}
	if len(doc.Paths()) == 0 {
		result.Warnings = append(result.Warnings, "source has no paths")
	}

	return result, nil
}
