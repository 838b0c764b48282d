package embed

import (
	"encoding/base64"
	"fmt"

	"github.com/kolah/oaslice/internal/golang"
	"github.com/kolah/oaslice/internal/templates"
)

const templateName = "go/embed.tmpl"

// Target renders a Go source file that carries an extracted document.
type Target struct{}

func New() *Target {
	return &Target{}
}

type Input struct {
	Package  string
	Subset   string
	Title    string
	Source   string
	SpecData []byte
}

type templateData struct {
	Package  string
	Name     string
	Title    string
	Source   string
	SpecData string
}

func (t *Target) Generate(engine templates.Engine, in Input) ([]byte, error) {
	if !golang.IsPackageName(in.Package) {
		return nil, fmt.Errorf("invalid package name: %q", in.Package)
	}

	data := templateData{
		Package:  in.Package,
		Name:     golang.ToGoIdentifier(in.Subset),
		Title:    in.Title,
		Source:   in.Source,
		SpecData: base64.StdEncoding.EncodeToString(in.SpecData),
	}

	content, err := engine.Execute(templateName, data)
	if err != nil {
		return nil, fmt.Errorf("generating embed source: %w", err)
	}

	formatted, err := golang.Format([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("formatting embed source: %w", err)
	}
	return formatted, nil
}
