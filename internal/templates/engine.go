// Package templates renders the Go source written next to extracted
// documents. The built-in templates can be replaced file by file from the
// directory named by the templates.dir setting.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// Builtin holds the default templates, addressed as "go/<name>.tmpl".
//
//go:embed go/*.tmpl
var Builtin embed.FS

// Engine renders a named template.
type Engine interface {
	Execute(name string, data any) (string, error)
}

type TextTemplateEngine struct {
	templates *template.Template
	funcs     template.FuncMap
	builtin   fs.FS
	customDir string
}

// NewEngine loads the templates in builtin, then the .tmpl files under
// customDir. A custom file replaces the built-in template at the same
// relative path, so templates.dir/go/embed.tmpl overrides the embed output.
// A customDir that does not exist is ignored.
func NewEngine(builtin fs.FS, customDir string, funcs template.FuncMap) (*TextTemplateEngine, error) {
	e := &TextTemplateEngine{
		builtin:   builtin,
		customDir: customDir,
		funcs:     funcs,
	}
	if err := e.load(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *TextTemplateEngine) load() error {
	e.templates = template.New("").Funcs(e.funcs)

	err := fs.WalkDir(e.builtin, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".tmpl") {
			return nil
		}
		content, err := fs.ReadFile(e.builtin, path)
		if err != nil {
			return fmt.Errorf("reading builtin template %s: %w", path, err)
		}
		if _, err := e.templates.New(path).Parse(string(content)); err != nil {
			return fmt.Errorf("parsing builtin template %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("loading builtin templates: %w", err)
	}

	if e.customDir == "" {
		return nil
	}

	err = filepath.WalkDir(e.customDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".tmpl") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading custom template %s: %w", path, err)
		}
		relPath, _ := filepath.Rel(e.customDir, path)
		if _, err := e.templates.New(filepath.ToSlash(relPath)).Parse(string(content)); err != nil {
			return fmt.Errorf("parsing custom template %s: %w", path, err)
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading custom templates: %w", err)
	}

	return nil
}

func (e *TextTemplateEngine) Execute(name string, data any) (string, error) {
	tmpl := e.templates.Lookup(name)
	if tmpl == nil {
		return "", fmt.Errorf("template not found: %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}

	return buf.String(), nil
}
