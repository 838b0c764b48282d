package golang

import (
	"golang.org/x/tools/imports"
)

// Format gofmts generated source. Imports are written by the templates, so
// only formatting is applied.
func Format(src []byte) ([]byte, error) {
	return imports.Process("", src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
}
