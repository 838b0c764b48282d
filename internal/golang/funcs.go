package golang

import (
	"strconv"
	"strings"
	"text/template"
)

func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"pascalCase":   PascalCase,
		"goIdentifier": ToGoIdentifier,
		"goComment":    GoComment,
		"quote":        strconv.Quote,
	}
}

func GoComment(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(strings.TrimSpace(s), "\n")
	var result strings.Builder
	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}
		line = strings.TrimSpace(line)
		if line == "" {
			result.WriteString("//")
			continue
		}
		result.WriteString("// ")
		result.WriteString(line)
	}
	return result.String()
}
