// Package tsgen writes the TypeScript module of constants the frontend
// shares with the server.
package tsgen

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/template"
)

// Constants are the values exported to the frontend.
type Constants struct {
	Languages         []string
	MaxPageSize       int
	ImageMaxDimension int
	// Grades maps review grade names to their numeric quality.
	Grades map[string]int
	// Routes maps route names to URL patterns.
	Routes map[string]string
}

type entry struct {
	Key   string
	Value string
}

const moduleTmpl = `// Code generated by lemmabank gen-ts. DO NOT EDIT.

export const SUPPORTED_LANGUAGES = [{{range $i, $l := .Languages}}{{if $i}}, {{end}}{{$l}}{{end}}] as const;

export type LanguageCode = (typeof SUPPORTED_LANGUAGES)[number];

export const MAX_PAGE_SIZE = {{.MaxPageSize}};

export const IMAGE_MAX_DIMENSION = {{.ImageMaxDimension}};

export const REVIEW_GRADES = {
{{- range .Grades}}
  {{.Key}}: {{.Value}},
{{- end}}
} as const;

export type ReviewGrade = (typeof REVIEW_GRADES)[keyof typeof REVIEW_GRADES];

export const API_ROUTES = {
{{- range .Routes}}
  {{.Key}}: {{.Value}},
{{- end}}
} as const;
`

var tmpl = template.Must(template.New("constants").Parse(moduleTmpl))

// Generate writes the TypeScript module. Output is deterministic: languages
// keep their order, map keys are sorted.
func Generate(w io.Writer, c Constants) error {
	data := struct {
		Languages         []string
		MaxPageSize       int
		ImageMaxDimension int
		Grades            []entry
		Routes            []entry
	}{
		MaxPageSize:       c.MaxPageSize,
		ImageMaxDimension: c.ImageMaxDimension,
	}

	for _, l := range c.Languages {
		data.Languages = append(data.Languages, strconv.Quote(l))
	}

	grades := make([]entry, 0, len(c.Grades))
	for name, value := range c.Grades {
		grades = append(grades, entry{Key: identifier(name), Value: strconv.Itoa(value)})
	}
	// Grades read best in numeric order.
	sort.Slice(grades, func(i, j int) bool {
		a, _ := strconv.Atoi(grades[i].Value)
		b, _ := strconv.Atoi(grades[j].Value)
		if a != b {
			return a < b
		}
		return grades[i].Key < grades[j].Key
	})
	data.Grades = grades

	for _, name := range sortedKeys(c.Routes) {
		data.Routes = append(data.Routes, entry{Key: identifier(name), Value: strconv.Quote(c.Routes[name])})
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render typescript constants: %w", err)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// identifier turns a name such as "correct-difficult" into CORRECT_DIFFICULT.
func identifier(name string) string {
	upper := strings.ToUpper(name)
	return strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, upper)
}
