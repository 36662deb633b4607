// Package vite resolves the script and stylesheet tags of frontend entry
// points from a Vite build manifest, or points them at the Vite dev server.
package vite

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"os"
	"strings"
)

// ErrUnknownEntry is returned for entry points missing from the manifest.
var ErrUnknownEntry = errors.New("unknown vite entry")

// Chunk is one entry of the build manifest.
type Chunk struct {
	File           string   `json:"file"`
	Name           string   `json:"name,omitempty"`
	Src            string   `json:"src,omitempty"`
	IsEntry        bool     `json:"isEntry,omitempty"`
	IsDynamicEntry bool     `json:"isDynamicEntry,omitempty"`
	Imports        []string `json:"imports,omitempty"`
	DynamicImports []string `json:"dynamicImports,omitempty"`
	CSS            []string `json:"css,omitempty"`
	Assets         []string `json:"assets,omitempty"`
}

// Assets are the URLs needed to load one entry point.
type Assets struct {
	Script   string
	CSS      []string
	Preloads []string
}

// Manifest resolves entry points. The zero value is not usable; use Load,
// Parse or Dev.
type Manifest struct {
	chunks    map[string]Chunk
	base      string
	devServer string
}

// Load reads a manifest.json produced by `vite build --manifest`.
func Load(path, base string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vite manifest: %w", err)
	}
	return Parse(data, base)
}

// Parse decodes manifest JSON. base is the public URL prefix of the build output.
func Parse(data []byte, base string) (*Manifest, error) {
	var chunks map[string]Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("failed to parse vite manifest: %w", err)
	}
	return &Manifest{chunks: chunks, base: normalizeBase(base)}, nil
}

// Dev returns a manifest that serves every entry from the dev server.
func Dev(devServer string) *Manifest {
	return &Manifest{devServer: strings.TrimRight(devServer, "/")}
}

func normalizeBase(base string) string {
	if base == "" {
		return "/"
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

// IsDev reports whether entries are served by the dev server.
func (m *Manifest) IsDev() bool {
	return m.devServer != ""
}

// Assets returns the entry script, the stylesheets of the entry and of every
// chunk it imports statically (depth first, without duplicates) and the
// chunks to preload.
func (m *Manifest) Assets(entry string) (Assets, error) {
	if m.IsDev() {
		return Assets{Script: m.devServer + "/" + strings.TrimLeft(entry, "/")}, nil
	}

	chunk, ok := m.chunks[entry]
	if !ok {
		return Assets{}, fmt.Errorf("%w: %s", ErrUnknownEntry, entry)
	}

	assets := Assets{Script: m.base + chunk.File}
	seenCSS := make(map[string]bool)
	visited := map[string]bool{entry: true}

	addCSS := func(c Chunk) {
		for _, css := range c.CSS {
			if !seenCSS[css] {
				seenCSS[css] = true
				assets.CSS = append(assets.CSS, m.base+css)
			}
		}
	}

	var walk func(key string)
	walk = func(key string) {
		if visited[key] {
			return
		}
		visited[key] = true
		imported, ok := m.chunks[key]
		if !ok {
			return
		}
		assets.Preloads = append(assets.Preloads, m.base+imported.File)
		addCSS(imported)
		for _, next := range imported.Imports {
			walk(next)
		}
	}

	addCSS(chunk)
	for _, key := range chunk.Imports {
		walk(key)
	}
	return assets, nil
}

var tagsTemplate = template.Must(template.New("tags").Parse(
	`{{if .Client}}<script type="module" src="{{.Client}}"></script>
{{end}}{{range .Assets.CSS}}<link rel="stylesheet" href="{{.}}">
{{end}}{{range .Assets.Preloads}}<link rel="modulepreload" href="{{.}}">
{{end}}<script type="module" src="{{.Assets.Script}}"></script>`))

// Tags renders the HTML needed to load an entry point.
func (m *Manifest) Tags(entry string) (template.HTML, error) {
	assets, err := m.Assets(entry)
	if err != nil {
		return "", err
	}

	data := struct {
		Client string
		Assets Assets
	}{Assets: assets}
	if m.IsDev() {
		data.Client = m.devServer + "/@vite/client"
	}

	var buf bytes.Buffer
	if err := tagsTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render vite tags: %w", err)
	}
	return template.HTML(buf.String()), nil
}
