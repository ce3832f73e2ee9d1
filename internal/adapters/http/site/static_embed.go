package site

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed static/*
var staticFS embed.FS

const pageTemplate = "index.html.tmpl"

// FS returns an http.FileSystem for the embedded assets.
func FS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return http.FS(staticFS)
	}
	return http.FS(sub)
}

// Page parses the embedded page template.
func Page() (*template.Template, error) {
	t, err := template.ParseFS(staticFS, "static/"+pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	return t.Lookup(pageTemplate), nil
}
