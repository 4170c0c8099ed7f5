// Package embedded carries the built-in sample and congregation catalogs and
// the landing page template compiled into the binary.
package embedded

import (
	"bytes"
	"embed"
	"html/template"
	"strings"

	"github.com/FocuswithJustin/JuniperLessons/core/congregation"
	"github.com/FocuswithJustin/JuniperLessons/core/samples"
)

//go:embed data/*.json
var dataFS embed.FS

//go:embed templates/*.html
var templatesFS embed.FS

// SamplesJSON returns the raw built-in sample catalog.
func SamplesJSON() []byte {
	return mustRead("data/samples.json")
}

// CongregationsJSON returns the raw built-in congregation calendar.
func CongregationsJSON() []byte {
	return mustRead("data/congregations.json")
}

// Samples parses the built-in sample catalog.
func Samples() (*samples.Catalog, error) {
	return samples.LoadCatalog(bytes.NewReader(SamplesJSON()))
}

// Congregations parses the built-in congregation calendar.
func Congregations() (*congregation.Catalog, error) {
	return congregation.LoadCatalog(bytes.NewReader(CongregationsJSON()))
}

// Templates parses the embedded HTML templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"join": strings.Join,
	}).ParseFS(templatesFS, "templates/*.html")
}

func mustRead(name string) []byte {
	data, err := dataFS.ReadFile(name)
	if err != nil {
		panic("embedded: missing " + name)
	}
	return data
}
