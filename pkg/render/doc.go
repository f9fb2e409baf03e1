// Package render groups the output side of cladding.
//
// The [sink] subpackage renders finished layouts: flat SVG and PNG sheets,
// a JSON cut list, STL meshes and Graphviz corner diagrams. Everything in
// it reads a [layout.Result] and never re-runs the layout, so cached
// results render exactly like fresh ones.
//
// Supported output formats are listed in [Formats].
package render

import "slices"

// Output formats understood by the CLI and the API.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatSTL  = "stl"
)

// Formats returns every output format in display order.
func Formats() []string {
	return []string{FormatSVG, FormatPNG, FormatJSON, FormatSTL}
}

// ValidFormat reports whether f is a known output format.
func ValidFormat(f string) bool {
	return slices.Contains(Formats(), f)
}
