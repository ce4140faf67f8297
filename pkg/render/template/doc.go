// Package template defines the template engine seam used by the HTML view
// layer. The gotemplate subpackage provides a pongo2-backed engine and a
// constructor for the go-template engine.
package template
