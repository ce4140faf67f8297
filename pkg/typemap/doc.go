// Package typemap binds each field type tag to the component factory that
// renders it and the function that prints it as source. Edit, Show and List
// return fresh built-in maps; callers derive variants with With instead of
// mutating a shared registry.
package typemap
