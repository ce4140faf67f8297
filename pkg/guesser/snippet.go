package guesser

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/goliatone/go-guesser/internal/naming"
)

// DefaultImportPackage is the package named in generated import lines.
const DefaultImportPackage = "react-admin"

// DefaultDenylist holds tags never listed as imports.
var DefaultDenylist = []string{"span"}

var componentPattern = regexp.MustCompile(`<([^/\s>]+)`)

// Imports lists the components a snippet needs: wrapper plus every tag opened
// in representation, minus denylist, deduplicated and sorted.
func Imports(wrapper, representation string, denylist []string) []string {
	denied := make(map[string]struct{}, len(denylist))
	for _, name := range denylist {
		denied[name] = struct{}{}
	}

	seen := map[string]struct{}{}
	var out []string
	add := func(name string) {
		if name == "" {
			return
		}
		if _, skip := denied[name]; skip {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	add(wrapper)
	for _, match := range componentPattern.FindAllStringSubmatch(representation, -1) {
		add(match[1])
	}
	sort.Strings(out)
	return out
}

// FormatSnippet assembles the developer snippet for a guessed view.
func FormatSnippet(kind ViewKind, resourceName, representation, importPackage string, denylist []string) string {
	wrapper := kind.Component()
	if importPackage == "" {
		importPackage = DefaultImportPackage
	}
	imports := Imports(wrapper, representation, denylist)

	var b strings.Builder
	fmt.Fprintf(&b, "Guessed %s:\n\n", wrapper)
	fmt.Fprintf(&b, "import { %s } from '%s';\n\n", strings.Join(imports, ", "), importPackage)
	fmt.Fprintf(&b, "export const %s = () => (\n", naming.ComponentName(resourceName, wrapper))
	fmt.Fprintf(&b, "    <%s>\n%s\n    </%s>\n);", wrapper, representation, wrapper)
	return b.String()
}
