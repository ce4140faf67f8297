package guesser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestImports(t *testing.T) {
	representation := `<span>label</span><TextField source="a" /><ReferenceField source="b" reference="c"><TextField source="id" /></ReferenceField>`

	got := Imports("Show", representation, DefaultDenylist)
	want := []string{"ReferenceField", "Show", "TextField"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("imports mismatch (-want +got):\n%s", diff)
	}

	got = Imports("Show", representation, nil)
	want = []string{"ReferenceField", "Show", "TextField", "span"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("imports mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatSnippetList(t *testing.T) {
	rep := "        <Datagrid rowClick=\"edit\">\n            <TextField source=\"id\" />\n        </Datagrid>"
	got := FormatSnippet(ViewList, "categories", rep, "", DefaultDenylist)
	want := "Guessed List:\n\n" +
		"import { Datagrid, List, TextField } from 'react-admin';\n\n" +
		"export const CategoryList = () => (\n" +
		"    <List>\n" + rep + "\n    </List>\n);"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("snippet mismatch (-want +got):\n%s", diff)
	}
}

func TestParseViewKind(t *testing.T) {
	for _, kind := range ViewKinds() {
		parsed, err := ParseViewKind(kind.String())
		if err != nil || parsed != kind {
			t.Fatalf("round trip %s: got %v, %v", kind, parsed, err)
		}
	}
	if _, err := ParseViewKind("create"); err == nil {
		t.Fatalf("expected create to be rejected")
	}
}
