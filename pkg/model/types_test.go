package model_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-guesser/pkg/model"
)

func TestParseTag(t *testing.T) {
	for _, tag := range model.Tags() {
		parsed, ok := model.ParseTag(tag.String())
		if !ok || parsed != tag {
			t.Fatalf("expected %q to parse back to itself, got %v (ok=%v)", tag, parsed, ok)
		}
	}

	if tag, ok := model.ParseTag(" RICHTEXT "); !ok || tag != model.TagRichText {
		t.Fatalf("expected case-insensitive parse, got %v (ok=%v)", tag, ok)
	}
	if _, ok := model.ParseTag("table"); ok {
		t.Fatalf("expected unknown tag to fail")
	}
	if model.TagUnknown.Valid() {
		t.Fatalf("zero tag must not be valid")
	}
}

func TestNodeJSONAndComponents(t *testing.T) {
	node := model.Node{
		Component: "SimpleForm",
		Tag:       model.TagForm,
		Children: []model.Node{
			{Component: "TextInput", Tag: model.TagString, Props: model.Props{Source: "title"}},
			{Component: "ArrayInput", Tag: model.TagArray, Props: model.Props{Source: "tags"}, Children: []model.Node{
				{Component: "SimpleFormIterator", Children: []model.Node{
					{Component: "TextInput", Tag: model.TagString, Props: model.Props{Source: "name"}},
				}},
			}},
		},
	}

	want := []string{"ArrayInput", "SimpleForm", "SimpleFormIterator", "TextInput"}
	if diff := cmp.Diff(want, node.Components()); diff != "" {
		t.Fatalf("components mismatch (-want +got):\n%s", diff)
	}

	data, err := json.Marshal(node.Children[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"component":"TextInput","tag":"string","props":{"source":"title"}}` {
		t.Fatalf("unexpected node JSON: %s", data)
	}
}
