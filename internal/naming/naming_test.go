package naming

import "testing"

func TestLabel(t *testing.T) {
	cases := map[string]string{
		"title":            "Title",
		"author_id":        "Author Id",
		"author.firstName": "Author First Name",
		"isbn13":           "Isbn 13",
		"":                 "",
	}
	for input, want := range cases {
		if got := Label(input); got != want {
			t.Errorf("Label(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestComponentName(t *testing.T) {
	cases := []struct {
		resource string
		kind     string
		want     string
	}{
		{resource: "books", kind: "Show", want: "BookShow"},
		{resource: "categories", kind: "Edit", want: "CategoryEdit"},
		{resource: "people", kind: "List", want: "PersonList"},
		{resource: "Posts", kind: "Show", want: "PostShow"},
	}
	for _, tc := range cases {
		if got := ComponentName(tc.resource, tc.kind); got != tc.want {
			t.Errorf("ComponentName(%q, %q) = %q, want %q", tc.resource, tc.kind, got, tc.want)
		}
	}
}

func TestResourceName(t *testing.T) {
	cases := map[string]string{
		"Book":            "books",
		"PublishingHouse": "publishing_houses",
		"Category":        "categories",
	}
	for input, want := range cases {
		if got := ResourceName(input); got != want {
			t.Errorf("ResourceName(%q) = %q, want %q", input, got, want)
		}
	}
}
