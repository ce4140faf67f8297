package model_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-guesser/pkg/model"
)

func TestRecordUnmarshalJSON_PreservesOrder(t *testing.T) {
	payload := []byte(`{"zeta":1,"alpha":"a","author":{"name":"Tolstoy","born":1828},"tags":[{"z":1,"a":2}]}`)

	var rec model.Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if diff := cmp.Diff([]string{"zeta", "alpha", "author", "tags"}, rec.Keys()); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}

	author, ok := rec.Get("author")
	if !ok {
		t.Fatalf("author missing")
	}
	nested, ok := author.(*model.Record)
	if !ok {
		t.Fatalf("expected nested record, got %T", author)
	}
	if diff := cmp.Diff([]string{"name", "born"}, nested.Keys()); diff != "" {
		t.Fatalf("nested key order mismatch (-want +got):\n%s", diff)
	}

	value, ok := rec.Lookup("tags.0.z")
	if !ok {
		t.Fatalf("expected tags.0.z to resolve")
	}
	if value != json.Number("1") {
		t.Fatalf("expected json.Number 1, got %#v", value)
	}
}

func TestRecordMarshalJSON_RoundTripsOrder(t *testing.T) {
	rec := model.RecordOf(
		model.KV("id", 1),
		model.KV("title", "War and Peace"),
		model.KV("meta", map[string]any{"b": true, "a": nil}),
	)

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"id":1,"title":"War and Peace","meta":{"a":null,"b":true}}`
	if string(data) != want {
		t.Fatalf("unexpected JSON:\nwant %s\ngot  %s", want, data)
	}
}

func TestRecordLookup(t *testing.T) {
	rec := model.RecordOf(
		model.KV("author", model.RecordOf(model.KV("name", "Tolstoy"))),
		model.KV("tags", []any{"novel", "classic"}),
	)

	cases := []struct {
		path string
		want any
		ok   bool
	}{
		{path: "author.name", want: "Tolstoy", ok: true},
		{path: "tags.1", want: "classic", ok: true},
		{path: "tags.9", ok: false},
		{path: "author.missing", ok: false},
		{path: "", ok: false},
	}

	for _, tc := range cases {
		got, ok := rec.Lookup(tc.path)
		if ok != tc.ok {
			t.Fatalf("%q: expected ok=%v, got %v", tc.path, tc.ok, ok)
		}
		if ok && got != tc.want {
			t.Fatalf("%q: expected %v, got %v", tc.path, tc.want, got)
		}
	}
}

func TestDecodeRecords(t *testing.T) {
	records, err := model.DecodeRecords([]byte(`[{"id":1},{"id":2,"extra":null}]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if !records[1].Has("extra") {
		t.Fatalf("expected null field to be present")
	}

	single, err := model.DecodeRecords([]byte(`{"id":1}`))
	if err != nil {
		t.Fatalf("decode single: %v", err)
	}
	if len(single) != 1 {
		t.Fatalf("expected single record, got %d", len(single))
	}

	if _, err := model.DecodeRecords([]byte(`"nope"`)); err == nil {
		t.Fatalf("expected scalar payload to fail")
	}
}

func TestRecordCloneIsDeep(t *testing.T) {
	original := model.RecordOf(model.KV("author", model.RecordOf(model.KV("name", "Tolstoy"))))
	clone := original.Clone()

	author, _ := clone.Get("author")
	author.(*model.Record).Set("name", "Dostoevsky")

	got, _ := original.Lookup("author.name")
	if got != "Tolstoy" {
		t.Fatalf("clone mutated original: %v", got)
	}
}
