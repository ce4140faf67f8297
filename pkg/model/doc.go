// Package model defines the values shared by the inference pipeline: ordered
// records fetched from a data provider, the closed set of field type tags the
// detector assigns, the props resolved for each inferred element, and the
// renderable Node tree handed to view layers.
//
// Records keep field insertion order at every nesting level. Detection emits
// fields in first-seen order across a sample, so decoding JSON into a plain
// map would make the guessed layout nondeterministic. Values stored in a
// Record are nil, bool, Go numeric kinds or json.Number, string, time.Time,
// *Record for nested records, and []any for arrays.
package model
