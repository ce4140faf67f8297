// Package detect infers a field type tag for every field observed in a
// sample of records.
//
// Heuristics run in a fixed order and the first match wins: identifier field,
// configured to-one and to-many relationships, the <name>_id / <name>_ids
// convention, arrays of records, nested records, booleans, numbers and
// finally string refinements (date, email, url, rich text). Fields with
// conflicting types across the sample resolve to the first record that holds
// a defined value; no reconciliation is attempted.
package detect
