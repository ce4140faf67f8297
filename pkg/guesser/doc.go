// Package guesser orchestrates field type inference for one admin view.
//
// A Guesser moves through idle, detecting and ready states. SetResource with
// a new resource clears the tree before any sample for it is applied; samples
// are applied through tickets so results fetched for a previous resource, or
// after Close, are dropped. Outside production the generated source snippet
// is written once to the configured logrus logger.
package guesser
