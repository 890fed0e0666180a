// Package app is the application layer: it orchestrates the presence session
// lifecycle and the weekly aggregation use cases on top of the storage
// repositories. All wall-clock reads go through an injected clock and a fixed
// timezone so behavior is reproducible in tests.
package app
