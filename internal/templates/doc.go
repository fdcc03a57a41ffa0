// Package templates implements the path and string pattern engine at the
// heart of the toolkit.
//
// A Template is parsed once from a definition string containing literal
// text, {key} placeholders, and bracketed [optional] groups. Keys are
// typed tokens (string, integer, frame sequence) with their own
// validation, default, and choice rules; the same Key instance is shared
// by every template that references it by name.
//
// Templates convert in both directions: ApplyFields renders a field
// mapping into a concrete path or string (substituting the per-platform
// root for path templates), and Fields recovers the field mapping from a
// concrete path or string. Recovery is fail-closed: when a string can be
// carved up in more than one type-valid way, the engine reports the
// ambiguity instead of guessing.
//
// Template and Key values are immutable after construction and safe to
// share across goroutines. A Set holds every template and key loaded from
// a declarative definitions file and is the usual entry point.
package templates
