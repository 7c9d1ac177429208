// Package engine expands grammar rule sets into finished text.
//
// Generation runs in two passes. The first pass scans a template left to
// right and evaluates every bracketed tag recursively: list references,
// inline alternations, identifier bindings and recalls, numeric ranges and
// reserved names, each optionally qualified by comma-separated modifiers.
// Markers that depend on the surrounding text ([a], [an], [s], [ ]) are left
// in place. The second pass, Repair, resolves those markers once the whole
// output is known.
//
// An Engine is not safe for concurrent use. Each call to Generate produces
// its outputs sequentially and every output owns an isolated generation
// context (random stream, identifier store, uniqueness set).
package engine
