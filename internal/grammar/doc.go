// Package grammar defines the in-memory rule set produced from a grammar
// document, along with the tolerant, line-oriented parser that builds it.
//
// A grammar document declares named lists with `$name` lines; every following
// non-directive line becomes an item of the most recently declared list.
// Items may carry a trailing tag suffix such as `{25%}` (selection weight) or
// `{plural:geese}` (an attribute used by `as plural` lookups).
//
// Parsing never fails. Lines that cannot be understood are stored as plain
// item text or ignored.
package grammar
