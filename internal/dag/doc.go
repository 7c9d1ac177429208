// Package dag holds a small dependency graph keyed by string IDs. The grammar
// checker uses it to model which lists reference which, so it can walk
// everything a root needs and report reference cycles.
package dag
