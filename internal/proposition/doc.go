// Package proposition defines the value types shared by the booking store,
// the visibility filter and the overlap detector.
//
// A Proposition is constructed once at the store boundary and treated as
// immutable afterwards. Derived values such as start and end instants, the
// capacity state and display strings are computed on demand and never stored.
package proposition
