// Package modhash implements the integrity hash gate that decides whether a
// loadable module image may be loaded.
//
// A module is admitted only when the SHA-1 digest of its bytes is present in
// a table of known-good digests. The table is sorted ascending and immutable
// once built.
//
// # Lookup
//
// The lookup does not bisect. It seeds an index from the high nibble of the
// first digest byte, (n * (d[0] >> 4)) / 16, compares once to pick a
// direction and then walks one entry at a time in that direction. It stops
// with a match, when the comparison changes sign, or when it leaves the
// table. On a sorted table this finds every present digest; on a table that
// breaks the ordering invariant it can miss entries that sit on the other
// side of the seed. The walk is kept as is for compatibility with the module
// loaders that shipped it.
//
// # Concurrency
//
// Hashing engines are explicit. Gate.CheckWith uses a caller-owned Engine,
// which must not be shared between goroutines. Gate.Check borrows an engine
// from a mutex-guarded pool and is safe for concurrent use.
package modhash
