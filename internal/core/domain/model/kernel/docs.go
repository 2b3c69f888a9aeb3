// Package kernel contains shared value objects of the dispatch domain:
// validated geographic points with great-circle distance and UUID-based
// identifiers. These types are immutable and used by every aggregate.
package kernel
