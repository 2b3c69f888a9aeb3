// Package services contains domain services of the dispatch core. GeoIndex
// keeps a live, concurrency-safe view of driver positions and availability
// and performs the atomic select-then-reserve step of driver assignment.
package services
