// Package driver contains the Driver aggregate: identity, availability, and
// the last reported position of a delivery driver. Availability transitions
// (Reserve/Release) guard the invariant that an unavailable driver is bound
// to exactly one non-terminal delivery.
package driver
