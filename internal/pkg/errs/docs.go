// Package errs provides the standardized error types used across the
// dispatch service.
//
// Each error type follows a consistent pattern:
//   - a sentinel error variable (e.g. ErrObjectNotFound) matched via errors.Is
//   - a struct type carrying error details
//   - constructor functions with and without an underlying cause
//   - Error() for formatting and Unwrap() returning the sentinel
//
// Expected business outcomes (not found, invalid value, missing value,
// out-of-range value) are expressed through these types so callers can
// classify them without string matching.
package errs
