// Package sanitizer normalizes free-form input before validation and storage.
//
// All functions are idempotent and never fail: input that cannot be
// normalized comes back empty, and the validator rejects it from there.
package sanitizer
