// Package hash provides helpers for hashing and verifying secrets.
//
// One-time codes are stored only as keyed hashes: the store keeps the HMAC
// of the exact code string, then verification compares the HMAC of the
// candidate. Hashing the exact string keeps fixed-width semantics intact
// ("0092" and "92" hash differently).
package hash
