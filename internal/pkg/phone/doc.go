// Package phone validates raw phone numbers and canonicalizes them to E.164.
//
// Normalization is a pure function: parse the raw input against an optional
// two-letter region hint, require the number to be both possible and valid,
// and return the canonical international form.
package phone
