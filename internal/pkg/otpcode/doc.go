// Package otpcode generates short numeric one-time codes.
//
// Codes are fixed-width digit strings (leading zeros preserved) drawn from a
// cryptographically secure source, suitable for SMS verification flows.
package otpcode
