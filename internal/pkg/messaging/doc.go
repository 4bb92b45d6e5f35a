// Package messaging provides a broker-agnostic API for publishing and
// consuming messages.
//
// Business code relies on the interfaces in this package so the underlying
// broker (currently NATS) can be swapped without touching use-case code.
package messaging
