// Package uid provides small ID generators behind narrow interfaces.
package uid

// StringID generates string identifiers (correlation IDs, request IDs).
type StringID interface {
	Generate() string
}

// NumberID generates int64 identifiers (audit rows, event records).
type NumberID interface {
	Generate() int64
}
