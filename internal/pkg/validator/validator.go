package validator

// Validator validates structs using declarative rules.
type Validator interface {
	// Validate returns nil when data passes all rules, or an error describing
	// the failed fields.
	Validate(data any) error
}
