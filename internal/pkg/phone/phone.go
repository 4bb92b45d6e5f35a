package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// ErrInvalidNumber indicates the input cannot be dialed as given.
var ErrInvalidNumber = errors.New("phone: invalid phone number")

// Canonical is the normalized representation of a dialable phone number.
//
// It is immutable once produced and is never persisted beyond the
// verification window.
type Canonical struct {
	// Raw is the input as received.
	Raw string
	// Region is the two-letter region hint the number was parsed against.
	Region string
	// E164 is the canonical international dialing form, e.g. "+15551234567".
	E164 string
	// CountryCode is the numeric country calling code, e.g. 1 for US.
	CountryCode int32
	// IsPossible reports whether the number has a dialable shape.
	IsPossible bool
	// IsValid reports whether the number passes region validity rules.
	IsValid bool
}

// Normalizer parses and validates raw phone numbers.
type Normalizer struct {
	defaultRegion string
}

// NewNormalizer constructs a Normalizer. defaultRegion is used when the
// caller supplies no region hint; it may be empty for international-only
// input (numbers already carrying a "+" prefix).
func NewNormalizer(defaultRegion string) *Normalizer {
	return &Normalizer{defaultRegion: strings.ToUpper(strings.TrimSpace(defaultRegion))}
}

// Normalize parses raw against the region hint and returns the canonical
// form. It fails with ErrInvalidNumber unless the number is both possible
// and valid; possible alone is not sufficient.
func (n *Normalizer) Normalize(raw, region string) (*Canonical, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, ErrInvalidNumber
	}

	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = n.defaultRegion
	}

	num, err := phonenumbers.Parse(trimmed, region)
	if err != nil {
		return nil, ErrInvalidNumber
	}

	c := &Canonical{
		Raw:         raw,
		Region:      region,
		CountryCode: num.GetCountryCode(),
		IsPossible:  phonenumbers.IsPossibleNumber(num),
		IsValid:     phonenumbers.IsValidNumber(num),
	}
	if !c.IsPossible || !c.IsValid {
		return nil, ErrInvalidNumber
	}

	c.E164 = phonenumbers.Format(num, phonenumbers.E164)
	return c, nil
}
