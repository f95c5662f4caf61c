package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Score bounds. They match the DynamoDB number type: at most 38 significant
// digits and a magnitude between 1e-130 and 1e126.
const (
	MaxSignificantDigits = 38
	MaxAdjustedExponent  = 125
	MinAdjustedExponent  = -130
)

// ErrOutOfRange reports a number outside the supported precision or magnitude.
var ErrOutOfRange = errors.New("number is out of range")

// PreciseNumber is an exact decimal score value.
//
// It encodes to JSON as an integer literal when it has no fractional part
// and as a float literal otherwise, so integer scores never gain a ".0".
type PreciseNumber struct {
	value decimal.Decimal
}

// NewPreciseNumber wraps an existing decimal.
func NewPreciseNumber(value decimal.Decimal) PreciseNumber {
	return PreciseNumber{value: value}
}

// PreciseNumberFromInt returns an integer-valued PreciseNumber.
func PreciseNumberFromInt(value int64) PreciseNumber {
	return PreciseNumber{value: decimal.NewFromInt(value)}
}

// ParsePreciseNumber parses a decimal literal such as "100", "99.5" or "1e3".
func ParsePreciseNumber(text string) (PreciseNumber, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return PreciseNumber{}, fmt.Errorf("empty number")
	}
	value, err := decimal.NewFromString(text)
	if err != nil {
		return PreciseNumber{}, fmt.Errorf("invalid number %q", text)
	}
	if value.IsZero() {
		value = decimal.Zero
	}
	n := PreciseNumber{value: value}
	if err := n.CheckRange(); err != nil {
		return PreciseNumber{}, err
	}
	return n, nil
}

// CheckRange returns ErrOutOfRange when n has more than MaxSignificantDigits
// significant digits or its adjusted exponent falls outside
// [MinAdjustedExponent, MaxAdjustedExponent]. Zero is always in range.
func (n PreciseNumber) CheckRange() error {
	coefficient := n.value.Coefficient()
	if coefficient.Sign() == 0 {
		return nil
	}
	digits := strings.TrimLeft(coefficient.String(), "-")
	trimmed := strings.TrimRight(digits, "0")
	if len(trimmed) > MaxSignificantDigits {
		return ErrOutOfRange
	}
	// Adjusted exponent of d.ddd x 10^adj.
	adjusted := int64(n.value.Exponent()) + int64(len(digits)) - 1
	if adjusted > MaxAdjustedExponent || adjusted < MinAdjustedExponent {
		return ErrOutOfRange
	}
	return nil
}

// MustParsePreciseNumber is ParsePreciseNumber for literals known to be valid.
func MustParsePreciseNumber(text string) PreciseNumber {
	n, err := ParsePreciseNumber(text)
	if err != nil {
		panic(err)
	}
	return n
}

// Decimal returns the underlying decimal value.
func (n PreciseNumber) Decimal() decimal.Decimal {
	return n.value
}

// IsInteger reports whether the value has no fractional component.
func (n PreciseNumber) IsInteger() bool {
	return n.value.IsInteger()
}

// Cmp compares n and other: -1 if n < other, 0 if equal, +1 if n > other.
func (n PreciseNumber) Cmp(other PreciseNumber) int {
	return n.value.Cmp(other.value)
}

// Equal reports whether both values are numerically equal.
func (n PreciseNumber) Equal(other PreciseNumber) bool {
	return n.value.Equal(other.value)
}

// String returns the canonical decimal text. Numerically equal values share
// one canonical form ("100", "100.0" and "1e2" all become "100"), which makes
// it usable as a storage key.
func (n PreciseNumber) String() string {
	return n.value.String()
}

// Float64 returns the nearest float64.
func (n PreciseNumber) Float64() float64 {
	return n.value.InexactFloat64()
}

// MarshalJSON implements json.Marshaler.
func (n PreciseNumber) MarshalJSON() ([]byte, error) {
	if n.IsInteger() {
		return []byte(n.value.String()), nil
	}
	f := n.value.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return []byte(n.value.String()), nil
	}
	return json.Marshal(f)
}

// UnmarshalJSON accepts a JSON number or a string holding a decimal literal.
func (n *PreciseNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		parsed, err := ParsePreciseNumber(text)
		if err != nil {
			return err
		}
		*n = parsed
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return errors.New("expected a number")
	}
	parsed, err := ParsePreciseNumber(num.String())
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
