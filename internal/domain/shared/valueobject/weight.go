package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// WeightScale is the number of fractional digits weights are stored with.
// Gold weights are tracked to the milligram.
const WeightScale int32 = 3

// weightEpsilon is the tolerance used when comparing derived weights.
// Two weights closer than one milligram are considered equal.
var weightEpsilon = decimal.New(1, -3)

// Weight is a value object representing a gold weight in grams
// It is immutable - all operations return new Weight instances
type Weight struct {
	grams decimal.Decimal
}

// NewWeight creates a Weight from a decimal gram value
// The value is rounded to the milligram with banker's rounding
func NewWeight(grams decimal.Decimal) Weight {
	return Weight{grams: grams.RoundBank(WeightScale)}
}

// NewWeightFromFloat creates a Weight from a float64 gram value
func NewWeightFromFloat(grams float64) Weight {
	return NewWeight(decimal.NewFromFloat(grams))
}

// NewWeightFromString creates a Weight from a string representation
func NewWeightFromString(grams string) (Weight, error) {
	d, err := decimal.NewFromString(grams)
	if err != nil {
		return Weight{}, fmt.Errorf("invalid weight string: %w", err)
	}
	return NewWeight(d), nil
}

// ZeroWeight returns a zero-gram Weight
func ZeroWeight() Weight {
	return Weight{grams: decimal.Zero}
}

// Grams returns the decimal gram value
func (w Weight) Grams() decimal.Decimal {
	return w.grams
}

// IsZero returns true if the weight is zero
func (w Weight) IsZero() bool {
	return w.grams.IsZero()
}

// IsPositive returns true if the weight is positive
func (w Weight) IsPositive() bool {
	return w.grams.IsPositive()
}

// IsNegative returns true if the weight is negative
func (w Weight) IsNegative() bool {
	return w.grams.IsNegative()
}

// Add returns a new Weight with the sum of both weights
func (w Weight) Add(other Weight) Weight {
	return Weight{grams: w.grams.Add(other.grams)}
}

// Subtract returns a new Weight with the difference
func (w Weight) Subtract(other Weight) Weight {
	return Weight{grams: w.grams.Sub(other.grams)}
}

// Multiply returns a new Weight multiplied by the given factor
func (w Weight) Multiply(factor decimal.Decimal) Weight {
	return Weight{grams: w.grams.Mul(factor)}
}

// Negate returns a new Weight with the sign reversed
func (w Weight) Negate() Weight {
	return Weight{grams: w.grams.Neg()}
}

// Abs returns a new Weight with the absolute value
func (w Weight) Abs() Weight {
	return Weight{grams: w.grams.Abs()}
}

// Equals returns true if both weights are exactly equal
func (w Weight) Equals(other Weight) bool {
	return w.grams.Equal(other.grams)
}

// EqualsWithin returns true if both weights differ by less than the
// milligram tolerance. Used for conservation checks over sums of
// stored milligram-scaled values.
func (w Weight) EqualsWithin(other Weight) bool {
	return w.grams.Sub(other.grams).Abs().LessThan(weightEpsilon)
}

// LessThan returns true if this weight is less than the other
func (w Weight) LessThan(other Weight) bool {
	return w.grams.LessThan(other.grams)
}

// LessThanOrEqual returns true if this weight is less than or equal to the other
func (w Weight) LessThanOrEqual(other Weight) bool {
	return w.grams.LessThanOrEqual(other.grams)
}

// GreaterThan returns true if this weight is greater than the other
func (w Weight) GreaterThan(other Weight) bool {
	return w.grams.GreaterThan(other.grams)
}

// GreaterThanOrEqual returns true if this weight is greater than or equal to the other
func (w Weight) GreaterThanOrEqual(other Weight) bool {
	return w.grams.GreaterThanOrEqual(other.grams)
}

// String returns a string representation of the Weight in grams
func (w Weight) String() string {
	return fmt.Sprintf("%sg", w.grams.StringFixed(WeightScale))
}

// StringFixed returns the gram value as a string with milligram precision
func (w Weight) StringFixed() string {
	return w.grams.StringFixed(WeightScale)
}

// Float64 returns the gram value as a float64 (may lose precision)
func (w Weight) Float64() float64 {
	f, _ := w.grams.Float64()
	return f
}

// MarshalJSON implements json.Marshaler
func (w Weight) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.grams.StringFixed(WeightScale))
}

// UnmarshalJSON implements json.Unmarshaler
// Accepts both a JSON string and a bare JSON number
func (w *Weight) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return errors.New("weight must be a number or numeric string")
		}
		*w = NewWeightFromFloat(f)
		return nil
	}
	parsed, err := NewWeightFromString(s)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// Value implements driver.Valuer for database storage
func (w Weight) Value() (driver.Value, error) {
	return w.grams.String(), nil
}

// Scan implements sql.Scanner for database retrieval
func (w *Weight) Scan(value any) error {
	if value == nil {
		w.grams = decimal.Zero
		return nil
	}

	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	case float64:
		w.grams = decimal.NewFromFloat(v).RoundBank(WeightScale)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Weight", value)
	}

	grams, err := decimal.NewFromString(strVal)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	w.grams = grams
	return nil
}
