package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWeight(t *testing.T) {
	t.Run("rounds to milligram precision", func(t *testing.T) {
		w := NewWeight(decimal.NewFromFloat(10.00049))
		assert.Equal(t, "10.000", w.StringFixed())
	})

	t.Run("from float", func(t *testing.T) {
		w := NewWeightFromFloat(21.345)
		assert.True(t, w.Grams().Equal(decimal.NewFromFloat(21.345)))
	})
}

func TestNewWeightFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		w, err := NewWeightFromString("100.000")
		require.NoError(t, err)
		assert.True(t, w.Grams().Equal(decimal.NewFromInt(100)))
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewWeightFromString("heavy")
		assert.Error(t, err)
	})
}

func TestWeightSigns(t *testing.T) {
	assert.True(t, ZeroWeight().IsZero())
	assert.True(t, NewWeightFromFloat(1.5).IsPositive())
	assert.True(t, NewWeightFromFloat(-1.5).IsNegative())
}

func TestWeightArithmetic(t *testing.T) {
	a := NewWeightFromFloat(100)
	b := NewWeightFromFloat(42)

	assert.Equal(t, "142.000", a.Add(b).StringFixed())
	assert.Equal(t, "58.000", a.Subtract(b).StringFixed())
	assert.Equal(t, "200.000", a.Multiply(decimal.NewFromInt(2)).StringFixed())
	assert.True(t, b.Negate().IsNegative())
	assert.True(t, b.Negate().Abs().Equals(b))
}

func TestWeightComparisons(t *testing.T) {
	small := NewWeightFromFloat(0.5)
	large := NewWeightFromFloat(2)

	assert.True(t, small.LessThan(large))
	assert.True(t, small.LessThanOrEqual(small))
	assert.True(t, large.GreaterThan(small))
	assert.True(t, large.GreaterThanOrEqual(large))
}

func TestWeightEqualsWithin(t *testing.T) {
	t.Run("within one milligram", func(t *testing.T) {
		a := NewWeight(decimal.NewFromFloat(100.0004))
		b := NewWeightFromFloat(100)
		assert.True(t, a.EqualsWithin(b))
	})

	t.Run("exactly one milligram apart is not equal", func(t *testing.T) {
		a := NewWeightFromFloat(100.001)
		b := NewWeightFromFloat(100)
		assert.False(t, a.EqualsWithin(b))
	})
}

func TestWeightString(t *testing.T) {
	w := NewWeightFromFloat(58)
	assert.Equal(t, "58.000g", w.String())
}

func TestWeightJSON(t *testing.T) {
	t.Run("marshals as fixed string", func(t *testing.T) {
		data, err := json.Marshal(NewWeightFromFloat(42.5))
		require.NoError(t, err)
		assert.Equal(t, `"42.500"`, string(data))
	})

	t.Run("unmarshals string", func(t *testing.T) {
		var w Weight
		require.NoError(t, json.Unmarshal([]byte(`"12.345"`), &w))
		assert.Equal(t, "12.345", w.StringFixed())
	})

	t.Run("unmarshals bare number", func(t *testing.T) {
		var w Weight
		require.NoError(t, json.Unmarshal([]byte(`7.25`), &w))
		assert.Equal(t, "7.250", w.StringFixed())
	})

	t.Run("rejects non-numeric", func(t *testing.T) {
		var w Weight
		assert.Error(t, json.Unmarshal([]byte(`{"g":1}`), &w))
	})
}

func TestWeightScan(t *testing.T) {
	t.Run("scans string", func(t *testing.T) {
		var w Weight
		require.NoError(t, w.Scan("99.999"))
		assert.Equal(t, "99.999", w.StringFixed())
	})

	t.Run("scans byte slice", func(t *testing.T) {
		var w Weight
		require.NoError(t, w.Scan([]byte("0.001")))
		assert.Equal(t, "0.001", w.StringFixed())
	})

	t.Run("nil becomes zero", func(t *testing.T) {
		var w Weight
		require.NoError(t, w.Scan(nil))
		assert.True(t, w.IsZero())
	})
}
