package sctp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSerialNumberArithmetic32(t *testing.T) {
	assert.True(t, sna32LT(10, 20))
	assert.False(t, sna32LT(20, 10))
	assert.True(t, sna32LT(math.MaxUint32, 0), "wraps around")
	assert.True(t, sna32GT(0, math.MaxUint32), "wraps around")
	assert.True(t, sna32LTE(10, 10))
	assert.True(t, sna32GTE(10, 10))
	assert.True(t, sna32EQ(42, 42))
}

func TestSerialNumberArithmetic16(t *testing.T) {
	assert.True(t, sna16LT(10, 20))
	assert.True(t, sna16LT(math.MaxUint16, 0), "wraps around")
	assert.True(t, sna16GT(0, math.MaxUint16), "wraps around")
	assert.True(t, sna16LTE(10, 10))
	assert.True(t, sna16GTE(10, 10))
}

func TestGetPadding(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 0}, {1, 3}, {2, 2}, {3, 1}, {4, 0}, {5, 3},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, getPadding(c.in))
	}
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, uint32(1), min32(1, 2))
	assert.Equal(t, uint32(2), max32(1, 2))
	assert.Equal(t, uint64(1), min64(1, 2))
}
