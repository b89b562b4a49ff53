package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInt(t *testing.T) {
	assert.Equal(t, 16, ToInt(16))
	assert.Equal(t, 16, ToInt(float64(16)))
	assert.Equal(t, 16, ToInt(" 16 "))
	assert.Equal(t, 0, ToInt(nil))
	assert.Equal(t, 0, ToInt("garbage"))
}

func TestToString(t *testing.T) {
	assert.Equal(t, "B", ToString("B"))
	assert.Equal(t, "2", ToString(float64(2)))
	assert.Equal(t, "2.5", ToString(2.5))
	assert.Equal(t, "", ToString(nil))
}

func TestToBool(t *testing.T) {
	assert.True(t, ToBool(true))
	assert.True(t, ToBool(float64(1)))
	assert.True(t, ToBool("true"))
	assert.True(t, ToBool("1"))
	assert.False(t, ToBool(0))
	assert.False(t, ToBool(nil))
}
