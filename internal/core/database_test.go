// AngelaMos | 2026
// database_test.go

package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJitteredDurationZeroBase(t *testing.T) {
	assert.Equal(t, time.Duration(0), jitteredDuration(0))
}

func TestJitteredDurationBaseBelowSpread(t *testing.T) {
	assert.Equal(
		t,
		5*time.Nanosecond,
		jitteredDuration(5*time.Nanosecond),
	)
}

func TestJitteredDurationBounds(t *testing.T) {
	base := time.Hour

	for range 100 {
		d := jitteredDuration(base)
		assert.GreaterOrEqual(t, d, base)
		assert.Less(t, d, base+base/7)
	}
}
