package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixed(t *testing.T) {
	start := time.Date(2026, 1, 31, 22, 30, 0, 0, time.UTC)
	c := NewFixed(start)
	assert.Equal(t, start, c.Now())

	c.AddDays(1)
	assert.Equal(t, time.Date(2026, 2, 1, 22, 30, 0, 0, time.UTC), c.Now())

	c.Advance(2 * time.Hour)
	assert.Equal(t, time.Date(2026, 2, 2, 0, 30, 0, 0, time.UTC), c.Now())
}

func TestDateOf_UsesLocalCalendarDate(t *testing.T) {
	istanbul := time.FixedZone("TRT", 3*60*60)
	// 23:30 UTC on the 14th is already the 15th in Istanbul.
	local := time.Date(2026, 10, 14, 23, 30, 0, 0, time.UTC).In(istanbul)

	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), DateOf(local))
}
