package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatParseRoundTrip(t *testing.T) {
	day := time.Date(2025, 3, 9, 17, 45, 0, 0, time.UTC)
	s := Format(day)
	assert.Equal(t, "2025-03-09", s)

	parsed, err := Parse(s)
	assert.NoError(t, err)
	assert.Equal(t, 2025, parsed.Year())
	assert.Equal(t, time.March, parsed.Month())
	assert.Equal(t, 9, parsed.Day())
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("2025-01-31"))
	assert.False(t, IsValid("2025-02-30"))
	assert.False(t, IsValid("31-01-2025"))
	assert.False(t, IsValid(""))
}

func TestAddDaysCrossesMonthBoundary(t *testing.T) {
	assert.Equal(t, "2025-02-01", AddDays("2025-01-31", 1))
	assert.Equal(t, "2024-12-31", AddDays("2025-01-01", -1))
	assert.Equal(t, "2025-01-30", Yesterday("2025-01-31"))
}

func TestBeforeIsChronological(t *testing.T) {
	assert.True(t, Before("2025-01-31", "2025-02-01"))
	assert.False(t, Before("2025-02-01", "2025-01-31"))
	assert.False(t, Before("2025-02-01", "2025-02-01"))
}
