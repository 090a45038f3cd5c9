package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOfTruncatesToMidnightUTC(t *testing.T) {
	date := DateOf(time.Date(2026, 8, 28, 23, 59, 59, 0, time.UTC))
	assert.Equal(t, "2026-08-28", DateKey(date))
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), time.Time(date))
}

func TestParseDate(t *testing.T) {
	date, err := ParseDate("1995-06-15")
	require.NoError(t, err)
	assert.Equal(t, "1995-06-15", DateKey(date))

	_, err = ParseDate("06/15/1995")
	assert.Error(t, err)

	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestSameDate(t *testing.T) {
	a := DateOf(time.Date(2026, 8, 28, 1, 0, 0, 0, time.UTC))
	b := DateOf(time.Date(2026, 8, 28, 22, 0, 0, 0, time.UTC))
	c := DateOf(time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC))

	assert.True(t, SameDate(a, b))
	assert.False(t, SameDate(a, c))
}

func TestFortuneSeedIsStablePerUserAndDay(t *testing.T) {
	birthday := time.Date(1995, 6, 15, 0, 0, 0, 0, time.UTC)
	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, FortuneSeed(&birthday, day), FortuneSeed(&birthday, day))

	nextDay := day.AddDate(0, 0, 1)
	assert.NotEqual(t, FortuneSeed(&birthday, day), FortuneSeed(&birthday, nextDay))

	otherBirthday := time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.NotEqual(t, FortuneSeed(&birthday, day), FortuneSeed(&otherBirthday, day))

	// No birthday shares the date-only stream.
	assert.Equal(t, FortuneSeed(nil, day), FortuneSeed(nil, day))
}

func TestIntBetween(t *testing.T) {
	r := NewSeededRand(42)

	for i := 0; i < 100; i++ {
		v := IntBetween(r, 60, 96)
		assert.GreaterOrEqual(t, v, 60)
		assert.Less(t, v, 96)
	}

	assert.Equal(t, 5, IntBetween(r, 5, 5))
}

func TestHalfStars(t *testing.T) {
	r := NewSeededRand(42)

	for i := 0; i < 100; i++ {
		v := HalfStars(r, 2.5, 5)
		assert.GreaterOrEqual(t, v, 2.5)
		assert.LessOrEqual(t, v, 5.0)
		assert.Equal(t, v*2, float64(int(v*2)), "ratings are half-star granular")
	}
}
