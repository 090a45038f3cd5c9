package utils

import (
	"math/rand"
	"time"
)

// FortuneSeed derives a stable per-user-per-day seed so template fortunes
// are reproducible: the same birthday and date always yield the same
// numbers. Users without a birthday share the date-only stream.
func FortuneSeed(birthday *time.Time, day time.Time) int64 {
	var birthMonth, birthDay int
	if birthday != nil {
		birthMonth = int(birthday.Month())
		birthDay = birthday.Day()
	}

	return int64(birthMonth*31+birthDay)*1000 + int64(day.YearDay())
}

// NewSeededRand returns a deterministic source for the given seed.
func NewSeededRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// IntBetween draws an integer in [min, max) from r.
func IntBetween(r *rand.Rand, min, max int) int {
	if max <= min {
		return min
	}
	return min + r.Intn(max-min)
}

// HalfStars draws a half-star-granular rating in [min, max] from r.
func HalfStars(r *rand.Rand, min, max float64) float64 {
	steps := int((max - min) * 2)
	if steps <= 0 {
		return min
	}
	return min + float64(r.Intn(steps+1))/2
}
