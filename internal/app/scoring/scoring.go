// Package scoring converts time remaining in a round into a point award.
//
//	points = basePoints + floor(maxSpeedBonus * min(1, remaining/total))
//
// Answering instantly earns basePoints+maxSpeedBonus, answering at the last
// second still earns basePoints. The award is computed against the server
// clock only; client timestamps never enter the formula.
package scoring

import (
	"math"
	"time"
)

const (
	DefaultBasePoints           = 5
	DefaultMaxSpeedBonus        = 15
	DefaultHintCost             = 3
	DefaultRoundDurationSeconds = 300
)

// Points returns the award for a correct answer. A nil deadline or a
// non-positive duration falls back to basePoints; this covers rounds whose
// timer was cleared by a status override.
func Points(roundEndTime *time.Time, roundDurationSeconds, basePoints, maxSpeedBonus int, now time.Time) int {
	if basePoints <= 0 {
		basePoints = DefaultBasePoints
	}
	if maxSpeedBonus <= 0 {
		maxSpeedBonus = DefaultMaxSpeedBonus
	}
	if roundEndTime == nil || roundDurationSeconds <= 0 {
		return basePoints
	}

	remaining := roundEndTime.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	total := time.Duration(roundDurationSeconds) * time.Second
	ratio := float64(remaining) / float64(total)
	if ratio > 1 {
		ratio = 1
	}
	return basePoints + int(math.Floor(float64(maxSpeedBonus)*ratio))
}
