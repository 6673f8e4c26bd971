package session

import "fmt"

// Phase is a named part of the in-game day.
type Phase string

const (
	PhaseNight     Phase = "night"
	PhaseDawn      Phase = "dawn"
	PhaseMorning   Phase = "morning"
	PhaseAfternoon Phase = "afternoon"
	PhaseEvening   Phase = "evening"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
)

// PhaseOf returns the day phase for hour.
//
// Precondition: hour is in [0, 23].
// Postcondition: Returns one of the five Phase constants.
func PhaseOf(hour int) Phase {
	switch {
	case hour >= 5 && hour <= 6:
		return PhaseDawn
	case hour >= 7 && hour <= 11:
		return PhaseMorning
	case hour >= 12 && hour <= 16:
		return PhaseAfternoon
	case hour >= 17 && hour <= 20:
		return PhaseEvening
	default:
		return PhaseNight
	}
}

// Clock is the session's in-game time, counted in seconds since the start
// of day 1.
type Clock struct {
	Seconds int64 `json:"totalSeconds" yaml:"seconds"`
}

// Day returns the 1-based day number.
func (c Clock) Day() int { return int(c.Seconds/secondsPerDay) + 1 }

// Hour returns the hour of the day in [0, 23].
func (c Clock) Hour() int { return int(c.Seconds%secondsPerDay) / secondsPerHour }

// Minute returns the minute of the hour in [0, 59].
func (c Clock) Minute() int { return int(c.Seconds%secondsPerHour) / secondsPerMinute }

// Phase returns the day phase of the current hour.
func (c Clock) Phase() Phase { return PhaseOf(c.Hour()) }

// String renders the clock as "Day 3, 14:05".
func (c Clock) String() string {
	return fmt.Sprintf("Day %d, %02d:%02d", c.Day(), c.Hour(), c.Minute())
}

// Advance moves the clock forward by delta seconds and returns the number
// of day boundaries crossed.
//
// Precondition: delta > 0.
func (c *Clock) Advance(delta int64) int {
	before := c.Day()
	c.Seconds += delta
	return c.Day() - before
}

// Delta sums a duration expressed in mixed units into seconds.
func Delta(seconds, minutes, hours, days int) int64 {
	return int64(seconds) +
		int64(minutes)*secondsPerMinute +
		int64(hours)*secondsPerHour +
		int64(days)*secondsPerDay
}
