package models

import (
	"strings"
	"time"
)

// Frequency is the cadence tag stored on a habit. Besides daily and weekly the
// creation flow stores free-form tags such as "weekdays".
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyEveryday Frequency = "everyday"
	FrequencyWeekdays Frequency = "weekdays"
	FrequencyWeekends Frequency = "weekends"
)

// Cadence is how a frequency tag is counted by the stats window.
type Cadence int

const (
	CadenceOther Cadence = iota
	CadenceDaily
	CadenceWeekly
)

// Cadence maps a frequency tag onto the cadences the stats understand.
// "everyday" is an alias for daily; unknown tags are CadenceOther.
func (f Frequency) Cadence() Cadence {
	switch Frequency(strings.ToLower(strings.TrimSpace(string(f)))) {
	case FrequencyDaily, FrequencyEveryday:
		return CadenceDaily
	case FrequencyWeekly:
		return CadenceWeekly
	default:
		return CadenceOther
	}
}

// Habit is a recurring action the user tracks
type Habit struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Frequency Frequency  `json:"frequency" yaml:"frequency"`
	CreatedAt time.Time  `json:"createdAt" yaml:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
	GoalID    string     `json:"goalId,omitempty" yaml:"goalId,omitempty"`
}

// Ledger maps a YYYY-MM-DD date to the ids of the habits completed that day
type Ledger map[string][]string

// Contains reports whether habitID was completed on day
func (l Ledger) Contains(day, habitID string) bool {
	for _, id := range l[day] {
		if id == habitID {
			return true
		}
	}
	return false
}

// Add records habitID on day. It returns false if it was already there.
func (l Ledger) Add(day, habitID string) bool {
	if l.Contains(day, habitID) {
		return false
	}
	l[day] = append(l[day], habitID)
	return true
}

// RemoveHabit drops habitID from every date and reports whether anything changed.
func (l Ledger) RemoveHabit(habitID string) bool {
	changed := false
	for day, ids := range l {
		kept := ids[:0:0]
		for _, id := range ids {
			if id == habitID {
				changed = true
				continue
			}
			kept = append(kept, id)
		}
		l[day] = kept
	}
	return changed
}

// DaysWith counts the distinct dates containing habitID
func (l Ledger) DaysWith(habitID string) int {
	n := 0
	for day := range l {
		if l.Contains(day, habitID) {
			n++
		}
	}
	return n
}
