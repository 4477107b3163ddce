package models

import "fmt"

// Period is the stats window
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod accepts day, week or month
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return p, nil
	default:
		return "", fmt.Errorf("invalid period %q (expected day, week or month)", s)
	}
}

// Stats is the aggregate result of a stats window
type Stats struct {
	HabitsCompleted int            `json:"habitsCompleted" yaml:"habitsCompleted"`
	TotalHabits     int            `json:"totalHabits" yaml:"totalHabits"`
	Streaks         map[string]int `json:"streaks" yaml:"streaks"`
}
