package models

// Goal is a day-count target tied to a habit through Habit.GoalID
type Goal struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Completed int       `json:"completed" yaml:"completed"`
	Target    int       `json:"target" yaml:"target"`
	Frequency Frequency `json:"frequency" yaml:"frequency"`
}

// Achieved reports whether the goal reached its target
func (g Goal) Achieved() bool {
	return g.Target > 0 && g.Completed >= g.Target
}
