package habitlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitflow/internal/models"
)

type AddHabitMsg struct{}

type CompleteHabitMsg struct {
	ID string
}

type EditHabitMsg struct {
	Habit models.Habit
}

type DeleteHabitMsg struct {
	Habit models.Habit
}

type Item struct {
	Habit    models.Habit
	Goal     *models.Goal
	IsMarked bool
}

func (i Item) Title() string {
	if i.IsMarked {
		return "✓ " + i.Habit.Name
	}
	return "○ " + i.Habit.Name
}

func (i Item) Description() string {
	desc := string(i.Habit.Frequency)
	if i.Goal != nil {
		desc += fmt.Sprintf(" | %s %d/%d", i.Goal.Title, i.Goal.Completed, i.Goal.Target)
	}
	if i.IsMarked {
		return desc + " | done today"
	}
	return desc
}

func (i Item) FilterValue() string { return i.Habit.Name }

type KeyMap struct {
	Add    key.Binding
	Mark   key.Binding
	Edit   key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Mark: key.NewBinding(
			key.WithKeys("m", " "),
			key.WithHelp("m", "mark done"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func items(habits []models.Habit, goals []models.Goal, done func(string) bool) []list.Item {
	byID := make(map[string]models.Goal, len(goals))
	for _, g := range goals {
		byID[g.ID] = g
	}
	out := make([]list.Item, len(habits))
	for i, h := range habits {
		item := Item{Habit: h, IsMarked: done(h.ID)}
		if g, ok := byID[h.GoalID]; ok {
			item.Goal = &g
		}
		out[i] = item
	}
	return out
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Mark, keys.Edit, keys.Delete}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Mark, keys.Edit, keys.Delete}
	}
	return Model{list: l, keys: keys}
}

// SetHabits replaces the list contents. done reports whether a habit is in
// today's entry.
func (m *Model) SetHabits(habits []models.Habit, goals []models.Goal, done func(string) bool) {
	m.list.SetItems(items(habits, goals, done))
}

// Items returns the current rows
func (m Model) Items() []Item {
	var out []Item
	for _, it := range m.list.Items() {
		if i, ok := it.(Item); ok {
			out = append(out, i)
		}
	}
	return out
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Mark):
			if i, ok := m.list.SelectedItem().(Item); ok && !i.IsMarked {
				return m, func() tea.Msg { return CompleteHabitMsg{ID: i.Habit.ID} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Edit):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return EditHabitMsg{Habit: i.Habit} }
			}
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteHabitMsg{Habit: i.Habit} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
