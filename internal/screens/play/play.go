package play

import (
	"context"
	"fmt"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizpath/internal/adaptive"
	"github.com/abhisek/quizpath/internal/learner"
	"github.com/abhisek/quizpath/internal/quiz"
	"github.com/abhisek/quizpath/internal/selection"
	"github.com/abhisek/quizpath/internal/store"
	"github.com/abhisek/quizpath/internal/ui/theme"
)

type phase int

const (
	phaseAsking phase = iota
	phaseSelfGrade
	phaseFeedback
	phaseDone
)

// Model is the interactive play loop: suggest, present, grade, repeat.
// Multiple-choice items grade themselves; free-form items take typed
// input and a self-grade.
type Model struct {
	svc      *adaptive.Service
	profiles store.ProfileRepo
	events   store.EventRepo
	profile  *learner.Profile

	current  quiz.Quiz
	selected int
	input    textinput.Model
	phase    phase

	correct     bool
	answered    int
	answeredOK  int
	failure     string
	saveWarning string
}

// New creates the play model with the learner's current profile.
func New(svc *adaptive.Service, profiles store.ProfileRepo, events store.EventRepo, profile *learner.Profile) Model {
	ti := textinput.New()
	ti.Placeholder = "your answer"
	ti.Focus()
	return Model{
		svc:      svc,
		profiles: profiles,
		events:   events,
		profile:  profile,
		input:    ti,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Run starts the play loop program.
func Run(svc *adaptive.Service, profiles store.ProfileRepo, events store.EventRepo, profile *learner.Profile) error {
	m := New(svc, profiles, events, profile)
	m = m.nextQuiz()
	p := tea.NewProgram(m)
	_, err := p.Run()
	return err
}

// nextQuiz asks the engine for the next item.
func (m Model) nextQuiz() Model {
	q, err := m.svc.SuggestNextQuiz(m.profile, time.Now().UTC())
	if err != nil {
		if _, ok := err.(*selection.NoQuizAvailableError); ok {
			m.failure = "No quiz available. Add items to the bank or reset progress."
		} else {
			m.failure = fmt.Sprintf("Suggestion failed: %v", err)
		}
		m.phase = phaseDone
		return m
	}
	m.current = q
	m.selected = 0
	m.input.SetValue("")
	m.phase = phaseAsking
	return m
}

// grade records the answer through the facade and persists the result.
func (m Model) grade(correct bool) Model {
	now := time.Now().UTC()
	next, err := m.svc.UpdateScores(m.profile, m.current, correct, now)
	if err != nil {
		m.failure = fmt.Sprintf("Score update failed: %v", err)
		m.phase = phaseDone
		return m
	}
	m.profile = next
	m.correct = correct
	m.answered++
	if correct {
		m.answeredOK++
	}

	ctx := context.Background()
	m.saveWarning = ""
	if err := m.profiles.Save(ctx, m.profile); err != nil {
		m.saveWarning = fmt.Sprintf("profile save failed: %v", err)
	}
	if len(m.profile.History) > 0 {
		last := m.profile.History[len(m.profile.History)-1]
		if err := m.events.Append(ctx, m.profile.LearnerID, last); err != nil {
			m.saveWarning = fmt.Sprintf("event append failed: %v", err)
		}
	}

	m.phase = phaseFeedback
	return m
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.phase == phaseAsking && len(m.current.Choices) == 0 {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch kmsg.String() {
	case "ctrl+c":
		return m, tea.Quit
	}

	switch m.phase {
	case phaseAsking:
		if len(m.current.Choices) > 0 {
			switch kmsg.String() {
			case "up", "k":
				if m.selected > 0 {
					m.selected--
				}
			case "down", "j":
				if m.selected < len(m.current.Choices)-1 {
					m.selected++
				}
			case "enter":
				return m.grade(m.selected == m.current.CorrectIndex()), nil
			case "q":
				return m, tea.Quit
			}
			return m, nil
		}
		switch kmsg.String() {
		case "enter":
			m.phase = phaseSelfGrade
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case phaseSelfGrade:
		switch kmsg.String() {
		case "y":
			return m.grade(true), nil
		case "n":
			return m.grade(false), nil
		}

	case phaseFeedback:
		switch kmsg.String() {
		case "enter", "n":
			return m.nextQuiz(), nil
		case "q":
			return m, tea.Quit
		}

	case phaseDone:
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) View() tea.View {
	v := tea.NewView("")

	if m.failure != "" {
		v.SetContent(theme.Bad.Render(m.failure) + "\n")
		return v
	}

	s := theme.Title.Render("quizpath") + "  " +
		theme.Hint.Render(fmt.Sprintf("answered %d, correct %d", m.answered, m.answeredOK)) + "\n\n"

	s += theme.Body.Render(m.current.Prompt) + "\n"
	s += theme.Hint.Render(fmt.Sprintf("difficulty %d · %s", m.current.Difficulty, m.current.Style)) + "\n\n"

	switch m.phase {
	case phaseAsking:
		if len(m.current.Choices) > 0 {
			s += m.renderChoices(false)
			s += "\n" + theme.Hint.Render("↑↓ select · Enter submit · q quit")
		} else {
			s += m.input.View() + "\n"
			s += "\n" + theme.Hint.Render("Enter when done")
		}

	case phaseSelfGrade:
		s += theme.Body.Render("Your answer: "+m.input.Value()) + "\n"
		s += "\n" + theme.Hint.Render("Did you get it right? y/n")

	case phaseFeedback:
		if len(m.current.Choices) > 0 {
			s += m.renderChoices(true)
		}
		if m.correct {
			s += "\n" + theme.Good.Render("Correct!")
		} else {
			s += "\n" + theme.Bad.Render("Not quite.")
			if i := m.current.CorrectIndex(); i >= 0 && m.current.Choices[i].Explanation != "" {
				s += "\n" + theme.Body.Render(m.current.Choices[i].Explanation)
			}
		}
		if m.saveWarning != "" {
			s += "\n" + theme.Hint.Render(m.saveWarning)
		}
		s += "\n\n" + theme.Hint.Render("Enter next · q quit")
	}

	v.SetContent(theme.Card.Render(s) + "\n")
	return v
}

func (m Model) renderChoices(reveal bool) string {
	var s string
	correctIdx := m.current.CorrectIndex()
	for i, c := range m.current.Choices {
		prefix := "  "
		if i == m.selected && !reveal {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s", prefix, c.Text)

		switch {
		case reveal && i == correctIdx:
			s += lipgloss.NewStyle().Foreground(theme.Success).Bold(true).Render(line) + "\n"
		case reveal && i == m.selected:
			s += lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render(line) + "\n"
		case i == m.selected:
			s += lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(line) + "\n"
		default:
			s += theme.Body.Render(line) + "\n"
		}
	}
	return s
}
