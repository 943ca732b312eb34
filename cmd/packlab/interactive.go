package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/packplan/formats"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const (
	inputFormat = iota
	inputLogical
	inputWord
	inputValues
)

type interactiveModel struct {
	err      error
	result   string
	plan     string
	inputs   []textinput.Model
	focusIdx int
	showPlan bool
}

type packResultMsg struct {
	err    error
	result string
	plan   string
}

func newInteractiveModel(format, logical, word string) *interactiveModel {
	fields := []struct{ prompt, value, placeholder string }{
		inputFormat:  {"format:  ", format, strings.Join(formats.Names(), " | ")},
		inputLogical: {"logical: ", logical, "u8 .. s64"},
		inputWord:    {"word:    ", word, "u8 | u16 | u32 | u64"},
		inputValues:  {"values:  ", "", "1,2,4,8"},
	}
	m := &interactiveModel{inputs: make([]textinput.Model, len(fields))}
	for i, f := range fields {
		ti := textinput.New()
		ti.Prompt = f.prompt
		ti.Placeholder = f.placeholder
		ti.SetValue(f.value)
		ti.Width = 60
		m.inputs[i] = ti
	}
	m.focusIdx = inputValues
	m.inputs[m.focusIdx].Focus()
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "tab", "down":
			m.focus((m.focusIdx + 1) % len(m.inputs))
			return m, nil

		case "shift+tab", "up":
			m.focus((m.focusIdx + len(m.inputs) - 1) % len(m.inputs))
			return m, nil

		case "ctrl+p":
			m.showPlan = !m.showPlan
			return m, nil

		case "enter":
			return m, m.pack
		}

	case packResultMsg:
		m.err = msg.err
		m.result = msg.result
		m.plan = msg.plan
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focusIdx], cmd = m.inputs[m.focusIdx].Update(msg)
	return m, cmd
}

func (m *interactiveModel) focus(i int) {
	m.inputs[m.focusIdx].Blur()
	m.focusIdx = i
	m.inputs[m.focusIdx].Focus()
}

// pack runs with the values captured when enter was pressed.
func (m *interactiveModel) pack() tea.Msg {
	format := m.inputs[inputFormat].Value()
	c, err := compile(format, m.inputs[inputLogical].Value(), m.inputs[inputWord].Value())
	if err != nil {
		return packResultMsg{err: err}
	}
	var out strings.Builder
	err = run(&out, options{
		format:  format,
		logical: m.inputs[inputLogical].Value(),
		word:    m.inputs[inputWord].Value(),
		values:  m.inputs[inputValues].Value(),
		mode:    "pack",
		color:   true,
	})
	if err != nil {
		return packResultMsg{err: err}
	}
	return packResultMsg{result: out.String(), plan: c.Plan().String()}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("packlab"))
	b.WriteString("\n\n")
	for _, in := range m.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	case m.result != "":
		b.WriteString(resultStyle.Render(strings.TrimRight(m.result, "\n")))
		b.WriteString("\n\n")
		if m.showPlan {
			b.WriteString(labelStyle.Render("Plan"))
			b.WriteString("\n")
			b.WriteString(m.plan)
			b.WriteString("\n")
		}
	}

	b.WriteString(helpStyle.Render("tab next field • enter pack • ctrl+p plan • esc quit"))
	return b.String()
}

func runInteractive(format, logical, word string) error {
	p := tea.NewProgram(newInteractiveModel(format, logical, word), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
