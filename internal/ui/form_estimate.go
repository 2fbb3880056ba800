package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// EstimateForm is the new-estimate form: a single name field. Required
// fields are validated client-side; no network call is made until the
// form passes.
type EstimateForm struct {
	input      textinput.Model
	errText    string
	submitting bool
}

// Ensure EstimateForm implements View.
var _ View = (*EstimateForm)(nil)

// NewEstimateForm creates a fresh form. Forms are recreated on every
// entry so dirty state from a prior session never leaks in.
func NewEstimateForm() *EstimateForm {
	ti := textinput.New()
	ti.Placeholder = "Estimate name"
	ti.Width = 40
	ti.Focus()
	return &EstimateForm{input: ti}
}

// SetSubmitting disables the submit path while a call is pending and
// restores it afterwards, success or failure.
func (m *EstimateForm) SetSubmitting(submitting bool) {
	m.submitting = submitting
}

// Init implements View.
func (m *EstimateForm) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements View.
func (m *EstimateForm) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return CancelFormMsg{From: StateNewEstimateForm} }
		case "enter":
			if m.submitting {
				return m, nil
			}
			name := strings.TrimSpace(m.input.Value())
			if name == "" {
				m.errText = "Name is required"
				return m, nil
			}
			m.errText = ""
			return m, func() tea.Msg { return SubmitEstimateFormMsg{Name: name} }
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements View.
func (m *EstimateForm) View() string {
	content := ModalStyles.Title.Render("New estimate") + "\n\n"
	content += m.input.View() + "\n"
	if m.errText != "" {
		content += ModalStyles.TitleWarning.Render(m.errText) + "\n"
	}
	label := "Enter: create  Esc: back"
	if m.submitting {
		label = "Creating…"
	}
	content += "\n" + ModalStyles.Help.Render(label)
	return ModalStyles.BoxDefault.Render(content)
}
