package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"estimator/internal/estimate"
)

// RoomForm is the new-room form: name and dimensions, created under a
// specific estimate. When a product addition is in progress the product
// is attached in the same round trip.
type RoomForm struct {
	EstimateID estimate.EstimateID

	name       textinput.Model
	dimensions textinput.Model
	focus      int
	errText    string
	submitting bool
}

// Ensure RoomForm implements View.
var _ View = (*RoomForm)(nil)

// NewRoomForm creates a fresh form bound to the given estimate.
func NewRoomForm(estimateID estimate.EstimateID) *RoomForm {
	name := textinput.New()
	name.Placeholder = "Room name"
	name.Width = 40
	name.Focus()

	dims := textinput.New()
	dims.Placeholder = "Dimensions (e.g. 4x5)"
	dims.Width = 40

	return &RoomForm{
		EstimateID: estimateID,
		name:       name,
		dimensions: dims,
	}
}

// SetSubmitting disables the submit path while a call is pending.
func (m *RoomForm) SetSubmitting(submitting bool) {
	m.submitting = submitting
}

// Init implements View.
func (m *RoomForm) Init() tea.Cmd {
	return textinput.Blink
}

func (m *RoomForm) cycleFocus() {
	m.focus = (m.focus + 1) % 2
	if m.focus == 0 {
		m.name.Focus()
		m.dimensions.Blur()
	} else {
		m.name.Blur()
		m.dimensions.Focus()
	}
}

// Update implements View.
func (m *RoomForm) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return CancelFormMsg{From: StateNewRoomForm} }
		case "tab", "shift+tab", "down", "up":
			m.cycleFocus()
			return m, nil
		case "enter":
			if m.submitting {
				return m, nil
			}
			name := strings.TrimSpace(m.name.Value())
			dims := strings.TrimSpace(m.dimensions.Value())
			if name == "" {
				m.errText = "Room name is required"
				return m, nil
			}
			if dims == "" {
				m.errText = "Dimensions are required"
				return m, nil
			}
			m.errText = ""
			return m, func() tea.Msg {
				return SubmitRoomFormMsg{Name: name, Dimensions: dims}
			}
		}
	}
	var cmd tea.Cmd
	if m.focus == 0 {
		m.name, cmd = m.name.Update(msg)
	} else {
		m.dimensions, cmd = m.dimensions.Update(msg)
	}
	return m, cmd
}

// View implements View.
func (m *RoomForm) View() string {
	content := ModalStyles.Title.Render("New room") + "\n\n"
	content += m.name.View() + "\n"
	content += m.dimensions.View() + "\n"
	if m.errText != "" {
		content += ModalStyles.TitleWarning.Render(m.errText) + "\n"
	}
	label := "Enter: create  Tab: next field  Esc: back"
	if m.submitting {
		label = "Creating…"
	}
	content += "\n" + ModalStyles.Help.Render(label)
	return ModalStyles.BoxDefault.Render(content)
}
