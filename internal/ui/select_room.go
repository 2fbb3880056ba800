package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"estimator/internal/estimate"
)

// NewCompactListDelegate returns a single-line list delegate shared by
// the picker modals.
func NewCompactListDelegate() list.DefaultDelegate {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)
	delegate.Styles.SelectedTitle = Styles.Selected
	delegate.Styles.SelectedDesc = Styles.Selected
	delegate.Styles.NormalTitle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	delegate.Styles.NormalDesc = delegate.Styles.NormalTitle
	return delegate
}

// RoomPicker lets the user choose which room of the selected estimate a
// pending product goes into, or branch to the new-room form. Every item
// carries both IDs: the room's estimate ID is authoritative and
// disambiguates same-ID rooms across estimates.
type RoomPicker struct {
	list       list.Model
	estimateID estimate.EstimateID
}

// Ensure RoomPicker implements View.
var _ View = (*RoomPicker)(nil)

// NewRoomPicker builds the picker from the chosen estimate's rooms.
func NewRoomPicker(est *estimate.Estimate) *RoomPicker {
	items := make([]list.Item, 0, len(est.Rooms)+1)
	for i := range est.Rooms {
		room := &est.Rooms[i]
		label := room.Name
		if room.Dimensions != "" {
			label += fmt.Sprintf(" — %s", room.Dimensions)
		}
		items = append(items, pickerItem{id: string(room.ID), label: label})
	}
	items = append(items, pickerItem{id: createNewID, label: "+ Create new room"})

	l := list.New(items, NewCompactListDelegate(), 44, 12)
	l.Title = fmt.Sprintf("Which room in %s?", est.Name)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = Styles.Title
	return &RoomPicker{list: l, estimateID: est.ID}
}

// Init implements View.
func (m *RoomPicker) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (m *RoomPicker) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return CancelFormMsg{From: StateRoomSelect} }
		case "enter":
			if sel := m.list.SelectedItem(); sel != nil {
				item := sel.(pickerItem)
				if item.id == createNewID {
					return m, func() tea.Msg { return CreateNewRoomMsg{} }
				}
				msg := RoomChosenMsg{
					EstimateID: m.estimateID,
					RoomID:     estimate.RoomID(item.id),
				}
				return m, func() tea.Msg { return msg }
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements View.
func (m *RoomPicker) View() string {
	help := "Enter: select  Esc: back"
	return ModalStyles.BoxCompact.Render(m.list.View() + "\n" + ModalStyles.Help.Render(help))
}
