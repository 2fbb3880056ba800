package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"estimator/internal/estimate"
)

// createNewID marks the synthetic "create new" entry in pickers.
const createNewID = ""

type pickerItem struct {
	id    string
	label string
}

func (p pickerItem) FilterValue() string { return p.label }
func (p pickerItem) Title() string       { return p.label }
func (p pickerItem) Description() string { return "" }

// EstimatePicker lets the user choose which estimate a pending product
// goes into, or branch to the new-estimate form.
type EstimatePicker struct {
	list list.Model
}

// Ensure EstimatePicker implements View.
var _ View = (*EstimatePicker)(nil)

// NewEstimatePicker builds the picker from the fetched tree, appending
// the "create new" entry last.
func NewEstimatePicker(tree estimate.Tree) *EstimatePicker {
	items := make([]list.Item, 0, len(tree)+1)
	for i := range tree {
		items = append(items, pickerItem{
			id:    string(tree[i].ID),
			label: fmt.Sprintf("%s (%d rooms)", tree[i].Name, len(tree[i].Rooms)),
		})
	}
	items = append(items, pickerItem{id: createNewID, label: "+ Create new estimate"})

	l := list.New(items, NewCompactListDelegate(), 44, 12)
	l.Title = "Add to which estimate?"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = Styles.Title
	return &EstimatePicker{list: l}
}

// Init implements View.
func (m *EstimatePicker) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (m *EstimatePicker) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return CancelFormMsg{From: StateEstimateSelect} }
		case "enter":
			if sel := m.list.SelectedItem(); sel != nil {
				item := sel.(pickerItem)
				if item.id == createNewID {
					return m, func() tea.Msg { return CreateNewEstimateMsg{} }
				}
				id := estimate.EstimateID(item.id)
				return m, func() tea.Msg { return EstimateChosenMsg{EstimateID: id} }
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements View.
func (m *EstimatePicker) View() string {
	help := "Enter: select  Esc: back"
	return ModalStyles.BoxCompact.Render(m.list.View() + "\n" + ModalStyles.Help.Render(help))
}
