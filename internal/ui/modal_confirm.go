package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"estimator/internal/estimate"
)

// ConfirmModal is a generic confirmation modal used before destructive
// actions. Enter or y confirms; Esc cancels.
type ConfirmModal struct {
	Title       string
	Label       string
	Details     string
	OnConfirm   func() tea.Msg
	boxStyle    lipgloss.Style
	titleStyle  lipgloss.Style
	detailStyle lipgloss.Style
}

// Ensure ConfirmModal implements View.
var _ View = (*ConfirmModal)(nil)

// NewConfirmModal creates a generic confirmation modal.
func NewConfirmModal(title, label string, onConfirm func() tea.Msg) *ConfirmModal {
	return &ConfirmModal{
		Title:       title,
		Label:       label,
		OnConfirm:   onConfirm,
		boxStyle:    ModalStyles.BoxWarning,
		titleStyle:  ModalStyles.TitleWarning,
		detailStyle: ModalStyles.Details,
	}
}

// WithDetails adds warning details to the modal.
func (m *ConfirmModal) WithDetails(details string) *ConfirmModal {
	m.Details = details
	return m
}

// NewRemoveProductConfirmModal confirms removal of one product
// occurrence. The index addresses the occurrence as of the last refresh.
func NewRemoveProductConfirmModal(row *listRow) *ConfirmModal {
	msg := RemoveProductMsg{
		EstimateID: row.EstimateID,
		RoomID:     row.RoomID,
		ProductID:  row.ProductID,
		Index:      row.Index,
	}
	return NewConfirmModal(
		"Remove product?",
		fmt.Sprintf("Product %s", row.ProductID),
		func() tea.Msg { return msg },
	)
}

// NewRemoveRoomConfirmModal confirms removal of a room and everything
// in it.
func NewRemoveRoomConfirmModal(estimateID estimate.EstimateID, roomID estimate.RoomID, productCount int) *ConfirmModal {
	msg := RemoveRoomMsg{EstimateID: estimateID, RoomID: roomID}
	modal := NewConfirmModal(
		"Remove room?",
		fmt.Sprintf("Room %s", roomID),
		func() tea.Msg { return msg },
	)
	if productCount > 0 {
		modal.WithDetails(fmt.Sprintf("%d product(s) will be removed", productCount))
	}
	return modal
}

// NewRemoveEstimateConfirmModal confirms removal of a whole estimate.
func NewRemoveEstimateConfirmModal(est *estimate.Estimate) *ConfirmModal {
	msg := RemoveEstimateMsg{EstimateID: est.ID}
	modal := NewConfirmModal(
		"Remove estimate?",
		fmt.Sprintf("Estimate: %s", est.Name),
		func() tea.Msg { return msg },
	)
	if len(est.Rooms) > 0 {
		modal.WithDetails(fmt.Sprintf("%d room(s) will be removed", len(est.Rooms)))
	}
	return modal
}

// Init implements View.
func (m *ConfirmModal) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (m *ConfirmModal) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return DismissModalMsg{} }
		case "enter", "y":
			if m.OnConfirm != nil {
				return m, m.OnConfirm
			}
		}
	}
	return m, nil
}

// View implements View.
func (m *ConfirmModal) View() string {
	content := m.titleStyle.Render(m.Title) + "\n\n"
	content += ModalStyles.Label.Render(m.Label)
	if m.Details != "" {
		content += "\n" + m.detailStyle.Render(m.Details)
	}
	content += "\n\n" + ModalStyles.Help.Render("y/Enter: confirm  Esc: cancel")
	return m.boxStyle.Render(content)
}
