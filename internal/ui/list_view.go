package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"estimator/internal/estimate"
)

type rowKind int

const (
	rowEstimate rowKind = iota
	rowRoom
	rowProduct
)

// listRow is one flattened line of the estimate tree. Product rows carry
// the controls (upgrade, remove) whose identifier attributes the
// replacement tracker repoints.
type listRow struct {
	Kind       rowKind
	EstimateID estimate.EstimateID
	RoomID     estimate.RoomID
	ProductID  estimate.ProductID
	Index      int
	Title      string
	Controls   []*Control
}

// listItem adapts a listRow to bubbles/list.
type listItem struct {
	row *listRow
}

func (i listItem) FilterValue() string { return i.row.Title }
func (i listItem) Title() string       { return i.row.Title }
func (i listItem) Description() string { return "" }

// ListView renders the full estimate tree with per-estimate and per-room
// expand/collapse. Content is replaced wholesale on every refresh;
// expansion state and controls are rebuilt from the tracked maps.
type ListView struct {
	list list.Model
	Tree estimate.Tree
	rows []*listRow

	expandedEstimates map[estimate.EstimateID]bool
	expandedRooms     map[branchRef]bool
}

// Ensure ListView implements View.
var _ View = (*ListView)(nil)

// NewListView creates an empty list view; the tree arrives via SetTree.
func NewListView() *ListView {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)
	delegate.Styles.SelectedTitle = Styles.Selected
	delegate.Styles.SelectedDesc = Styles.Selected
	delegate.Styles.NormalTitle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	delegate.Styles.NormalDesc = delegate.Styles.NormalTitle

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Estimates"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = Styles.Title

	return &ListView{
		list:              l,
		expandedEstimates: make(map[estimate.EstimateID]bool),
		expandedRooms:     make(map[branchRef]bool),
	}
}

// SetTree replaces the rendered tree, preserving expansion state for
// branches that still exist.
func (v *ListView) SetTree(tree estimate.Tree) {
	v.Tree = tree
	v.pruneExpansion()
	v.buildRows()
}

// pruneExpansion drops expansion flags for branches no longer present.
func (v *ListView) pruneExpansion() {
	liveEstimates := make(map[estimate.EstimateID]bool, len(v.Tree))
	liveRooms := make(map[branchRef]bool)
	for i := range v.Tree {
		liveEstimates[v.Tree[i].ID] = true
		for j := range v.Tree[i].Rooms {
			liveRooms[branchRef{EstimateID: v.Tree[i].ID, RoomID: v.Tree[i].Rooms[j].ID}] = true
		}
	}
	for id := range v.expandedEstimates {
		if !liveEstimates[id] {
			delete(v.expandedEstimates, id)
		}
	}
	for ref := range v.expandedRooms {
		if !liveRooms[ref] {
			delete(v.expandedRooms, ref)
		}
	}
}

// buildRows flattens the tree into list rows honoring expansion state.
// Every rebuild recreates the controls; stale references from a prior
// render never survive a refresh.
func (v *ListView) buildRows() {
	var rows []*listRow
	for i := range v.Tree {
		est := &v.Tree[i]
		marker := "▸"
		if v.expandedEstimates[est.ID] {
			marker = "▾"
		}
		rows = append(rows, &listRow{
			Kind:       rowEstimate,
			EstimateID: est.ID,
			Title:      fmt.Sprintf("%s %s (%d rooms)", marker, est.Name, len(est.Rooms)),
		})
		if !v.expandedEstimates[est.ID] {
			continue
		}
		for j := range est.Rooms {
			room := &est.Rooms[j]
			ref := branchRef{EstimateID: est.ID, RoomID: room.ID}
			marker := "▸"
			if v.expandedRooms[ref] {
				marker = "▾"
			}
			title := fmt.Sprintf("  %s %s", marker, room.Name)
			if room.Dimensions != "" {
				title += fmt.Sprintf(" — %s", room.Dimensions)
			}
			title += fmt.Sprintf(" (%d products)", len(room.Products))
			rows = append(rows, &listRow{
				Kind:       rowRoom,
				EstimateID: est.ID,
				RoomID:     room.ID,
				Title:      title,
			})
			if !v.expandedRooms[ref] {
				continue
			}
			for k := range room.Products {
				p := &room.Products[k]
				scope := p.Scope
				if scope == "" {
					scope = estimate.ScopePrimary
				}
				rows = append(rows, &listRow{
					Kind:       rowProduct,
					EstimateID: est.ID,
					RoomID:     room.ID,
					ProductID:  p.ID,
					Index:      p.Index,
					Title:      fmt.Sprintf("    · product %s", p.ID),
					Controls: []*Control{
						{
							ElementID:  fmt.Sprintf("upgrade:%s:%s", room.ID, p.ID),
							Kind:       "upgrade",
							EstimateID: est.ID,
							RoomID:     room.ID,
							ProductID:  p.ID,
							Scope:      scope,
						},
						{
							ElementID:  fmt.Sprintf("remove:%s:%s", room.ID, p.ID),
							Kind:       "remove",
							EstimateID: est.ID,
							RoomID:     room.ID,
							ProductID:  p.ID,
							Scope:      scope,
						},
					},
				})
			}
		}
	}
	v.rows = rows

	items := make([]list.Item, len(rows))
	for i, r := range rows {
		items[i] = listItem{row: r}
	}
	v.list.SetItems(items)
}

// SelectedRow returns the row under the cursor, or nil.
func (v *ListView) SelectedRow() *listRow {
	idx := v.list.Index()
	if idx < 0 || idx >= len(v.rows) {
		return nil
	}
	return v.rows[idx]
}

// ToggleSelected flips expansion of the selected estimate or room row.
// Returns true if expansion state changed.
func (v *ListView) ToggleSelected() bool {
	row := v.SelectedRow()
	if row == nil {
		return false
	}
	switch row.Kind {
	case rowEstimate:
		v.expandedEstimates[row.EstimateID] = !v.expandedEstimates[row.EstimateID]
	case rowRoom:
		ref := branchRef{EstimateID: row.EstimateID, RoomID: row.RoomID}
		v.expandedRooms[ref] = !v.expandedRooms[ref]
	default:
		return false
	}
	idx := v.list.Index()
	v.buildRows()
	if idx < len(v.rows) {
		v.list.Select(idx)
	}
	return true
}

// ExpandBranch opens the estimate and room sections for the given room
// and moves the cursor onto the room row (the scroll-into-view analog).
// Returns false when the branch is not present in the rendered tree yet.
func (v *ListView) ExpandBranch(estimateID estimate.EstimateID, roomID estimate.RoomID) bool {
	room := v.Tree.FindRoom(estimateID, roomID)
	if room == nil {
		return false
	}
	v.expandedEstimates[room.EstimateID] = true
	v.expandedRooms[branchRef{EstimateID: room.EstimateID, RoomID: room.ID}] = true
	v.buildRows()
	for i, r := range v.rows {
		if r.Kind == rowRoom && r.RoomID == room.ID && r.EstimateID == room.EstimateID {
			v.list.Select(i)
			return true
		}
	}
	return false
}

// IsExpanded reports whether the (estimate, room) branch is open.
func (v *ListView) IsExpanded(estimateID estimate.EstimateID, roomID estimate.RoomID) bool {
	return v.expandedEstimates[estimateID] &&
		v.expandedRooms[branchRef{EstimateID: estimateID, RoomID: roomID}]
}

// BranchControls returns the controls within one room's rendered branch.
func (v *ListView) BranchControls(roomID estimate.RoomID) []*Control {
	var controls []*Control
	for _, row := range v.rows {
		if row.RoomID == roomID {
			controls = append(controls, row.Controls...)
		}
	}
	return controls
}

// ProductRowCount returns how many product rows the room currently
// renders. Used by tests to assert no duplicate entry was created.
func (v *ListView) ProductRowCount(roomID estimate.RoomID) int {
	count := 0
	for _, row := range v.rows {
		if row.Kind == rowProduct && row.RoomID == roomID {
			count++
		}
	}
	return count
}

// Init implements View.
func (v *ListView) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (v *ListView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.list.SetWidth(msg.Width)
		v.list.SetHeight(msg.Height - 5)
		return v, nil
	}
	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

// View implements View.
func (v *ListView) View() string {
	if v.list.Width() == 0 {
		v.list.SetWidth(80)
	}
	if v.list.Height() == 0 {
		v.list.SetHeight(20)
	}
	var b strings.Builder
	b.WriteString(v.list.View())
	b.WriteString("\n" + Styles.Help.Render("Enter: expand/collapse  d: remove  Esc: close"))
	return b.String()
}
