package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"estimator/internal/config"
	"estimator/internal/estimate"
	"estimator/internal/logging"
	"estimator/internal/remote"
)

// pendingReplace remembers the last completed replacement until the next
// refresh so the rebuilt branch controls can be repointed.
type pendingReplace struct {
	RoomID estimate.RoomID
	OldID  estimate.ProductID
	NewID  estimate.ProductID
	Scope  estimate.Scope
}

// Controller is the modal workflow controller. It owns the workflow
// state machine, the single loader indicator, and the trackers that keep
// UI references valid across wholesale content refreshes. Exactly one
// sub-view is non-nil at any time while open; transitions null the rest.
//
// All mutation follows one discipline: optimistic nothing. Every change
// round-trips through the service, then the tree is re-fetched and the
// content rebuilt from server truth.
type Controller struct {
	State WorkflowState

	svc remote.Service
	cfg config.Config

	// session increments on every open and close; async results carrying
	// a stale session number are dropped on arrival.
	session int
	// pending serializes mutations: one in-flight write at a time.
	pending          bool
	pendingProductID estimate.ProductID

	tree estimate.Tree

	listView       *ListView
	estimatePicker *EstimatePicker
	roomPicker     *RoomPicker
	estimateForm   *EstimateForm
	roomForm       *RoomForm

	overlays     OverlayStack
	loader       *LoaderWatchdog
	hierarchy    *HierarchyTracker
	replacements *ReplacementTracker
	bindings     *BindingRegistry

	lastReplace *pendingReplace

	Status        string
	StatusIsError bool

	width  int
	height int
}

// NewController creates a closed controller bound to the given service.
func NewController(svc remote.Service, cfg config.Config) *Controller {
	return &Controller{
		State:        StateClosed,
		svc:          svc,
		cfg:          cfg,
		loader:       NewLoaderWatchdog(cfg.WatchdogInterval, cfg.WatchdogCeiling),
		hierarchy:    NewHierarchyTracker(cfg.ExpandAttempts),
		replacements: NewReplacementTracker(),
		bindings:     NewBindingRegistry(),
	}
}

// Session returns the current session generation. Tests use it to forge
// stale messages.
func (c *Controller) Session() int {
	return c.session
}

// PendingProductID returns the product being added, if any.
func (c *Controller) PendingProductID() estimate.ProductID {
	return c.pendingProductID
}

// LoaderActive reports whether the busy indicator is visible.
func (c *Controller) LoaderActive() bool {
	return c.loader.Active()
}

// VisibleViewCount counts the non-nil sub-views. While open this is
// always exactly one.
func (c *Controller) VisibleViewCount() int {
	count := 0
	if c.listView != nil {
		count++
	}
	if c.estimatePicker != nil {
		count++
	}
	if c.roomPicker != nil {
		count++
	}
	if c.estimateForm != nil {
		count++
	}
	if c.roomForm != nil {
		count++
	}
	return count
}

// ListView exposes the current list view, nil when another view is
// active.
func (c *Controller) ListView() *ListView {
	return c.listView
}

// Bindings exposes the control binding registry.
func (c *Controller) Bindings() *BindingRegistry {
	return c.bindings
}

// Replacements exposes the replacement chain tracker.
func (c *Controller) Replacements() *ReplacementTracker {
	return c.replacements
}

func (c *Controller) setStatus(text string, isErr bool) {
	c.Status = text
	c.StatusIsError = isErr
}

// clearSubViews nulls every sub-view. Callers re-create exactly the one
// the next state needs, which is what keeps the views mutually
// exclusive.
func (c *Controller) clearSubViews() {
	c.listView = nil
	c.estimatePicker = nil
	c.roomPicker = nil
	c.estimateForm = nil
	c.roomForm = nil
}

// resetSession wipes everything a previous session could leak into a new
// one: in-flight flags, the loader, trackers, overlays, and status.
func (c *Controller) resetSession() {
	c.session++
	c.pending = false
	c.pendingProductID = ""
	c.loader.ForceClear()
	c.overlays.Clear()
	c.hierarchy.Clear()
	c.replacements.Reset()
	c.bindings.Reset()
	c.lastReplace = nil
	c.setStatus("", false)
}

// showListView transitions to the list view, rebuilding it from the
// current tree and rebinding all branch controls.
func (c *Controller) showListView() tea.Cmd {
	from := c.State
	c.clearSubViews()
	c.State = StateListView

	lv := NewListView()
	lv.SetTree(c.tree)
	if c.width > 0 {
		lv.Update(tea.WindowSizeMsg{Width: c.width, Height: c.height})
	}
	c.listView = lv
	c.rebindControls()
	c.applyPendingRepoint()

	cmds := []tea.Cmd{contentRefreshedCmd}
	if from != StateListView {
		cmds = append(cmds, viewChangedCmd(from, StateListView))
	}
	if cmd := lv.Init(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (c *Controller) showEstimatePicker() tea.Cmd {
	from := c.State
	c.clearSubViews()
	c.State = StateEstimateSelect
	c.estimatePicker = NewEstimatePicker(c.tree)
	return tea.Batch(viewChangedCmd(from, StateEstimateSelect), c.estimatePicker.Init())
}

func (c *Controller) showRoomPicker(est *estimate.Estimate) tea.Cmd {
	from := c.State
	c.clearSubViews()
	c.State = StateRoomSelect
	c.roomPicker = NewRoomPicker(est)
	return tea.Batch(viewChangedCmd(from, StateRoomSelect), c.roomPicker.Init())
}

func (c *Controller) showEstimateForm() tea.Cmd {
	from := c.State
	c.clearSubViews()
	c.State = StateNewEstimateForm
	c.estimateForm = NewEstimateForm()
	return tea.Batch(viewChangedCmd(from, StateNewEstimateForm), c.estimateForm.Init())
}

func (c *Controller) showRoomForm(estimateID estimate.EstimateID) tea.Cmd {
	from := c.State
	c.clearSubViews()
	c.State = StateNewRoomForm
	c.roomForm = NewRoomForm(estimateID)
	return tea.Batch(viewChangedCmd(from, StateNewRoomForm), c.roomForm.Init())
}

// rebindControls re-registers every branch control against the binding
// registry. Runs after every row rebuild; Bind removes before adding so
// repeated passes can never double-register.
func (c *Controller) rebindControls() {
	c.bindings.Reset()
	if c.listView == nil {
		return
	}
	for _, row := range c.listView.rows {
		for _, ctl := range row.Controls {
			ctl := ctl
			switch ctl.Kind {
			case "upgrade":
				c.bindings.Bind(ctl.ElementID, func() tea.Msg {
					return UpgradeProductMsg{
						EstimateID:   ctl.EstimateID,
						RoomID:       ctl.RoomID,
						OldProductID: ctl.ProductID,
						NewProductID: c.pendingProductID,
						Scope:        ctl.Scope,
					}
				})
			case "remove":
				c.bindings.Bind(ctl.ElementID, func() tea.Msg {
					return RequestRemoveMsg{}
				})
			}
		}
	}
}

// applyPendingRepoint rewrites freshly rebuilt branch controls that
// still reference a product displaced by the last replacement.
func (c *Controller) applyPendingRepoint() {
	if c.lastReplace == nil || c.listView == nil {
		return
	}
	r := c.lastReplace
	c.lastReplace = nil
	n := c.replacements.Repoint(c.listView.BranchControls(r.RoomID), r.OldID, r.NewID, r.Scope)
	if n > 0 {
		logging.Debug("repointed branch controls after replacement",
			zap.String("room_id", string(r.RoomID)),
			zap.Int("count", n))
	}
}

// Update is the single dispatch point for every message the controller
// handles. Unrecognized messages fall through to the active sub-view.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case OpenMsg:
		return c.handleOpen(msg)
	case CloseMsg:
		return c.handleClose()
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
		if c.listView != nil {
			c.listView.Update(msg)
		}
		return nil
	case spinner.TickMsg:
		if !c.loader.Active() {
			return nil
		}
		return c.loader.UpdateSpinner(msg)
	case watchdogTickMsg:
		return c.handleWatchdogTick()
	case expandTickMsg:
		return c.handleExpandTick(msg)

	case EstimatesCheckedMsg:
		return c.handleEstimatesChecked(msg)
	case TreeLoadedMsg:
		return c.handleTreeLoaded(msg)
	case EstimateCreatedMsg:
		return c.handleEstimateCreated(msg)
	case RoomCreatedMsg:
		return c.handleRoomCreated(msg)
	case ProductAddedMsg:
		return c.handleProductAdded(msg)
	case ProductReplacedMsg:
		return c.handleProductReplaced(msg)
	case EntityRemovedMsg:
		return c.handleEntityRemoved(msg)
	case RemoteErrorMsg:
		return c.handleRemoteError(msg)

	case EstimateChosenMsg:
		return c.handleEstimateChosen(msg)
	case CreateNewEstimateMsg:
		return c.showEstimateForm()
	case RoomChosenMsg:
		return c.handleRoomChosen(msg)
	case CreateNewRoomMsg:
		return c.handleCreateNewRoom()
	case SubmitEstimateFormMsg:
		return c.handleSubmitEstimateForm(msg)
	case SubmitRoomFormMsg:
		return c.handleSubmitRoomForm(msg)
	case CancelFormMsg:
		return c.handleCancelForm(msg)
	case UpgradeProductMsg:
		return c.handleUpgrade(msg)
	case RequestRemoveMsg:
		return c.handleRequestRemove()
	case RemoveProductMsg:
		return c.handleRemoveProduct(msg)
	case RemoveRoomMsg:
		return c.handleRemoveRoom(msg)
	case RemoveEstimateMsg:
		return c.handleRemoveEstimate(msg)
	case DismissModalMsg:
		c.overlays.Pop()
		return nil

	case tea.KeyMsg:
		return c.handleKey(msg)
	}
	return c.updateActiveView(msg)
}

// handleKey routes keystrokes: overlays first, then state-specific keys,
// then the active sub-view.
func (c *Controller) handleKey(msg tea.KeyMsg) tea.Cmd {
	if c.State == StateClosed {
		return nil
	}
	if c.overlays.Len() > 0 {
		cmd, _ := c.overlays.UpdateTop(msg)
		return cmd
	}
	if c.State == StateListView && c.listView != nil {
		switch msg.String() {
		case "esc":
			return c.handleClose()
		case "enter":
			if c.listView.ToggleSelected() {
				c.rebindControls()
				return contentRefreshedCmd
			}
			return nil
		case "d":
			return c.dispatchRowControl("remove")
		case "u":
			return c.dispatchRowControl("upgrade")
		case "r":
			c.loader.Begin()
			return tea.Batch(
				c.fetchTreeCmd(c.session, StateListView),
				c.loader.TickCmd(),
				c.watchdogTickCmd(),
			)
		}
	}
	return c.updateActiveView(msg)
}

// dispatchRowControl fires the bound control of the selected row. Rows
// without a matching control (estimates, rooms) fall back to the direct
// remove request so they stay removable too.
func (c *Controller) dispatchRowControl(kind string) tea.Cmd {
	row := c.listView.SelectedRow()
	if row == nil {
		return nil
	}
	if row.Kind == rowProduct {
		if cmd := c.bindings.Dispatch(fmt.Sprintf("%s:%s:%s", kind, row.RoomID, row.ProductID)); cmd != nil {
			return cmd
		}
		return nil
	}
	if kind == "remove" {
		return func() tea.Msg { return RequestRemoveMsg{} }
	}
	return nil
}

// updateActiveView forwards a message to whichever sub-view is live.
func (c *Controller) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case c.listView != nil:
		var v View
		v, cmd = c.listView.Update(msg)
		c.listView = v.(*ListView)
	case c.estimatePicker != nil:
		var v View
		v, cmd = c.estimatePicker.Update(msg)
		c.estimatePicker = v.(*EstimatePicker)
	case c.roomPicker != nil:
		var v View
		v, cmd = c.roomPicker.Update(msg)
		c.roomPicker = v.(*RoomPicker)
	case c.estimateForm != nil:
		var v View
		v, cmd = c.estimateForm.Update(msg)
		c.estimateForm = v.(*EstimateForm)
	case c.roomForm != nil:
		var v View
		v, cmd = c.roomForm.Update(msg)
		c.roomForm = v.(*RoomForm)
	}
	return cmd
}

// View renders the workflow: header, active sub-view (or the top
// overlay), and the status line with the loader indicator.
func (c *Controller) View() string {
	if c.State == StateClosed {
		return ""
	}

	header := Styles.Title.Render("Estimator")
	if c.pendingProductID != "" {
		header += Styles.Header.Render(fmt.Sprintf("  adding product %s", c.pendingProductID))
	}

	var body string
	if top, ok := c.overlays.Peek(); ok {
		body = top.View.View()
	} else {
		switch {
		case c.listView != nil:
			body = c.listView.View()
		case c.estimatePicker != nil:
			body = c.estimatePicker.View()
		case c.roomPicker != nil:
			body = c.roomPicker.View()
		case c.estimateForm != nil:
			body = c.estimateForm.View()
		case c.roomForm != nil:
			body = c.roomForm.View()
		}
	}

	status := c.statusLine()
	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}

func (c *Controller) statusLine() string {
	indicator := c.loader.Indicator()
	if c.Status == "" {
		return indicator
	}
	style := Styles.Status
	if c.StatusIsError {
		style = Styles.StatusErr
	}
	if indicator != "" {
		return indicator + " " + style.Render(c.Status)
	}
	return style.Render(c.Status)
}
