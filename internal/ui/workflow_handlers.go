package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"estimator/internal/logging"
	"estimator/internal/remote"
)

// refusePending reports an attempted mutation while one is already in
// flight. The attempt is dropped, not queued.
func (c *Controller) refusePending() {
	c.setStatus("Another change is still in progress.", true)
}

// handleOpen starts a fresh session. A product-driven open branches on
// whether any estimates exist; every other open lands on the list view.
// Opening while already open resets the session first.
func (c *Controller) handleOpen(msg OpenMsg) tea.Cmd {
	c.resetSession()
	if !msg.ForceListView {
		c.pendingProductID = msg.ProductID
	}

	logging.Info("workflow opened",
		zap.String("product_id", string(c.pendingProductID)),
		zap.Bool("force_list_view", msg.ForceListView),
		zap.Int("session", c.session))

	c.loader.Begin()
	cmds := []tea.Cmd{c.loader.TickCmd(), c.watchdogTickCmd()}
	if c.pendingProductID != "" {
		cmds = append(cmds, c.checkEstimatesCmd(c.session))
	} else {
		cmds = append(cmds, c.fetchTreeCmd(c.session, StateListView))
	}
	cmds = append(cmds, c.showListView())
	return tea.Batch(cmds...)
}

// handleClose shuts the workflow from any state. Idempotent: closing a
// closed controller does nothing.
func (c *Controller) handleClose() tea.Cmd {
	if c.State == StateClosed {
		return nil
	}
	from := c.State
	c.resetSession()
	c.clearSubViews()
	c.tree = nil
	c.State = StateClosed
	logging.Info("workflow closed", zap.String("from", from.String()))
	return viewChangedCmd(from, StateClosed)
}

// handleEstimatesChecked continues the product-driven open: existing
// estimates feed the estimate picker, none at all goes straight to the
// new-estimate form.
func (c *Controller) handleEstimatesChecked(msg EstimatesCheckedMsg) tea.Cmd {
	if msg.Session != c.session {
		return nil
	}
	if msg.Exists {
		return c.fetchTreeCmd(c.session, StateEstimateSelect)
	}
	c.loader.End()
	return c.showEstimateForm()
}

// handleTreeLoaded lands a fetched tree on its target view. The tree
// replaces the previous one wholesale; controls and bindings are rebuilt
// from scratch and the tracked branch is re-expanded with bounded
// polling.
func (c *Controller) handleTreeLoaded(msg TreeLoadedMsg) tea.Cmd {
	if msg.Session != c.session {
		logging.Debug("dropped stale tree load",
			zap.Int("msg_session", msg.Session),
			zap.Int("session", c.session))
		return nil
	}
	c.loader.End()
	c.tree = msg.Tree

	switch msg.Target {
	case StateEstimateSelect:
		return c.showEstimatePicker()
	default:
		cmd := c.showListView()
		if _, ok := c.hierarchy.Target(); ok {
			return tea.Batch(cmd, c.expandTickCmd(c.session, 1))
		}
		return cmd
	}
}

// handleEstimateChosen moves a product-addition flow from the estimate
// picker to the room picker. An estimate with no rooms skips the picker
// and goes straight to the new-room form.
func (c *Controller) handleEstimateChosen(msg EstimateChosenMsg) tea.Cmd {
	est := c.tree.FindEstimate(msg.EstimateID)
	if est == nil {
		c.setStatus("That estimate is no longer available.", true)
		return c.showListView()
	}
	if len(est.Rooms) == 0 {
		return c.showRoomForm(est.ID)
	}
	return c.showRoomPicker(est)
}

// handleRoomChosen is the terminal selection of a product-addition flow:
// attach the pending product to the chosen room.
func (c *Controller) handleRoomChosen(msg RoomChosenMsg) tea.Cmd {
	if c.pending {
		c.refusePending()
		return nil
	}
	if c.pendingProductID == "" {
		return c.showListView()
	}
	c.pending = true
	c.loader.Begin()
	req := remote.AddProductRequest{
		EstimateID: msg.EstimateID,
		RoomID:     msg.RoomID,
		ProductID:  c.pendingProductID,
	}
	return tea.Batch(
		c.addProductCmd(c.session, req),
		c.loader.TickCmd(),
		c.watchdogTickCmd(),
	)
}

// handleCreateNewRoom branches from the room picker to the new-room
// form, carrying the chosen estimate along.
func (c *Controller) handleCreateNewRoom() tea.Cmd {
	if c.roomPicker == nil {
		return nil
	}
	return c.showRoomForm(c.roomPicker.estimateID)
}

// handleSubmitEstimateForm sends a validated new-estimate request. The
// form already rejected empty names client-side.
func (c *Controller) handleSubmitEstimateForm(msg SubmitEstimateFormMsg) tea.Cmd {
	if c.pending {
		c.refusePending()
		return nil
	}
	c.pending = true
	c.loader.Begin()
	if c.estimateForm != nil {
		c.estimateForm.SetSubmitting(true)
	}
	req := remote.CreateEstimateRequest{
		Name:             msg.Name,
		PendingProductID: c.pendingProductID,
	}
	return tea.Batch(
		c.createEstimateCmd(c.session, req),
		c.loader.TickCmd(),
		c.watchdogTickCmd(),
	)
}

// handleEstimateCreated continues per flow: a pending product needs a
// room next (a brand-new estimate has none), otherwise refresh and show
// the tree.
func (c *Controller) handleEstimateCreated(msg EstimateCreatedMsg) tea.Cmd {
	if msg.Session != c.session {
		return nil
	}
	c.pending = false
	c.setStatus("Estimate created.", false)
	if c.pendingProductID != "" {
		c.loader.End()
		return c.showRoomForm(msg.EstimateID)
	}
	return c.fetchTreeCmd(c.session, StateListView)
}

// handleSubmitRoomForm sends a validated new-room request; a pending
// product is attached in the same round trip.
func (c *Controller) handleSubmitRoomForm(msg SubmitRoomFormMsg) tea.Cmd {
	if c.roomForm == nil {
		return nil
	}
	if c.pending {
		c.refusePending()
		return nil
	}
	c.pending = true
	c.loader.Begin()
	c.roomForm.SetSubmitting(true)
	req := remote.CreateRoomRequest{
		EstimateID: c.roomForm.EstimateID,
		Name:       msg.Name,
		Dimensions: msg.Dimensions,
		ProductID:  c.pendingProductID,
	}
	return tea.Batch(
		c.createRoomCmd(c.session, req),
		c.loader.TickCmd(),
		c.watchdogTickCmd(),
	)
}

// handleRoomCreated finishes room creation: track the new branch so the
// refreshed tree re-opens it, then refresh.
func (c *Controller) handleRoomCreated(msg RoomCreatedMsg) tea.Cmd {
	if msg.Session != c.session {
		return nil
	}
	c.pending = false
	c.pendingProductID = ""
	c.hierarchy.Track(msg.Result.EstimateID, msg.Result.RoomID)
	c.setStatus("Room created.", false)
	return c.fetchTreeCmd(c.session, StateListView)
}

// handleProductAdded finishes a product addition.
func (c *Controller) handleProductAdded(msg ProductAddedMsg) tea.Cmd {
	if msg.Session != c.session {
		return nil
	}
	c.pending = false
	c.pendingProductID = ""
	c.hierarchy.Track(msg.Result.EstimateID, msg.Result.RoomID)
	c.setStatus("Product added.", false)
	return c.fetchTreeCmd(c.session, StateListView)
}

// handleProductReplaced records the substitution so stale references
// keep resolving, then refreshes. The repoint pass runs once the branch
// is rebuilt.
func (c *Controller) handleProductReplaced(msg ProductReplacedMsg) tea.Cmd {
	if msg.Session != c.session {
		return nil
	}
	c.pending = false
	c.replacements.Record(msg.Result.RoomID, msg.OldProductID, msg.NewProductID, msg.Scope)
	c.lastReplace = &pendingReplace{
		RoomID: msg.Result.RoomID,
		OldID:  msg.OldProductID,
		NewID:  msg.NewProductID,
		Scope:  msg.Scope,
	}
	c.hierarchy.Track(msg.Result.EstimateID, msg.Result.RoomID)
	c.setStatus("Product replaced.", false)
	return c.fetchTreeCmd(c.session, StateListView)
}

// handleEntityRemoved finishes any removal with a refresh.
func (c *Controller) handleEntityRemoved(msg EntityRemovedMsg) tea.Cmd {
	if msg.Session != c.session {
		return nil
	}
	c.pending = false
	c.setStatus("Removed.", false)
	return c.fetchTreeCmd(c.session, StateListView)
}

// handleRemoteError surfaces a failed call. Conflicts get the
// duplicate-resolution treatment: show the server's message, then
// navigate to the existing occurrence instead of creating a second row.
// Everything else lands on the status line and re-enables the view the
// user was in.
func (c *Controller) handleRemoteError(msg RemoteErrorMsg) tea.Cmd {
	if msg.Session != c.session {
		return nil
	}
	c.pending = false
	c.loader.End()

	se, ok := remote.AsServiceError(msg.Err)
	if !ok {
		logging.Error("service call failed", zap.String("op", msg.Op), zap.Error(msg.Err))
		c.setStatus("Something went wrong. Please try again.", true)
		return nil
	}

	logging.Warn("service call failed",
		zap.String("op", msg.Op),
		zap.String("kind", se.Kind.String()),
		zap.String("message", se.Message))

	c.setStatus(se.UserMessage(), true)

	if se.Kind == remote.KindConflict && se.EstimateID != "" && se.RoomID != "" {
		// The product already lives somewhere. Drop the pending intent
		// and reveal the existing occurrence.
		c.pendingProductID = ""
		c.hierarchy.Track(se.EstimateID, se.RoomID)
		c.loader.Begin()
		return tea.Batch(
			c.fetchTreeCmd(c.session, StateListView),
			c.loader.TickCmd(),
			c.watchdogTickCmd(),
		)
	}

	// Validation and server errors keep the user where they were; forms
	// re-enable their submit path.
	if c.estimateForm != nil {
		c.estimateForm.SetSubmitting(false)
	}
	if c.roomForm != nil {
		c.roomForm.SetSubmitting(false)
	}

	// Failures during the open flow leave the (possibly empty) list view
	// in place rather than a dead end.
	if msg.Op == opCheckEstimates || msg.Op == opFetchTree {
		if c.State != StateListView {
			return c.showListView()
		}
	}
	return nil
}

// handleCancelForm returns to the contextually prior view. During a
// product addition, backing out of a form prefers the selection flow it
// came from.
func (c *Controller) handleCancelForm(msg CancelFormMsg) tea.Cmd {
	switch msg.From {
	case StateEstimateSelect:
		return c.showListView()
	case StateNewEstimateForm:
		if c.pendingProductID != "" && len(c.tree) > 0 {
			return c.showEstimatePicker()
		}
		return c.showListView()
	case StateRoomSelect:
		if c.pendingProductID != "" {
			return c.showEstimatePicker()
		}
		return c.showListView()
	case StateNewRoomForm:
		if c.roomForm != nil {
			if est := c.tree.FindEstimate(c.roomForm.EstimateID); est != nil && c.pendingProductID != "" {
				return c.showRoomPicker(est)
			}
		}
		if c.pendingProductID != "" && len(c.tree) > 0 {
			return c.showEstimatePicker()
		}
		return c.showListView()
	}
	return c.showListView()
}

// handleUpgrade replaces a product. The control's product reference is
// resolved through the replacement chain first, so a control that still
// names a displaced product targets the live entity.
func (c *Controller) handleUpgrade(msg UpgradeProductMsg) tea.Cmd {
	if c.pending {
		c.refusePending()
		return nil
	}
	if msg.NewProductID == "" {
		c.setStatus("No replacement product selected.", true)
		return nil
	}
	oldID := c.replacements.Resolve(msg.RoomID, msg.OldProductID, msg.Scope)
	if oldID == msg.NewProductID {
		c.setStatus("That product is already in place.", false)
		return nil
	}
	c.pending = true
	c.loader.Begin()
	req := remote.ReplaceProductRequest{
		EstimateID:   msg.EstimateID,
		RoomID:       msg.RoomID,
		OldProductID: oldID,
		NewProductID: msg.NewProductID,
		Scope:        msg.Scope,
	}
	return tea.Batch(
		c.replaceProductCmd(c.session, req),
		c.loader.TickCmd(),
		c.watchdogTickCmd(),
	)
}

// handleRequestRemove opens the right confirm modal for the selected
// row.
func (c *Controller) handleRequestRemove() tea.Cmd {
	if c.listView == nil {
		return nil
	}
	row := c.listView.SelectedRow()
	if row == nil {
		return nil
	}
	var modal *ConfirmModal
	switch row.Kind {
	case rowProduct:
		modal = NewRemoveProductConfirmModal(row)
	case rowRoom:
		count := 0
		if room := c.tree.FindRoom(row.EstimateID, row.RoomID); room != nil {
			count = len(room.Products)
		}
		modal = NewRemoveRoomConfirmModal(row.EstimateID, row.RoomID, count)
	case rowEstimate:
		est := c.tree.FindEstimate(row.EstimateID)
		if est == nil {
			return nil
		}
		modal = NewRemoveEstimateConfirmModal(est)
	default:
		return nil
	}
	c.overlays.Push(Overlay{View: modal, Dismiss: "esc"})
	return nil
}

func (c *Controller) handleRemoveProduct(msg RemoveProductMsg) tea.Cmd {
	if c.pending {
		return nil
	}
	c.overlays.Pop()
	c.pending = true
	c.loader.Begin()
	c.hierarchy.Track(msg.EstimateID, msg.RoomID)
	req := remote.RemoveProductRequest{
		EstimateID: msg.EstimateID,
		RoomID:     msg.RoomID,
		ProductID:  msg.ProductID,
		Index:      msg.Index,
	}
	return tea.Batch(
		c.removeProductCmd(c.session, req),
		c.loader.TickCmd(),
		c.watchdogTickCmd(),
	)
}

func (c *Controller) handleRemoveRoom(msg RemoveRoomMsg) tea.Cmd {
	if c.pending {
		return nil
	}
	c.overlays.Pop()
	c.pending = true
	c.loader.Begin()
	c.hierarchy.Clear()
	return tea.Batch(
		c.removeRoomCmd(c.session, msg),
		c.loader.TickCmd(),
		c.watchdogTickCmd(),
	)
}

func (c *Controller) handleRemoveEstimate(msg RemoveEstimateMsg) tea.Cmd {
	if c.pending {
		return nil
	}
	c.overlays.Pop()
	c.pending = true
	c.loader.Begin()
	c.hierarchy.Clear()
	return tea.Batch(
		c.removeEstimateCmd(c.session, msg),
		c.loader.TickCmd(),
		c.watchdogTickCmd(),
	)
}

// handleWatchdogTick runs one watchdog check and keeps the tick loop
// alive while the loader is busy.
func (c *Controller) handleWatchdogTick() tea.Cmd {
	if c.loader.Check() {
		// The ceiling was exceeded: the indicator is force-cleared and
		// the pending latch released so the UI is usable again. Warn
		// once per stuck operation.
		c.pending = false
		c.setStatus("The request is taking longer than expected. The view may be out of date.", true)
		logging.Warn("loader watchdog force-cleared a stuck operation",
			zap.Duration("ceiling", c.loader.ceiling))
		return nil
	}
	if !c.loader.Active() {
		return nil
	}
	return c.watchdogTickCmd()
}

// handleExpandTick is one bounded attempt to re-open the tracked branch
// after a refresh. Gives up silently once the attempts are exhausted.
func (c *Controller) handleExpandTick(msg expandTickMsg) tea.Cmd {
	if msg.Session != c.session {
		return nil
	}
	target, ok := c.hierarchy.Target()
	if !ok || c.State != StateListView || c.listView == nil {
		return nil
	}
	if room, found := c.hierarchy.Locate(c.tree); found {
		if c.listView.ExpandBranch(room.EstimateID, room.ID) {
			c.rebindControls()
			c.applyPendingRepoint()
			c.hierarchy.Clear()
			return contentRefreshedCmd
		}
	}
	if msg.Attempt >= c.hierarchy.MaxAttempts() {
		logging.Debug("gave up re-expanding branch",
			zap.String("estimate_id", string(target.EstimateID)),
			zap.String("room_id", string(target.RoomID)),
			zap.Int("attempts", msg.Attempt))
		c.hierarchy.Clear()
		return nil
	}
	return c.expandTickCmd(c.session, msg.Attempt+1)
}
