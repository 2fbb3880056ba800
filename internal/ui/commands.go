package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"estimator/internal/remote"
)

// Wire operation names, used for error reporting and logging.
const (
	opCheckEstimates = "check_estimates_exist"
	opFetchTree      = "fetch_tree"
	opCreateEstimate = "create_estimate"
	opCreateRoom     = "create_room"
	opAddProduct     = "add_product"
	opReplaceProduct = "replace_product"
	opRemoveProduct  = "remove_product"
	opRemoveRoom     = "remove_room"
	opRemoveEstimate = "remove_estimate"
)

// callCtx bounds one service call. The transport never retries, so the
// timeout is the only client-side limit on a single request.
func (c *Controller) callCtx() (context.Context, context.CancelFunc) {
	timeout := c.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

// checkEstimatesCmd asks the service whether any estimates exist. Drives
// the open branch of a product-addition flow.
func (c *Controller) checkEstimatesCmd(session int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.callCtx()
		defer cancel()
		exists, err := c.svc.CheckEstimatesExist(ctx)
		if err != nil {
			return RemoteErrorMsg{Session: session, Op: opCheckEstimates, Err: err}
		}
		return EstimatesCheckedMsg{Session: session, Exists: exists}
	}
}

// fetchTreeCmd fetches the full estimate hierarchy. Target is the
// workflow view to land on once the tree arrives.
func (c *Controller) fetchTreeCmd(session int, target WorkflowState) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.callCtx()
		defer cancel()
		tree, err := c.svc.FetchTree(ctx)
		if err != nil {
			return RemoteErrorMsg{Session: session, Op: opFetchTree, Err: err}
		}
		return TreeLoadedMsg{Session: session, Tree: tree, Target: target}
	}
}

func (c *Controller) createEstimateCmd(session int, req remote.CreateEstimateRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.callCtx()
		defer cancel()
		id, err := c.svc.CreateEstimate(ctx, req)
		if err != nil {
			return RemoteErrorMsg{Session: session, Op: opCreateEstimate, Err: err}
		}
		return EstimateCreatedMsg{Session: session, EstimateID: id}
	}
}

func (c *Controller) createRoomCmd(session int, req remote.CreateRoomRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.callCtx()
		defer cancel()
		result, err := c.svc.CreateRoom(ctx, req)
		if err != nil {
			return RemoteErrorMsg{Session: session, Op: opCreateRoom, Err: err}
		}
		return RoomCreatedMsg{Session: session, Result: result}
	}
}

func (c *Controller) addProductCmd(session int, req remote.AddProductRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.callCtx()
		defer cancel()
		result, err := c.svc.AddProduct(ctx, req)
		if err != nil {
			return RemoteErrorMsg{Session: session, Op: opAddProduct, Err: err}
		}
		return ProductAddedMsg{Session: session, Result: result}
	}
}

func (c *Controller) replaceProductCmd(session int, req remote.ReplaceProductRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.callCtx()
		defer cancel()
		result, err := c.svc.ReplaceProduct(ctx, req)
		if err != nil {
			return RemoteErrorMsg{Session: session, Op: opReplaceProduct, Err: err}
		}
		return ProductReplacedMsg{
			Session:      session,
			OldProductID: req.OldProductID,
			NewProductID: req.NewProductID,
			Scope:        req.Scope,
			Result:       result,
		}
	}
}

func (c *Controller) removeProductCmd(session int, req remote.RemoveProductRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.callCtx()
		defer cancel()
		if err := c.svc.RemoveProduct(ctx, req); err != nil {
			return RemoteErrorMsg{Session: session, Op: opRemoveProduct, Err: err}
		}
		return EntityRemovedMsg{Session: session}
	}
}

func (c *Controller) removeRoomCmd(session int, msg RemoveRoomMsg) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.callCtx()
		defer cancel()
		if err := c.svc.RemoveRoom(ctx, msg.EstimateID, msg.RoomID); err != nil {
			return RemoteErrorMsg{Session: session, Op: opRemoveRoom, Err: err}
		}
		return EntityRemovedMsg{Session: session}
	}
}

func (c *Controller) removeEstimateCmd(session int, msg RemoveEstimateMsg) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.callCtx()
		defer cancel()
		if err := c.svc.RemoveEstimate(ctx, msg.EstimateID); err != nil {
			return RemoteErrorMsg{Session: session, Op: opRemoveEstimate, Err: err}
		}
		return EntityRemovedMsg{Session: session}
	}
}

// watchdogTickCmd schedules the next loader watchdog check.
func (c *Controller) watchdogTickCmd() tea.Cmd {
	return tea.Tick(c.loader.Interval(), func(t time.Time) tea.Msg {
		return watchdogTickMsg(t)
	})
}

// expandTickCmd schedules one bounded branch re-expansion attempt.
func (c *Controller) expandTickCmd(session, attempt int) tea.Cmd {
	return tea.Tick(expandPollDelay, func(time.Time) tea.Msg {
		return expandTickMsg{Session: session, Attempt: attempt}
	})
}

// expandPollDelay spaces the re-expansion attempts after a refresh.
const expandPollDelay = 100 * time.Millisecond

// viewChangedCmd announces a workflow transition.
func viewChangedCmd(from, to WorkflowState) tea.Cmd {
	return func() tea.Msg {
		return ViewChangedMsg{From: from, To: to}
	}
}

// contentRefreshedCmd announces a re-render of the estimate tree.
func contentRefreshedCmd() tea.Msg {
	return ContentRefreshedMsg{}
}
