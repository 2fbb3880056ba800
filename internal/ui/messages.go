package ui

import (
	"time"

	"estimator/internal/estimate"
	"estimator/internal/remote"
)

// OpenMsg opens the estimator. ProductID is set when a product-addition
// flow drives the open; ForceListView overrides the product-driven
// branch even when a product ID is supplied ("browse all" entry point).
type OpenMsg struct {
	ProductID     estimate.ProductID
	ForceListView bool
}

// CloseMsg closes the estimator from any state. Idempotent.
type CloseMsg struct{}

// ViewChangedMsg is emitted on every workflow transition so presentation
// collaborators can react to the region switch.
type ViewChangedMsg struct {
	From WorkflowState
	To   WorkflowState
}

// ContentRefreshedMsg is emitted after any re-render of the estimate
// tree. Collaborators such as the carousel/accordion layer re-initialize
// themselves on it.
type ContentRefreshedMsg struct{}

// EstimateChosenMsg is sent when the user picks an estimate in the
// estimate-select view.
type EstimateChosenMsg struct {
	EstimateID estimate.EstimateID
}

// CreateNewEstimateMsg is sent when the user picks "create new" in the
// estimate-select view.
type CreateNewEstimateMsg struct{}

// RoomChosenMsg is sent when the user picks a room; this is the terminal
// step of a product-addition flow.
type RoomChosenMsg struct {
	EstimateID estimate.EstimateID
	RoomID     estimate.RoomID
}

// CreateNewRoomMsg is sent when the user picks "create new room".
type CreateNewRoomMsg struct{}

// SubmitEstimateFormMsg is sent when the new-estimate form is submitted.
type SubmitEstimateFormMsg struct {
	Name string
}

// SubmitRoomFormMsg is sent when the new-room form is submitted.
type SubmitRoomFormMsg struct {
	Name       string
	Dimensions string
}

// CancelFormMsg returns to the contextually prior view from a form or
// picker.
type CancelFormMsg struct {
	From WorkflowState
}

// UpgradeProductMsg replaces a product with another. The old ID is
// whatever the triggering control still references; the controller
// resolves it through the replacement chain before calling the service.
type UpgradeProductMsg struct {
	EstimateID   estimate.EstimateID
	RoomID       estimate.RoomID
	OldProductID estimate.ProductID
	NewProductID estimate.ProductID
	Scope        estimate.Scope
}

// RequestRemoveMsg asks for confirmed removal of the currently selected
// list row (product, room, or estimate).
type RequestRemoveMsg struct{}

// RemoveProductMsg is sent when the user confirms a product removal.
type RemoveProductMsg struct {
	EstimateID estimate.EstimateID
	RoomID     estimate.RoomID
	ProductID  estimate.ProductID
	Index      int
}

// RemoveRoomMsg is sent when the user confirms a room removal.
type RemoveRoomMsg struct {
	EstimateID estimate.EstimateID
	RoomID     estimate.RoomID
}

// RemoveEstimateMsg is sent when the user confirms an estimate removal.
type RemoveEstimateMsg struct {
	EstimateID estimate.EstimateID
}

// DismissModalMsg is sent when the user cancels a confirm modal (Esc).
type DismissModalMsg struct{}

// EstimatesCheckedMsg reports whether any estimates exist (open flow).
type EstimatesCheckedMsg struct {
	Session int
	Exists  bool
}

// TreeLoadedMsg delivers a freshly fetched estimate tree.
type TreeLoadedMsg struct {
	Session int
	Tree    estimate.Tree
	Target  WorkflowState
}

// EstimateCreatedMsg reports a successful create-estimate call.
type EstimateCreatedMsg struct {
	Session    int
	EstimateID estimate.EstimateID
}

// RoomCreatedMsg reports a successful create-room call.
type RoomCreatedMsg struct {
	Session int
	Result  remote.CreateRoomResult
}

// ProductAddedMsg reports a successful add-product call.
type ProductAddedMsg struct {
	Session int
	Result  remote.AddProductResult
}

// ProductReplacedMsg reports a successful replace-product call.
type ProductReplacedMsg struct {
	Session      int
	OldProductID estimate.ProductID
	NewProductID estimate.ProductID
	Scope        estimate.Scope
	Result       remote.ReplaceProductResult
}

// EntityRemovedMsg reports a successful removal.
type EntityRemovedMsg struct {
	Session int
}

// RemoteErrorMsg carries any failed service call back to the controller.
// Op names the wire operation for logging; Target is where the workflow
// should land after surfacing the error.
type RemoteErrorMsg struct {
	Session int
	Op      string
	Err     error
}

// watchdogTickMsg drives the loader watchdog's periodic check.
type watchdogTickMsg time.Time

// expandTickMsg drives the bounded branch re-expansion polling after a
// refresh.
type expandTickMsg struct {
	Session int
	Attempt int
}
