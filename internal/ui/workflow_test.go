package ui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"estimator/internal/config"
	"estimator/internal/estimate"
	"estimator/internal/remote"
)

// fakeService is a scripted Service for driving the controller without a
// network. Tests feed result messages directly, so the fake only needs
// to satisfy the interface.
type fakeService struct {
	tree   estimate.Tree
	exists bool
	calls  []string
}

func (f *fakeService) CheckEstimatesExist(ctx context.Context) (bool, error) {
	f.calls = append(f.calls, "check")
	return f.exists, nil
}

func (f *fakeService) FetchTree(ctx context.Context) (estimate.Tree, error) {
	f.calls = append(f.calls, "fetch")
	return f.tree, nil
}

func (f *fakeService) CreateEstimate(ctx context.Context, req remote.CreateEstimateRequest) (estimate.EstimateID, error) {
	f.calls = append(f.calls, "create_estimate")
	return "E-new", nil
}

func (f *fakeService) CreateRoom(ctx context.Context, req remote.CreateRoomRequest) (remote.CreateRoomResult, error) {
	f.calls = append(f.calls, "create_room")
	return remote.CreateRoomResult{EstimateID: req.EstimateID, RoomID: "R-new"}, nil
}

func (f *fakeService) AddProduct(ctx context.Context, req remote.AddProductRequest) (remote.AddProductResult, error) {
	f.calls = append(f.calls, "add_product")
	return remote.AddProductResult{EstimateID: req.EstimateID, RoomID: req.RoomID}, nil
}

func (f *fakeService) ReplaceProduct(ctx context.Context, req remote.ReplaceProductRequest) (remote.ReplaceProductResult, error) {
	f.calls = append(f.calls, "replace_product")
	return remote.ReplaceProductResult{EstimateID: req.EstimateID, RoomID: req.RoomID}, nil
}

func (f *fakeService) RemoveProduct(ctx context.Context, req remote.RemoveProductRequest) error {
	f.calls = append(f.calls, "remove_product")
	return nil
}

func (f *fakeService) RemoveRoom(ctx context.Context, estimateID estimate.EstimateID, roomID estimate.RoomID) error {
	f.calls = append(f.calls, "remove_room")
	return nil
}

func (f *fakeService) RemoveEstimate(ctx context.Context, estimateID estimate.EstimateID) error {
	f.calls = append(f.calls, "remove_estimate")
	return nil
}

func testTree() estimate.Tree {
	tree := estimate.Tree{
		{
			ID:   "E-1",
			Name: "Kitchen remodel",
			Rooms: []estimate.Room{
				{
					ID:         "R-1",
					Name:       "Kitchen",
					Dimensions: "4x5",
					Products: []estimate.Product{
						{ID: "P-1"},
						{ID: "P-2"},
					},
				},
			},
		},
		{
			ID:   "E-2",
			Name: "Bathroom refresh",
			Rooms: []estimate.Room{
				{ID: "R-2", Name: "Bathroom", Dimensions: "2x3"},
			},
		},
	}
	tree.Reindex()
	return tree
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.RequestTimeout = time.Second
	cfg.WatchdogInterval = time.Millisecond
	cfg.WatchdogCeiling = time.Hour
	return cfg
}

func newTestController() (*Controller, *fakeService) {
	svc := &fakeService{tree: testTree(), exists: true}
	return NewController(svc, testConfig()), svc
}

// loadTree simulates the async tree fetch completing.
func loadTree(c *Controller, tree estimate.Tree, target WorkflowState) tea.Cmd {
	return c.Update(TreeLoadedMsg{Session: c.Session(), Tree: tree, Target: target})
}

func TestOpenWithoutProductShowsListView(t *testing.T) {
	c, _ := newTestController()

	c.Update(OpenMsg{})
	if c.State != StateListView {
		t.Fatalf("expected list view after open, got %s", c.State)
	}
	if !c.LoaderActive() {
		t.Error("expected loader active while the tree loads")
	}

	loadTree(c, testTree(), StateListView)
	if c.LoaderActive() {
		t.Error("expected loader cleared once the tree arrived")
	}
	if c.ListView() == nil {
		t.Fatal("expected a live list view")
	}
	if len(c.ListView().Tree) != 2 {
		t.Errorf("expected 2 estimates in the list view, got %d", len(c.ListView().Tree))
	}
}

func TestExactlyOneViewVisiblePerState(t *testing.T) {
	c, _ := newTestController()

	c.Update(OpenMsg{ProductID: "P-9"})
	check := func(state WorkflowState) {
		t.Helper()
		if c.State != state {
			t.Fatalf("expected state %s, got %s", state, c.State)
		}
		if n := c.VisibleViewCount(); n != 1 {
			t.Errorf("state %s: expected exactly 1 visible view, got %d", state, n)
		}
	}
	check(StateListView)

	c.Update(EstimatesCheckedMsg{Session: c.Session(), Exists: true})
	loadTree(c, testTree(), StateEstimateSelect)
	check(StateEstimateSelect)

	c.Update(EstimateChosenMsg{EstimateID: "E-1"})
	check(StateRoomSelect)

	c.Update(CreateNewRoomMsg{})
	check(StateNewRoomForm)

	c.Update(CancelFormMsg{From: StateNewRoomForm})
	check(StateRoomSelect)

	c.Update(CancelFormMsg{From: StateRoomSelect})
	check(StateEstimateSelect)

	c.Update(CreateNewEstimateMsg{})
	check(StateNewEstimateForm)
}

func TestCloseIsIdempotent(t *testing.T) {
	c, _ := newTestController()

	c.Update(OpenMsg{})
	loadTree(c, testTree(), StateListView)

	c.Update(CloseMsg{})
	if c.State != StateClosed {
		t.Fatalf("expected closed state, got %s", c.State)
	}
	if c.VisibleViewCount() != 0 {
		t.Error("expected no visible views after close")
	}
	if c.LoaderActive() {
		t.Error("expected loader cleared by close")
	}

	session := c.Session()
	cmd := c.Update(CloseMsg{})
	if cmd != nil {
		t.Error("closing a closed controller should do nothing")
	}
	if c.Session() != session {
		t.Error("closing a closed controller should not bump the session")
	}
}

func TestStaleResultsAreDropped(t *testing.T) {
	c, _ := newTestController()

	c.Update(OpenMsg{})
	stale := c.Session()
	c.Update(CloseMsg{})

	c.Update(TreeLoadedMsg{Session: stale, Tree: testTree(), Target: StateListView})
	if c.State != StateClosed {
		t.Errorf("stale tree load must not reopen the workflow, state=%s", c.State)
	}
	if c.ListView() != nil {
		t.Error("stale tree load must not create a view")
	}

	c.Update(OpenMsg{})
	c.Update(EstimatesCheckedMsg{Session: stale, Exists: false})
	if c.State != StateListView {
		t.Errorf("stale existence check must be ignored, state=%s", c.State)
	}
}

func TestAddProductIntoExistingRoom(t *testing.T) {
	c, _ := newTestController()

	c.Update(OpenMsg{ProductID: "P-9"})
	if c.PendingProductID() != "P-9" {
		t.Fatalf("expected pending product P-9, got %q", c.PendingProductID())
	}

	c.Update(EstimatesCheckedMsg{Session: c.Session(), Exists: true})
	loadTree(c, testTree(), StateEstimateSelect)
	c.Update(EstimateChosenMsg{EstimateID: "E-1"})
	if c.State != StateRoomSelect {
		t.Fatalf("expected room select, got %s", c.State)
	}

	c.Update(RoomChosenMsg{EstimateID: "E-1", RoomID: "R-1"})
	if !c.pending {
		t.Fatal("expected a pending mutation after choosing a room")
	}

	c.Update(ProductAddedMsg{
		Session: c.Session(),
		Result:  remote.AddProductResult{EstimateID: "E-1", RoomID: "R-1"},
	})
	if c.pending {
		t.Error("expected pending cleared after the add completed")
	}
	if c.PendingProductID() != "" {
		t.Error("expected pending product consumed")
	}

	// Refreshed tree now carries the new product.
	tree := testTree()
	tree[0].Rooms[0].Products = append(tree[0].Rooms[0].Products, estimate.Product{ID: "P-9"})
	tree.Reindex()
	loadTree(c, tree, StateListView)

	c.Update(expandTickMsg{Session: c.Session(), Attempt: 1})
	if !c.ListView().IsExpanded("E-1", "R-1") {
		t.Error("expected the target branch re-expanded after the refresh")
	}
	if n := c.ListView().ProductRowCount("R-1"); n != 3 {
		t.Errorf("expected 3 product rows in R-1, got %d", n)
	}
}

func TestAddProductWhenNoEstimatesExist(t *testing.T) {
	c, _ := newTestController()

	c.Update(OpenMsg{ProductID: "P-9"})
	c.Update(EstimatesCheckedMsg{Session: c.Session(), Exists: false})
	if c.State != StateNewEstimateForm {
		t.Fatalf("expected new-estimate form, got %s", c.State)
	}
	if c.LoaderActive() {
		t.Error("expected loader cleared once the form is shown")
	}

	c.Update(SubmitEstimateFormMsg{Name: "Garage"})
	if !c.pending {
		t.Fatal("expected pending mutation after submit")
	}

	c.Update(EstimateCreatedMsg{Session: c.Session(), EstimateID: "E-7"})
	if c.State != StateNewRoomForm {
		t.Fatalf("a pending product needs a room next, got %s", c.State)
	}
	if c.roomForm == nil || c.roomForm.EstimateID != "E-7" {
		t.Fatal("expected the room form bound to the new estimate")
	}

	c.Update(SubmitRoomFormMsg{Name: "Bay", Dimensions: "6x3"})
	c.Update(RoomCreatedMsg{
		Session: c.Session(),
		Result:  remote.CreateRoomResult{EstimateID: "E-7", RoomID: "R-9"},
	})
	if c.PendingProductID() != "" {
		t.Error("expected pending product consumed by room creation")
	}

	tree := estimate.Tree{
		{
			ID: "E-7", Name: "Garage",
			Rooms: []estimate.Room{
				{ID: "R-9", Name: "Bay", Dimensions: "6x3",
					Products: []estimate.Product{{ID: "P-9"}}},
			},
		},
	}
	tree.Reindex()
	loadTree(c, tree, StateListView)
	c.Update(expandTickMsg{Session: c.Session(), Attempt: 1})

	if !c.ListView().IsExpanded("E-7", "R-9") {
		t.Error("expected the new branch expanded")
	}
	row := c.ListView().SelectedRow()
	if row == nil || row.Kind != rowRoom || row.RoomID != "R-9" {
		t.Errorf("expected cursor on the new room row, got %+v", row)
	}
}

func TestDuplicateAddShowsExistingOccurrence(t *testing.T) {
	c, _ := newTestController()

	c.Update(OpenMsg{ProductID: "P-1"})
	c.Update(EstimatesCheckedMsg{Session: c.Session(), Exists: true})
	loadTree(c, testTree(), StateEstimateSelect)
	c.Update(EstimateChosenMsg{EstimateID: "E-1"})
	c.Update(RoomChosenMsg{EstimateID: "E-1", RoomID: "R-1"})

	c.Update(RemoteErrorMsg{
		Session: c.Session(),
		Op:      "add_product",
		Err:     remote.NewConflictError("Product already in this room", "E-1", "R-1"),
	})
	if !c.StatusIsError || c.Status != "Product already in this room" {
		t.Errorf("expected the server's conflict message on the status line, got %q", c.Status)
	}
	if c.PendingProductID() != "" {
		t.Error("expected the pending product dropped after a conflict")
	}
	if c.pending {
		t.Error("expected the pending latch released")
	}

	// The refreshed tree still carries a single occurrence.
	loadTree(c, testTree(), StateListView)
	c.Update(expandTickMsg{Session: c.Session(), Attempt: 1})

	if !c.ListView().IsExpanded("E-1", "R-1") {
		t.Error("expected the existing occurrence's branch expanded")
	}
	if n := c.ListView().ProductRowCount("R-1"); n != 2 {
		t.Errorf("conflict must not create a second row: got %d rows", n)
	}
}

func TestEstimateWithNoRoomsSkipsRoomPicker(t *testing.T) {
	c, _ := newTestController()

	tree := estimate.Tree{{ID: "E-3", Name: "Empty shell"}}
	c.Update(OpenMsg{ProductID: "P-9"})
	c.Update(EstimatesCheckedMsg{Session: c.Session(), Exists: true})
	loadTree(c, tree, StateEstimateSelect)

	c.Update(EstimateChosenMsg{EstimateID: "E-3"})
	if c.State != StateNewRoomForm {
		t.Fatalf("an estimate with no rooms goes straight to the room form, got %s", c.State)
	}
	if c.roomForm == nil || c.roomForm.EstimateID != "E-3" {
		t.Error("expected the room form bound to the chosen estimate")
	}
}

func TestCancelPrefersSelectionFlow(t *testing.T) {
	c, _ := newTestController()

	c.Update(OpenMsg{ProductID: "P-9"})
	c.Update(EstimatesCheckedMsg{Session: c.Session(), Exists: true})
	loadTree(c, testTree(), StateEstimateSelect)

	c.Update(CreateNewEstimateMsg{})
	c.Update(CancelFormMsg{From: StateNewEstimateForm})
	if c.State != StateEstimateSelect {
		t.Errorf("backing out of the estimate form should return to the picker, got %s", c.State)
	}

	c.Update(EstimateChosenMsg{EstimateID: "E-2"})
	c.Update(CancelFormMsg{From: StateRoomSelect})
	if c.State != StateEstimateSelect {
		t.Errorf("backing out of the room picker should return to the estimate picker, got %s", c.State)
	}

	c.Update(CancelFormMsg{From: StateEstimateSelect})
	if c.State != StateListView {
		t.Errorf("backing out of the estimate picker should land on the list view, got %s", c.State)
	}
}

func TestPendingSerializesMutations(t *testing.T) {
	c, _ := newTestController()

	c.Update(OpenMsg{ProductID: "P-9"})
	c.Update(EstimatesCheckedMsg{Session: c.Session(), Exists: true})
	loadTree(c, testTree(), StateEstimateSelect)
	c.Update(EstimateChosenMsg{EstimateID: "E-1"})
	c.Update(RoomChosenMsg{EstimateID: "E-1", RoomID: "R-1"})

	if cmd := c.Update(RoomChosenMsg{EstimateID: "E-1", RoomID: "R-1"}); cmd != nil {
		t.Error("a second mutation must not start while one is pending")
	}
	if cmd := c.Update(UpgradeProductMsg{
		EstimateID: "E-1", RoomID: "R-1",
		OldProductID: "P-1", NewProductID: "P-5", Scope: estimate.ScopePrimary,
	}); cmd != nil {
		t.Error("an upgrade must not start while a mutation is pending")
	}
}

func TestReplaceResolvesThroughChain(t *testing.T) {
	c, _ := newTestController()

	c.Update(OpenMsg{})
	loadTree(c, testTree(), StateListView)

	// First replacement: P-1 -> P-5.
	c.Update(UpgradeProductMsg{
		EstimateID: "E-1", RoomID: "R-1",
		OldProductID: "P-1", NewProductID: "P-5", Scope: estimate.ScopePrimary,
	})
	c.Update(ProductReplacedMsg{
		Session:      c.Session(),
		OldProductID: "P-1", NewProductID: "P-5", Scope: estimate.ScopePrimary,
		Result: remote.ReplaceProductResult{EstimateID: "E-1", RoomID: "R-1"},
	})

	tree := testTree()
	tree[0].Rooms[0].Products[0].ID = "P-5"
	tree.Reindex()
	loadTree(c, tree, StateListView)

	// A control still referencing P-1 must resolve to the live P-5.
	if got := c.Replacements().Resolve("R-1", "P-1", estimate.ScopePrimary); got != "P-5" {
		t.Fatalf("expected stale reference to resolve to P-5, got %s", got)
	}

	// Chained replacement driven through a stale reference: P-1 -> P-8
	// must target P-5 on the wire.
	cmd := c.Update(UpgradeProductMsg{
		EstimateID: "E-1", RoomID: "R-1",
		OldProductID: "P-1", NewProductID: "P-8", Scope: estimate.ScopePrimary,
	})
	if cmd == nil {
		t.Fatal("expected a replace command")
	}
	if !c.pending {
		t.Fatal("expected a pending replace")
	}
	c.Update(ProductReplacedMsg{
		Session:      c.Session(),
		OldProductID: "P-5", NewProductID: "P-8", Scope: estimate.ScopePrimary,
		Result: remote.ReplaceProductResult{EstimateID: "E-1", RoomID: "R-1"},
	})
	if got := c.Replacements().Resolve("R-1", "P-1", estimate.ScopePrimary); got != "P-8" {
		t.Errorf("expected the chain to compose to P-8, got %s", got)
	}
}

func TestRemoveRequestOpensConfirmModal(t *testing.T) {
	c, _ := newTestController()

	c.Update(OpenMsg{})
	loadTree(c, testTree(), StateListView)

	// Cursor starts on the first estimate row.
	c.Update(RequestRemoveMsg{})
	if c.overlays.Len() != 1 {
		t.Fatalf("expected a confirm modal, got %d overlays", c.overlays.Len())
	}
	top, _ := c.overlays.Peek()
	if _, ok := top.View.(*ConfirmModal); !ok {
		t.Fatalf("expected a ConfirmModal, got %T", top.View)
	}

	c.Update(DismissModalMsg{})
	if c.overlays.Len() != 0 {
		t.Error("expected the modal dismissed")
	}
}

func TestRemoveProductRoundTrip(t *testing.T) {
	c, _ := newTestController()

	c.Update(OpenMsg{})
	loadTree(c, testTree(), StateListView)

	c.Update(RemoveProductMsg{EstimateID: "E-1", RoomID: "R-1", ProductID: "P-2", Index: 1})
	if !c.pending {
		t.Fatal("expected a pending removal")
	}

	c.Update(EntityRemovedMsg{Session: c.Session()})
	tree := testTree()
	tree[0].Rooms[0].Products = tree[0].Rooms[0].Products[:1]
	tree.Reindex()
	loadTree(c, tree, StateListView)
	c.Update(expandTickMsg{Session: c.Session(), Attempt: 1})

	if n := c.ListView().ProductRowCount("R-1"); n != 1 {
		t.Errorf("expected 1 product row after removal, got %d", n)
	}
}

func TestWatchdogForceClearsStuckOperation(t *testing.T) {
	cfg := testConfig()
	cfg.WatchdogCeiling = time.Nanosecond
	c := NewController(&fakeService{}, cfg)

	c.Update(OpenMsg{})
	if !c.LoaderActive() {
		t.Fatal("expected loader active after open")
	}
	time.Sleep(time.Millisecond)

	c.Update(watchdogTickMsg(time.Now()))
	if c.LoaderActive() {
		t.Error("expected the watchdog to force-clear the loader")
	}
	if c.pending {
		t.Error("expected the pending latch released")
	}
	if !c.StatusIsError || c.Status == "" {
		t.Error("expected a warning on the status line")
	}

	// Warn once only.
	warned := c.Status
	c.setStatus("", false)
	c.Update(watchdogTickMsg(time.Now()))
	if c.Status == warned {
		t.Error("expected no second warning for the same operation")
	}
}

func TestOpenResetsPreviousSessionState(t *testing.T) {
	c, _ := newTestController()

	c.Update(OpenMsg{ProductID: "P-9"})
	c.Update(EstimatesCheckedMsg{Session: c.Session(), Exists: true})
	loadTree(c, testTree(), StateEstimateSelect)
	c.Replacements().Record("R-1", "P-1", "P-5", estimate.ScopePrimary)
	first := c.Session()

	c.Update(OpenMsg{})
	if c.Session() == first {
		t.Error("expected a fresh session generation")
	}
	if c.PendingProductID() != "" {
		t.Error("expected the old pending product cleared")
	}
	if got := c.Replacements().Resolve("R-1", "P-1", estimate.ScopePrimary); got != "P-1" {
		t.Error("expected replacement chains reset on reopen")
	}
	if c.State != StateListView {
		t.Errorf("expected the list view, got %s", c.State)
	}
}
