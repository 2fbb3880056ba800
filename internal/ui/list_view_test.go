package ui

import (
	"strings"
	"testing"

	"estimator/internal/estimate"
)

func TestListViewCollapsedByDefault(t *testing.T) {
	v := NewListView()
	v.SetTree(testTree())

	if len(v.rows) != 2 {
		t.Fatalf("expected only estimate rows when collapsed, got %d", len(v.rows))
	}
	for _, row := range v.rows {
		if row.Kind != rowEstimate {
			t.Errorf("expected estimate rows only, got kind %d", row.Kind)
		}
	}
}

func TestListViewToggleExpandsSelection(t *testing.T) {
	v := NewListView()
	v.SetTree(testTree())

	if !v.ToggleSelected() {
		t.Fatal("expected the estimate row to toggle")
	}
	// E-1 expanded: its room row appears.
	foundRoom := false
	for _, row := range v.rows {
		if row.Kind == rowRoom && row.RoomID == "R-1" {
			foundRoom = true
		}
	}
	if !foundRoom {
		t.Fatal("expected R-1's row after expanding E-1")
	}

	if !v.ToggleSelected() {
		t.Fatal("expected the row to collapse again")
	}
	if len(v.rows) != 2 {
		t.Errorf("expected the collapsed row count, got %d", len(v.rows))
	}
}

func TestListViewExpandBranchSelectsRoom(t *testing.T) {
	v := NewListView()
	v.SetTree(testTree())

	if !v.ExpandBranch("E-1", "R-1") {
		t.Fatal("expected the branch expanded")
	}
	if !v.IsExpanded("E-1", "R-1") {
		t.Error("expected the branch reported expanded")
	}
	row := v.SelectedRow()
	if row == nil || row.Kind != rowRoom || row.RoomID != "R-1" {
		t.Errorf("expected the cursor on R-1's row, got %+v", row)
	}
	if n := v.ProductRowCount("R-1"); n != 2 {
		t.Errorf("expected 2 product rows, got %d", n)
	}
}

func TestListViewExpandBranchMissingRoom(t *testing.T) {
	v := NewListView()
	v.SetTree(testTree())
	if v.ExpandBranch("E-1", "R-gone") {
		t.Error("expected no expansion for a missing room")
	}
}

func TestListViewRefreshPreservesLiveExpansion(t *testing.T) {
	v := NewListView()
	v.SetTree(testTree())
	v.ExpandBranch("E-1", "R-1")

	// Refresh with E-2 gone. E-1's expansion survives, E-2's flags are
	// pruned.
	tree := testTree()[:1]
	v.SetTree(tree)

	if !v.IsExpanded("E-1", "R-1") {
		t.Error("expected surviving branches to stay expanded")
	}
	if _, ok := v.expandedEstimates["E-2"]; ok {
		t.Error("expected pruned expansion state for removed estimates")
	}
}

func TestListViewProductRowControls(t *testing.T) {
	v := NewListView()
	v.SetTree(testTree())
	v.ExpandBranch("E-1", "R-1")

	controls := v.BranchControls("R-1")
	if len(controls) != 4 {
		t.Fatalf("expected 2 controls per product row, got %d total", len(controls))
	}
	kinds := map[string]int{}
	for _, ctl := range controls {
		kinds[ctl.Kind]++
		if ctl.EstimateID != "E-1" || ctl.RoomID != "R-1" {
			t.Errorf("control carries wrong identifiers: %+v", ctl)
		}
		if ctl.Scope != estimate.ScopePrimary {
			t.Errorf("expected primary scope default, got %s", ctl.Scope)
		}
		if !strings.Contains(ctl.ElementID, string(ctl.ProductID)) {
			t.Errorf("element ID should embed the product ID: %s", ctl.ElementID)
		}
	}
	if kinds["upgrade"] != 2 || kinds["remove"] != 2 {
		t.Errorf("expected 2 upgrade and 2 remove controls, got %v", kinds)
	}
}
