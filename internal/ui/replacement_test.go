package ui

import (
	"testing"

	"estimator/internal/estimate"
)

func TestReplacementChainComposes(t *testing.T) {
	r := NewReplacementTracker()

	r.Record("R-1", "A", "B", estimate.ScopePrimary)
	r.Record("R-1", "B", "C", estimate.ScopePrimary)

	if got := r.Resolve("R-1", "A", estimate.ScopePrimary); got != "C" {
		t.Errorf("expected A to resolve through B to C, got %s", got)
	}
	if got := r.Resolve("R-1", "B", estimate.ScopePrimary); got != "C" {
		t.Errorf("expected B to resolve to C, got %s", got)
	}
	if got := r.Resolve("R-1", "C", estimate.ScopePrimary); got != "C" {
		t.Errorf("the live product resolves to itself, got %s", got)
	}
}

func TestReplacementUnrecordedResolvesToItself(t *testing.T) {
	r := NewReplacementTracker()
	if got := r.Resolve("R-1", "X", estimate.ScopePrimary); got != "X" {
		t.Errorf("expected X, got %s", got)
	}
}

func TestReplacementScopesAreIsolated(t *testing.T) {
	r := NewReplacementTracker()

	r.Record("R-1", "A", "B", estimate.ScopePrimary)
	if got := r.Resolve("R-1", "A", estimate.ScopeIncluded); got != "A" {
		t.Errorf("an included-scope lookup must not see the primary chain, got %s", got)
	}

	r.Record("R-1", "A", "Z", estimate.ScopeIncluded)
	if got := r.Resolve("R-1", "A", estimate.ScopePrimary); got != "B" {
		t.Errorf("the primary chain must be untouched, got %s", got)
	}
}

func TestReplacementRoomsAreIsolated(t *testing.T) {
	r := NewReplacementTracker()
	r.Record("R-1", "A", "B", estimate.ScopePrimary)
	if got := r.Resolve("R-2", "A", estimate.ScopePrimary); got != "A" {
		t.Errorf("chains are per room, got %s", got)
	}
}

func TestReplacementChainListing(t *testing.T) {
	r := NewReplacementTracker()
	r.Record("R-1", "A", "B", estimate.ScopePrimary)
	r.Record("R-1", "B", "C", estimate.ScopePrimary)

	chain := r.Chain("R-1", "A", estimate.ScopePrimary)
	if len(chain) != 2 || chain[0] != "A" || chain[1] != "B" {
		t.Errorf("expected [A B], got %v", chain)
	}
	if got := r.Chain("R-1", "C", estimate.ScopePrimary); got != nil {
		t.Errorf("the live product has no displaced chain, got %v", got)
	}
}

func TestReplacementIgnoresDegenerateRecords(t *testing.T) {
	r := NewReplacementTracker()
	r.Record("R-1", "", "B", estimate.ScopePrimary)
	r.Record("R-1", "A", "", estimate.ScopePrimary)
	r.Record("R-1", "A", "A", estimate.ScopePrimary)
	if got := r.Resolve("R-1", "A", estimate.ScopePrimary); got != "A" {
		t.Errorf("degenerate records must be ignored, got %s", got)
	}
}

func TestRepointRewritesMatchingScope(t *testing.T) {
	r := NewReplacementTracker()
	branch := []*Control{
		{ElementID: "upgrade:R-1:A", Kind: "upgrade", RoomID: "R-1", ProductID: "A", Scope: estimate.ScopePrimary},
		{ElementID: "remove:R-1:A", Kind: "remove", RoomID: "R-1", ProductID: "A", Scope: estimate.ScopePrimary},
		{ElementID: "upgrade:R-1:A2", Kind: "upgrade", RoomID: "R-1", ProductID: "A", Scope: estimate.ScopeIncluded},
		{ElementID: "upgrade:R-1:X", Kind: "upgrade", RoomID: "R-1", ProductID: "X", Scope: estimate.ScopePrimary},
	}

	n := r.Repoint(branch, "A", "B", estimate.ScopePrimary)
	if n != 2 {
		t.Fatalf("expected 2 controls repointed, got %d", n)
	}
	if branch[0].ProductID != "B" || branch[1].ProductID != "B" {
		t.Error("expected both primary-scope controls rewritten")
	}
	if branch[2].ProductID != "A" {
		t.Error("an included-scope control must not be rewritten")
	}
	if branch[3].ProductID != "X" {
		t.Error("unrelated controls must not be rewritten")
	}
}

func TestReplacementReset(t *testing.T) {
	r := NewReplacementTracker()
	r.Record("R-1", "A", "B", estimate.ScopePrimary)
	r.Reset()
	if got := r.Resolve("R-1", "A", estimate.ScopePrimary); got != "A" {
		t.Errorf("expected chains dropped, got %s", got)
	}
}
