package ui

import (
	"go.uber.org/zap"

	"estimator/internal/estimate"
	"estimator/internal/logging"
)

// branchRef addresses one rendered branch: a room within an estimate.
// Both IDs are carried so the pair lookup wins whenever the pair exists;
// the room-ID-only fallback covers renders where the estimate has moved.
type branchRef struct {
	EstimateID estimate.EstimateID
	RoomID     estimate.RoomID
}

// HierarchyTracker remembers which branch the user is working in so the
// controller can re-locate and re-open it after the tree is re-fetched
// and re-rendered. Re-expansion is a convenience, not a correctness
// requirement: if the branch cannot be found within the bounded polling
// attempts the tracker gives up silently.
type HierarchyTracker struct {
	target      *branchRef
	maxAttempts int
}

// DefaultExpandAttempts bounds the re-expansion polling.
const DefaultExpandAttempts = 5

// NewHierarchyTracker creates a tracker with the given polling bound.
func NewHierarchyTracker(maxAttempts int) *HierarchyTracker {
	if maxAttempts <= 0 {
		maxAttempts = DefaultExpandAttempts
	}
	return &HierarchyTracker{maxAttempts: maxAttempts}
}

// Track records the branch to re-expand after the next refresh.
func (h *HierarchyTracker) Track(estimateID estimate.EstimateID, roomID estimate.RoomID) {
	h.target = &branchRef{EstimateID: estimateID, RoomID: roomID}
}

// Clear drops any pending target.
func (h *HierarchyTracker) Clear() {
	h.target = nil
}

// Target returns the pending branch, if any.
func (h *HierarchyTracker) Target() (branchRef, bool) {
	if h.target == nil {
		return branchRef{}, false
	}
	return *h.target, true
}

// MaxAttempts returns the polling bound.
func (h *HierarchyTracker) MaxAttempts() int {
	return h.maxAttempts
}

// Locate resolves the tracked branch against a tree. The
// (estimateID, roomID) pair is authoritative; when the pair is not found
// the lookup falls back to the room ID alone, logged as informational,
// not an error.
func (h *HierarchyTracker) Locate(tree estimate.Tree) (*estimate.Room, bool) {
	if h.target == nil {
		return nil, false
	}
	if room := tree.FindRoom(h.target.EstimateID, h.target.RoomID); room != nil {
		return room, true
	}
	if room := tree.FindRoomByID(h.target.RoomID); room != nil {
		logging.Info("branch pair lookup missed, matched by room id alone",
			zap.String("estimate_id", string(h.target.EstimateID)),
			zap.String("room_id", string(h.target.RoomID)))
		return room, true
	}
	return nil, false
}
