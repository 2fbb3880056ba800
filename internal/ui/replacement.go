package ui

import "estimator/internal/estimate"

// Control is one actionable affordance within a rendered branch: an
// upgrade or remove button carrying the typed identifier attributes of
// the entity it targets. Controls are the only identity mechanism the
// presentation layer exposes, so repointing rewrites them in place.
type Control struct {
	ElementID  string
	Kind       string
	EstimateID estimate.EstimateID
	RoomID     estimate.RoomID
	ProductID  estimate.ProductID
	Scope      estimate.Scope
}

type chainKey struct {
	Room  estimate.RoomID
	Scope estimate.Scope
}

// ReplacementTracker records product-to-product upgrade substitutions so
// a later upgrade control still resolves to the live entity. Chains are
// composable: after A→B then B→C, anything referencing A resolves to C.
// Scope keeps primary-product chains separate from bundled sub-product
// chains; only controls of matching scope are repointed.
type ReplacementTracker struct {
	next map[chainKey]map[estimate.ProductID]estimate.ProductID
}

// NewReplacementTracker creates an empty tracker.
func NewReplacementTracker() *ReplacementTracker {
	return &ReplacementTracker{
		next: make(map[chainKey]map[estimate.ProductID]estimate.ProductID),
	}
}

// Record notes that newID displaced oldID within the room, for the given
// scope.
func (r *ReplacementTracker) Record(roomID estimate.RoomID, oldID, newID estimate.ProductID, scope estimate.Scope) {
	if oldID == "" || newID == "" || oldID == newID {
		return
	}
	key := chainKey{Room: roomID, Scope: scope}
	if r.next[key] == nil {
		r.next[key] = make(map[estimate.ProductID]estimate.ProductID)
	}
	r.next[key][oldID] = newID
}

// Resolve follows the replacement chain from id to the live product ID.
// Unrecorded IDs resolve to themselves. A cycle guard bounds traversal
// to the chain length.
func (r *ReplacementTracker) Resolve(roomID estimate.RoomID, id estimate.ProductID, scope estimate.Scope) estimate.ProductID {
	key := chainKey{Room: roomID, Scope: scope}
	links := r.next[key]
	if links == nil {
		return id
	}
	current := id
	for range len(links) {
		next, ok := links[current]
		if !ok {
			return current
		}
		current = next
	}
	return current
}

// Chain returns the ordered list of displaced IDs from id to (but not
// including) the live ID.
func (r *ReplacementTracker) Chain(roomID estimate.RoomID, id estimate.ProductID, scope estimate.Scope) []estimate.ProductID {
	key := chainKey{Room: roomID, Scope: scope}
	links := r.next[key]
	if links == nil {
		return nil
	}
	var chain []estimate.ProductID
	current := id
	for range len(links) {
		next, ok := links[current]
		if !ok {
			break
		}
		chain = append(chain, current)
		current = next
	}
	return chain
}

// Repoint scans the controls of one just-rendered branch and rewrites
// references to oldID with newID where the scope matches. Returns how
// many controls were rewritten. Must run after every replacement,
// including chained ones.
func (r *ReplacementTracker) Repoint(branch []*Control, oldID, newID estimate.ProductID, scope estimate.Scope) int {
	count := 0
	for _, ctl := range branch {
		if ctl == nil || ctl.Scope != scope {
			continue
		}
		if ctl.ProductID == oldID {
			ctl.ProductID = newID
			count++
		}
	}
	return count
}

// Reset drops all recorded chains. Called when a new session opens.
func (r *ReplacementTracker) Reset() {
	r.next = make(map[chainKey]map[estimate.ProductID]estimate.ProductID)
}
