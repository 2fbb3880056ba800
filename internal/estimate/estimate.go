// Package estimate defines the entity model for the estimator widget:
// Estimates contain Rooms, Rooms contain Products. All identifiers are
// opaque strings assigned by the remote data service; the client never
// invents permanent IDs.
package estimate

// EstimateID identifies a top-level estimate.
type EstimateID string

// RoomID identifies a room within an estimate.
type RoomID string

// ProductID identifies a product line item.
type ProductID string

// Scope distinguishes a primary product from a bundled sub-product when
// recording and resolving replacements. Only controls of matching scope
// are repointed after an upgrade.
type Scope string

const (
	ScopePrimary  Scope = "primary"
	ScopeIncluded Scope = "included"
)

// Estimate is the top-level container entity.
type Estimate struct {
	ID    EstimateID `json:"estimate_id"`
	Name  string     `json:"name"`
	Rooms []Room     `json:"rooms"`
}

// Room belongs to exactly one Estimate. The EstimateID on the room is
// authoritative; UI references carry both IDs to disambiguate.
type Room struct {
	ID         RoomID     `json:"room_id"`
	EstimateID EstimateID `json:"estimate_id"`
	Name       string     `json:"name"`
	Dimensions string     `json:"dimensions"`
	Products   []Product  `json:"products"`
}

// Product is a priced line item within a room. Index is the position
// within the room as of the last refresh; it is not a stable identity
// and any mutation invalidates it.
type Product struct {
	ID         ProductID  `json:"product_id"`
	RoomID     RoomID     `json:"room_id"`
	EstimateID EstimateID `json:"estimate_id"`
	Index      int        `json:"index"`
	Scope      Scope      `json:"scope,omitempty"`
}

// Tree is the full fetched hierarchy.
type Tree []Estimate

// FindEstimate returns the estimate with the given ID, or nil.
func (t Tree) FindEstimate(id EstimateID) *Estimate {
	for i := range t {
		if t[i].ID == id {
			return &t[i]
		}
	}
	return nil
}

// FindRoom looks up a room by its (estimateID, roomID) pair.
func (t Tree) FindRoom(estimateID EstimateID, roomID RoomID) *Room {
	e := t.FindEstimate(estimateID)
	if e == nil {
		return nil
	}
	for i := range e.Rooms {
		if e.Rooms[i].ID == roomID {
			return &e.Rooms[i]
		}
	}
	return nil
}

// FindRoomByID looks up a room by room ID alone, scanning every
// estimate. Used as a fallback when the pair lookup misses; assumes room
// IDs are unique enough in practice.
func (t Tree) FindRoomByID(roomID RoomID) *Room {
	for i := range t {
		for j := range t[i].Rooms {
			if t[i].Rooms[j].ID == roomID {
				return &t[i].Rooms[j]
			}
		}
	}
	return nil
}

// HasProduct reports whether the room already contains the product.
func (r *Room) HasProduct(id ProductID) bool {
	for i := range r.Products {
		if r.Products[i].ID == id {
			return true
		}
	}
	return false
}

// Reindex renumbers product positions after a refresh. Index values are
// only valid immediately after this runs on freshly fetched data.
func (t Tree) Reindex() {
	for i := range t {
		for j := range t[i].Rooms {
			room := &t[i].Rooms[j]
			for k := range room.Products {
				room.Products[k].Index = k
				room.Products[k].RoomID = room.ID
				room.Products[k].EstimateID = t[i].ID
			}
			room.EstimateID = t[i].ID
		}
	}
}
