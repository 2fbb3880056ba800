// Package remote implements the client side of the estimate data
// service. One POST endpoint carries every operation; each response is a
// tagged success/failure union, never a bare value. A failed request
// leaves server state unchanged and no call is ever retried
// automatically — stuck operations are the loader watchdog's problem,
// not the transport's.
package remote

import (
	"context"

	"estimator/internal/estimate"
)

// CreateEstimateRequest creates a new estimate. PendingProductID is set
// when the estimate is being created as part of a product-addition flow.
type CreateEstimateRequest struct {
	Name             string
	PendingProductID estimate.ProductID
}

// CreateRoomRequest creates a room under an existing estimate, optionally
// attaching a product in the same round trip.
type CreateRoomRequest struct {
	EstimateID estimate.EstimateID
	Name       string
	Dimensions string
	ProductID  estimate.ProductID
}

// CreateRoomResult is the success payload of CreateRoom.
type CreateRoomResult struct {
	EstimateID estimate.EstimateID
	RoomID     estimate.RoomID
}

// AddProductRequest attaches a product to an existing room.
type AddProductRequest struct {
	EstimateID estimate.EstimateID
	RoomID     estimate.RoomID
	ProductID  estimate.ProductID
}

// AddProductResult is the success payload of AddProduct.
type AddProductResult struct {
	EstimateID estimate.EstimateID
	RoomID     estimate.RoomID
}

// ReplaceProductRequest swaps one product for another within a room.
type ReplaceProductRequest struct {
	EstimateID   estimate.EstimateID
	RoomID       estimate.RoomID
	OldProductID estimate.ProductID
	NewProductID estimate.ProductID
	Scope        estimate.Scope
}

// ReplaceProductResult carries the replacement chain accumulated for the
// displaced product so UI controls can be repointed.
type ReplaceProductResult struct {
	EstimateID estimate.EstimateID
	RoomID     estimate.RoomID
	Chain      []estimate.ProductID
}

// RemoveProductRequest removes one product occurrence. Index addresses
// the occurrence within the room as of the last refresh; the server
// re-resolves it against current state.
type RemoveProductRequest struct {
	EstimateID estimate.EstimateID
	RoomID     estimate.RoomID
	ProductID  estimate.ProductID
	Index      int
}

// Service is the remote data service consumed by the workflow
// controller. Implementations must return *ServiceError for every
// failure so callers can branch on the error kind.
type Service interface {
	CheckEstimatesExist(ctx context.Context) (bool, error)
	FetchTree(ctx context.Context) (estimate.Tree, error)
	CreateEstimate(ctx context.Context, req CreateEstimateRequest) (estimate.EstimateID, error)
	CreateRoom(ctx context.Context, req CreateRoomRequest) (CreateRoomResult, error)
	AddProduct(ctx context.Context, req AddProductRequest) (AddProductResult, error)
	ReplaceProduct(ctx context.Context, req ReplaceProductRequest) (ReplaceProductResult, error)
	RemoveProduct(ctx context.Context, req RemoveProductRequest) error
	RemoveRoom(ctx context.Context, estimateID estimate.EstimateID, roomID estimate.RoomID) error
	RemoveEstimate(ctx context.Context, estimateID estimate.EstimateID) error
}
