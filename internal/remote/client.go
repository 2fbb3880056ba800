package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"estimator/internal/estimate"
	"estimator/internal/logging"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// Operation names on the wire.
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

// Client talks to the estimate service over a single POST endpoint.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	tracer     oteltrace.Tracer
}

var _ Service = (*Client)(nil)

// NewClient creates a client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		tracer:     otel.Tracer("estimator/remote"),
	}
}

// SetTimeout sets the HTTP request timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// requestEnvelope is the wire format for every operation.
type requestEnvelope struct {
	Op     string `json:"op"`
	Params any    `json:"params,omitempty"`
}

// wireError mirrors the failure payload. Duplicate marks the
// product-already-exists conflict, with the existing occurrence's IDs.
type wireError struct {
	Message    string `json:"message"`
	Duplicate  bool   `json:"duplicate,omitempty"`
	Validation bool   `json:"validation,omitempty"`
	EstimateID string `json:"estimate_id,omitempty"`
	RoomID     string `json:"room_id,omitempty"`
	Debug      string `json:"debug,omitempty"`
}

// responseEnvelope is the tagged union every operation returns.
type responseEnvelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *wireError      `json:"error,omitempty"`
}

// post sends one operation and decodes the envelope. The returned raw
// data is only valid when err is nil.
func (c *Client) post(ctx context.Context, op string, params any) (json.RawMessage, error) {
	ctx, span := c.tracer.Start(ctx, "remote."+op,
		oteltrace.WithAttributes(attribute.String("estimator.op", op)))
	defer span.End()

	body, err := json.Marshal(requestEnvelope{Op: op, Params: params})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, NewNetworkError("failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, NewNetworkError("failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		logging.Warn("request failed", zap.String("op", op), zap.Error(err))
		return nil, NewNetworkError("request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, NewNetworkError("failed to read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		span.SetStatus(codes.Error, resp.Status)
		return nil, &ServiceError{
			Kind:       KindNetwork,
			Message:    fmt.Sprintf("unexpected status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	var env responseEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, NewNetworkError("malformed response", err)
	}

	if !env.OK {
		serr := decodeWireError(env.Error)
		span.SetStatus(codes.Error, serr.Message)
		logging.Info("operation rejected",
			zap.String("op", op),
			zap.String("kind", serr.Kind.String()),
			zap.String("message", serr.Message))
		return nil, serr
	}

	logging.Debug("operation succeeded", zap.String("op", op))
	return env.Data, nil
}

// decodeWireError maps the failure payload onto the error taxonomy.
func decodeWireError(we *wireError) *ServiceError {
	if we == nil {
		return &ServiceError{Kind: KindServer, Message: "request failed"}
	}
	switch {
	case we.Duplicate:
		serr := NewConflictError(we.Message, estimate.EstimateID(we.EstimateID), estimate.RoomID(we.RoomID))
		serr.Detail = we.Debug
		return serr
	case we.Validation:
		return NewValidationError(we.Message)
	default:
		return &ServiceError{Kind: KindServer, Message: we.Message, Detail: we.Debug}
	}
}

// CheckEstimatesExist implements Service.
func (c *Client) CheckEstimatesExist(ctx context.Context) (bool, error) {
	data, err := c.post(ctx, opCheckEstimates, nil)
	if err != nil {
		return false, err
	}
	var out struct {
		Exists bool `json:"exists"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return false, NewNetworkError("malformed payload", err)
	}
	return out.Exists, nil
}

// FetchTree implements Service. Product indexes are renumbered on every
// fetch; callers must not reuse indexes from an earlier tree.
func (c *Client) FetchTree(ctx context.Context) (estimate.Tree, error) {
	data, err := c.post(ctx, opFetchTree, nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Estimates estimate.Tree `json:"estimates"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, NewNetworkError("malformed payload", err)
	}
	out.Estimates.Reindex()
	return out.Estimates, nil
}

// CreateEstimate implements Service.
func (c *Client) CreateEstimate(ctx context.Context, req CreateEstimateRequest) (estimate.EstimateID, error) {
	params := struct {
		Name      string `json:"name"`
		ProductID string `json:"product_id,omitempty"`
	}{Name: req.Name, ProductID: string(req.PendingProductID)}
	data, err := c.post(ctx, opCreateEstimate, params)
	if err != nil {
		return "", err
	}
	var out struct {
		EstimateID string `json:"estimate_id"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", NewNetworkError("malformed payload", err)
	}
	return estimate.EstimateID(out.EstimateID), nil
}

// CreateRoom implements Service.
func (c *Client) CreateRoom(ctx context.Context, req CreateRoomRequest) (CreateRoomResult, error) {
	params := struct {
		EstimateID string `json:"estimate_id"`
		Name       string `json:"name"`
		Dimensions string `json:"dimensions"`
		ProductID  string `json:"product_id,omitempty"`
	}{
		EstimateID: string(req.EstimateID),
		Name:       req.Name,
		Dimensions: req.Dimensions,
		ProductID:  string(req.ProductID),
	}
	data, err := c.post(ctx, opCreateRoom, params)
	if err != nil {
		return CreateRoomResult{}, err
	}
	var out struct {
		EstimateID string `json:"estimate_id"`
		RoomID     string `json:"room_id"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return CreateRoomResult{}, NewNetworkError("malformed payload", err)
	}
	return CreateRoomResult{
		EstimateID: estimate.EstimateID(out.EstimateID),
		RoomID:     estimate.RoomID(out.RoomID),
	}, nil
}

// AddProduct implements Service. A duplicate product in the target room
// comes back as a conflict error carrying the existing occurrence.
func (c *Client) AddProduct(ctx context.Context, req AddProductRequest) (AddProductResult, error) {
	params := struct {
		EstimateID string `json:"estimate_id"`
		RoomID     string `json:"room_id"`
		ProductID  string `json:"product_id"`
	}{string(req.EstimateID), string(req.RoomID), string(req.ProductID)}
	data, err := c.post(ctx, opAddProduct, params)
	if err != nil {
		return AddProductResult{}, err
	}
	var out struct {
		EstimateID string `json:"estimate_id"`
		RoomID     string `json:"room_id"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return AddProductResult{}, NewNetworkError("malformed payload", err)
	}
	return AddProductResult{
		EstimateID: estimate.EstimateID(out.EstimateID),
		RoomID:     estimate.RoomID(out.RoomID),
	}, nil
}

// ReplaceProduct implements Service.
func (c *Client) ReplaceProduct(ctx context.Context, req ReplaceProductRequest) (ReplaceProductResult, error) {
	params := struct {
		EstimateID   string `json:"estimate_id"`
		RoomID       string `json:"room_id"`
		OldProductID string `json:"old_product_id"`
		NewProductID string `json:"new_product_id"`
		Scope        string `json:"scope"`
	}{
		EstimateID:   string(req.EstimateID),
		RoomID:       string(req.RoomID),
		OldProductID: string(req.OldProductID),
		NewProductID: string(req.NewProductID),
		Scope:        string(req.Scope),
	}
	data, err := c.post(ctx, opReplaceProduct, params)
	if err != nil {
		return ReplaceProductResult{}, err
	}
	var out struct {
		EstimateID string   `json:"estimate_id"`
		RoomID     string   `json:"room_id"`
		Chain      []string `json:"chain"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return ReplaceProductResult{}, NewNetworkError("malformed payload", err)
	}
	chain := make([]estimate.ProductID, len(out.Chain))
	for i, id := range out.Chain {
		chain[i] = estimate.ProductID(id)
	}
	return ReplaceProductResult{
		EstimateID: estimate.EstimateID(out.EstimateID),
		RoomID:     estimate.RoomID(out.RoomID),
		Chain:      chain,
	}, nil
}

// RemoveProduct implements Service.
func (c *Client) RemoveProduct(ctx context.Context, req RemoveProductRequest) error {
	params := struct {
		EstimateID string `json:"estimate_id"`
		RoomID     string `json:"room_id"`
		ProductID  string `json:"product_id"`
		Index      int    `json:"index"`
	}{string(req.EstimateID), string(req.RoomID), string(req.ProductID), req.Index}
	_, err := c.post(ctx, opRemoveProduct, params)
	return err
}

// RemoveRoom implements Service.
func (c *Client) RemoveRoom(ctx context.Context, estimateID estimate.EstimateID, roomID estimate.RoomID) error {
	params := struct {
		EstimateID string `json:"estimate_id"`
		RoomID     string `json:"room_id"`
	}{string(estimateID), string(roomID)}
	_, err := c.post(ctx, opRemoveRoom, params)
	return err
}

// RemoveEstimate implements Service.
func (c *Client) RemoveEstimate(ctx context.Context, estimateID estimate.EstimateID) error {
	params := struct {
		EstimateID string `json:"estimate_id"`
	}{string(estimateID)}
	_, err := c.post(ctx, opRemoveEstimate, params)
	return err
}
