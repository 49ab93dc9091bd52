package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/food-court-orders/internal/middleware"
	"github.com/iliyamo/food-court-orders/internal/model"
	"github.com/iliyamo/food-court-orders/internal/repository"
	"github.com/iliyamo/food-court-orders/internal/service"
)

// OrderHandler serves checkout for clients and the order queue for sellers.
type OrderHandler struct {
	Stores    *repository.StoreRepo
	Orders    *repository.OrderRepo
	Placement *service.Placement
	Status    *service.Status
}

func NewOrderHandler(s *repository.StoreRepo, o *repository.OrderRepo, p *service.Placement, st *service.Status) *OrderHandler {
	return &OrderHandler{Stores: s, Orders: o, Placement: p, Status: st}
}

// ----- DTOs -----

// placementItem is one cart entry on the wire. The storefront has sent the
// item name under both "itemName" and "name" over time; both are accepted.
type placementItem struct {
	StoreName string `json:"storeName"`
	ItemName  string `json:"itemName"`
	Name      string `json:"name"`
}

func (i placementItem) item() string {
	if i.ItemName != "" {
		return i.ItemName
	}
	return i.Name
}

type singleStoreReq struct {
	StoreName string          `json:"storeName"`
	Items     []placementItem `json:"items"`
}

type updateReq struct {
	OID    string `json:"oid"`
	Status *int   `json:"status"`
}

// PlaceOrder accepts both checkout shapes — a flat item list spanning any
// number of stores, or a single {storeName, items} object — normalizes them
// into tagged lines and runs the placement pipeline. The response mirrors
// the input shape: the list form answers with one order per store, the
// object form with a single order.
func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	clientUsername, _ := c.Get(middleware.CtxUsername).(string)

	var raw json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "!items"})
	}

	var items []placementItem
	if err := json.Unmarshal(raw, &items); err == nil {
		return h.placeCart(c, items, clientUsername)
	}

	var req singleStoreReq
	if err := json.Unmarshal(raw, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "!items"})
	}
	return h.placeSingle(c, req, clientUsername)
}

// placeCart handles the flat multi-store list.
func (h *OrderHandler) placeCart(c echo.Context, items []placementItem, clientUsername string) error {
	if len(items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "!items"})
	}
	lines := make([]service.Line, 0, len(items))
	for _, it := range items {
		if it.StoreName == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "!storeName"})
		}
		if it.item() == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "!itemName"})
		}
		lines = append(lines, service.Line{StoreName: it.StoreName, ItemName: it.item()})
	}

	created, err := h.Placement.Place(lines, clientUsername)
	if err != nil {
		return h.placementError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "orders": created})
}

// placeSingle handles the one-store object shape.
func (h *OrderHandler) placeSingle(c echo.Context, req singleStoreReq, clientUsername string) error {
	if req.StoreName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "!storeName"})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "!items"})
	}
	lines := make([]service.Line, 0, len(req.Items))
	for _, it := range req.Items {
		if it.item() == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "!itemName"})
		}
		lines = append(lines, service.Line{StoreName: req.StoreName, ItemName: it.item()})
	}

	created, err := h.Placement.Place(lines, clientUsername)
	if err != nil {
		return h.placementError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "order": created[0].Order})
}

// placementError maps pipeline failures onto the wire. A partial multi-store
// failure is reported as such: the orders that did commit are in the body,
// because they exist and will be cooked — hiding them would be lying.
func (h *OrderHandler) placementError(c echo.Context, err error) error {
	var nfe *service.StoreNotFoundError
	if errors.As(err, &nfe) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found", "storeName": nfe.StoreName})
	}
	var ife *service.ItemNotFoundError
	if errors.As(err, &ife) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "item not found", "storeName": ife.StoreName, "itemName": ife.ItemName,
		})
	}
	var pf *service.PartialFailure
	if errors.As(err, &pf) {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"ok": false, "error": "order placement incomplete",
			"storeName": pf.StoreName, "orders": pf.Created,
		})
	}
	if service.IsValidation(err) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unexpected server error"})
}

// GetOrders returns the full ledger of the seller's own store.
func (h *OrderHandler) GetOrders(c echo.Context) error {
	storeName, _ := c.Get(middleware.CtxStoreName).(string)
	if storeName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token missing storeName"})
	}
	if !h.Stores.Exists(storeName) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
	}
	orders, err := h.Orders.List(storeName)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unexpected server error"})
	}
	return c.JSON(http.StatusOK, orders)
}

// UpdateOrders mutates one order in the seller's store. A body carrying a
// status in {1,2,3} is the explicit override; a body with only the oid
// advances the order one step along received → making → done.
func (h *OrderHandler) UpdateOrders(c echo.Context) error {
	storeName, _ := c.Get(middleware.CtxStoreName).(string)
	if storeName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "!storeName"})
	}

	var req updateReq
	if err := c.Bind(&req); err != nil || req.OID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "!oid"})
	}

	var (
		order model.Order
		err   error
	)
	if req.Status != nil {
		order, err = h.Status.SetStatus(storeName, req.OID, *req.Status)
	} else {
		order, err = h.Status.Advance(storeName, req.OID)
	}
	if err != nil {
		switch {
		case service.IsValidation(err):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad status"})
		case errors.Is(err, repository.ErrOrderNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unexpected server error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "order": order})
}
