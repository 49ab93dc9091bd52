package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/food-court-orders/internal/middleware"
	"github.com/iliyamo/food-court-orders/internal/model"
	"github.com/iliyamo/food-court-orders/internal/repository"
)

// StoreHandler serves the store registry: the public listing and the
// seller-scoped edit endpoint.
type StoreHandler struct {
	Stores *repository.StoreRepo
}

func NewStoreHandler(s *repository.StoreRepo) *StoreHandler {
	return &StoreHandler{Stores: s}
}

// ListStores returns every store record with the live queue count overlaid.
// Any authenticated role may read it.
func (h *StoreHandler) ListStores(c echo.Context) error {
	stores, err := h.Stores.ListAll()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unexpected server error"})
	}
	return c.JSON(http.StatusOK, stores)
}

type editReq struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// EditStore applies one whitelisted edit to the caller's store. A seller
// token carrying a store name may only touch that store; the edit body is
// parsed into a closed command set so no other field is reachable from
// client input.
func (h *StoreHandler) EditStore(c echo.Context) error {
	storeName := c.Param("storeName")
	tokenStore, _ := c.Get(middleware.CtxStoreName).(string)
	if tokenStore != "" && tokenStore != storeName {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "store mismatch"})
	}

	var req editReq
	if err := c.Bind(&req); err != nil || req.Path == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "!path"})
	}

	cmd, err := parseEditCommand(req.Path, req.Value)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	store, err := h.Stores.ApplyEdit(storeName, cmd)
	if err != nil {
		if err == repository.ErrStoreNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unexpected server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "store": store})
}

// parseEditCommand maps a {path, value} body onto the closed command set.
// Supported paths: name, cuisine, menu, status.receivingOrders (and the
// legacy status.0.receivingOrders spelling the old storefront still sends).
// Everything else is rejected here, before any store file is opened.
func parseEditCommand(path string, value any) (repository.EditCommand, error) {
	switch path {
	case "name":
		s, ok := value.(string)
		if !ok || s == "" {
			return nil, fmt.Errorf("bad name")
		}
		return repository.RenameStore{Name: s}, nil
	case "cuisine":
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("bad cuisine")
		}
		return repository.SetCuisine{Cuisine: s}, nil
	case "menu":
		menu, err := parseMenu(value)
		if err != nil {
			return nil, err
		}
		return repository.ReplaceMenu{Menu: menu}, nil
	case "status.receivingOrders", "status.0.receivingOrders":
		switch v := value.(type) {
		case bool:
			return repository.SetReceivingOrders{Receiving: v}, nil
		case string:
			if v == "true" || v == "false" {
				return repository.SetReceivingOrders{Receiving: v == "true"}, nil
			}
		}
		return nil, fmt.Errorf("bad receivingOrders format")
	}
	return nil, fmt.Errorf("unknown edit path")
}

// parseMenu validates a wholesale menu replacement: every item needs a
// non-empty name and a numeric or numeric-string price. Prices are
// normalized to strings, which is what the storefront renders.
func parseMenu(value any) ([]model.MenuItem, error) {
	raw, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("bad menu")
	}
	menu := make([]model.MenuItem, 0, len(raw))
	for i, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("bad menu item at index %d", i)
		}
		name, _ := obj["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("menu item at index %d missing name", i)
		}
		var price string
		switch p := obj["price"].(type) {
		case float64:
			price = strconv.FormatFloat(p, 'f', -1, 64)
		case string:
			if _, err := strconv.ParseFloat(p, 64); err != nil {
				return nil, fmt.Errorf("menu item %q has non-numeric price", name)
			}
			price = p
		default:
			return nil, fmt.Errorf("menu item %q has non-numeric price", name)
		}
		desc, _ := obj["description"].(string)
		menu = append(menu, model.MenuItem{Name: name, Price: price, Description: desc})
	}
	return menu, nil
}
