package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/food-court-orders/internal/config"
	"github.com/iliyamo/food-court-orders/internal/handler"
	"github.com/iliyamo/food-court-orders/internal/model"
	"github.com/iliyamo/food-court-orders/internal/repository"
	"github.com/iliyamo/food-court-orders/internal/router"
	"github.com/iliyamo/food-court-orders/internal/service"
	"github.com/iliyamo/food-court-orders/internal/utils"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type server struct {
	e      *echo.Echo
	cfg    config.Config
	orders *repository.OrderRepo
}

// newServer builds a fully wired API over a temp data directory with two
// stores and three users: client alice, seller carol (store sushi) and
// seller dave (assigned to a store that does not exist).
func newServer(t *testing.T, rl config.RateLimitConfig) *server {
	t.Helper()
	dataDir := t.TempDir()
	cfg := config.Config{
		Env: "test", Port: "0", JWTSecret: testSecret,
		DataDir: dataDir, TokenTTLDays: 7, BcryptCost: 4,
		ClearWeekday: time.Sunday, ClearHour: 12, ClearMinute: 0,
	}

	hash := func(pw string) string {
		h, err := utils.HashPassword(pw, cfg.BcryptCost)
		require.NoError(t, err)
		return h
	}
	writeFile(t, filepath.Join(cfg.UsersDir(), "client", "users.csv"),
		fmt.Sprintf("alice,%s\n", hash("wonderland")))
	writeFile(t, filepath.Join(cfg.UsersDir(), "seller", "users.csv"),
		fmt.Sprintf("carol,%s,sushi\ndave,%s,ghost-mall\n", hash("fishmonger"), hash("haunted")))

	for name, menu := range map[string][]model.MenuItem{
		"sushi": {{Name: "maki", Price: "8"}, {Name: "ramen", Price: "12"}},
		"tacos": {{Name: "carnitas", Price: "6"}},
	} {
		s := model.Store{Name: name, Cuisine: "x", Menu: menu,
			Status: model.StoreStatus{IsOnline: true, ReceivingOrders: true}}
		b, err := json.Marshal(s)
		require.NoError(t, err)
		writeFile(t, filepath.Join(cfg.StoresDir(), name+".json"), string(b))
	}

	locks := repository.NewKeyedMutex()
	orders := repository.NewOrderRepo(cfg.OrdersDir(), locks)
	stores := repository.NewStoreRepo(cfg.StoresDir(), locks, orders)
	users := repository.NewUserRepo(cfg.UsersDir())

	e := echo.New()
	router.RegisterRoutes(e,
		handler.NewAuthHandler(cfg, users, stores),
		handler.NewStoreHandler(stores),
		handler.NewOrderHandler(stores, orders, service.NewPlacement(stores, orders), service.NewStatus(orders)),
		cfg.JWTSecret, rl)

	return &server{e: e, cfg: cfg, orders: orders}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func (s *server) do(method, path, token, body string) *httptest.ResponseRecorder {
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *server) login(t *testing.T, role, username, password string) string {
	t.Helper()
	rec := s.do(http.MethodPost, "/login/"+role, "",
		fmt.Sprintf(`{"username":%q,"password":%q}`, username, password))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func noLimit() config.RateLimitConfig { return config.RateLimitConfig{Enabled: false} }

// ----- login -----

func TestLoginJSONBody(t *testing.T) {
	s := newServer(t, noLimit())
	token := s.login(t, "client", "alice", "wonderland")

	claims, err := utils.ParseUserToken(testSecret, token)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, model.RoleClient, claims.Role)
}

func TestLoginBasicAuth(t *testing.T) {
	s := newServer(t, noLimit())
	req := httptest.NewRequest(http.MethodPost, "/login/seller", strings.NewReader(""))
	req.SetBasicAuth("carol", "fishmonger")
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.True(t, strings.HasPrefix(rec.Header().Get("Authorization"), "Bearer "))

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	claims, err := utils.ParseUserToken(testSecret, resp.Token)
	require.NoError(t, err)
	require.Equal(t, "sushi", claims.StoreName)
}

func TestLoginMissingCredentials(t *testing.T) {
	s := newServer(t, noLimit())
	rec := s.do(http.MethodPost, "/login/client", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "!token")
}

// Unknown user and wrong password are indistinguishable on the wire.
func TestLoginRejectionsAreUniform(t *testing.T) {
	s := newServer(t, noLimit())
	wrongPw := s.do(http.MethodPost, "/login/client", "", `{"username":"alice","password":"nope"}`)
	unknown := s.do(http.MethodPost, "/login/client", "", `{"username":"mallory","password":"nope"}`)

	require.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	require.Equal(t, http.StatusUnauthorized, unknown.Code)
	require.JSONEq(t, wrongPw.Body.String(), unknown.Body.String())
}

// A seller whose account names a missing store cannot log in at all.
func TestLoginSellerDanglingStore(t *testing.T) {
	s := newServer(t, noLimit())
	rec := s.do(http.MethodPost, "/login/seller", "", `{"username":"dave","password":"haunted"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "store assigned to user not found")
}

// ----- stores -----

func TestListStoresRequiresToken(t *testing.T) {
	s := newServer(t, noLimit())
	rec := s.do(http.MethodGet, "/stores.json", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListStoresOverlaysQueueCount(t *testing.T) {
	s := newServer(t, noLimit())
	token := s.login(t, "client", "alice", "wonderland")

	_, err := s.orders.Append("sushi", []string{"maki"}, "alice")
	require.NoError(t, err)

	rec := s.do(http.MethodGet, "/stores.json", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var stores []model.Store
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stores))
	counts := map[string]int{}
	for _, st := range stores {
		counts[st.Name] = st.Status.QueueCount
	}
	require.Equal(t, 1, counts["sushi"])
	require.Equal(t, 0, counts["tacos"])
}

func TestEditStoreWhitelist(t *testing.T) {
	s := newServer(t, noLimit())
	token := s.login(t, "seller", "carol", "fishmonger")

	// The string form of the boolean is accepted.
	rec := s.do(http.MethodPost, "/store/sushi/edit", token,
		`{"path":"status.receivingOrders","value":"false"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		OK    bool        `json:"ok"`
		Store model.Store `json:"store"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.OK)
	require.False(t, resp.Store.Status.ReceivingOrders)

	// Anything outside the closed path set is rejected before any write.
	rec = s.do(http.MethodPost, "/store/sushi/edit", token,
		`{"path":"secretField","value":"x"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "unknown edit path")
}

func TestEditStoreMismatchedStore(t *testing.T) {
	s := newServer(t, noLimit())
	token := s.login(t, "seller", "carol", "fishmonger")

	rec := s.do(http.MethodPost, "/store/tacos/edit", token,
		`{"path":"cuisine","value":"mexican"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "store mismatch")
}

func TestEditStoreMenuValidation(t *testing.T) {
	s := newServer(t, noLimit())
	token := s.login(t, "seller", "carol", "fishmonger")

	// Numeric prices are normalized to strings.
	rec := s.do(http.MethodPost, "/store/sushi/edit", token,
		`{"path":"menu","value":[{"name":"tempura","price":9.5,"description":"crispy"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"price":"9.5"`)

	rec = s.do(http.MethodPost, "/store/sushi/edit", token,
		`{"path":"menu","value":[{"name":"","price":"9"}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/store/sushi/edit", token,
		`{"path":"menu","value":[{"name":"tempura","price":"cheap"}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEditStoreRequiresSellerRole(t *testing.T) {
	s := newServer(t, noLimit())
	token := s.login(t, "client", "alice", "wonderland")

	rec := s.do(http.MethodPost, "/store/sushi/edit", token,
		`{"path":"cuisine","value":"fusion"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "bad role")
}

// ----- checkout -----

func TestPlaceOrderSingleShape(t *testing.T) {
	s := newServer(t, noLimit())
	token := s.login(t, "client", "alice", "wonderland")

	rec := s.do(http.MethodPost, "/orderPlacement", token,
		`{"storeName":"sushi","items":[{"itemName":"maki"},{"name":"ramen"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		OK    bool        `json:"ok"`
		Order model.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.OK)
	require.Equal(t, 1, resp.Order.SequenceID)
	require.Equal(t, []string{"maki", "ramen"}, resp.Order.Items)
	require.Equal(t, "alice", resp.Order.ClientUsername)
}

func TestPlaceOrderCartShapeFansOut(t *testing.T) {
	s := newServer(t, noLimit())
	token := s.login(t, "client", "alice", "wonderland")

	rec := s.do(http.MethodPost, "/orderPlacement", token,
		`[{"storeName":"sushi","itemName":"maki"},{"storeName":"tacos","itemName":"carnitas"}]`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		OK     bool                   `json:"ok"`
		Orders []service.CreatedOrder `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Orders, 2)
	require.Equal(t, "sushi", resp.Orders[0].StoreName)
	require.Equal(t, "tacos", resp.Orders[1].StoreName)
}

func TestPlaceOrderUnknownItem(t *testing.T) {
	s := newServer(t, noLimit())
	token := s.login(t, "client", "alice", "wonderland")

	rec := s.do(http.MethodPost, "/orderPlacement", token,
		`[{"storeName":"sushi","itemName":"maki"},{"storeName":"tacos","itemName":"ghost-burrito"}]`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "item not found")
	require.Contains(t, rec.Body.String(), "ghost-burrito")

	// Validation runs before any commit: nothing was created anywhere.
	ledger, err := s.orders.List("sushi")
	require.NoError(t, err)
	require.Empty(t, ledger)
}

func TestPlaceOrderUnknownStore(t *testing.T) {
	s := newServer(t, noLimit())
	token := s.login(t, "client", "alice", "wonderland")

	rec := s.do(http.MethodPost, "/orderPlacement", token,
		`{"storeName":"nowhere","items":[{"itemName":"maki"}]}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "store not found")
}

func TestPlaceOrderRequiresClientRole(t *testing.T) {
	s := newServer(t, noLimit())
	token := s.login(t, "seller", "carol", "fishmonger")

	rec := s.do(http.MethodPost, "/orderPlacement", token,
		`{"storeName":"sushi","items":[{"itemName":"maki"}]}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "bad role")
}

// ----- seller order queue -----

func TestGetOrdersAndUpdateFlow(t *testing.T) {
	s := newServer(t, noLimit())
	client := s.login(t, "client", "alice", "wonderland")
	seller := s.login(t, "seller", "carol", "fishmonger")

	rec := s.do(http.MethodPost, "/orderPlacement", client,
		`{"storeName":"sushi","items":[{"itemName":"maki"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/getOrders", seller, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ledger []model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ledger))
	require.Len(t, ledger, 1)
	oid := ledger[0].OID

	// No status field advances one step: received → making.
	rec = s.do(http.MethodPost, "/updateOrders", seller, fmt.Sprintf(`{"oid":%q}`, oid))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"status":2`)

	// An explicit status is the override.
	rec = s.do(http.MethodPost, "/updateOrders", seller, fmt.Sprintf(`{"oid":%q,"status":1}`, oid))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":1`)

	rec = s.do(http.MethodPost, "/updateOrders", seller, fmt.Sprintf(`{"oid":%q,"status":4}`, oid))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "bad status")

	rec = s.do(http.MethodPost, "/updateOrders", seller, `{"oid":"beef","status":2}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "order not found")

	rec = s.do(http.MethodPost, "/updateOrders", seller, `{"status":2}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "!oid")
}

// ----- rate limiting -----

func TestLoginRateLimited(t *testing.T) {
	s := newServer(t, config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1,
		RefillInterval: time.Hour, TTL: 2 * time.Hour,
		KeyStrategy: "ip_route", Prefix: "rl",
	})

	body := `{"username":"alice","password":"nope"}`
	for i := 0; i < 2; i++ {
		rec := s.do(http.MethodPost, "/login/client", "", body)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := s.do(http.MethodPost, "/login/client", "", body)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}
