package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MaverickLook/Big-Bite/pkg/analytics"
	"github.com/MaverickLook/Big-Bite/pkg/auth"
	"github.com/MaverickLook/Big-Bite/pkg/catalog"
	"github.com/MaverickLook/Big-Bite/pkg/config"
	"github.com/MaverickLook/Big-Bite/pkg/metrics"
	"github.com/MaverickLook/Big-Bite/pkg/models"
	"github.com/MaverickLook/Big-Bite/pkg/order"
	"github.com/MaverickLook/Big-Bite/pkg/repository"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	handler http.Handler
	tokens  *auth.TokenManager
	foods   *repository.MemoryFoodStore
	burger  *models.Food
	fries   *models.Food
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{Analytics: config.AnalyticsConfig{DefaultDays: 7}}
	logger := zap.NewNop()
	foods := repository.NewMemoryFoodStore()
	orders := repository.NewMemoryOrderStore()
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	env := &testEnv{tokens: tokens, foods: foods}
	env.burger = &models.Food{Name: "Burger", Price: 100, Category: "mains", Available: true}
	env.fries = &models.Food{Name: "Fries", Price: 50, Category: "sides", Available: true}
	require.NoError(t, foods.Create(context.Background(), env.burger))
	require.NoError(t, foods.Create(context.Background(), env.fries))

	gw := NewGateway(cfg, logger, Services{
		Orders:    order.NewService(orders, foods, logger),
		Catalog:   catalog.NewService(foods, logger),
		Analytics: analytics.NewAggregator(orders, logger),
		Tokens:    tokens,
		Metrics:   metrics.New(),
		Health: map[string]HealthCheck{
			"storage": func(context.Context) error { return nil },
		},
	})
	gw.SetupRoutes()
	env.handler = gw.Handler()
	return env
}

func (e *testEnv) token(t *testing.T, userID string, role auth.Role) string {
	t.Helper()
	tok, err := e.tokens.Issue(auth.Identity{UserID: userID, Role: role})
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (e *testEnv) placeOrder(t *testing.T, token string) models.Order {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/orders", token, gin.H{
		"items": []gin.H{
			{"foodId": e.burger.ID, "quantity": 2},
			{"foodId": e.fries.ID, "quantity": 1},
		},
		"deliveryAddress": "1 Main St",
		"phoneNumber":     "555-0100",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var o models.Order
	decode(t, rec, &o)
	return o
}

func TestOrders_RequireToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/orders", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateOrder(t *testing.T) {
	env := newTestEnv(t)
	alice := env.token(t, "alice", auth.RoleUser)

	o := env.placeOrder(t, alice)

	assert.Equal(t, "alice", o.UserID)
	assert.Equal(t, models.StatusPending, o.Status)
	assert.Equal(t, 250.0, o.TotalPrice)
	require.Len(t, o.Items, 2)
	assert.Equal(t, env.burger.ID, o.Items[0].FoodID)
}

func TestCreateOrder_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	alice := env.token(t, "alice", auth.RoleUser)

	rec := env.do(t, http.MethodPost, "/api/orders", alice, gin.H{
		"items":           []gin.H{},
		"deliveryAddress": "1 Main St",
		"phoneNumber":     "555-0100",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp errorResponse
	decode(t, rec, &resp)
	assert.Contains(t, resp.Details, "Items")

	rec = env.do(t, http.MethodPost, "/api/orders", alice, gin.H{
		"items":           []gin.H{{"foodId": "missing", "quantity": 1}},
		"deliveryAddress": "1 Main St",
		"phoneNumber":     "555-0100",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/orders", alice, gin.H{
		"items":           []gin.H{{"foodId": env.burger.ID}},
		"deliveryAddress": "   ",
		"phoneNumber":     "555-0100",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	env := newTestEnv(t)
	alice := env.token(t, "alice", auth.RoleUser)
	admin := env.token(t, "root", auth.RoleAdmin)
	o := env.placeOrder(t, alice)
	path := "/api/orders/" + o.ID + "/status"

	rec := env.do(t, http.MethodPut, path, alice, gin.H{"status": "preparing"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPut, path, admin, gin.H{"status": "delivering"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp errorResponse
	decode(t, rec, &resp)
	assert.Equal(t, "pending", resp.CurrentStatus)
	assert.Equal(t, []string{"preparing", "cancelled"}, resp.AllowedNext)

	for _, next := range []string{"preparing", "delivering", "completed"} {
		rec = env.do(t, http.MethodPut, path, admin, gin.H{"status": next})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var updated models.Order
		decode(t, rec, &updated)
		assert.Equal(t, models.Status(next), updated.Status)
	}

	rec = env.do(t, http.MethodPut, path, admin, gin.H{"status": "cancelled"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	decode(t, rec, &resp)
	assert.Equal(t, "completed", resp.CurrentStatus)

	rec = env.do(t, http.MethodPut, "/api/orders/missing/status", admin, gin.H{"status": "preparing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetOrder_Ownership(t *testing.T) {
	env := newTestEnv(t)
	alice := env.token(t, "alice", auth.RoleUser)
	bob := env.token(t, "bob", auth.RoleUser)
	admin := env.token(t, "root", auth.RoleAdmin)
	o := env.placeOrder(t, alice)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/orders/"+o.ID, alice, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/orders/"+o.ID, admin, nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/orders/"+o.ID, bob, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/orders/missing", bob, nil).Code)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/orders/user/alice", alice, nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/orders/user/alice", bob, nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/orders", alice, nil).Code)

	rec := env.do(t, http.MethodGet, "/api/orders", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []models.Order
	decode(t, rec, &all)
	assert.Len(t, all, 1)
}

func TestAnalyticsOverview(t *testing.T) {
	env := newTestEnv(t)
	alice := env.token(t, "alice", auth.RoleUser)
	admin := env.token(t, "root", auth.RoleAdmin)
	env.placeOrder(t, alice)

	rec := env.do(t, http.MethodGet, "/api/orders/analytics/overview", alice, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/orders/analytics/overview?days=3", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ov analytics.Overview
	decode(t, rec, &ov)
	assert.Len(t, ov.Series, 3)
	assert.Equal(t, 1, ov.KPIs.TotalOrders)
	assert.Equal(t, 1, ov.KPIs.PendingOrders)
	assert.Equal(t, 1, ov.StatusCounts[models.StatusPending])

	rec = env.do(t, http.MethodGet, "/api/orders/analytics/overview?days=abc", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &ov)
	assert.Len(t, ov.Series, 7)

	rec = env.do(t, http.MethodGet, "/api/orders/analytics/best-sellers", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestFoods(t *testing.T) {
	env := newTestEnv(t)
	alice := env.token(t, "alice", auth.RoleUser)
	admin := env.token(t, "root", auth.RoleAdmin)

	rec := env.do(t, http.MethodGet, "/api/foods", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var foods []models.Food
	decode(t, rec, &foods)
	assert.Len(t, foods, 2)

	rec = env.do(t, http.MethodGet, "/api/foods/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var categories []string
	decode(t, rec, &categories)
	assert.Equal(t, []string{"Mains", "Sides"}, categories)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/foods", "", gin.H{"name": "Cola", "price": 20}).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/api/foods", alice, gin.H{"name": "Cola", "price": 20}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/foods", admin, gin.H{"name": "Cola", "price": -1}).Code)

	rec = env.do(t, http.MethodPost, "/api/foods", admin, gin.H{"name": "Cola", "price": 20, "category": "drinks"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var cola models.Food
	decode(t, rec, &cola)
	assert.True(t, cola.Available)

	rec = env.do(t, http.MethodPut, "/api/foods/"+cola.ID, admin, gin.H{"available": false})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &cola)
	assert.False(t, cola.Available)
	assert.Equal(t, "Cola", cola.Name)

	rec = env.do(t, http.MethodGet, "/api/foods?available=true", "", nil)
	decode(t, rec, &foods)
	assert.Len(t, foods, 2)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/api/foods/"+cola.ID, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/foods/"+cola.ID, "", nil).Code)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	rec = env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/health"`)
}

func TestHealth_Degraded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gw := NewGateway(&config.Config{}, zap.NewNop(), Services{
		Health: map[string]HealthCheck{
			"storage": func(context.Context) error { return errors.New("connection refused") },
		},
	})
	gw.SetupRoutes()

	rec := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}
