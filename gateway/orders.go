package gateway

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/MaverickLook/Big-Bite/pkg/apperr"
	"github.com/MaverickLook/Big-Bite/pkg/models"
	"github.com/gin-gonic/gin"
)

const defaultHistoryLimit = 50

// createOrder godoc
// @Summary  Place an order for the caller
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    order body createOrderRequest true "Cart and delivery details"
// @Success  201 {object} models.Order
// @Failure  400 {object} errorResponse
// @Router   /orders [post]
// @Security BearerAuth
func (g *Gateway) createOrder(c *gin.Context) {
	var req createOrderRequest
	if !g.bind(c, &req) {
		return
	}

	o, err := g.services.Orders.Create(c.Request.Context(), identity(c), req.toService())
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

// listOrders godoc
// @Summary  List every order (admin)
// @Tags     orders
// @Produce  json
// @Success  200 {array} models.Order
// @Router   /orders [get]
// @Security BearerAuth
func (g *Gateway) listOrders(c *gin.Context) {
	orders, err := g.services.Orders.ListAll(c.Request.Context(), identity(c))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (g *Gateway) listUserOrders(c *gin.Context) {
	orders, err := g.services.Orders.ListByUser(c.Request.Context(), identity(c), c.Param("id"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (g *Gateway) getOrder(c *gin.Context) {
	o, err := g.services.Orders.GetByID(c.Request.Context(), identity(c), c.Param("id"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// updateOrderStatus godoc
// @Summary  Move an order to its next status (admin)
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    id     path string              true "Order id"
// @Param    status body updateStatusRequest true "Requested status"
// @Success  200 {object} models.Order
// @Failure  400 {object} errorResponse
// @Failure  409 {object} errorResponse
// @Router   /orders/{id}/status [put]
// @Security BearerAuth
func (g *Gateway) updateOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if !g.bind(c, &req) {
		return
	}

	status := models.Status(strings.ToLower(strings.TrimSpace(req.Status)))
	o, err := g.services.Orders.Transition(c.Request.Context(), identity(c), c.Param("id"), status)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// orderHistory returns the audit trail recorded for an order. Admin only.
func (g *Gateway) orderHistory(c *gin.Context) {
	if !identity(c).IsAdmin() {
		g.respondError(c, apperr.Permission("only admins can view order history"))
		return
	}

	limit := int64(defaultHistoryLimit)
	if v, err := strconv.ParseInt(c.Query("limit"), 10, 64); err == nil && v > 0 {
		limit = v
	}

	logs, err := g.services.Audit.GetAuditLogs(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// analyticsOverview godoc
// @Summary  Dashboard KPIs and daily series (admin)
// @Tags     analytics
// @Produce  json
// @Param    days query int false "Window length in days, clamped to 1..30"
// @Success  200 {object} analytics.Overview
// @Router   /orders/analytics/overview [get]
// @Security BearerAuth
func (g *Gateway) analyticsOverview(c *gin.Context) {
	days := g.config.Analytics.DefaultDays
	if v, err := strconv.Atoi(c.Query("days")); err == nil {
		days = v
	}

	ov, err := g.services.Analytics.Overview(c.Request.Context(), identity(c), days)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

func (g *Gateway) bestSellers(c *gin.Context) {
	limit := 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = v
	}

	items, err := g.services.Analytics.BestSellers(c.Request.Context(), identity(c), limit)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
