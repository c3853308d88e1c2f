package gateway

import (
	"net/http"
	"strconv"

	"github.com/MaverickLook/Big-Bite/pkg/repository"
	"github.com/gin-gonic/gin"
)

// listFoods godoc
// @Summary  List menu items
// @Tags     foods
// @Produce  json
// @Param    category  query string false "Case-insensitive category filter"
// @Param    available query bool   false "Only available items"
// @Success  200 {array} models.Food
// @Router   /foods [get]
func (g *Gateway) listFoods(c *gin.Context) {
	q := repository.FoodQuery{Category: c.Query("category")}
	if v, err := strconv.ParseBool(c.Query("available")); err == nil {
		q.AvailableOnly = v
	}

	foods, err := g.services.Catalog.List(c.Request.Context(), q)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, foods)
}

func (g *Gateway) listCategories(c *gin.Context) {
	categories, err := g.services.Catalog.Categories(c.Request.Context())
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (g *Gateway) getFood(c *gin.Context) {
	food, err := g.services.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}

// createFood godoc
// @Summary  Add a menu item (admin)
// @Tags     foods
// @Accept   json
// @Produce  json
// @Param    food body foodRequest true "Menu item"
// @Success  201 {object} models.Food
// @Failure  400 {object} errorResponse
// @Router   /foods [post]
// @Security BearerAuth
func (g *Gateway) createFood(c *gin.Context) {
	var req foodRequest
	if !g.bind(c, &req) {
		return
	}

	food, err := g.services.Catalog.Create(c.Request.Context(), identity(c), req.toService())
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, food)
}

func (g *Gateway) updateFood(c *gin.Context) {
	var req foodRequest
	if !g.bind(c, &req) {
		return
	}

	food, err := g.services.Catalog.Update(c.Request.Context(), identity(c), c.Param("id"), req.toService())
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}

func (g *Gateway) deleteFood(c *gin.Context) {
	if err := g.services.Catalog.Delete(c.Request.Context(), identity(c), c.Param("id")); err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "food deleted"})
}
