package handler

import (
	"net/http"

	"github.com/maxwelmichira/timberflow/internal/middleware"
	"github.com/maxwelmichira/timberflow/internal/model"
	"github.com/maxwelmichira/timberflow/internal/service"
	"github.com/maxwelmichira/timberflow/pkg/pagination"
	"github.com/maxwelmichira/timberflow/pkg/response"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	inventoryService service.InventoryService
}

// NewInventoryHandler sets up the routing dependencies for inventory endpoints
func NewInventoryHandler(inventoryService service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	inventory := router.Group("/inventory")
	{
		inventory.GET("", middleware.RequireAnyRole(), h.ListItems)
		inventory.GET("/low-stock", middleware.RequireAnyRole(), h.LowStock)
		inventory.GET("/reconcile", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.Reconcile)
		inventory.GET("/movements", middleware.RequireAnyRole(), h.ListMovements)
		inventory.GET("/:id", middleware.RequireAnyRole(), h.GetItem)
		inventory.POST("/:id/adjust", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleInventory), h.AdjustStock)
	}
}

// ListItems handles GET /inventory
// @Summary      List inventory items
// @Description  Retrieves a paginated list of inventory items with product details
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        category  query     string  false  "Filter by product category"
// @Param        search    query     string  false  "Search by product name"
// @Param        order_by  query     string  false  "Sort key (quantity_in_stock, last_updated)"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Items per page (default 20)"
// @Success      200       {object}  response.Response{data=object}
// @Failure      500       {object}  response.Response
// @Router       /inventory [get]
func (h *InventoryHandler) ListItems(c *gin.Context) {
	p := pagination.Parse(c)
	items, total, err := h.inventoryService.ListItems(c.Request.Context(), service.InventoryListFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		OrderBy:  c.Query("order_by"),
		Page:     p.Page,
		Limit:    p.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, items, total, p.Page, p.Limit))
}

// GetItem handles GET /inventory/:id
// @Summary      Get inventory item
// @Description  Fetch a single inventory item with its recent stock movements
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Inventory item ID"
// @Success      200  {object}  response.Response{data=object}
// @Failure      404  {object}  response.Response
// @Router       /inventory/{id} [get]
func (h *InventoryHandler) GetItem(c *gin.Context) {
	item, movements, err := h.inventoryService.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"item":      item,
		"movements": movements,
	}))
}

// AdjustStock handles POST /inventory/:id/adjust
// @Summary      Adjust stock level
// @Description  Applies a signed manual stock adjustment; negative quantities remove stock and fail if the result would go below zero
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Inventory item ID"
// @Param        payload  body      service.AdjustStockRequest   true  "Adjustment payload"
// @Success      200      {object}  response.Response{data=service.InventoryItemResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /inventory/{id}/adjust [post]
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var req service.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.inventoryService.AdjustStock(c.Request.Context(), currentUserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// ListMovements handles GET /inventory/movements
// @Summary      List stock movements
// @Description  Retrieves the append-only stock movement ledger, newest first
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        inventory_item_id  query     string  false  "Filter by inventory item"
// @Param        movement_type      query     string  false  "Filter by type (in, out, adjustment)"
// @Param        reason             query     string  false  "Filter by reason"
// @Param        page               query     int     false  "Page number (default 1)"
// @Param        limit              query     int     false  "Items per page (default 20)"
// @Success      200                {object}  response.Response{data=object}
// @Failure      500                {object}  response.Response
// @Router       /inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	p := pagination.Parse(c)
	movements, total, err := h.inventoryService.ListMovements(c.Request.Context(), service.MovementListFilter{
		InventoryItemID: c.Query("inventory_item_id"),
		MovementType:    c.Query("movement_type"),
		Reason:          c.Query("reason"),
		Page:            p.Page,
		Limit:           p.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, movements, total, p.Page, p.Limit))
}

// LowStock handles GET /inventory/low-stock
// @Summary      List low stock items
// @Description  Items whose stock level is at or below the reorder level
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.InventoryItemResponse}
// @Failure      500  {object}  response.Response
// @Router       /inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *gin.Context) {
	items, err := h.inventoryService.LowStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, items))
}

// Reconcile handles GET /inventory/reconcile
// @Summary      Reconcile stock against the movement ledger
// @Description  Compares each item's cached stock level with the signed sum of its movements
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.ReconciliationReport}
// @Failure      500  {object}  response.Response
// @Router       /inventory/reconcile [get]
func (h *InventoryHandler) Reconcile(c *gin.Context) {
	report, err := h.inventoryService.Reconcile(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}
