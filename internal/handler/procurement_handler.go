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

type ProcurementHandler struct {
	procurementService service.ProcurementService
}

func NewProcurementHandler(procurementService service.ProcurementService) *ProcurementHandler {
	return &ProcurementHandler{procurementService: procurementService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *ProcurementHandler) RegisterRoutes(router *gin.RouterGroup) {
	procure := middleware.RequireRole(model.RoleAdmin, model.RoleManager)

	suppliers := router.Group("/suppliers")
	{
		suppliers.GET("", procure, h.ListSuppliers)
		suppliers.GET("/:id", procure, h.GetSupplier)
		suppliers.POST("", procure, h.CreateSupplier)
		suppliers.PUT("/:id", procure, h.UpdateSupplier)
		suppliers.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteSupplier)
	}

	purchases := router.Group("/purchases")
	{
		purchases.GET("", procure, h.ListPurchases)
		purchases.GET("/summary", procure, h.Summary)
		purchases.GET("/:id", procure, h.GetPurchase)
		purchases.POST("", procure, h.CreatePurchase)
		purchases.PATCH("/:id/payment-status", procure, h.UpdatePaymentStatus)
	}
}

// --- Suppliers ---

// CreateSupplier handles POST /suppliers
// @Summary      Create supplier
// @Tags         procurement
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SupplierRequest  true  "Supplier payload"
// @Success      201      {object}  response.Response{data=model.Supplier}
// @Failure      400      {object}  response.Response
// @Router       /suppliers [post]
func (h *ProcurementHandler) CreateSupplier(c *gin.Context) {
	var req service.SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	supplier, err := h.procurementService.CreateSupplier(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, supplier))
}

// UpdateSupplier handles PUT /suppliers/:id
// @Summary      Update supplier
// @Tags         procurement
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true  "Supplier ID"
// @Param        payload  body      service.SupplierRequest  true  "Supplier payload"
// @Success      200      {object}  response.Response{data=model.Supplier}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /suppliers/{id} [put]
func (h *ProcurementHandler) UpdateSupplier(c *gin.Context) {
	var req service.SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	supplier, err := h.procurementService.UpdateSupplier(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, supplier))
}

// DeleteSupplier handles DELETE /suppliers/:id
// @Summary      Delete supplier
// @Tags         procurement
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Supplier ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /suppliers/{id} [delete]
func (h *ProcurementHandler) DeleteSupplier(c *gin.Context) {
	if err := h.procurementService.DeleteSupplier(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Supplier deleted successfully"))
}

// GetSupplier handles GET /suppliers/:id
// @Summary      Get supplier by ID
// @Tags         procurement
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Supplier ID"
// @Success      200  {object}  response.Response{data=model.Supplier}
// @Failure      404  {object}  response.Response
// @Router       /suppliers/{id} [get]
func (h *ProcurementHandler) GetSupplier(c *gin.Context) {
	supplier, err := h.procurementService.GetSupplier(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, supplier))
}

// ListSuppliers handles GET /suppliers
// @Summary      List suppliers
// @Tags         procurement
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Search by name or contact"
// @Param        active  query     bool    false  "Only active suppliers"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /suppliers [get]
func (h *ProcurementHandler) ListSuppliers(c *gin.Context) {
	p := pagination.Parse(c)
	suppliers, total, err := h.procurementService.ListSuppliers(
		c.Request.Context(), c.Query("search"), c.Query("active") == "true", p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, suppliers, total, p.Page, p.Limit))
}

// --- Tree purchases ---

// CreatePurchase handles POST /purchases
// @Summary      Create tree purchase
// @Description  Records a purchase of raw trees; total cost is quantity times unit cost
// @Tags         procurement
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreatePurchaseRequest  true  "Purchase payload"
// @Success      201      {object}  response.Response{data=model.TreePurchase}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /purchases [post]
func (h *ProcurementHandler) CreatePurchase(c *gin.Context) {
	var req service.CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	purchase, err := h.procurementService.CreatePurchase(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, purchase))
}

// UpdatePaymentStatus handles PATCH /purchases/:id/payment-status
// @Summary      Update purchase payment status
// @Tags         procurement
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                               true  "Purchase ID"
// @Param        payload  body      service.UpdatePurchaseStatusRequest  true  "Status payload"
// @Success      200      {object}  response.Response{data=model.TreePurchase}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /purchases/{id}/payment-status [patch]
func (h *ProcurementHandler) UpdatePaymentStatus(c *gin.Context) {
	var req service.UpdatePurchaseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	purchase, err := h.procurementService.UpdatePurchaseStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, purchase))
}

// GetPurchase handles GET /purchases/:id
// @Summary      Get tree purchase by ID
// @Tags         procurement
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Purchase ID"
// @Success      200  {object}  response.Response{data=model.TreePurchase}
// @Failure      404  {object}  response.Response
// @Router       /purchases/{id} [get]
func (h *ProcurementHandler) GetPurchase(c *gin.Context) {
	purchase, err := h.procurementService.GetPurchase(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, purchase))
}

// ListPurchases handles GET /purchases
// @Summary      List tree purchases
// @Tags         procurement
// @Produce      json
// @Security     BearerAuth
// @Param        supplier_id     query     string  false  "Filter by supplier"
// @Param        tree_species    query     string  false  "Filter by species"
// @Param        quality_grade   query     string  false  "Filter by grade"
// @Param        payment_status  query     string  false  "Filter by payment status"
// @Param        search          query     string  false  "Search by invoice number"
// @Param        page            query     int     false  "Page number (default 1)"
// @Param        limit           query     int     false  "Items per page (default 20)"
// @Success      200             {object}  response.Response{data=object}
// @Failure      500             {object}  response.Response
// @Router       /purchases [get]
func (h *ProcurementHandler) ListPurchases(c *gin.Context) {
	p := pagination.Parse(c)
	purchases, total, err := h.procurementService.ListPurchases(c.Request.Context(), service.PurchaseListFilter{
		SupplierID:    c.Query("supplier_id"),
		TreeSpecies:   c.Query("tree_species"),
		QualityGrade:  c.Query("quality_grade"),
		PaymentStatus: c.Query("payment_status"),
		Search:        c.Query("search"),
		Page:          p.Page,
		Limit:         p.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, purchases, total, p.Page, p.Limit))
}

// Summary handles GET /purchases/summary
// @Summary      Procurement summary
// @Description  Spend grouped by supplier and by tree species
// @Tags         procurement
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.PurchaseSummary}
// @Failure      500  {object}  response.Response
// @Router       /purchases/summary [get]
func (h *ProcurementHandler) Summary(c *gin.Context) {
	summary, err := h.procurementService.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
