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

type SalesHandler struct {
	salesService service.SalesService
}

func NewSalesHandler(salesService service.SalesService) *SalesHandler {
	return &SalesHandler{salesService: salesService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *SalesHandler) RegisterRoutes(router *gin.RouterGroup) {
	sell := middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleSales)

	customers := router.Group("/customers")
	{
		customers.GET("", sell, h.ListCustomers)
		customers.GET("/:id", sell, h.GetCustomer)
		customers.POST("", sell, h.CreateCustomer)
		customers.PUT("/:id", sell, h.UpdateCustomer)
		customers.DELETE("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.DeleteCustomer)
	}

	sales := router.Group("/sales")
	{
		sales.GET("", sell, h.ListSales)
		sales.GET("/stats", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.Stats)
		sales.GET("/:id", sell, h.GetSale)
		sales.POST("", sell, h.CreateSale)
		sales.POST("/:id/items", sell, h.AddItem)
		sales.POST("/:id/payments", sell, h.RecordPayment)
	}
}

// --- Customers ---

// CreateCustomer handles POST /customers
// @Summary      Create customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CustomerRequest  true  "Customer payload"
// @Success      201      {object}  response.Response{data=model.Customer}
// @Failure      400      {object}  response.Response
// @Router       /customers [post]
func (h *SalesHandler) CreateCustomer(c *gin.Context) {
	var req service.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	customer, err := h.salesService.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, customer))
}

// UpdateCustomer handles PUT /customers/:id
// @Summary      Update customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true  "Customer ID"
// @Param        payload  body      service.CustomerRequest  true  "Customer payload"
// @Success      200      {object}  response.Response{data=model.Customer}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /customers/{id} [put]
func (h *SalesHandler) UpdateCustomer(c *gin.Context) {
	var req service.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	customer, err := h.salesService.UpdateCustomer(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}

// DeleteCustomer handles DELETE /customers/:id
// @Summary      Delete customer
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /customers/{id} [delete]
func (h *SalesHandler) DeleteCustomer(c *gin.Context) {
	if err := h.salesService.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Customer deleted successfully"))
}

// GetCustomer handles GET /customers/:id
// @Summary      Get customer by ID
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  response.Response{data=model.Customer}
// @Failure      404  {object}  response.Response
// @Router       /customers/{id} [get]
func (h *SalesHandler) GetCustomer(c *gin.Context) {
	customer, err := h.salesService.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}

// ListCustomers handles GET /customers
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Search by name or phone"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /customers [get]
func (h *SalesHandler) ListCustomers(c *gin.Context) {
	p := pagination.Parse(c)
	customers, total, err := h.salesService.ListCustomers(c.Request.Context(), c.Query("search"), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, customers, total, p.Page, p.Limit))
}

// --- Sales ---

// CreateSale handles POST /sales
// @Summary      Create sale
// @Description  Creates a sale with an auto-generated invoice number; any included items are checked against stock and decrement it atomically
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateSaleRequest  true  "Sale payload"
// @Success      201      {object}  response.Response{data=service.SaleResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /sales [post]
func (h *SalesHandler) CreateSale(c *gin.Context) {
	var req service.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	sale, err := h.salesService.CreateSale(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, sale))
}

// AddItem handles POST /sales/:id/items
// @Summary      Add item to sale
// @Description  Appends a line to the sale and decrements stock; fails with 409 when stock is insufficient, leaving the sale untouched
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Sale ID"
// @Param        payload  body      service.AddSaleItemRequest  true  "Sale item payload"
// @Success      200      {object}  response.Response{data=service.SaleResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /sales/{id}/items [post]
func (h *SalesHandler) AddItem(c *gin.Context) {
	var req service.AddSaleItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	sale, err := h.salesService.AddItem(c.Request.Context(), currentUserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sale))
}

// RecordPayment handles POST /sales/:id/payments
// @Summary      Record payment
// @Description  Appends a payment to the sale's ledger and recomputes amount paid and payment status from the full ledger
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Sale ID"
// @Param        payload  body      service.RecordPaymentRequest  true  "Payment payload"
// @Success      200      {object}  response.Response{data=service.SaleResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /sales/{id}/payments [post]
func (h *SalesHandler) RecordPayment(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	sale, err := h.salesService.RecordPayment(c.Request.Context(), currentUserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sale))
}

// GetSale handles GET /sales/:id
// @Summary      Get sale by ID
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sale ID"
// @Success      200  {object}  response.Response{data=service.SaleResponse}
// @Failure      404  {object}  response.Response
// @Router       /sales/{id} [get]
func (h *SalesHandler) GetSale(c *gin.Context) {
	sale, err := h.salesService.GetSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sale))
}

// ListSales handles GET /sales
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        payment_status  query     string  false  "Filter by payment status"
// @Param        payment_method  query     string  false  "Filter by payment method"
// @Param        customer_id     query     string  false  "Filter by customer"
// @Param        search          query     string  false  "Search by invoice number or customer name"
// @Param        page            query     int     false  "Page number (default 1)"
// @Param        limit           query     int     false  "Items per page (default 20)"
// @Success      200             {object}  response.Response{data=object}
// @Failure      500             {object}  response.Response
// @Router       /sales [get]
func (h *SalesHandler) ListSales(c *gin.Context) {
	p := pagination.Parse(c)
	sales, total, err := h.salesService.ListSales(c.Request.Context(), service.SaleListFilter{
		PaymentStatus: c.Query("payment_status"),
		PaymentMethod: c.Query("payment_method"),
		CustomerID:    c.Query("customer_id"),
		Search:        c.Query("search"),
		Page:          p.Page,
		Limit:         p.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, sales, total, p.Page, p.Limit))
}

// Stats handles GET /sales/stats
// @Summary      Sales statistics
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.SaleStatsResponse}
// @Failure      500  {object}  response.Response
// @Router       /sales/stats [get]
func (h *SalesHandler) Stats(c *gin.Context) {
	stats, err := h.salesService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}
