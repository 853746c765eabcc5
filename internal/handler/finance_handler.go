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

type FinanceHandler struct {
	financeService service.FinanceService
}

func NewFinanceHandler(financeService service.FinanceService) *FinanceHandler {
	return &FinanceHandler{financeService: financeService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *FinanceHandler) RegisterRoutes(router *gin.RouterGroup) {
	manage := middleware.RequireRole(model.RoleAdmin, model.RoleManager)

	expenses := router.Group("/expenses")
	{
		expenses.GET("", manage, h.ListExpenses)
		expenses.POST("", manage, h.CreateExpense)
		expenses.PUT("/:id", manage, h.UpdateExpense)
		expenses.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteExpense)
	}

	revenues := router.Group("/revenues")
	{
		revenues.GET("", manage, h.ListRevenues)
		revenues.POST("", manage, h.CreateRevenue)
	}

	router.GET("/finance/summary", manage, h.Summary)
}

// CreateExpense handles POST /expenses
// @Summary      Create expense
// @Tags         finance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ExpenseRequest  true  "Expense payload"
// @Success      201      {object}  response.Response{data=model.Expense}
// @Failure      400      {object}  response.Response
// @Router       /expenses [post]
func (h *FinanceHandler) CreateExpense(c *gin.Context) {
	var req service.ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	expense, err := h.financeService.CreateExpense(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, expense))
}

// UpdateExpense handles PUT /expenses/:id
// @Summary      Update expense
// @Tags         finance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Expense ID"
// @Param        payload  body      service.ExpenseRequest  true  "Expense payload"
// @Success      200      {object}  response.Response{data=model.Expense}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /expenses/{id} [put]
func (h *FinanceHandler) UpdateExpense(c *gin.Context) {
	var req service.ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	expense, err := h.financeService.UpdateExpense(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, expense))
}

// DeleteExpense handles DELETE /expenses/:id
// @Summary      Delete expense
// @Tags         finance
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Expense ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /expenses/{id} [delete]
func (h *FinanceHandler) DeleteExpense(c *gin.Context) {
	if err := h.financeService.DeleteExpense(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Expense deleted successfully"))
}

// ListExpenses handles GET /expenses
// @Summary      List expenses
// @Tags         finance
// @Produce      json
// @Security     BearerAuth
// @Param        category  query     string  false  "Filter by category"
// @Param        search    query     string  false  "Search by description or reference"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Items per page (default 20)"
// @Success      200       {object}  response.Response{data=object}
// @Failure      500       {object}  response.Response
// @Router       /expenses [get]
func (h *FinanceHandler) ListExpenses(c *gin.Context) {
	p := pagination.Parse(c)
	expenses, total, err := h.financeService.ListExpenses(c.Request.Context(), service.ExpenseListFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     p.Page,
		Limit:    p.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, expenses, total, p.Page, p.Limit))
}

// CreateRevenue handles POST /revenues
// @Summary      Create revenue entry
// @Tags         finance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.RevenueRequest  true  "Revenue payload"
// @Success      201      {object}  response.Response{data=model.Revenue}
// @Failure      400      {object}  response.Response
// @Router       /revenues [post]
func (h *FinanceHandler) CreateRevenue(c *gin.Context) {
	var req service.RevenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	revenue, err := h.financeService.CreateRevenue(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, revenue))
}

// ListRevenues handles GET /revenues
// @Summary      List revenue entries
// @Tags         finance
// @Produce      json
// @Security     BearerAuth
// @Param        source  query     string  false  "Filter by source"
// @Param        search  query     string  false  "Search by description or reference"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /revenues [get]
func (h *FinanceHandler) ListRevenues(c *gin.Context) {
	p := pagination.Parse(c)
	revenues, total, err := h.financeService.ListRevenues(c.Request.Context(), service.RevenueListFilter{
		Source: c.Query("source"),
		Search: c.Query("search"),
		Page:   p.Page,
		Limit:  p.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, revenues, total, p.Page, p.Limit))
}

// Summary handles GET /finance/summary
// @Summary      Financial summary
// @Description  Total revenue, total expenses, and net profit
// @Tags         finance
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.FinancialSummary}
// @Failure      500  {object}  response.Response
// @Router       /finance/summary [get]
func (h *FinanceHandler) Summary(c *gin.Context) {
	summary, err := h.financeService.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
