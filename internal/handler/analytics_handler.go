package handler

import (
	"net/http"
	"strconv"

	"github.com/maxwelmichira/timberflow/internal/middleware"
	"github.com/maxwelmichira/timberflow/internal/model"
	"github.com/maxwelmichira/timberflow/internal/service"
	"github.com/maxwelmichira/timberflow/pkg/response"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AnalyticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	manage := middleware.RequireRole(model.RoleAdmin, model.RoleManager)

	analytics := router.Group("/analytics")
	{
		analytics.GET("/dashboard", middleware.RequireAnyRole(), h.Dashboard)
		analytics.GET("/financials/monthly", manage, h.MonthlyFinancials)
		analytics.GET("/products/top", manage, h.TopProducts)
		analytics.GET("/inventory/valuation", manage, h.InventoryValuation)
		analytics.GET("/exports/sales.csv", manage, h.ExportSales)
		analytics.GET("/exports/movements.csv", manage, h.ExportMovements)
	}
}

// Dashboard handles GET /analytics/dashboard
// @Summary      Dashboard overview
// @Description  Headline figures: recent sales totals, outstanding balance, low stock and open batches
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.DashboardResponse}
// @Failure      500  {object}  response.Response
// @Router       /analytics/dashboard [get]
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.analyticsService.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, dashboard))
}

// MonthlyFinancials handles GET /analytics/financials/monthly
// @Summary      Monthly revenue vs expenses
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.MonthlyFinancialRow}
// @Failure      500  {object}  response.Response
// @Router       /analytics/financials/monthly [get]
func (h *AnalyticsHandler) MonthlyFinancials(c *gin.Context) {
	rows, err := h.analyticsService.MonthlyFinancials(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rows))
}

// TopProducts handles GET /analytics/products/top
// @Summary      Top selling products
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Param        order_by  query     string  false  "Ranking key (total_revenue, units_sold)"
// @Param        limit     query     int     false  "Number of products (default 10, max 50)"
// @Success      200       {object}  response.Response{data=[]service.TopProductRow}
// @Failure      500       {object}  response.Response
// @Router       /analytics/products/top [get]
func (h *AnalyticsHandler) TopProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	rows, err := h.analyticsService.TopProducts(c.Request.Context(), c.Query("order_by"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rows))
}

// InventoryValuation handles GET /analytics/inventory/valuation
// @Summary      Inventory valuation
// @Description  Current stock levels priced at product selling prices
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.ValuationReport}
// @Failure      500  {object}  response.Response
// @Router       /analytics/inventory/valuation [get]
func (h *AnalyticsHandler) InventoryValuation(c *gin.Context) {
	report, err := h.analyticsService.InventoryValuation(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// ExportSales handles GET /analytics/exports/sales.csv
// @Summary      Export sales as CSV
// @Tags         analytics
// @Produce      text/csv
// @Security     BearerAuth
// @Success      200  {string}  string  "CSV file"
// @Failure      500  {object}  response.Response
// @Router       /analytics/exports/sales.csv [get]
func (h *AnalyticsHandler) ExportSales(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="sales.csv"`)
	if err := h.analyticsService.ExportSalesCSV(c.Request.Context(), c.Writer); err != nil {
		respondError(c, err)
	}
}

// ExportMovements handles GET /analytics/exports/movements.csv
// @Summary      Export stock movements as CSV
// @Tags         analytics
// @Produce      text/csv
// @Security     BearerAuth
// @Success      200  {string}  string  "CSV file"
// @Failure      500  {object}  response.Response
// @Router       /analytics/exports/movements.csv [get]
func (h *AnalyticsHandler) ExportMovements(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="movements.csv"`)
	if err := h.analyticsService.ExportMovementsCSV(c.Request.Context(), c.Writer); err != nil {
		respondError(c, err)
	}
}
