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

type ProcessingHandler struct {
	processingService service.ProcessingService
}

func NewProcessingHandler(processingService service.ProcessingService) *ProcessingHandler {
	return &ProcessingHandler{processingService: processingService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *ProcessingHandler) RegisterRoutes(router *gin.RouterGroup) {
	process := middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleInventory)

	batches := router.Group("/processing/batches")
	{
		batches.GET("", process, h.List)
		batches.GET("/stats", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.Stats)
		batches.GET("/:id", process, h.Get)
		batches.GET("/:id/yield", process, h.Yield)
		batches.POST("", process, h.Create)
		batches.POST("/:id/products", process, h.AddProduct)
		batches.POST("/:id/complete", process, h.Complete)
		batches.POST("/:id/cancel", process, h.Cancel)
	}
}

// Create handles POST /processing/batches
// @Summary      Create processing batch
// @Description  Opens a batch against a tree purchase with an auto-generated batch number
// @Tags         processing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateBatchRequest  true  "Batch payload"
// @Success      201      {object}  response.Response{data=model.ProcessingBatch}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /processing/batches [post]
func (h *ProcessingHandler) Create(c *gin.Context) {
	var req service.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	batch, err := h.processingService.CreateBatch(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, batch))
}

// AddProduct handles POST /processing/batches/:id/products
// @Summary      Add produced line to batch
// @Description  Records a produced product line on an open batch; stock only moves on completion
// @Tags         processing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                              true  "Batch ID"
// @Param        payload  body      service.AddProcessedProductRequest  true  "Produced line payload"
// @Success      201      {object}  response.Response{data=model.ProcessedProduct}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /processing/batches/{id}/products [post]
func (h *ProcessingHandler) AddProduct(c *gin.Context) {
	var req service.AddProcessedProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	product, err := h.processingService.AddProduct(c.Request.Context(), currentUserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, product))
}

// Complete handles POST /processing/batches/:id/complete
// @Summary      Complete batch
// @Description  Marks the batch completed and stocks in every produced line in one transaction
// @Tags         processing
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Batch ID"
// @Success      200  {object}  response.Response{data=model.ProcessingBatch}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /processing/batches/{id}/complete [post]
func (h *ProcessingHandler) Complete(c *gin.Context) {
	batch, err := h.processingService.CompleteBatch(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, batch))
}

// Cancel handles POST /processing/batches/:id/cancel
// @Summary      Cancel batch
// @Tags         processing
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Batch ID"
// @Success      200  {object}  response.Response{data=model.ProcessingBatch}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /processing/batches/{id}/cancel [post]
func (h *ProcessingHandler) Cancel(c *gin.Context) {
	batch, err := h.processingService.CancelBatch(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, batch))
}

// Get handles GET /processing/batches/:id
// @Summary      Get batch by ID
// @Tags         processing
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Batch ID"
// @Success      200  {object}  response.Response{data=model.ProcessingBatch}
// @Failure      404  {object}  response.Response
// @Router       /processing/batches/{id} [get]
func (h *ProcessingHandler) Get(c *gin.Context) {
	batch, err := h.processingService.GetBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, batch))
}

// Yield handles GET /processing/batches/:id/yield
// @Summary      Batch yield report
// @Description  Allocates purchase and processing cost across produced units
// @Tags         processing
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Batch ID"
// @Success      200  {object}  response.Response{data=service.BatchYieldReport}
// @Failure      404  {object}  response.Response
// @Router       /processing/batches/{id}/yield [get]
func (h *ProcessingHandler) Yield(c *gin.Context) {
	report, err := h.processingService.YieldReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// List handles GET /processing/batches
// @Summary      List processing batches
// @Tags         processing
// @Produce      json
// @Security     BearerAuth
// @Param        status        query     string  false  "Filter by status"
// @Param        tree_species  query     string  false  "Filter by tree species"
// @Param        search        query     string  false  "Search by batch or purchase invoice number"
// @Param        page          query     int     false  "Page number (default 1)"
// @Param        limit         query     int     false  "Items per page (default 20)"
// @Success      200           {object}  response.Response{data=object}
// @Failure      500           {object}  response.Response
// @Router       /processing/batches [get]
func (h *ProcessingHandler) List(c *gin.Context) {
	p := pagination.Parse(c)
	batches, total, err := h.processingService.ListBatches(c.Request.Context(), service.BatchListFilter{
		Status:      c.Query("status"),
		TreeSpecies: c.Query("tree_species"),
		Search:      c.Query("search"),
		Page:        p.Page,
		Limit:       p.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, batches, total, p.Page, p.Limit))
}

// Stats handles GET /processing/batches/stats
// @Summary      Processing statistics
// @Tags         processing
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=repository.BatchStats}
// @Failure      500  {object}  response.Response
// @Router       /processing/batches/stats [get]
func (h *ProcessingHandler) Stats(c *gin.Context) {
	stats, err := h.processingService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}
