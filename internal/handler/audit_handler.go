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

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/audit-logs", middleware.RequireRole(model.RoleAdmin), h.List)
}

// List handles GET /audit-logs
// @Summary      List audit logs
// @Description  Retrieves the audit trail of state-changing operations, newest first
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        action   query     string  false  "Filter by action code"
// @Param        user_id  query     string  false  "Filter by acting user"
// @Param        page     query     int     false  "Page number (default 1)"
// @Param        limit    query     int     false  "Items per page (default 50)"
// @Success      200      {object}  response.Response{data=object}
// @Failure      500      {object}  response.Response
// @Router       /audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	p := pagination.Parse(c)
	logs, total, err := h.auditService.List(c.Request.Context(), service.AuditListFilter{
		Action: c.Query("action"),
		UserID: c.Query("user_id"),
		Page:   p.Page,
		Limit:  p.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, logs, total, p.Page, p.Limit))
}
