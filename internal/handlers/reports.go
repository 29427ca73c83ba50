package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dairyadmin/internal/security"
	"github.com/charlesng35/dairyadmin/internal/services"
	"github.com/charlesng35/dairyadmin/pkg/errors"
	"github.com/charlesng35/dairyadmin/pkg/response"
)

type ReportHandler struct {
	reports  *services.ReportService
	audit    *services.AuditService
	security *security.Auditor
	pager    Pager
}

func NewReportHandler(reports *services.ReportService, audit *services.AuditService, auditor *security.Auditor, pager Pager) *ReportHandler {
	return &ReportHandler{reports: reports, audit: audit, security: auditor, pager: pager}
}

// GET /api/reports/summary
func (h *ReportHandler) Summary(c *gin.Context) {
	summary, err := h.reports.Summary(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, summary)
}

// GET /api/audit-logs
func (h *ReportHandler) AuditLogs(c *gin.Context) {
	filters := services.AuditFilters{
		Action:   c.Query("action"),
		Result:   c.Query("result"),
		Resource: c.Query("resource"),
	}
	if id := parseUintQuery(c, "user_id"); id != nil {
		filters.UserID = *id
	}
	for key, dest := range map[string]**time.Time{"since": &filters.Since, "until": &filters.Until} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, errors.NewBadRequest(key+" must be an RFC3339 timestamp"))
			return
		}
		*dest = &t
	}

	page, err := h.audit.List(requestContext(c), h.pager.Request(c), filters)
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, "items", page)
}

// GET /api/security/audit
func (h *ReportHandler) SecurityAudit(c *gin.Context) {
	if h.security == nil {
		response.Error(c, errors.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, h.security.Run(requestContext(c)))
}
