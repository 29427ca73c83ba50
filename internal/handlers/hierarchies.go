package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dairyadmin/internal/hierarchy"
	"github.com/charlesng35/dairyadmin/internal/services"
	"github.com/charlesng35/dairyadmin/pkg/response"
)

type HierarchyHandler struct {
	svc   *services.HierarchyService
	pager Pager
}

// hierarchyRequest accepts level as a number or a numeric string, the way the
// level input of the console form submits it.
type hierarchyRequest struct {
	Level  json.RawMessage   `json:"level"`
	Levels []hierarchy.Level `json:"levels"`
	Status *bool             `json:"status"`
}

type hierarchyStatusRequest struct {
	Status *bool `json:"status" validate:"required"`
}

func NewHierarchyHandler(svc *services.HierarchyService, pager Pager) *HierarchyHandler {
	return &HierarchyHandler{svc: svc, pager: pager}
}

// GET /api/hierarchy
func (h *HierarchyHandler) List(c *gin.Context) {
	page, err := h.svc.List(requestContext(c), h.pager.Request(c), services.HierarchyFilter{
		Status: parseBoolQuery(c, "status"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, "items", page)
}

// GET /api/hierarchy/table
func (h *HierarchyHandler) Table(c *gin.Context) {
	table, err := h.svc.Table(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, table)
}

// GET /api/hierarchy/bounds
func (h *HierarchyHandler) Bounds(c *gin.Context) {
	bounds := h.svc.Bounds()
	response.Success(c, http.StatusOK, gin.H{"min": bounds.Min, "max": bounds.Max})
}

// GET /api/hierarchy/:id
func (h *HierarchyHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	record, err := h.svc.Get(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, record)
}

// POST /api/hierarchy
func (h *HierarchyHandler) Create(c *gin.Context) {
	input, ok := h.bind(c)
	if !ok {
		return
	}
	record, err := h.svc.Create(requestContext(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusCreated, "Approval hierarchy created", record)
}

// PUT /api/hierarchy/:id
func (h *HierarchyHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	input, ok := h.bind(c)
	if !ok {
		return
	}
	record, err := h.svc.Update(requestContext(c), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Approval hierarchy updated", record)
}

// PATCH /api/hierarchy/:id/status
func (h *HierarchyHandler) SetStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body hierarchyStatusRequest
	if !bindAndValidate(c, &body) {
		return
	}
	record, err := h.svc.SetStatus(requestContext(c), id, *body.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Approval hierarchy updated", record)
}

// DELETE /api/hierarchy/:id
func (h *HierarchyHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(requestContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Approval hierarchy deleted", gin.H{"deleted": true})
}

func (h *HierarchyHandler) bind(c *gin.Context) (services.HierarchyInput, bool) {
	var body hierarchyRequest
	if !bindAndValidate(c, &body) {
		return services.HierarchyInput{}, false
	}

	count, err := parseLevelCount(body.Level)
	if err != nil {
		var verr *hierarchy.ValidationError
		if errors.As(err, &verr) {
			response.Error(c, services.ErrHierarchyInvalid.WithFields(verr.Fields))
		} else {
			response.Error(c, err)
		}
		return services.HierarchyInput{}, false
	}

	return services.HierarchyInput{Level: count, Levels: body.Levels, Status: body.Status}, true
}

func parseLevelCount(raw json.RawMessage) (int, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return hierarchy.ParseLevelCount("")
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return hierarchy.ParseLevelCount("?")
		}
		return hierarchy.ParseLevelCount(s)
	}
	return hierarchy.ParseLevelCount(text)
}
