package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dairyadmin/internal/services"
	"github.com/charlesng35/dairyadmin/pkg/response"
)

type ModuleHandler struct {
	svc   *services.ModuleService
	pager Pager
}

type moduleRequest struct {
	Name      string `json:"name" validate:"max=128"`
	Route     string `json:"route" validate:"max=128"`
	ParentID  *uint  `json:"parent_id"`
	SortOrder *int   `json:"sort_order"`
	Status    *bool  `json:"status"`
}

func (r moduleRequest) input() services.ModuleInput {
	return services.ModuleInput{
		Name:      r.Name,
		Route:     r.Route,
		ParentID:  r.ParentID,
		SortOrder: r.SortOrder,
		Status:    r.Status,
	}
}

func NewModuleHandler(svc *services.ModuleService, pager Pager) *ModuleHandler {
	return &ModuleHandler{svc: svc, pager: pager}
}

// GET /api/modules
func (h *ModuleHandler) List(c *gin.Context) {
	filter := services.ModuleFilter{
		ParentID: parseUintQuery(c, "parent_id"),
		Status:   parseBoolQuery(c, "status"),
	}
	if root := parseBoolQuery(c, "root"); root != nil {
		filter.RootOnly = *root
	}
	page, err := h.svc.List(requestContext(c), h.pager.Request(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, "modules", page)
}

// GET /api/modules/tree
func (h *ModuleHandler) Tree(c *gin.Context) {
	tree, err := h.svc.Tree(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"modules": tree})
}

// GET /api/modules/:id
func (h *ModuleHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	module, err := h.svc.Get(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, module)
}

// POST /api/modules
func (h *ModuleHandler) Create(c *gin.Context) {
	var body moduleRequest
	if !bindAndValidate(c, &body) {
		return
	}
	module, err := h.svc.Create(requestContext(c), body.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusCreated, "Module created", module)
}

// PUT /api/modules/:id
func (h *ModuleHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body moduleRequest
	if !bindAndValidate(c, &body) {
		return
	}
	module, err := h.svc.Update(requestContext(c), id, body.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Module updated", module)
}

// DELETE /api/modules/:id
func (h *ModuleHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(requestContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Module deleted", gin.H{"deleted": true})
}
