package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dairyadmin/internal/services"
	"github.com/charlesng35/dairyadmin/pkg/response"
)

type RoleHandler struct {
	svc   *services.RoleService
	pager Pager
}

type roleRequest struct {
	Name       string `json:"name" validate:"max=128"`
	CategoryID uint   `json:"category_id"`
	Status     *bool  `json:"status"`
}

func (r roleRequest) input() services.RoleInput {
	return services.RoleInput{Name: r.Name, CategoryID: r.CategoryID, Status: r.Status}
}

func NewRoleHandler(svc *services.RoleService, pager Pager) *RoleHandler {
	return &RoleHandler{svc: svc, pager: pager}
}

// GET /api/roles
func (h *RoleHandler) List(c *gin.Context) {
	filter := services.RoleFilter{Status: parseBoolQuery(c, "status")}
	if id := parseUintQuery(c, "category_id"); id != nil {
		filter.CategoryID = *id
	}
	page, err := h.svc.List(requestContext(c), h.pager.Request(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, "roles", page)
}

// GET /api/roles/approval
func (h *RoleHandler) ApprovalRoles(c *gin.Context) {
	roles, err := h.svc.ApprovalRoles(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"roles": roles})
}

// GET /api/roles/:id
func (h *RoleHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	role, err := h.svc.Get(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, role)
}

// POST /api/roles
func (h *RoleHandler) Create(c *gin.Context) {
	var body roleRequest
	if !bindAndValidate(c, &body) {
		return
	}
	role, err := h.svc.Create(requestContext(c), body.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusCreated, "Role created", role)
}

// PUT /api/roles/:id
func (h *RoleHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body roleRequest
	if !bindAndValidate(c, &body) {
		return
	}
	role, err := h.svc.Update(requestContext(c), id, body.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Role updated", role)
}

// DELETE /api/roles/:id
func (h *RoleHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(requestContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Role deleted", gin.H{"deleted": true})
}
