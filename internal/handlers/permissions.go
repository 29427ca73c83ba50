package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dairyadmin/internal/services"
	"github.com/charlesng35/dairyadmin/pkg/response"
)

type PermissionHandler struct {
	svc *services.PermissionService
}

type permissionGrant struct {
	ModuleID uint `json:"module_id" validate:"required"`
	Status   bool `json:"status"`
}

type updatePermissionsRequest struct {
	Permissions []permissionGrant `json:"permissions" validate:"dive"`
}

func NewPermissionHandler(svc *services.PermissionService) *PermissionHandler {
	return &PermissionHandler{svc: svc}
}

// GET /api/permissions/:role_id
func (h *PermissionHandler) Get(c *gin.Context) {
	roleID, ok := parseIDParam(c, "role_id")
	if !ok {
		return
	}
	perms, err := h.svc.Get(requestContext(c), roleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, perms)
}

// PUT /api/permissions/:role_id
func (h *PermissionHandler) Update(c *gin.Context) {
	roleID, ok := parseIDParam(c, "role_id")
	if !ok {
		return
	}
	var body updatePermissionsRequest
	if !bindAndValidate(c, &body) {
		return
	}

	grants := make([]services.ModuleGrant, 0, len(body.Permissions))
	for _, p := range body.Permissions {
		grants = append(grants, services.ModuleGrant{ModuleID: p.ModuleID, Status: p.Status})
	}

	perms, err := h.svc.Update(requestContext(c), roleID, grants)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Permissions updated", perms)
}
