package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dairyadmin/internal/services"
	"github.com/charlesng35/dairyadmin/pkg/response"
)

type AssignmentHandler struct {
	svc *services.AssignmentService
}

// assignRequest is the section allocation form: one MCC/MPP pair per submission.
type assignRequest struct {
	Role       uint   `json:"role" validate:"required"`
	UserID     uint   `json:"user_id" validate:"required"`
	SectionIDs []uint `json:"section_ids" validate:"required,min=1"`
	MCCCode    string `json:"mcc_code" validate:"required,max=32"`
	MPPCode    string `json:"mpp_code" validate:"required,max=32"`
}

type assignmentUpdateRequest struct {
	RoleID     uint     `json:"role_id" validate:"required"`
	MCCCodes   []string `json:"mcc_codes"`
	MPPCodes   []string `json:"mpp_codes"`
	SectionIDs []uint   `json:"formsteps_ids"`
	Status     *bool    `json:"status"`
}

func NewAssignmentHandler(svc *services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{svc: svc}
}

// GET /api/assigned-permissions returns every allocation; the console pages locally.
func (h *AssignmentHandler) List(c *gin.Context) {
	items, err := h.svc.List(requestContext(c), services.AssignmentFilter{
		RoleID: parseUintQuery(c, "role_id"),
		UserID: parseUintQuery(c, "user_id"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items, "total": len(items)})
}

// GET /api/assigned-permissions/:id
func (h *AssignmentHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	view, err := h.svc.Get(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// POST /api/assigned-permissions
func (h *AssignmentHandler) Assign(c *gin.Context) {
	var body assignRequest
	if !bindAndValidate(c, &body) {
		return
	}
	view, err := h.svc.Assign(requestContext(c), services.AssignmentInput{
		RoleID:     body.Role,
		UserID:     body.UserID,
		SectionIDs: body.SectionIDs,
		MCCCode:    body.MCCCode,
		MPPCode:    body.MPPCode,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Sections allocated", view)
}

// PUT /api/assigned-permissions/:id
func (h *AssignmentHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body assignmentUpdateRequest
	if !bindAndValidate(c, &body) {
		return
	}
	view, err := h.svc.Update(requestContext(c), id, services.AssignmentUpdate{
		RoleID:     body.RoleID,
		MCCCodes:   body.MCCCodes,
		MPPCodes:   body.MPPCodes,
		SectionIDs: body.SectionIDs,
		Status:     body.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Section allocation updated", view)
}

// DELETE /api/assigned-permissions/:id
func (h *AssignmentHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(requestContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Section allocation deleted", gin.H{"deleted": true})
}
