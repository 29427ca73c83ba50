package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dairyadmin/internal/services"
	"github.com/charlesng35/dairyadmin/pkg/response"
)

type UserHandler struct {
	svc   *services.UserService
	pager Pager
}

type userRequest struct {
	Name     string  `json:"name" validate:"max=128"`
	Email    string  `json:"email" validate:"omitempty,email"`
	Mobile   *string `json:"mobile" validate:"omitempty,max=32"`
	Password string  `json:"password" validate:"omitempty,max=128"`
	RoleID   *uint   `json:"role_id"`
	Status   *bool   `json:"status"`
}

func (r userRequest) input() services.UserInput {
	return services.UserInput{
		Name:     r.Name,
		Email:    r.Email,
		Mobile:   r.Mobile,
		Password: r.Password,
		RoleID:   r.RoleID,
		Status:   r.Status,
	}
}

func NewUserHandler(svc *services.UserService, pager Pager) *UserHandler {
	return &UserHandler{svc: svc, pager: pager}
}

// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	page, err := h.svc.List(requestContext(c), h.pager.Request(c), services.UserFilter{
		RoleID: parseUintQuery(c, "role_id"),
		Status: parseBoolQuery(c, "status"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, "items", page)
}

// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user, err := h.svc.Get(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// POST /api/users
func (h *UserHandler) Create(c *gin.Context) {
	var body userRequest
	if !bindAndValidate(c, &body) {
		return
	}
	user, err := h.svc.Create(requestContext(c), body.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusCreated, "User created", user)
}

// PUT /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body userRequest
	if !bindAndValidate(c, &body) {
		return
	}
	user, err := h.svc.Update(requestContext(c), id, body.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "User updated", user)
}

// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(requestContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "User deleted", gin.H{"deleted": true})
}
