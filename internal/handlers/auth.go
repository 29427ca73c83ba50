package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dairyadmin/internal/auditctx"
	"github.com/charlesng35/dairyadmin/internal/services"
	"github.com/charlesng35/dairyadmin/pkg/errors"
	"github.com/charlesng35/dairyadmin/pkg/response"
)

type AuthHandler struct {
	svc *services.AuthService
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"max=64"`
}

func NewAuthHandler(svc *services.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if !bindAndValidate(c, &body) {
		return
	}

	ctx := auditctx.WithActor(requestContext(c), auditctx.Actor{
		Email:     body.Email,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})

	result, err := h.svc.Login(ctx, services.LoginInput{
		Email:    body.Email,
		Password: body.Password,
		Role:     body.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Login successful", result)
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}
	profile, err := h.svc.Profile(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}
