package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dairyadmin/internal/services"
	"github.com/charlesng35/dairyadmin/pkg/response"
)

type CategoryHandler struct {
	svc   *services.CategoryService
	pager Pager
}

type categoryRequest struct {
	Name   string `json:"name" validate:"max=128"`
	Status *bool  `json:"status"`
}

func NewCategoryHandler(svc *services.CategoryService, pager Pager) *CategoryHandler {
	return &CategoryHandler{svc: svc, pager: pager}
}

// GET /api/categories
func (h *CategoryHandler) List(c *gin.Context) {
	page, err := h.svc.List(requestContext(c), h.pager.Request(c), services.CategoryFilter{
		Status: parseBoolQuery(c, "status"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, "categories", page)
}

// GET /api/categories/:id
func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	category, err := h.svc.Get(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, category)
}

// POST /api/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var body categoryRequest
	if !bindAndValidate(c, &body) {
		return
	}
	category, err := h.svc.Create(requestContext(c), services.CategoryInput{Name: body.Name, Status: body.Status})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusCreated, "Category created", category)
}

// PUT /api/categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body categoryRequest
	if !bindAndValidate(c, &body) {
		return
	}
	category, err := h.svc.Update(requestContext(c), id, services.CategoryInput{Name: body.Name, Status: body.Status})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Category updated", category)
}

// DELETE /api/categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(requestContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Category deleted", gin.H{"deleted": true})
}
