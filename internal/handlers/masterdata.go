package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dairyadmin/internal/masterdata"
	"github.com/charlesng35/dairyadmin/internal/services"
	"github.com/charlesng35/dairyadmin/pkg/errors"
	"github.com/charlesng35/dairyadmin/pkg/response"
)

const (
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxImportFileSize = 10 << 20
	importFormField   = "file"
)

type MasterDataHandler struct {
	svc *services.MasterDataService
}

func NewMasterDataHandler(svc *services.MasterDataService) *MasterDataHandler {
	return &MasterDataHandler{svc: svc}
}

// GET /api/master-data/types
func (h *MasterDataHandler) Types(c *gin.Context) {
	types := masterdata.Types()
	out := make([]gin.H, 0, len(types))
	for _, t := range types {
		out = append(out, gin.H{"type": t, "columns": masterdata.Columns(t)})
	}
	response.Success(c, http.StatusOK, gin.H{"types": out})
}

// GET /api/master-data/template/:type
func (h *MasterDataHandler) Template(c *gin.Context) {
	t, ok := parseMasterDataType(c)
	if !ok {
		return
	}
	file, err := h.svc.Template(t)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeWorkbook(c, file)
}

// GET /api/master-data/export/:type
func (h *MasterDataHandler) Export(c *gin.Context) {
	t, ok := parseMasterDataType(c)
	if !ok {
		return
	}
	file, err := h.svc.Export(requestContext(c), t)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeWorkbook(c, file)
}

// POST /api/master-data/import/:type (multipart, field "file")
func (h *MasterDataHandler) Import(c *gin.Context) {
	t, ok := parseMasterDataType(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportFileSize)
	header, err := c.FormFile(importFormField)
	if err != nil {
		response.Error(c, errors.NewBadRequest("an .xlsx file is required in the \"file\" field"))
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		response.Error(c, errors.NewValidation("Only .xlsx workbooks can be imported", map[string]string{
			importFormField: "Only .xlsx workbooks can be imported",
		}))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, services.ErrImportUnreadable.WithInternal(err))
		return
	}
	defer file.Close()

	result, err := h.svc.Import(requestContext(c), t, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	message := fmt.Sprintf("Imported %d new and %d updated rows", result.Inserted, result.Updated)
	if result.Failed > 0 {
		message = fmt.Sprintf("%s; %d rows failed", message, result.Failed)
	}
	response.SuccessWithMessage(c, http.StatusOK, message, result)
}

func parseMasterDataType(c *gin.Context) (masterdata.Type, bool) {
	t, err := masterdata.ParseType(c.Param("type"))
	if err != nil {
		response.Error(c, errors.New(errors.ErrNotFound.Code, fmt.Sprintf("unknown master data type %q", c.Param("type")), http.StatusNotFound))
		return "", false
	}
	return t, true
}

func writeWorkbook(c *gin.Context, file *services.ExportFile) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, xlsxContentType, file.Content)
}
