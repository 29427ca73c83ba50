package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/dairyadmin/internal/services"
	"github.com/charlesng35/dairyadmin/pkg/response"
)

// MasterHandler serves the simple master catalogues: banks, villages, MCCs, MPPs
// and member form sections.
type MasterHandler struct {
	banks     *services.BankService
	villages  *services.VillageService
	mccs      *services.MCCService
	mpps      *services.MPPService
	formSteps *services.FormStepService
	pager     Pager
}

type bankRequest struct {
	Name     string `json:"name" validate:"max=128"`
	Branch   string `json:"branch" validate:"max=128"`
	IFSCCode string `json:"ifsc_code" validate:"omitempty,ifsc"`
	Status   *bool  `json:"status"`
}

type villageRequest struct {
	Name    string  `json:"name" validate:"max=128"`
	Code    string  `json:"code" validate:"omitempty,unitcode"`
	MCCCode *string `json:"mcc_code" validate:"omitempty,max=32"`
	Status  *bool   `json:"status"`
}

type orgUnitRequest struct {
	Code    string `json:"code" validate:"omitempty,unitcode"`
	Name    string `json:"name" validate:"max=128"`
	MCCCode string `json:"mcc_code" validate:"omitempty,max=32"`
	Status  *bool  `json:"status"`
}

type formStepRequest struct {
	Name      string `json:"name" validate:"max=128"`
	SortOrder *int   `json:"sort_order"`
	Status    *bool  `json:"status"`
}

func (r orgUnitRequest) input() services.OrgUnitInput {
	return services.OrgUnitInput{Code: r.Code, Name: r.Name, MCCCode: r.MCCCode, Status: r.Status}
}

func NewMasterHandler(banks *services.BankService, villages *services.VillageService, mccs *services.MCCService, mpps *services.MPPService, formSteps *services.FormStepService, pager Pager) *MasterHandler {
	return &MasterHandler{banks: banks, villages: villages, mccs: mccs, mpps: mpps, formSteps: formSteps, pager: pager}
}

// GET /api/banks
func (h *MasterHandler) ListBanks(c *gin.Context) {
	page, err := h.banks.List(requestContext(c), h.pager.Request(c), parseBoolQuery(c, "status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, "banks", page)
}

// GET /api/banks/:id
func (h *MasterHandler) GetBank(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	bank, err := h.banks.Get(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, bank)
}

// POST /api/banks
func (h *MasterHandler) CreateBank(c *gin.Context) {
	var body bankRequest
	if !bindAndValidate(c, &body) {
		return
	}
	bank, err := h.banks.Create(requestContext(c), services.BankInput(body))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusCreated, "Bank created", bank)
}

// PUT /api/banks/:id
func (h *MasterHandler) UpdateBank(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body bankRequest
	if !bindAndValidate(c, &body) {
		return
	}
	bank, err := h.banks.Update(requestContext(c), id, services.BankInput(body))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Bank updated", bank)
}

// DELETE /api/banks/:id
func (h *MasterHandler) DeleteBank(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.banks.Delete(requestContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Bank deleted", gin.H{"deleted": true})
}

// GET /api/villages
func (h *MasterHandler) ListVillages(c *gin.Context) {
	page, err := h.villages.List(requestContext(c), h.pager.Request(c), services.VillageFilter{
		MCCCode: c.Query("mcc_code"),
		Status:  parseBoolQuery(c, "status"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, "villages", page)
}

// GET /api/villages/:id
func (h *MasterHandler) GetVillage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	village, err := h.villages.Get(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, village)
}

// POST /api/villages
func (h *MasterHandler) CreateVillage(c *gin.Context) {
	var body villageRequest
	if !bindAndValidate(c, &body) {
		return
	}
	village, err := h.villages.Create(requestContext(c), services.VillageInput(body))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusCreated, "Village created", village)
}

// PUT /api/villages/:id
func (h *MasterHandler) UpdateVillage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body villageRequest
	if !bindAndValidate(c, &body) {
		return
	}
	village, err := h.villages.Update(requestContext(c), id, services.VillageInput(body))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Village updated", village)
}

// DELETE /api/villages/:id
func (h *MasterHandler) DeleteVillage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.villages.Delete(requestContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Village deleted", gin.H{"deleted": true})
}

// GET /api/mccs
func (h *MasterHandler) ListMCCs(c *gin.Context) {
	page, err := h.mccs.List(requestContext(c), h.pager.Request(c), services.OrgUnitFilter{
		Status: parseBoolQuery(c, "status"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, "items", page)
}

// GET /api/mccs/:id
func (h *MasterHandler) GetMCC(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	mcc, err := h.mccs.Get(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, mcc)
}

// POST /api/mccs
func (h *MasterHandler) CreateMCC(c *gin.Context) {
	var body orgUnitRequest
	if !bindAndValidate(c, &body) {
		return
	}
	mcc, err := h.mccs.Create(requestContext(c), body.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusCreated, "MCC created", mcc)
}

// PUT /api/mccs/:id
func (h *MasterHandler) UpdateMCC(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body orgUnitRequest
	if !bindAndValidate(c, &body) {
		return
	}
	mcc, err := h.mccs.Update(requestContext(c), id, body.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "MCC updated", mcc)
}

// DELETE /api/mccs/:id
func (h *MasterHandler) DeleteMCC(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.mccs.Delete(requestContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "MCC deleted", gin.H{"deleted": true})
}

// GET /api/mpps?mcc_code= backs the cascading MCC to MPP select.
func (h *MasterHandler) ListMPPs(c *gin.Context) {
	page, err := h.mpps.List(requestContext(c), h.pager.Request(c), services.OrgUnitFilter{
		MCCCode: c.Query("mcc_code"),
		Status:  parseBoolQuery(c, "status"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, "items", page)
}

// GET /api/mpps/:id
func (h *MasterHandler) GetMPP(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	mpp, err := h.mpps.Get(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, mpp)
}

// POST /api/mpps
func (h *MasterHandler) CreateMPP(c *gin.Context) {
	var body orgUnitRequest
	if !bindAndValidate(c, &body) {
		return
	}
	mpp, err := h.mpps.Create(requestContext(c), body.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusCreated, "MPP created", mpp)
}

// PUT /api/mpps/:id
func (h *MasterHandler) UpdateMPP(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body orgUnitRequest
	if !bindAndValidate(c, &body) {
		return
	}
	mpp, err := h.mpps.Update(requestContext(c), id, body.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "MPP updated", mpp)
}

// DELETE /api/mpps/:id
func (h *MasterHandler) DeleteMPP(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.mpps.Delete(requestContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "MPP deleted", gin.H{"deleted": true})
}

// GET /api/form-steps
func (h *MasterHandler) ListFormSteps(c *gin.Context) {
	steps, err := h.formSteps.List(requestContext(c), parseBoolQuery(c, "status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": steps})
}

// GET /api/form-steps/:id
func (h *MasterHandler) GetFormStep(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	step, err := h.formSteps.Get(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, step)
}

// POST /api/form-steps
func (h *MasterHandler) CreateFormStep(c *gin.Context) {
	var body formStepRequest
	if !bindAndValidate(c, &body) {
		return
	}
	step, err := h.formSteps.Create(requestContext(c), services.FormStepInput(body))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusCreated, "Form section created", step)
}

// PUT /api/form-steps/:id
func (h *MasterHandler) UpdateFormStep(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body formStepRequest
	if !bindAndValidate(c, &body) {
		return
	}
	step, err := h.formSteps.Update(requestContext(c), id, services.FormStepInput(body))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Form section updated", step)
}

// DELETE /api/form-steps/:id
func (h *MasterHandler) DeleteFormStep(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.formSteps.Delete(requestContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Form section deleted", gin.H{"deleted": true})
}
