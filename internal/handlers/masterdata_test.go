package handlers_test

import (
	"bytes"
	"net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/dairyadmin/internal/handlers/testutil"
	"github.com/charlesng35/dairyadmin/internal/masterdata"
	"github.com/charlesng35/dairyadmin/internal/models"
)

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func TestMasterDataHandler_ImportReportsPartialFailures(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.LoginAdmin()

	content, err := masterdata.Export(masterdata.MPPs, []masterdata.Record{
		{"code": "MPP010", "name": "Petlad MPP", "mcc_code": "MCC001", "status": "Active"},
		{"code": "MPP001", "name": "Vasad MPP (North)", "mcc_code": "MCC001", "status": "Active"},
		{"code": "MPP011", "name": "Orphan MPP", "mcc_code": "MCC999", "status": "Active"},
	})
	require.NoError(t, err)

	w := env.Upload("/api/master-data/import/mpps", "file", "mpps.xlsx", content, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := testutil.DecodeResponse(t, w)
	require.Contains(t, resp.Message, "1 rows failed")

	var result struct {
		Inserted int `json:"inserted"`
		Updated  int `json:"updated"`
		Failed   int `json:"failed"`
		Errors   []struct {
			Row     int    `json:"row"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	testutil.DecodeInto(t, resp.Data, &result)
	require.Equal(t, 1, result.Inserted)
	require.Equal(t, 1, result.Updated)
	require.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	require.Equal(t, 4, result.Errors[0].Row)

	var mpp models.MPP
	require.NoError(t, env.DB.Where("code = ?", "MPP001").First(&mpp).Error)
	require.Equal(t, "Vasad MPP (North)", mpp.Name)
}

func TestMasterDataHandler_ImportRejectsNonWorkbooks(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.LoginAdmin()

	w := env.Upload("/api/master-data/import/banks", "file", "banks.csv", []byte("name,ifsc\n"), token)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.Upload("/api/master-data/import/banks", "file", "banks.xlsx", []byte("not a zip"), token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "IMPORT_UNREADABLE", testutil.DecodeResponse(t, w).Error.Code)

	w = env.Upload("/api/master-data/import/cattle", "file", "cattle.xlsx", []byte("x"), token)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestMasterDataHandler_ExportStreamsAttachment(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.LoginAdmin()

	w := env.Request(http.MethodGet, "/api/master-data/export/mccs", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, xlsxType, w.Header().Get("Content-Type"))
	require.Regexp(t, regexp.MustCompile(`^attachment; filename="mccs-\d{4}-\d{2}-\d{2}\.xlsx"$`), w.Header().Get("Content-Disposition"))

	rows, err := masterdata.Parse(masterdata.MCCs, bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "MCC001", rows[0].Values["code"])
}

func TestMasterDataHandler_TemplateHasHeadersOnly(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.LoginAdmin()

	w := env.Request(http.MethodGet, "/api/master-data/template/banks", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, `attachment; filename="banks-template.xlsx"`, w.Header().Get("Content-Disposition"))

	rows, err := masterdata.Parse(masterdata.Banks, bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestMasterDataHandler_Types(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.LoginAdmin()

	w := env.Request(http.MethodGet, "/api/master-data/types", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Types []struct {
			Type string `json:"type"`
		} `json:"types"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &data)
	require.Len(t, data.Types, 4)
	require.Equal(t, "banks", data.Types[0].Type)
}
