package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL + "/api"})
}

func TestClientAlwaysSendsAuthorizationHeader(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, strings.TrimSpace(r.Header.Get("Authorization")))
		switch r.URL.Path {
		case "/api/auth/login":
			writeJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"message": "Login successful",
				"data":    map[string]any{"token": "tok-1", "redirect": "/dashboard", "role": "field_user", "user": map[string]any{"id": 1, "email": "admin@erp.com"}},
			})
		default:
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"user": map[string]any{"id": 1}, "modules": []string{"roles"}}})
		}
	})

	_, err := c.Login(context.Background(), LoginRequest{Email: "admin@erp.com", Password: "admin123", Role: "field_user"})
	require.NoError(t, err)
	require.Equal(t, "tok-1", c.Token())

	profile, err := c.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"roles"}, profile.Modules)

	require.Equal(t, []string{"Bearer", "Bearer tok-1"}, seen)
}

func TestClientMapsErrorEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"success": false,
			"message": "Each level needs a different role",
			"error": map[string]any{
				"code":    "HIERARCHY_DUPLICATE_ROLE",
				"message": "Each level needs a different role",
				"fields":  map[string]string{"levels[2].role_id": "duplicate"},
			},
		})
	})

	_, err := c.CreateHierarchy(context.Background(), HierarchyPayload{Level: 2})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	require.Equal(t, "HIERARCHY_DUPLICATE_ROLE", apiErr.Code)
	require.Equal(t, "duplicate", apiErr.Fields["levels[2].role_id"])
	require.Equal(t, "Each level needs a different role", err.Error())
	require.True(t, IsStatus(err, http.StatusUnprocessableEntity))
}

func TestClientNonJSONErrorUsesStatusText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := c.Summary(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestClientDoesNotRetry(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "down"})
	})

	_, err := c.ListRoles(context.Background(), ListQuery{})
	require.Error(t, err)
	require.EqualValues(t, 1, hits.Load())
}

func TestClientTransportErrorIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := New(Config{BaseURL: srv.URL})

	_, err := c.ListBanks(context.Background(), ListQuery{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, CodeTransport, apiErr.Code)
	require.Zero(t, apiErr.StatusCode)
}

func TestClientListSendsQueryAndNormalizes(t *testing.T) {
	var query string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"roles":      []map[string]any{{"id": 7, "name": "General Manager", "category_id": 1, "category": map[string]any{"id": 1, "name": "Approval Users"}}},
				"pagination": map[string]any{"currentPage": 1, "totalItems": 1, "itemsPerPage": 10, "totalPages": 1},
			},
		})
	})

	page, err := c.ListRoles(context.Background(), ListQuery{Page: 1, Limit: 10, Search: " manager ", SortBy: "name", Sort: "asc"})
	require.NoError(t, err)
	require.Equal(t, "limit=10&page=1&search=manager&sort=asc&sort_by=name", query)
	require.Len(t, page.Items, 1)
	require.Equal(t, "Approval Users", page.Items[0].CategoryName())
	require.Equal(t, 1, page.Pagination.TotalPages)
}

func TestListMPPsAddsMCCFilter(t *testing.T) {
	var mcc string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mcc = r.URL.Query().Get("mcc_code")
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"items": []any{}}})
	})

	page, err := c.ListMPPs(context.Background(), "MCC001", ListQuery{})
	require.NoError(t, err)
	require.Equal(t, "MCC001", mcc)
	require.Empty(t, page.Items)
}

func TestExportMasterDataUsesDispositionFilename(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/master-data/export/mccs", r.URL.Path)
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="mccs-2026-10-16.xlsx"`)
		_, _ = w.Write([]byte("PK"))
	})

	file, err := c.ExportMasterData(context.Background(), "mccs")
	require.NoError(t, err)
	require.Equal(t, "mccs-2026-10-16.xlsx", file.Name)
	require.Equal(t, []byte("PK"), file.Data)
}

func TestExportMasterDataError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]any{"success": false, "message": "Forbidden", "error": map[string]any{"code": "FORBIDDEN"}})
	})

	_, err := c.DownloadTemplate(context.Background(), "banks")
	require.True(t, IsStatus(err, http.StatusForbidden))
}

func TestImportMasterDataUploadsMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "banks.xlsx", header.Filename)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Imported 1 new and 0 updated rows; 1 rows failed",
			"data":    map[string]any{"type": "banks", "inserted": 1, "failed": 1, "errors": []map[string]any{{"row": 3, "message": "IFSC code is invalid"}}},
		})
	})

	result, message, err := c.ImportMasterData(context.Background(), "banks", "banks.xlsx", strings.NewReader("PK"))
	require.NoError(t, err)
	require.Equal(t, 1, result.Inserted)
	require.Equal(t, 3, result.Errors[0].Row)
	require.Contains(t, message, "1 rows failed")
}

func TestFilenameFromDisposition(t *testing.T) {
	cases := map[string]string{
		``: "fallback.xlsx",
		`attachment; filename="banks-template.xlsx"`: "banks-template.xlsx",
		`attachment; filename=villages.xlsx`:         "villages.xlsx",
		`attachment; filename="../../etc/passwd"`:    "passwd",
		`attachment`: "fallback.xlsx",
		`;;;`:        "fallback.xlsx",
	}
	for header, want := range cases {
		require.Equal(t, want, FilenameFromDisposition(header, "fallback.xlsx"), header)
	}
}
