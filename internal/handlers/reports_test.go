package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/dairyadmin/internal/handlers/testutil"
)

func TestReportHandler_SummaryCountsEntities(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.LoginAdmin()

	w := env.Request(http.MethodGet, "/api/reports/summary", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var summary struct {
		Entities []struct {
			Entity string `json:"entity"`
			Total  int64  `json:"total"`
			Active int64  `json:"active"`
		} `json:"entities"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &summary)

	totals := map[string]int64{}
	for _, e := range summary.Entities {
		totals[e.Entity] = e.Total
	}
	require.EqualValues(t, 3, totals["categories"])
	require.EqualValues(t, 7, totals["roles"])
	require.EqualValues(t, 2, totals["mccs"])
	require.EqualValues(t, 3, totals["mpps"])
}

func TestReportHandler_AuditLogsRecordMutations(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.LoginAdmin()

	w := env.Request(http.MethodPost, "/api/banks", map[string]any{
		"name": "Bank of Baroda", "ifsc_code": "BARB0ANAND1",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.Request(http.MethodGet, "/api/audit-logs?action=bank.create", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var list struct {
		Items []struct {
			Action string `json:"action"`
			Result string `json:"result"`
			UserID *uint  `json:"user_id"`
		} `json:"items"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &list)
	require.Len(t, list.Items, 1)
	require.Equal(t, "success", list.Items[0].Result)
	require.NotNil(t, list.Items[0].UserID)

	w = env.Request(http.MethodGet, "/api/audit-logs?since=yesterday", nil, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandler_SecurityAudit(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.LoginAdmin()

	w := env.Request(http.MethodGet, "/api/security/audit", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Checks []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"checks"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &result)

	statuses := map[string]string{}
	for _, check := range result.Checks {
		statuses[check.ID] = check.Status
	}
	require.Equal(t, "pass", statuses["super_admin_present"])
	require.Equal(t, "warn", statuses["default_admin_password"])
	require.Equal(t, "warn", statuses["rate_limit"])

	field := env.CreateUser(env.RoleID("Field User"), "field-pass")
	fieldToken := env.Login(field.Email, "field-pass").Token
	require.Equal(t, http.StatusForbidden, env.Request(http.MethodGet, "/api/security/audit", nil, fieldToken).Code)
}
