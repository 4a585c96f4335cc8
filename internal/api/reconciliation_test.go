package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "payment-api/internal/errors"
	"payment-api/internal/models"
)

var adminHeaders = map[string]string{"X-API-Key": "admin-key"}

func TestListReconciliations(t *testing.T) {
	manager := &stubManager{entries: []models.ReconciliationEntry{
		{Kind: models.ReconciliationPatchFailed, TransID: "1"},
	}}
	r := newTestRouter(Handlers{Reconciliation: NewReconciliationHandler(manager)})

	w := doRequest(r, http.MethodGet, "/api/admin/reconciliations?resolved=false&limit=5", "", adminHeaders)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w.Body.Bytes())
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])

	require.NotNil(t, manager.filter)
	assert.False(t, *manager.filter)
	assert.Equal(t, 5, manager.limit)
}

func TestListReconciliationsRequiresAdminKey(t *testing.T) {
	r := newTestRouter(Handlers{})

	w := doRequest(r, http.MethodGet, "/api/admin/reconciliations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListReconciliationsBadFilter(t *testing.T) {
	r := newTestRouter(Handlers{})

	w := doRequest(r, http.MethodGet, "/api/admin/reconciliations?resolved=maybe", "", adminHeaders)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResolveReconciliation(t *testing.T) {
	manager := &stubManager{resolved: &models.ReconciliationEntry{TransID: "1", Resolved: true, ResolvedBy: "ops"}}
	r := newTestRouter(Handlers{Reconciliation: NewReconciliationHandler(manager)})

	w := doRequest(r, http.MethodPost, "/api/admin/reconciliations/1/resolve", `{"resolvedBy":"ops","note":"patched"}`, adminHeaders)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w.Body.Bytes())["data"].(map[string]interface{})
	assert.Equal(t, true, data["resolved"])
	assert.Equal(t, "ops", data["resolved_by"])
}

func TestGetReconciliation(t *testing.T) {
	manager := &stubManager{resolved: &models.ReconciliationEntry{TransID: "4000000001", Kind: models.ReconciliationUpgradeFailed}}
	r := newTestRouter(Handlers{Reconciliation: NewReconciliationHandler(manager)})

	w := doRequest(r, http.MethodGet, "/api/admin/reconciliations/7", "", adminHeaders)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(7), manager.fetched)

	data := decodeBody(t, w.Body.Bytes())["data"].(map[string]interface{})
	assert.Equal(t, "4000000001", data["trans_id"])
	assert.Equal(t, models.ReconciliationUpgradeFailed, data["kind"])
}

func TestGetReconciliationErrors(t *testing.T) {
	notFound := &stubManager{err: ierr.NewError("missing").Mark(ierr.ErrNotFound)}
	r := newTestRouter(Handlers{Reconciliation: NewReconciliationHandler(notFound)})

	w := doRequest(r, http.MethodGet, "/api/admin/reconciliations/42", "", adminHeaders)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodGet, "/api/admin/reconciliations/abc", "", adminHeaders)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodGet, "/api/admin/reconciliations/42", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResolveReconciliationErrors(t *testing.T) {
	notFound := &stubManager{err: ierr.NewError("missing").Mark(ierr.ErrNotFound)}
	r := newTestRouter(Handlers{Reconciliation: NewReconciliationHandler(notFound)})

	w := doRequest(r, http.MethodPost, "/api/admin/reconciliations/42/resolve", `{"resolvedBy":"ops"}`, adminHeaders)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodPost, "/api/admin/reconciliations/abc/resolve", `{"resolvedBy":"ops"}`, adminHeaders)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPost, "/api/admin/reconciliations/1/resolve", `{}`, adminHeaders)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	w := doRequest(newTestRouter(Handlers{}), http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"payment-api"}`, w.Body.String())
}
