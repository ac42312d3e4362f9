package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminUserLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	userID, key := ts.approvedUser(t, "victim@example.com")

	rec := ts.request(t, http.MethodGet, "/api/v1/admin/users/"+userID, nil, staticKeyHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "victim@example.com", decodeBody(t, rec)["user"].(map[string]any)["email"])

	// Blocking cuts access immediately; unblocking restores it.
	rec = ts.request(t, http.MethodPost, "/api/v1/admin/users/"+userID+"/block", nil, staticKeyHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.request(t, http.MethodGet, "/api/v1/profile", nil, bearer(key))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.request(t, http.MethodPost, "/api/v1/admin/users/"+userID+"/unblock", nil, staticKeyHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.request(t, http.MethodGet, "/api/v1/profile", nil, bearer(key))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.request(t, http.MethodDelete, "/api/v1/admin/users/"+userID, nil, staticKeyHeader())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.request(t, http.MethodGet, "/api/v1/admin/users/"+userID, nil, staticKeyHeader())
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// The deleted user's key no longer resolves.
	rec = ts.request(t, http.MethodGet, "/api/v1/profile", nil, bearer(key))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminUnknownUser(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/api/v1/admin/approve-user/missing", nil, staticKeyHeader())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorType(t, rec))

	rec = ts.request(t, http.MethodDelete, "/api/v1/admin/users/missing", nil, staticKeyHeader())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
