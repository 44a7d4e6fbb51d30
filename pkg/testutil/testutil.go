// Package testutil provides shared helpers for tests that need a real
// store or dispatch loop.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stocktrack/stocktrack-backend/pkg/database"
	"github.com/stocktrack/stocktrack-backend/pkg/dispatch"
	"github.com/stocktrack/stocktrack-backend/pkg/logger"
)

// OpenTestDB opens a fresh file-backed store under the test's temp
// directory and runs all migrations. The store is torn down with the test.
func OpenTestDB(t *testing.T) *database.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := database.NewWithDSN("file:"+path+"?_pragma=foreign_keys(1)", logger.Nop())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// StartLoop starts a dispatch loop that stops with the test
func StartLoop(t *testing.T) *dispatch.Loop {
	t.Helper()

	loop := dispatch.New(logger.Nop())
	loop.Start()
	t.Cleanup(loop.Stop)

	return loop
}

// NewHTTPRequest builds a request with an optional JSON body
func NewHTTPRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// ExecuteRequest runs a request through a handler and captures the response
func ExecuteRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}
