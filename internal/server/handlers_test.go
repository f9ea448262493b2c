package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"ledger-reconciliation/internal/config"
	"ledger-reconciliation/internal/engine"
	"ledger-reconciliation/internal/gateway"
)

const (
	orderCSV = "Order Id,Merchant Transaction ID,Order Status\n" +
		"ORD001,TXN001,PAID\n" +
		"ORD002,TXN002,PENDING\n"
	gatewayCSV = "Order Id,Transaction Status\n" +
		"ORD001,SUCCESS\n"
	vaultCSV = "Merchant Transaction Id,Transaction Status\n" +
		"TXN001,not cancelled\n"
)

type upload struct {
	field    string
	filename string
	content  string
}

func defaultUploads() []upload {
	return []upload{
		{FieldOrderFile, "orders.csv", orderCSV},
		{FieldGatewayFile, "gateway.csv", gatewayCSV},
		{FieldVaultFile, "vault.csv", vaultCSV},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.DefaultConfig()
	eng, err := engine.New(cfg.EngineConfig())
	require.NoError(t, err)
	return New(cfg, eng, zap.NewNop())
}

func newUploadRequest(t *testing.T, target string, uploads []upload) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, u := range uploads {
		part, err := mw.CreateFormFile(u.field, u.filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(u.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"Ledger Reconciliation"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestHandleReconcile_Workbook(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, newUploadRequest(t, "/reconcile", defaultUploads()))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, gateway.XLSXContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="reconciliation_output.xlsx"`, rec.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.NotEmpty(t, sheets)
	assert.Equal(t, "SUMMARY", sheets[0])
	assert.Equal(t, "RAW_VAULT", sheets[len(sheets)-1])

	rows, err := f.GetRows("SUMMARY")
	require.NoError(t, err)
	assert.Equal(t, []string{"Total Order Records", "2"}, rows[1])
}

func TestHandleReconcile_JSON(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, newUploadRequest(t, "/reconcile?format=json", defaultUploads()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		RunID       string `json:"run_id"`
		Aggregation struct {
			Summary struct {
				TotalOrders     int `json:"total_orders"`
				FullyReconciled int `json:"fully_reconciled"`
				MissingInBoth   int `json:"missing_in_both"`
			} `json:"summary"`
			ActionGroups []struct {
				Action string `json:"action"`
				Count  int    `json:"count"`
			} `json:"action_groups"`
		} `json:"aggregation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, 2, resp.Aggregation.Summary.TotalOrders)
	assert.Equal(t, 1, resp.Aggregation.Summary.FullyReconciled)
	assert.Equal(t, 1, resp.Aggregation.Summary.MissingInBoth)
	require.Len(t, resp.Aggregation.ActionGroups, 2)
	assert.Equal(t, "INVESTIGATE", resp.Aggregation.ActionGroups[0].Action)
	assert.Equal(t, 1, resp.Aggregation.ActionGroups[0].Count)
}

func TestHandleReconcile_BadRequests(t *testing.T) {
	tests := []struct {
		name     string
		uploads  []upload
		wantCode int
		wantKind string
		wantMsg  string
	}{
		{
			name:     "missing vault file",
			uploads:  defaultUploads()[:2],
			wantCode: http.StatusBadRequest,
			wantKind: "upload",
			wantMsg:  "Please upload all 3 files",
		},
		{
			name: "unsupported extension",
			uploads: []upload{
				{FieldOrderFile, "orders.txt", orderCSV},
				{FieldGatewayFile, "gateway.csv", gatewayCSV},
				{FieldVaultFile, "vault.csv", vaultCSV},
			},
			wantCode: http.StatusBadRequest,
			wantKind: "upload",
			wantMsg:  "orders.txt must be .xlsx or .csv file",
		},
		{
			name: "missing key column",
			uploads: []upload{
				{FieldOrderFile, "orders.csv", orderCSV},
				{FieldGatewayFile, "gateway.csv", "order_id,Transaction Status\nORD001,SUCCESS\n"},
				{FieldVaultFile, "vault.csv", vaultCSV},
			},
			wantCode: http.StatusBadRequest,
			wantKind: "validation",
			wantMsg:  "Gateway file needs 'Order Id' column",
		},
		{
			name: "unreadable workbook",
			uploads: []upload{
				{FieldOrderFile, "orders.xlsx", "not really a workbook"},
				{FieldGatewayFile, "gateway.csv", gatewayCSV},
				{FieldVaultFile, "vault.csv", vaultCSV},
			},
			wantCode: http.StatusBadRequest,
			wantKind: "malformed_input",
		},
		{
			name: "empty upload",
			uploads: []upload{
				{FieldOrderFile, "orders.csv", ""},
				{FieldGatewayFile, "gateway.csv", gatewayCSV},
				{FieldVaultFile, "vault.csv", vaultCSV},
			},
			wantCode: http.StatusBadRequest,
			wantKind: "malformed_input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)

			req := newUploadRequest(t, "/reconcile", tt.uploads)
			req.Header.Set(requestIDHeader, "req-123")
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantKind, resp.Kind)
			assert.Equal(t, "req-123", resp.RequestID)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, resp.Error)
			}
		})
	}
}

func TestHandleReconcile_NotMultipart(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/reconcile", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please upload all 3 files", decodeError(t, rec).Error)
}

func TestHandleReconcile_RateLimited(t *testing.T) {
	s := newServerWithConfig(t, func(cfg *config.Config) {
		cfg.Server.RateLimitPerSec = 0.001
		cfg.Server.RateBurst = 1
	})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, newUploadRequest(t, "/reconcile?format=json", defaultUploads()))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, newUploadRequest(t, "/reconcile?format=json", defaultUploads()))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limited", decodeError(t, rec).Kind)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "health is not rate limited")
}

func newServerWithConfig(t *testing.T, mutate func(cfg *config.Config)) *Server {
	t.Helper()

	cfg := config.DefaultConfig()
	mutate(cfg)
	eng, err := engine.New(cfg.EngineConfig())
	require.NoError(t, err)
	return New(cfg, eng, zap.NewNop())
}

func TestHandleReconcile_UploadTooLarge(t *testing.T) {
	s := newServerWithConfig(t, func(cfg *config.Config) {
		cfg.Server.MaxUploadMB = 1
	})

	big := orderCSV + strings.Repeat("ORD999,TXN999,PAID\n", (2<<20)/19)
	uploads := []upload{
		{FieldOrderFile, "orders.csv", big},
		{FieldGatewayFile, "gateway.csv", gatewayCSV},
		{FieldVaultFile, "vault.csv", vaultCSV},
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, newUploadRequest(t, "/reconcile", uploads))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "upload", resp.Kind)
	assert.Equal(t, "upload exceeds 1 MB", resp.Error)
}

func TestHandleReconcile_RunTimeout(t *testing.T) {
	s := newServerWithConfig(t, func(cfg *config.Config) {
		cfg.Server.RunTimeout = "1ns"
	})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, newUploadRequest(t, "/reconcile", defaultUploads()))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "timeout", decodeError(t, rec).Kind)
}
