package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ledger-reconciliation/internal/domain"
	"ledger-reconciliation/internal/gateway"
	"ledger-reconciliation/internal/usecase"
)

// Multipart field names of the three uploads.
const (
	FieldOrderFile   = "order_file"
	FieldGatewayFile = "gateway_file"
	FieldVaultFile   = "vault_file"
)

var uploadFields = []string{FieldOrderFile, FieldGatewayFile, FieldVaultFile}

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	RequestID string `json:"request_id,omitempty"`
}

type runResult struct {
	report *domain.ReconciliationReport
	err    error
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": s.cfg.Server.ServiceName,
	})
}

// handleReconcile accepts the three ledger exports and returns the report
// workbook, or the JSON aggregation when format=json.
func (s *Server) handleReconcile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes())

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.sendError(c, http.StatusRequestEntityTooLarge, "upload", fmt.Sprintf("upload exceeds %d MB", s.cfg.Server.MaxUploadMB))
			return
		}
		s.sendError(c, http.StatusBadRequest, "upload", "Please upload all 3 files")
		return
	}

	files := make(map[string]*multipart.FileHeader, len(uploadFields))
	for _, field := range uploadFields {
		headers := form.File[field]
		if len(headers) == 0 {
			s.sendError(c, http.StatusBadRequest, "upload", "Please upload all 3 files")
			return
		}
		files[field] = headers[0]
	}
	for _, field := range uploadFields {
		name := files[field].Filename
		if name == "" {
			s.sendError(c, http.StatusBadRequest, "upload", "Invalid file upload")
			return
		}
		if !gateway.SupportedExtension(name) {
			s.sendError(c, http.StatusBadRequest, "upload", fmt.Sprintf("%s must be .xlsx or .csv file", name))
			return
		}
	}

	logger := s.logger.With(zap.String("request_id", RequestID(c)))
	uc := usecase.NewReconciliationUseCase(gateway.NewUploadTableRepository(files), s.engine, logger)

	// The engine exposes no cancellation points; on timeout the run is
	// abandoned and its result discarded.
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RunTimeout())
	defer cancel()

	done := make(chan runResult, 1)
	go func() {
		report, err := uc.Reconcile(ctx, usecase.Refs{
			Order:   FieldOrderFile,
			Gateway: FieldGatewayFile,
			Vault:   FieldVaultFile,
		})
		done <- runResult{report: report, err: err}
	}()

	var res runResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res = runResult{err: ctx.Err()}
	}
	if res.err != nil {
		s.sendRunError(c, res.err)
		return
	}

	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, res.report)
		return
	}

	var buf bytes.Buffer
	if err := s.writer.Write(&buf, res.report.Sheets); err != nil {
		s.sendError(c, http.StatusInternalServerError, "internal", fmt.Sprintf("Server error: %v", err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.cfg.Report.DownloadName))
	c.Data(http.StatusOK, gateway.XLSXContentType, buf.Bytes())
}

func (s *Server) sendRunError(c *gin.Context, err error) {
	var validation *domain.ValidationError
	var malformed *domain.MalformedInputError
	switch {
	case errors.As(err, &validation):
		s.sendError(c, http.StatusBadRequest, "validation", validation.Error())
	case errors.As(err, &malformed):
		s.sendError(c, http.StatusBadRequest, "malformed_input", malformed.Error())
	case errors.Is(err, context.DeadlineExceeded):
		s.sendError(c, http.StatusServiceUnavailable, "timeout", "reconciliation exceeded its time budget")
	case errors.Is(err, context.Canceled):
		s.sendError(c, http.StatusServiceUnavailable, "canceled", "request was cancelled")
	default:
		s.sendError(c, http.StatusInternalServerError, "internal", fmt.Sprintf("Server error: %v", err))
	}
}

func (s *Server) sendError(c *gin.Context, status int, kind, message string) {
	_ = c.Error(errors.New(message))
	c.JSON(status, errorResponse{
		Error:     message,
		Kind:      kind,
		RequestID: RequestID(c),
	})
}
