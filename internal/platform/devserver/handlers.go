package devserver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/synthfhir/synthfhir/internal/platform/blobstore"
	"github.com/synthfhir/synthfhir/internal/platform/hipaa"
	"github.com/synthfhir/synthfhir/pkg/contract"
)

const timestampLayout = "2006-01-02T15:04:05.000000"

// allowedExtensions are the knowledge document types the backend indexes.
var allowedExtensions = []string{".txt", ".pdf", ".csv"}

func detail(c echo.Context, status int, format string, args ...any) error {
	return c.JSON(status, contract.ErrorBody{Detail: fmt.Sprintf(format, args...)})
}

// bindJSON binds the request body. An oversized body keeps its 413; any
// other decode failure is a 422 like the backend's request validation.
func bindJSON(c echo.Context, v any) error {
	err := c.Bind(v)
	if err == nil {
		return nil
	}
	for e := err; e != nil; {
		var he *echo.HTTPError
		if !errors.As(e, &he) {
			break
		}
		if he.Code == http.StatusRequestEntityTooLarge {
			return he
		}
		e = he.Internal
	}
	return detail(c, http.StatusUnprocessableEntity, "invalid request body")
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"name":   serviceName,
		"health": "/api/health",
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, contract.HealthResponse{
		Status:    "healthy",
		Timestamp: s.opts.Now().Format(timestampLayout),
		Service:   serviceName,
	})
}

func (s *Server) handleConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, s.catalog)
}

// ---------------------------------------------------------------------------
// Generation
// ---------------------------------------------------------------------------

func validateGeneration(req *contract.GenerationRequest) error {
	if strings.TrimSpace(req.UserPrompt) == "" {
		return fmt.Errorf("user_prompt must not be empty")
	}
	if len(req.Resources) == 0 {
		return fmt.Errorf("resources must list at least one resource")
	}
	if req.RecordCount < contract.MinRecordCount || req.RecordCount > contract.MaxRecordCount {
		return fmt.Errorf("record_count must be between %d and %d", contract.MinRecordCount, contract.MaxRecordCount)
	}
	if t := req.Temperature; t != nil && (*t < contract.MinTemperature || *t > contract.MaxTemperature) {
		return fmt.Errorf("temperature must be between %.1f and %.1f", contract.MinTemperature, contract.MaxTemperature)
	}
	if m := req.MaxTokens; m != nil && (*m < contract.MinMaxTokens || *m > contract.MaxMaxTokens) {
		return fmt.Errorf("max_tokens must be between %d and %d", contract.MinMaxTokens, contract.MaxMaxTokens)
	}
	return nil
}

func (s *Server) handleGenerate(c echo.Context) error {
	var req contract.GenerationRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if req.RecordCount == 0 {
		req.RecordCount = 5
	}
	if err := validateGeneration(&req); err != nil {
		return detail(c, http.StatusUnprocessableEntity, "%s", err.Error())
	}

	gen := newRecordGenerator(req.UserPrompt, req.QuickInputs)
	var warnings []string
	if q := req.QuickInputs; q != nil && q.AgeMin != nil && q.AgeMax != nil && *q.AgeMin > *q.AgeMax {
		warnings = append(warnings, fmt.Sprintf("age_min %d is greater than age_max %d; ages use age_min", *q.AgeMin, *q.AgeMax))
	}

	hasher := hipaa.MD5Hasher{}
	results := make(map[contract.ResourceKind]contract.GenerationResult, len(req.Resources))
	for _, kind := range req.Resources {
		rc, known := s.catalog.Resources[kind]
		switch {
		case !known:
			results[kind] = contract.GenerationResult{Success: false, Error: fmt.Sprintf("Unknown resource: %s", kind)}
			continue
		case !rc.Enabled:
			results[kind] = contract.GenerationResult{Success: false, Error: fmt.Sprintf("Resource %s is not enabled", kind)}
			continue
		}

		data := hasher.HashFields(gen.generate(kind, req.RecordCount), rc.MD5Fields)
		res := contract.GenerationResult{Success: true, Data: data}
		if kind == contract.ResourcePatient && len(warnings) > 0 {
			res.ValidationErrors = warnings
		}
		results[kind] = res
		s.logger.Info().Str("resource", string(kind)).Int("records", len(data)).Msg("generated placeholder records")
	}

	return c.JSON(http.StatusOK, contract.GenerationResponse{
		Results:   results,
		Timestamp: s.opts.Now().Format(timestampLayout),
	})
}

// ---------------------------------------------------------------------------
// Knowledge base
// ---------------------------------------------------------------------------

func (s *Server) handleKnowledgeStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.knowledge.status(s.catalog))
}

func (s *Server) lookupResource(name string) (contract.ResourceKind, bool) {
	kind, err := contract.ParseResourceKind(name)
	if err != nil {
		return "", false
	}
	_, ok := s.catalog.Resources[kind]
	return kind, ok
}

func (s *Server) handleIndex(c echo.Context) error {
	var req struct {
		Resource string `json:"resource"`
	}
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	kind, ok := s.lookupResource(req.Resource)
	if !ok {
		return detail(c, http.StatusNotFound, "Resource %s not found", req.Resource)
	}
	n := s.knowledge.index(string(kind), true)
	return c.JSON(http.StatusOK, contract.IndexResponse{Success: true, ChunksIndexed: n, Resource: string(kind)})
}

func (s *Server) handleIndexAll(c echo.Context) error {
	total := 0
	for _, kind := range s.catalog.EnabledResources {
		total += s.knowledge.index(string(kind), true)
	}
	total += s.knowledge.index(contract.GlobalTarget().String(), false)
	return c.JSON(http.StatusOK, contract.IndexResponse{Success: true, ChunksIndexed: total, Resource: contract.IndexAllResource})
}

func (s *Server) handleUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return detail(c, http.StatusUnprocessableEntity, "file is required")
	}
	targetName := c.FormValue("target_resource")
	if targetName == "" {
		return detail(c, http.StatusUnprocessableEntity, "target_resource is required")
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	allowed := false
	for _, a := range allowedExtensions {
		if ext == a {
			allowed = true
			break
		}
	}
	if !allowed {
		return detail(c, http.StatusBadRequest, "File type %s not allowed. Allowed: %s", ext, strings.Join(allowedExtensions, ", "))
	}

	target, err := contract.ParseUploadTarget(targetName)
	if err != nil {
		return detail(c, http.StatusNotFound, "Resource %s not found", targetName)
	}
	if kind, ok := target.Resource(); ok {
		if _, known := s.catalog.Resources[kind]; !known {
			return detail(c, http.StatusNotFound, "Resource %s not found", targetName)
		}
	}

	f, err := fh.Open()
	if err != nil {
		return detail(c, http.StatusInternalServerError, "Upload failed: %s", err.Error())
	}
	defer f.Close()
	size, err := io.Copy(io.Discard, f)
	if err != nil {
		return detail(c, http.StatusInternalServerError, "Upload failed: %s", err.Error())
	}

	name := filepath.Base(fh.Filename)
	s.knowledge.add(target.String(), name, int(size))
	n := s.knowledge.index(target.String(), !target.IsGlobal())
	s.logger.Info().Str("target", target.String()).Str("file", name).Int64("bytes", size).Msg("indexed uploaded document")

	return c.JSON(http.StatusOK, contract.IndexResponse{Success: true, ChunksIndexed: n, Resource: target.String()})
}

// ---------------------------------------------------------------------------
// LLM status
// ---------------------------------------------------------------------------

func (s *Server) handleLLMStatus(c echo.Context) error {
	configured := s.opts.EnterpriseBaseURL != "" && s.opts.EnterpriseClientID != "" && s.opts.EnterpriseClientSecret != ""
	status := contract.LLMStatus{
		ActiveLLM:            defaultActiveLLM,
		EnterpriseConfigured: configured,
		ConnectionStatus:     contract.ConnectionDisconnected,
	}
	if configured {
		status.ActiveLLM = enterpriseLLM
		status.ConnectionStatus = contract.ConnectionConnected
	}
	if s.opts.EnterpriseBaseURL != "" {
		status.EnterpriseConfig = &contract.EnterpriseConfig{
			BaseURL:         s.opts.EnterpriseBaseURL,
			HasClientID:     s.opts.EnterpriseClientID != "",
			HasClientSecret: s.opts.EnterpriseClientSecret != "",
		}
	}
	return c.JSON(http.StatusOK, status)
}

// ---------------------------------------------------------------------------
// Export
// ---------------------------------------------------------------------------

func (s *Server) handleExport(c echo.Context) error {
	var body contract.ExportBody
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	if len(body.Data) == 0 {
		return detail(c, http.StatusBadRequest, "No data provided for export")
	}

	kind, ok := s.lookupResource(c.Param("resource"))
	if !ok {
		return c.JSON(http.StatusOK, contract.ExportResponse{
			Success: false,
			Error:   fmt.Sprintf("Resource %s not found", c.Param("resource")),
		})
	}

	data := body.Data
	if body.ApplyMD5 {
		data = hipaa.MD5Hasher{}.HashFields(data, s.catalog.Resources[kind].MD5Fields)
	}
	content, err := encodeCSV(data)
	if err != nil {
		return c.JSON(http.StatusOK, contract.ExportResponse{Success: false, Error: err.Error()})
	}

	meta, err := s.files.Save(c.Request().Context(), blobstore.FileMetadata{
		Name:     contract.ExportFileName(kind),
		Resource: string(kind),
	}, bytes.NewReader(content))
	if err != nil {
		s.logger.Error().Err(err).Str("resource", string(kind)).Msg("failed to store export")
		return c.JSON(http.StatusOK, contract.ExportResponse{Success: false, Error: err.Error()})
	}
	s.logger.Info().Str("resource", string(kind)).Int("records", len(data)).Str("file", meta.Name).Msg("exported records")

	return c.JSON(http.StatusOK, contract.ExportResponse{
		Success:     true,
		Filepath:    meta.Name,
		DownloadURL: "/api/download/" + meta.Name,
	})
}
