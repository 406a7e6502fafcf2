package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"

	"resumeadvisor/internal/ai"
	"resumeadvisor/internal/errors"
	"resumeadvisor/internal/observability"
	"resumeadvisor/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

const (
	uploadField     = "resume"
	multipartMemory = 8 << 20
)

type errorMapping struct {
	status  int
	message string
}

// errorResponses maps error codes to the status and message shown to clients.
var errorResponses = map[string]errorMapping{
	errors.ErrCodeNoFileProvided:      {http.StatusBadRequest, "No file uploaded"},
	errors.ErrCodeNoTextExtracted:     {http.StatusBadRequest, "Could not extract text from resume."},
	errors.ErrCodeExtractionFailed:    {http.StatusUnprocessableEntity, "Could not read the uploaded document."},
	errors.ErrCodeIncompleteAnalysis:  {http.StatusInternalServerError, "AI could not provide a complete analysis. Please try again."},
	errors.ErrCodeAITransportFailed:   {http.StatusBadGateway, "AI service request failed"},
	errors.ErrCodeAIMalformedResponse: {http.StatusBadGateway, "AI service returned an unexpected response"},
	errors.ErrCodeMissingInput:        {http.StatusBadRequest, "No resume text provided"},
	errors.ErrCodeMissingAPIKey:       {http.StatusInternalServerError, "AI service is not configured"},
	errors.ErrCodeUploadFailed:        {http.StatusInternalServerError, "Could not store the uploaded document."},
}

// uploadHandler accepts a multipart document in the "resume" field and
// returns the structured review.
func (s *Server) uploadHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer("resumeadvisor.api").Start(r.Context(), "api.upload")
		defer span.End()
		logger := s.requestLogger(r)

		file, header, err := r.FormFile(uploadField)
		if r.MultipartForm != nil {
			defer func() { _ = r.MultipartForm.RemoveAll() }()
		}
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			var maxBytesErr *http.MaxBytesError
			if stderrors.As(err, &maxBytesErr) {
				writeErrorResponse(w, "Request too large", fmt.Sprintf("request body exceeds %d bytes", maxBytesErr.Limit), "", http.StatusRequestEntityTooLarge)
				return
			}
			s.writeAppError(w, logger, errors.NewNoFileProvidedError())
			return
		}
		defer func() { _ = file.Close() }()

		span.SetAttributes(
			attribute.String("upload.filename", header.Filename),
			attribute.Int64("upload.size", header.Size),
		)

		// The analysis outlives a disconnected client.
		ctx = context.WithoutCancel(ctx)
		metrics := om.GetMetrics()

		var result types.AnalysisResult
		err = metrics.TrackAIOperationWithTokens(ctx, "upload", func(ctx context.Context) *observability.AIOperationResult {
			output, usage, aiErr := s.Analyzer.AnalyzeUpload(ctx, header.Filename, file)
			result = output
			return &observability.AIOperationResult{Error: aiErr, TokenUsage: tokenUsage(usage)}
		})
		metrics.RecordAnalysis(ctx, "upload", outcome(err), result.Attempts)

		if err != nil {
			span.RecordError(err)
			s.writeAppError(w, logger, err)
			return
		}

		logger.Info("Resume analyzed",
			"filename", header.Filename,
			"rating", result.Rating,
			"attempts", result.Attempts)
		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("analysis.attempts", result.Attempts),
		)

		writeJSON(w, http.StatusOK, result)
	}
}

// analyzeHandler accepts {"resume_text": ...} and returns the model's raw answer.
func (s *Server) analyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer("resumeadvisor.api").Start(r.Context(), "api.analyze")
		defer span.End()
		logger := s.requestLogger(r)

		var req types.AnalyzeTextRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), errors.ErrCodeInvalidRequest, http.StatusBadRequest)
			return
		}
		span.SetAttributes(attribute.Int("request.resume_length", len(req.ResumeText)))

		ctx = context.WithoutCancel(ctx)
		metrics := om.GetMetrics()

		var result types.DirectAnalysisResult
		err := metrics.TrackAIOperationWithTokens(ctx, "direct", func(ctx context.Context) *observability.AIOperationResult {
			output, usage, aiErr := s.Analyzer.AnalyzeText(ctx, req.ResumeText)
			result = output
			return &observability.AIOperationResult{Error: aiErr, TokenUsage: tokenUsage(usage)}
		})
		metrics.RecordAnalysis(ctx, "direct", outcome(err), 0)

		if err != nil {
			span.RecordError(err)
			s.writeAppError(w, logger, err)
			return
		}

		span.SetAttributes(attribute.Bool("success", true))
		writeJSON(w, http.StatusOK, result)
	}
}

// healthHandler reports liveness plus the breaker state of each provider.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "resumeadvisor",
		"version": s.Version,
	}
	if s.AppConfig != nil {
		response["provider"] = s.AppConfig.AI.Provider
		response["model"] = s.AppConfig.AI.Model
	}

	breakers := s.breakerStats()
	response["circuit_breakers"] = breakers

	status := http.StatusOK
	for _, stats := range breakers {
		if healthy, ok := stats["healthy"].(bool); ok && !healthy {
			response["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	if s.certs != nil {
		response["certificates"] = s.certs.Status()
	}

	writeJSON(w, status, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "resumeadvisor",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
		"circuit_breakers": s.breakerStats(),
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) breakerStats() map[string]map[string]any {
	out := make(map[string]map[string]any, len(s.Providers))
	for operation, provider := range s.Providers {
		if provider == nil {
			continue
		}
		out[operation] = provider.GetCircuitBreakerStats()
	}
	return out
}

// writeAppError translates err into the client-facing status and message.
// Validation failures carry only the message; other failures also carry the
// error summary.
func (s *Server) writeAppError(w http.ResponseWriter, logger *errors.Logger, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		logger.LogError(err, "Request failed")
		writeErrorResponse(w, "Internal server error", err.Error(), "", http.StatusInternalServerError)
		return
	}

	mapping, ok := errorResponses[appErr.Code]
	if !ok {
		mapping = errorMapping{http.StatusInternalServerError, "Internal server error"}
	}

	message := ""
	if appErr.Type != errors.ErrorTypeValidation {
		message = appErr.Message
		logger.LogError(err, "Request failed")
	} else {
		logger.Info("Request rejected", "error_code", appErr.Code)
	}

	writeErrorResponse(w, mapping.message, message, appErr.Code, mapping.status)
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return strings.ToLower(appErr.Code)
	}
	return "error"
}

func tokenUsage(usage *ai.TokenUsage) *observability.TokenUsage {
	if usage == nil {
		return nil
	}
	return &observability.TokenUsage{
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		TotalTokens:  usage.TotalTokens,
	}
}

// parseJSONRequest decodes a JSON body into v. Any application/json media
// type is accepted, parameters included.
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message, code string, statusCode int) {
	writeJSON(w, statusCode, types.ErrorResponse{
		Error:   error,
		Message: message,
		Code:    code,
	})
}
