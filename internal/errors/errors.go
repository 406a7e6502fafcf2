package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeAI         ErrorType = "ai"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType      `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"cause,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func newAppError(typ ErrorType, code, message string, cause error) *AppError {
	return &AppError{
		Type:    typ,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Error constructors for different types
func NewValidationError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, code, message, cause)
}

func NewIOError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeIO, code, message, cause)
}

func NewAIError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeAI, code, message, cause)
}

func NewNetworkError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeNetwork, code, message, cause)
}

func NewConfigError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeConfig, code, message, cause)
}

func NewInternalError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, code, message, cause)
}

// WithContext adds context to an error
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Analysis pipeline failures.

func NewNoFileProvidedError() *AppError {
	return NewValidationError(ErrCodeNoFileProvided, "no resume document was uploaded", nil)
}

func NewExtractionError(path string, cause error) *AppError {
	return NewIOError(ErrCodeExtractionFailed, "failed to extract text from document", cause).
		WithContext("path", path)
}

func NewNoTextExtractedError(path string) *AppError {
	return NewValidationError(ErrCodeNoTextExtracted, "document produced no text", nil).
		WithContext("path", path)
}

// NewTransportError reports a failed exchange with the completion endpoint.
// statusCode is zero when no HTTP response was received.
func NewTransportError(statusCode int, body string, cause error) *AppError {
	msg := "completion request failed"
	if statusCode != 0 {
		msg = fmt.Sprintf("completion endpoint returned status %d", statusCode)
	}
	err := NewNetworkError(ErrCodeAITransportFailed, msg, cause)
	if statusCode != 0 {
		err.WithContext("status_code", statusCode).WithContext("response_body", body)
	}
	return err
}

func NewMalformedResponseError(detail string) *AppError {
	return NewAIError(ErrCodeAIMalformedResponse, "completion response is missing the reply text", nil).
		WithContext("detail", detail)
}

func NewIncompleteAnalysisError(attempts int) *AppError {
	return NewAIError(ErrCodeIncompleteAnalysis, "model reply never contained rating, suggestions and example", nil).
		WithContext("attempts", attempts)
}

func NewMissingInputError() *AppError {
	return NewValidationError(ErrCodeMissingInput, "no resume text provided", nil)
}

// HasCode reports whether err or any error it wraps is an AppError with code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}

// StatusCode returns the remote HTTP status attached to a transport error, or 0.
func StatusCode(err error) int {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return 0
	}
	if code, ok := appErr.Context["status_code"].(int); ok {
		return code
	}
	return 0
}

// Logger wraps slog with application-specific methods
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates a new structured logger
func NewLogger(level slog.Level) *Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	return &Logger{logger: slog.New(handler)}
}

// With returns a logger that always includes args.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{logger: l.logger.With(args...)}
}

// LogError logs an application error with appropriate level and context
func (l *Logger) LogError(err error, message string, args ...any) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		logArgs := []any{
			"error_type", appErr.Type,
			"error_code", appErr.Code,
			"error_message", appErr.Message,
		}
		for key, value := range appErr.Context {
			logArgs = append(logArgs, key, value)
		}
		if appErr.Cause != nil {
			logArgs = append(logArgs, "cause", appErr.Cause.Error())
		}
		logArgs = append(logArgs, args...)

		l.logger.Error(message, logArgs...)
		return
	}

	logArgs := append([]any{"error", err.Error()}, args...)
	l.logger.Error(message, logArgs...)
}

func (l *Logger) Info(message string, args ...any) {
	l.logger.Info(message, args...)
}

func (l *Logger) Debug(message string, args ...any) {
	l.logger.Debug(message, args...)
}

func (l *Logger) Warn(message string, args ...any) {
	l.logger.Warn(message, args...)
}

// New creates a new logger instance
func New(level string) (*Logger, error) {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	return NewLogger(slogLevel), nil
}

// Common error codes
const (
	ErrCodeFileNotFound    = "FILE_NOT_FOUND"
	ErrCodeFileNotReadable = "FILE_NOT_READABLE"
	ErrCodeInvalidFormat   = "INVALID_FORMAT"
	ErrCodeAIServiceFailed = "AI_SERVICE_FAILED"
	ErrCodeAITimeout       = "AI_TIMEOUT"
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeMissingAPIKey   = "MISSING_API_KEY"
	ErrCodeNetworkTimeout  = "NETWORK_TIMEOUT"
	ErrCodeInvalidConfig   = "INVALID_CONFIG"
	ErrCodeUploadFailed    = "UPLOAD_FAILED"

	ErrCodeNoFileProvided      = "NO_FILE_PROVIDED"
	ErrCodeExtractionFailed    = "EXTRACTION_FAILED"
	ErrCodeNoTextExtracted     = "NO_TEXT_EXTRACTED"
	ErrCodeAITransportFailed   = "AI_TRANSPORT_FAILED"
	ErrCodeAIMalformedResponse = "AI_MALFORMED_RESPONSE"
	ErrCodeIncompleteAnalysis  = "INCOMPLETE_ANALYSIS"
	ErrCodeMissingInput        = "MISSING_INPUT"
)
