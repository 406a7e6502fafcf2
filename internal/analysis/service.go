package analysis

import (
	"context"
	"io"
	"strings"

	"resumeadvisor/internal/ai"
	"resumeadvisor/internal/errors"
	"resumeadvisor/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultMaxAttempts is the number of completions tried on the upload path
// before giving up on a complete reply.
const DefaultMaxAttempts = 3

// Extractor turns a stored document into plain text.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Completer sends one prompt to a model and returns its reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (*ai.Completion, error)
}

// Options tunes the upload retry loop.
type Options struct {
	MaxAttempts           int
	RetryOnTransportError bool
}

// Service runs the two analysis paths: uploaded documents get the structured
// review with retries, raw text gets a single free-form answer.
type Service struct {
	extractor Extractor
	uploads   *UploadStore
	reviewer  Completer
	advisor   Completer
	opts      Options
	logger    *errors.Logger

	// Parser turns each model reply into sections; defaults to ParseReply.
	Parser ReplyParser
}

// NewService wires an analysis service. reviewer serves the upload path and
// advisor serves the direct path; they may be the same provider.
func NewService(extractor Extractor, uploads *UploadStore, reviewer, advisor Completer, opts Options, logger *errors.Logger) *Service {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	return &Service{
		extractor: extractor,
		uploads:   uploads,
		reviewer:  reviewer,
		advisor:   advisor,
		opts:      opts,
		logger:    logger,
		Parser:    ParseReply,
	}
}

// MaxAttempts returns the attempt cap of the upload path.
func (s *Service) MaxAttempts() int {
	return s.opts.MaxAttempts
}

// AnalyzeUpload stages an uploaded document, extracts its text, removes the
// staged copy and runs the structured review.
func (s *Service) AnalyzeUpload(ctx context.Context, filename string, content io.Reader) (types.AnalysisResult, *ai.TokenUsage, error) {
	if filename == "" || content == nil {
		return types.AnalysisResult{}, nil, errors.NewNoFileProvidedError()
	}

	text, err := s.extractUpload(ctx, filename, content)
	if err != nil {
		return types.AnalysisResult{}, nil, err
	}

	return s.review(ctx, filename, text)
}

// AnalyzeFile runs the structured review on a document already on disk.
// The file is left in place.
func (s *Service) AnalyzeFile(ctx context.Context, path string) (types.AnalysisResult, *ai.TokenUsage, error) {
	if path == "" {
		return types.AnalysisResult{}, nil, errors.NewNoFileProvidedError()
	}

	text, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return types.AnalysisResult{}, nil, err
	}

	return s.review(ctx, path, text)
}

// AnalyzeText sends raw resume text with the direct prompt and returns the
// model's answer without parsing it.
func (s *Service) AnalyzeText(ctx context.Context, text string) (types.DirectAnalysisResult, *ai.TokenUsage, error) {
	if strings.TrimSpace(text) == "" {
		return types.DirectAnalysisResult{}, nil, errors.NewMissingInputError()
	}

	ctx, span := otel.Tracer("resumeadvisor.analysis").Start(ctx, "analysis.direct")
	defer span.End()
	span.SetAttributes(attribute.Int("resume.length", len(text)))

	completion, err := s.advisor.Complete(ctx, ai.BuildDirectPrompt(text))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return types.DirectAnalysisResult{}, nil, err
	}

	return types.DirectAnalysisResult{Suggestions: completion.Text}, completion.Usage, nil
}

// extractUpload returns once the staged directory is gone, so the model is
// never called while the upload is still on disk.
func (s *Service) extractUpload(ctx context.Context, filename string, content io.Reader) (string, error) {
	path, release, err := s.uploads.Save(filename, content)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := release(); err != nil {
			s.logger.LogError(err, "Failed to remove staged upload", "path", path)
		}
	}()

	return s.extractor.Extract(ctx, path)
}

func (s *Service) review(ctx context.Context, source, text string) (types.AnalysisResult, *ai.TokenUsage, error) {
	if strings.TrimSpace(text) == "" {
		return types.AnalysisResult{}, nil, errors.NewNoTextExtractedError(source)
	}

	ctx, span := otel.Tracer("resumeadvisor.analysis").Start(ctx, "analysis.review")
	defer span.End()
	span.SetAttributes(
		attribute.Int("resume.length", len(text)),
		attribute.Int("analysis.max_attempts", s.opts.MaxAttempts),
	)

	prompt := ai.BuildAnalysisPrompt(text)
	usage := &ai.TokenUsage{}

	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		completion, err := s.reviewer.Complete(ctx, prompt)
		if err != nil {
			if s.retryable(err) && attempt < s.opts.MaxAttempts {
				s.logger.Warn("Completion failed, retrying",
					"attempt", attempt,
					"error", err.Error())
				continue
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.SetAttributes(attribute.Int("analysis.attempts", attempt))
			return types.AnalysisResult{}, usage, err
		}
		usage.Add(completion.Usage)

		parsed := s.Parser(completion.Text)
		if parsed.Complete() {
			span.SetAttributes(attribute.Int("analysis.attempts", attempt))
			return types.AnalysisResult{
				Rating:      parsed.Rating,
				Suggestions: parsed.Suggestions,
				Example:     parsed.Example,
				Attempts:    attempt,
			}, usage, nil
		}

		s.logger.Warn("Model reply incomplete",
			"attempt", attempt,
			"max_attempts", s.opts.MaxAttempts,
			"missing", parsed.Missing())
	}

	err := errors.NewIncompleteAnalysisError(s.opts.MaxAttempts)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.Int("analysis.attempts", s.opts.MaxAttempts))
	return types.AnalysisResult{}, usage, err
}

func (s *Service) retryable(err error) bool {
	return s.opts.RetryOnTransportError && errors.HasCode(err, errors.ErrCodeAITransportFailed)
}
