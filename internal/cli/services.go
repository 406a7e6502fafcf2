package cli

import (
	"fmt"

	"resumeadvisor/internal/ai"
	"resumeadvisor/internal/analysis"
	"resumeadvisor/internal/config"
	"resumeadvisor/internal/errors"
	"resumeadvisor/internal/extract"
	"resumeadvisor/internal/server"
)

// analysisStack is the analysis service together with the two providers
// behind it, one per path.
type analysisStack struct {
	service *analysis.Service
	upload  *ai.Service
	direct  *ai.Service
	logger  *errors.Logger
}

func newAnalysisStack(cfg *config.Config, logger *errors.Logger) (*analysisStack, error) {
	uploadCfg := cfg.GetUploadConfig()
	upload, err := ai.NewService(&uploadCfg, "upload", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload AI service: %w", err)
	}

	directCfg := cfg.GetDirectConfig()
	direct, err := ai.NewService(&directCfg, "direct", logger)
	if err != nil {
		_ = upload.Close()
		return nil, fmt.Errorf("failed to create direct AI service: %w", err)
	}

	svc := analysis.NewService(
		extract.New(logger),
		analysis.NewUploadStore(cfg.Server.UploadDir),
		upload,
		direct,
		analysis.Options{
			MaxAttempts:           uploadCfg.Attempts(),
			RetryOnTransportError: uploadCfg.RetriesTransportErrors(),
		},
		logger,
	)

	return &analysisStack{service: svc, upload: upload, direct: direct, logger: logger}, nil
}

func (s *analysisStack) providers() map[string]server.BreakerReporter {
	return map[string]server.BreakerReporter{
		"upload": s.upload,
		"direct": s.direct,
	}
}

func (s *analysisStack) Close() {
	for name, p := range map[string]*ai.Service{"upload": s.upload, "direct": s.direct} {
		if err := p.Close(); err != nil {
			s.logger.LogError(err, "Failed to close AI service", "operation", name)
		}
	}
}
