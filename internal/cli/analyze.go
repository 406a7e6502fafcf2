package cli

import (
	"context"
	"fmt"

	"resumeadvisor/internal/ai"
	"resumeadvisor/internal/common"
	"resumeadvisor/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file]",
	Short: "Review a PDF or DOCX resume",
	Long: `Review a PDF or DOCX resume the same way the /upload endpoint does.

The file is read where it is, its text extracted, and the model is asked for a
rating from 1 to 10, improvement suggestions and an example of a rewritten
section. Incomplete replies are retried up to the configured attempt limit.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: resolveFormat(&analyzeConfig),
	RunE:    runAnalyze,
}

var analyzeTextCmd = &cobra.Command{
	Use:   "analyze-text [resume-text-file | -]",
	Short: "Get free-form suggestions for raw resume text",
	Long: `Send raw resume text to the model and print its advice unparsed, the same
way the /analyze endpoint does. Use '-' to read the text from standard input.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: resolveFormat(&analyzeTextConfig),
	RunE:    runAnalyzeText,
}

var (
	analyzeConfig     common.CommandConfig
	analyzeTextConfig common.CommandConfig
)

func init() {
	for _, c := range []struct {
		cmd *cobra.Command
		cfg *common.CommandConfig
	}{
		{analyzeCmd, &analyzeConfig},
		{analyzeTextCmd, &analyzeTextConfig},
	} {
		c.cmd.Flags().StringVarP(&c.cfg.OutputFile, "output", "o", "", "Output file path (default: stdout)")
		c.cmd.Flags().StringVar(&c.cfg.OutputFormat, "format", "", "Output format: json, text, or markdown")
		_ = c.cmd.RegisterFlagCompletionFunc("format", completeFormat)
	}
}

func resolveFormat(cmdConfig *common.CommandConfig) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		format, err := common.ResolveOutputFormat(cmdConfig.OutputFormat, cfg.App.DefaultFormat, cfg.App.SupportedFormats)
		if err != nil {
			return err
		}
		cmdConfig.OutputFormat = format
		return nil
	}
}

func completeFormat(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return []string{}, cobra.ShellCompDirectiveError
	}
	return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	stack, err := newAnalysisStack(cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	createInput := func(fp *common.FileProcessor, args []string) (string, error) {
		return args[0], fp.ValidateDocument(args[0])
	}

	logDetails := func(path string, cfg common.CommandConfig) {
		logger.Info("Starting resume review",
			"file", path,
			"max_attempts", stack.service.MaxAttempts(),
			"output_format", cfg.OutputFormat)
	}

	operation := func(ctx context.Context, path string) (types.AnalysisResult, *ai.TokenUsage, error) {
		result, usage, err := stack.service.AnalyzeFile(ctx, path)
		if err == nil {
			logger.Info("Resume review completed", "attempts", result.Attempts)
		}
		return result, usage, err
	}

	if err := common.RunAICommand(cmd.Context(), logger, analyzeConfig, args, createInput, operation, logDetails); err != nil {
		return fmt.Errorf("failed to review resume: %w", err)
	}
	return nil
}

func runAnalyzeText(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	stack, err := newAnalysisStack(cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	createInput := func(fp *common.FileProcessor, args []string) (string, error) {
		return fp.ReadText(args[0])
	}

	logDetails := func(text string, cfg common.CommandConfig) {
		logger.Info("Starting direct resume analysis",
			"resume_chars", len(text),
			"output_format", cfg.OutputFormat)
	}

	if err := common.RunAICommand(cmd.Context(), logger, analyzeTextConfig, args, createInput, stack.service.AnalyzeText, logDetails); err != nil {
		return fmt.Errorf("failed to analyze resume text: %w", err)
	}
	logger.Info("Direct resume analysis completed successfully")
	return nil
}
