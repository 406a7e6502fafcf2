package cli

import (
	"fmt"

	"resumeadvisor/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the resume analysis HTTP server",
	Long: `Start an HTTP server exposing the resume analysis API.

Available endpoints:
- POST /upload: Review an uploaded PDF or DOCX resume (multipart field 'resume')
- POST /analyze: Free-form suggestions for raw resume text ({"resume_text": "..."})
- GET /health: Health check including circuit breaker state
- GET /stats: Server statistics and rate limiting info
- GET /: Frontend assets when server.staticDir is set

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server, mutual
- Use --cert-file and --key-file for TLS certificates
- Use --ca-file for mutual TLS client certificate verification`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("static-dir", "", "Directory of frontend assets served at / (overrides config)")
	serveCmd.Flags().String("upload-dir", "", "Directory uploads are staged in (overrides config)")
	serveCmd.Flags().String("tls-mode", "", "TLS mode: disabled, server, mutual (overrides config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
	serveCmd.Flags().String("ca-file", "", "CA certificate file for client cert verification (PEM, overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	// Flags are parsed after the config is loaded, so they are applied here.
	flags := cmd.Flags()
	for flag, target := range map[string]*string{
		"port":       &cfg.Server.Port,
		"host":       &cfg.Server.Host,
		"static-dir": &cfg.Server.StaticDir,
		"upload-dir": &cfg.Server.UploadDir,
		"tls-mode":   &cfg.Server.TLS.Mode,
		"cert-file":  &cfg.Server.TLS.CertFile,
		"key-file":   &cfg.Server.TLS.KeyFile,
		"ca-file":    &cfg.Server.TLS.CAFile,
	} {
		if flags.Changed(flag) {
			*target, _ = flags.GetString(flag)
		}
	}

	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	stack, err := newAnalysisStack(cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	srv := server.NewServer(cfg, server.ServerConfigFrom(cfg, Version), stack.service, stack.providers(), logger)
	return srv.Start()
}
