package server

import (
	"fmt"

	"resumeadvisor/internal/utils"
)

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo(useTLS bool) {
	scheme := "http"
	if useTLS {
		scheme = "https"
	}
	fmt.Printf("Starting server on %s://%s:%s\n", scheme, s.Host, s.Port)
	if useTLS {
		fmt.Printf("TLS mode: %s\n", s.TLSConfig.Mode)
		if s.certs != nil && s.certs.watcher != nil {
			fmt.Println("TLS auto-reload: ENABLED (file watching)")
		}
	}

	s.displayEndpoints()
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
}

func (s *Server) displayEndpoints() {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET  /health    - Health check")
	fmt.Println("  GET  /stats     - Server statistics")
	fmt.Println("  POST /upload    - Review an uploaded PDF or DOCX resume (multipart field 'resume')")
	fmt.Println("  POST /analyze   - Free-form suggestions for raw resume text")
	if s.StaticDir != "" {
		fmt.Printf("  GET  /          - Frontend from %s\n", s.StaticDir)
	}
}

func (s *Server) displayAuthInfo() {
	if len(s.APIKeys) > 0 {
		fmt.Printf("API authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
		fmt.Println("Include 'X-API-Key: <your-key>' header in requests to /upload and /analyze")
	} else {
		fmt.Println("API authentication: DISABLED (no API keys configured)")
	}
}

func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %s\n", utils.FormatFileSize(s.MaxRequestSize))
	} else {
		fmt.Println("Request size limit: DISABLED")
	}
}

func (s *Server) displayRateLimitInfo() {
	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Printf("Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
		if s.RateLimit.ByAPIKey {
			fmt.Println("  - Per API key rate limiting enabled")
		}
		if s.RateLimit.ByIP {
			fmt.Println("  - Per IP address rate limiting enabled")
		}
	} else {
		fmt.Println("Rate limiting: DISABLED")
	}
}
