package server

import (
	"crypto/tls"
	"fmt"
	"net/http"

	"resumeadvisor/internal/observability"
)

// configureTLS installs a TLS config on httpServer according to the mode.
// It reports whether the server should be started with TLS.
func (s *Server) configureTLS(httpServer *http.Server, metrics *observability.Metrics) (bool, error) {
	switch s.TLSConfig.Mode {
	case "", "disabled":
		return false, nil
	case "server", "mutual":
	default:
		return false, fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", s.TLSConfig.Mode)
	}

	certs, err := newCertReloader(s.TLSConfig, metrics, s.Logger)
	if err != nil {
		return false, fmt.Errorf("failed to set up TLS: %w", err)
	}

	if s.TLSConfig.AutoReload.Enabled {
		if err := certs.Watch(); err != nil {
			_ = certs.Close()
			return false, fmt.Errorf("failed to start certificate watcher: %w", err)
		}
	}

	httpServer.TLSConfig = s.buildTLSConfig(certs)
	s.certs = certs
	return true, nil
}

func (s *Server) buildTLSConfig(certs *certReloader) *tls.Config {
	tlsConfig := &tls.Config{
		MinVersion:     tlsVersion(s.TLSConfig.MinVersion),
		GetCertificate: certs.GetCertificate,
		ClientAuth:     tls.NoClientCert,
	}

	if s.TLSConfig.Mode == "mutual" {
		tlsConfig.ClientAuth = clientAuthPolicy(s.TLSConfig.ClientAuthPolicy)
		tlsConfig.GetConfigForClient = certs.configForClient(tlsConfig.Clone())
	}

	return tlsConfig
}

func tlsVersion(v string) uint16 {
	if v == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}

func clientAuthPolicy(policy string) tls.ClientAuthType {
	switch policy {
	case "request":
		return tls.RequestClientCert
	case "verify":
		return tls.VerifyClientCertIfGiven
	default:
		return tls.RequireAndVerifyClientCert
	}
}
