package config

import (
	"fmt"
	"slices"
)

var (
	tlsModes           = []string{"disabled", "server", "mutual"}
	clientAuthPolicies = []string{"", "require", "request", "verify"}
	tlsMinVersions     = []string{"", "1.2", "1.3"}
)

// pemSource is one piece of PEM material that may come from a file or,
// when loaded from Vault, inline content.
type pemSource struct {
	name    string
	file    string
	content string
}

func (p pemSource) set() bool { return p.file != "" || p.content != "" }

func (t TLSConfig) sources() (cert, key, ca pemSource) {
	return pemSource{"cert", t.CertFile, t.CertContent},
		pemSource{"key", t.KeyFile, t.KeyContent},
		pemSource{"ca", t.CAFile, t.CAContent}
}

// ValidateTLSConfig validates the TLS configuration
func (c *Config) ValidateTLSConfig() error {
	if err := validateTLSMode(c.Server.TLS); err != nil {
		return err
	}
	return validateTLSVersion(c.Server.TLS)
}

func validateTLSMode(tls TLSConfig) error {
	if !slices.Contains(tlsModes, tls.Mode) {
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", tls.Mode)
	}
	if tls.Mode == "disabled" {
		return nil
	}

	cert, key, ca := tls.sources()
	if !cert.set() || !key.set() {
		return fmt.Errorf("TLS certificate and key are required for %s mode (provide either files or content)", tls.Mode)
	}

	if tls.Mode == "mutual" {
		if !ca.set() {
			return fmt.Errorf("CA certificate is required for mutual TLS mode (provide either caFile or caContent)")
		}
		if !slices.Contains(clientAuthPolicies, tls.ClientAuthPolicy) {
			return fmt.Errorf("invalid clientAuthPolicy: %s (must be 'require', 'request', or 'verify')", tls.ClientAuthPolicy)
		}
	}
	for _, src := range []pemSource{cert, key, ca} {
		if src.file != "" && src.content != "" {
			return fmt.Errorf("cannot specify both %sFile and %sContent", src.name, src.name)
		}
	}
	return nil
}

func validateTLSVersion(tls TLSConfig) error {
	if slices.Contains(tlsMinVersions, tls.MinVersion) {
		return nil
	}
	return fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", tls.MinVersion)
}

// UsesFiles reports whether the certificate material is file backed and can
// therefore be watched for changes.
func (t TLSConfig) UsesFiles() bool {
	return t.CertFile != "" && t.KeyFile != ""
}
