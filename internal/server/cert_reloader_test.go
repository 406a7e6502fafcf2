package server

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"resumeadvisor/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// selfSigned returns PEM encoded certificate and key for commonName.
func selfSigned(t *testing.T, commonName string) (certPEM, keyPEM []byte) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		DNSNames:              []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	return certPEM, keyPEM
}

func writeKeyPair(t *testing.T, dir, commonName string) (certFile, keyFile string) {
	t.Helper()
	certPEM, keyPEM := selfSigned(t, commonName)
	certFile = filepath.Join(dir, "server.crt")
	keyFile = filepath.Join(dir, "server.key")
	require.NoError(t, os.WriteFile(certFile, certPEM, 0600))
	require.NoError(t, os.WriteFile(keyFile, keyPEM, 0600))
	return certFile, keyFile
}

func servedCommonName(t *testing.T, c *certReloader) string {
	t.Helper()
	cert, err := c.GetCertificate(nil)
	require.NoError(t, err)
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	return leaf.Subject.CommonName
}

func TestCertReloaderFromFiles(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeKeyPair(t, dir, "first")

	c, err := newCertReloader(config.TLSConfig{Mode: "server", CertFile: certFile, KeyFile: keyFile}, nil, newTestLogger())
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	assert.Equal(t, "first", servedCommonName(t, c))
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), c.NotAfter(), time.Minute)

	writeKeyPair(t, dir, "second")
	c.reload()

	assert.Equal(t, "second", servedCommonName(t, c))
	status := c.Status()
	assert.Equal(t, 1, status["reload_count"])
	assert.Equal(t, false, status["watching"])
	assert.NotContains(t, status, "last_reload_error")
}

func TestCertReloaderKeepsCertOnFailedReload(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeKeyPair(t, dir, "good")

	c, err := newCertReloader(config.TLSConfig{Mode: "server", CertFile: certFile, KeyFile: keyFile}, nil, newTestLogger())
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	require.NoError(t, os.WriteFile(certFile, []byte("not a certificate"), 0600))
	c.reload()

	assert.Equal(t, "good", servedCommonName(t, c))
	assert.Contains(t, c.Status(), "last_reload_error")
}

func TestCertReloaderFromContent(t *testing.T) {
	certPEM, keyPEM := selfSigned(t, "vault")

	c, err := newCertReloader(config.TLSConfig{
		Mode:        "server",
		CertContent: string(certPEM),
		KeyContent:  string(keyPEM),
	}, nil, newTestLogger())
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	assert.Equal(t, "vault", servedCommonName(t, c))

	// Nothing on disk to watch.
	require.NoError(t, c.Watch())
	assert.Nil(t, c.watcher)
}

func TestCertReloaderErrors(t *testing.T) {
	certPEM, keyPEM := selfSigned(t, "x")

	tests := []struct {
		name string
		cfg  config.TLSConfig
		want string
	}{
		{"no certificate", config.TLSConfig{Mode: "server"}, "certificate and key are required"},
		{"bad content", config.TLSConfig{Mode: "server", CertContent: "bad", KeyContent: "bad"}, "from content"},
		{"missing files", config.TLSConfig{Mode: "server", CertFile: "/nonexistent/a.crt", KeyFile: "/nonexistent/a.key"}, "from files"},
		{"mutual without CA", config.TLSConfig{Mode: "mutual", CertContent: string(certPEM), KeyContent: string(keyPEM)}, "CA certificate is required"},
		{"mutual bad CA", config.TLSConfig{Mode: "mutual", CertContent: string(certPEM), KeyContent: string(keyPEM), CAContent: "junk"}, "failed to append CA cert"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newCertReloader(tt.cfg, nil, newTestLogger())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCertReloaderWatch(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeKeyPair(t, dir, "before")

	c, err := newCertReloader(config.TLSConfig{
		Mode:       "server",
		CertFile:   certFile,
		KeyFile:    keyFile,
		AutoReload: config.AutoReloadConfig{Enabled: true, DebounceDelay: 20 * time.Millisecond},
	}, nil, newTestLogger())
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	require.NoError(t, c.Watch())
	assert.Equal(t, true, c.Status()["watching"])

	writeKeyPair(t, dir, "after")

	assert.Eventually(t, func() bool {
		cert, _ := c.GetCertificate(nil)
		leaf, err := x509.ParseCertificate(cert.Certificate[0])
		return err == nil && leaf.Subject.CommonName == "after"
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func TestBuildTLSConfigMutual(t *testing.T) {
	certPEM, keyPEM := selfSigned(t, "server")
	caPEM, _ := selfSigned(t, "client-ca")

	s := &Server{
		Logger: newTestLogger(),
		TLSConfig: config.TLSConfig{
			Mode:             "mutual",
			CertContent:      string(certPEM),
			KeyContent:       string(keyPEM),
			CAContent:        string(caPEM),
			MinVersion:       "1.3",
			ClientAuthPolicy: "verify",
		},
	}

	certs, err := newCertReloader(s.TLSConfig, nil, s.Logger)
	require.NoError(t, err)
	defer func() { _ = certs.Close() }()

	cfg := s.buildTLSConfig(certs)
	assert.Equal(t, uint16(tls.VersionTLS13), cfg.MinVersion)
	assert.Equal(t, tls.VerifyClientCertIfGiven, cfg.ClientAuth)
	require.NotNil(t, cfg.GetConfigForClient)

	perClient, err := cfg.GetConfigForClient(nil)
	require.NoError(t, err)
	assert.NotNil(t, perClient.ClientCAs)
	assert.Equal(t, tls.VerifyClientCertIfGiven, perClient.ClientAuth)
}

func TestConfigureTLS(t *testing.T) {
	certPEM, keyPEM := selfSigned(t, "server")

	tests := []struct {
		name    string
		cfg     config.TLSConfig
		wantTLS bool
		wantErr bool
	}{
		{"disabled", config.TLSConfig{Mode: "disabled"}, false, false},
		{"empty mode", config.TLSConfig{}, false, false},
		{"server", config.TLSConfig{Mode: "server", CertContent: string(certPEM), KeyContent: string(keyPEM)}, true, false},
		{"invalid mode", config.TLSConfig{Mode: "sometimes"}, false, true},
		{"missing cert", config.TLSConfig{Mode: "server"}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Server{Logger: newTestLogger(), TLSConfig: tt.cfg}
			httpServer := &http.Server{}

			useTLS, err := s.configureTLS(httpServer, nil)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTLS, useTLS)
			if tt.wantTLS {
				require.NotNil(t, httpServer.TLSConfig)
				assert.Equal(t, uint16(tls.VersionTLS12), httpServer.TLSConfig.MinVersion)
				s.cleanup()
			} else {
				assert.Nil(t, httpServer.TLSConfig)
			}
		})
	}
}
