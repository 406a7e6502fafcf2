package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"resumeadvisor/internal/config"
	"resumeadvisor/internal/errors"
	"resumeadvisor/internal/observability"

	"github.com/fsnotify/fsnotify"
)

// certReloader serves the current key pair and client CA pool, swapping them
// when the files on disk change.
type certReloader struct {
	mu         sync.RWMutex
	cfg        config.TLSConfig
	cert       *tls.Certificate
	caPool     *x509.CertPool
	notAfter   time.Time
	lastReload time.Time
	lastErr    error
	reloads    int

	watcher  *fsnotify.Watcher
	debounce time.Duration
	timer    *time.Timer
	done     chan struct{}
	closed   sync.Once

	metrics *observability.Metrics
	logger  *errors.Logger
}

func newCertReloader(cfg config.TLSConfig, metrics *observability.Metrics, logger *errors.Logger) (*certReloader, error) {
	debounce := cfg.AutoReload.DebounceDelay
	if debounce <= 0 {
		debounce = time.Second
	}

	c := &certReloader{
		cfg:      cfg,
		debounce: debounce,
		done:     make(chan struct{}),
		metrics:  metrics,
		logger:   logger,
	}
	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *certReloader) load() error {
	cert, err := c.loadKeyPair()
	if err != nil {
		return err
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return fmt.Errorf("failed to parse server certificate: %w", err)
	}

	var pool *x509.CertPool
	if c.cfg.Mode == "mutual" {
		if pool, err = c.loadCAPool(); err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cert = &cert
	c.caPool = pool
	c.notAfter = leaf.NotAfter
	c.lastReload = time.Now()
	return nil
}

func (c *certReloader) loadKeyPair() (tls.Certificate, error) {
	if c.cfg.CertContent != "" && c.cfg.KeyContent != "" {
		cert, err := tls.X509KeyPair([]byte(c.cfg.CertContent), []byte(c.cfg.KeyContent))
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to load server cert/key from content: %w", err)
		}
		return cert, nil
	}

	if c.cfg.CertFile != "" && c.cfg.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(c.cfg.CertFile, c.cfg.KeyFile)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to load server cert/key from files: %w", err)
		}
		return cert, nil
	}

	return tls.Certificate{}, fmt.Errorf("TLS certificate and key are required (provide either files or content)")
}

func (c *certReloader) loadCAPool() (*x509.CertPool, error) {
	var pemData []byte
	switch {
	case c.cfg.CAContent != "":
		pemData = []byte(c.cfg.CAContent)
	case c.cfg.CAFile != "":
		data, err := os.ReadFile(c.cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
		pemData = data
	default:
		return nil, fmt.Errorf("CA certificate is required for mutual TLS mode (provide either caFile or caContent)")
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pemData) {
		return nil, fmt.Errorf("failed to append CA cert")
	}
	return pool, nil
}

// GetCertificate implements tls.Config.GetCertificate.
func (c *certReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cert, nil
}

// configForClient returns base with the current client CA pool applied.
func (c *certReloader) configForClient(base *tls.Config) func(*tls.ClientHelloInfo) (*tls.Config, error) {
	return func(*tls.ClientHelloInfo) (*tls.Config, error) {
		c.mu.RLock()
		defer c.mu.RUnlock()
		cfg := base.Clone()
		cfg.ClientCAs = c.caPool
		return cfg, nil
	}
}

func (c *certReloader) reload() {
	err := c.load()

	c.mu.Lock()
	c.reloads++
	c.lastErr = err
	c.mu.Unlock()

	c.metrics.RecordCertReload(context.Background(), err == nil)
	if err != nil {
		c.logger.LogError(err, "Failed to reload TLS certificates")
		return
	}
	c.logger.Info("TLS certificates reloaded", "not_after", c.NotAfter())
}

// watchedFiles lists the files that back the current key pair.
func (c *certReloader) watchedFiles() []string {
	var files []string
	for _, f := range []string{c.cfg.CertFile, c.cfg.KeyFile, c.cfg.CAFile} {
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}

// Watch starts reloading on file changes. Content-based certificates have
// nothing to watch and Watch returns immediately.
func (c *certReloader) Watch() error {
	if !c.cfg.UsesFiles() {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Directories catch atomic replacements done by rename.
	dirs := make(map[string]struct{})
	for _, f := range c.watchedFiles() {
		dirs[filepath.Dir(f)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	c.watcher = watcher
	go c.watchLoop()

	c.logger.Info("Certificate file watcher started",
		"files", c.watchedFiles(),
		"debounce_delay", c.debounce)
	return nil
}

func (c *certReloader) watchLoop() {
	for {
		select {
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if c.isWatched(event) {
				c.scheduleReload()
			}
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.logger.LogError(err, "File watcher error")
		case <-c.done:
			return
		}
	}
}

func (c *certReloader) isWatched(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	for _, f := range c.watchedFiles() {
		if name == filepath.Clean(f) {
			return true
		}
	}
	return false
}

func (c *certReloader) scheduleReload() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, c.reload)
}

// NotAfter returns the expiry of the served certificate.
func (c *certReloader) NotAfter() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.notAfter
}

// Status summarizes the served certificate for /health.
func (c *certReloader) Status() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := map[string]any{
		"not_after":            c.notAfter,
		"time_to_expiry_hours": int(time.Until(c.notAfter).Hours()),
		"last_reload":          c.lastReload,
		"reload_count":         c.reloads,
		"watching":             c.watcher != nil,
	}
	if c.lastErr != nil {
		status["last_reload_error"] = c.lastErr.Error()
	}
	return status
}

// Close stops the watcher and any pending reload.
func (c *certReloader) Close() error {
	var err error
	c.closed.Do(func() {
		close(c.done)
		c.mu.Lock()
		if c.timer != nil {
			c.timer.Stop()
		}
		c.mu.Unlock()
		if c.watcher != nil {
			err = c.watcher.Close()
		}
	})
	return err
}
