package edge

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"sync"
	"time"

	"github.com/eastkentcx/ekcx/internal/adapters/watch"
	"github.com/eastkentcx/ekcx/pkg/logger"
	"github.com/eastkentcx/ekcx/pkg/metrics"
)

// expiryWarning is how close to expiry a certificate starts logging warnings.
const expiryWarning = 30 * 24 * time.Hour

// CertReloader serves a certificate/key pair from disk and reloads it when
// the files change, so renewals apply without a restart.
type CertReloader struct {
	certFile string
	keyFile  string
	logger   logger.Logger

	mu   sync.RWMutex
	cert *tls.Certificate
}

// NewCertReloader loads the initial pair. It fails when the pair is unusable.
func NewCertReloader(certFile, keyFile string, l logger.Logger) (*CertReloader, error) {
	r := &CertReloader{certFile: certFile, keyFile: keyFile, logger: l}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload reads the pair again. On failure the current certificate stays in use.
func (r *CertReloader) Reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err == nil && len(cert.Certificate) > 0 {
		cert.Leaf, err = x509.ParseCertificate(cert.Certificate[0])
	}
	if err == nil && time.Now().After(cert.Leaf.NotAfter) {
		err = fmt.Errorf("expired on %s", cert.Leaf.NotAfter.Format(time.RFC3339))
	}
	if err != nil {
		metrics.RecordCertReload(false)
		return fmt.Errorf("%w: %s: %w", ErrCertificate, r.certFile, err)
	}

	r.mu.Lock()
	r.cert = &cert
	r.mu.Unlock()
	metrics.RecordCertReload(true)
	r.logCertificate(cert.Leaf)
	return nil
}

// GetCertificate is a tls.Config.GetCertificate callback.
func (r *CertReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert, nil
}

// Watch reloads the pair on file changes until ctx is done.
func (r *CertReloader) Watch(ctx context.Context, debounce time.Duration) error {
	w, err := watch.New(watch.Config{Paths: []string{r.certFile, r.keyFile}, Debounce: debounce},
		watch.WithLogger(r.logger))
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	return w.Watch(ctx, func(ctx context.Context, path string) {
		if err := r.Reload(); err != nil {
			r.logger.Error(ctx, "failed to reload certificate", logger.String("path", path), logger.Error(err))
		}
	})
}

func (r *CertReloader) logCertificate(leaf *x509.Certificate) {
	left := time.Until(leaf.NotAfter)
	fields := []logger.Field{
		logger.String("subject", leaf.Subject.CommonName),
		logger.Any("dns_names", leaf.DNSNames),
		logger.String("expires_at", leaf.NotAfter.Format(time.RFC3339)),
		logger.Int("expires_in_days", int(left.Hours()/24)),
	}
	if left < expiryWarning {
		r.logger.Warn(context.Background(), "certificate expiring soon", fields...)
		return
	}
	r.logger.Info(context.Background(), "certificate loaded", fields...)
}
