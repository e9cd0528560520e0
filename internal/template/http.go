package template

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Aman-CERP/rmkgen/internal/errors"
	"github.com/Aman-CERP/rmkgen/internal/lock"
	"github.com/Aman-CERP/rmkgen/pkg/version"
)

// DefaultTimeout bounds a single download attempt.
const DefaultTimeout = 60 * time.Second

// ProgressFunc receives download progress. total is -1 when unknown.
type ProgressFunc func(downloaded, total int64)

// Option configures an HTTPSource.
type Option func(*options)

type options struct {
	cacheDir string
	retry    errors.RetryConfig
	timeout  time.Duration
	progress ProgressFunc
	client   *http.Client
}

func newOptions(opts []Option) options {
	o := options{
		retry:   errors.DefaultRetryConfig(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithCacheDir keeps downloaded archives in dir and reuses them.
func WithCacheDir(dir string) Option {
	return func(o *options) { o.cacheDir = dir }
}

// WithRetry sets the download retry policy.
func WithRetry(cfg errors.RetryConfig) Option {
	return func(o *options) { o.retry = cfg }
}

// WithTimeout bounds each download attempt.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithProgress reports download progress to fn.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) { o.progress = fn }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// HTTPSource downloads a template archive.
type HTTPSource struct {
	URL  string
	opts options
}

// NewHTTPSource creates an HTTPSource for url.
func NewHTTPSource(url string, opts ...Option) *HTTPSource {
	return &HTTPSource{URL: url, opts: newOptions(opts)}
}

func (s *HTTPSource) String() string { return s.URL }

// Fetch downloads the archive, or reuses the cached copy, and returns the
// variant folder.
func (s *HTTPSource) Fetch(ctx context.Context, variant string) (*Tree, error) {
	data, err := s.archive(ctx)
	if err != nil {
		return nil, err
	}
	return zipTree(data, variant, s.URL)
}

// CachePath returns where the archive is cached, or "" without a cache dir.
func (s *HTTPSource) CachePath() string {
	if s.opts.cacheDir == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s.URL))
	return filepath.Join(s.opts.cacheDir, hex.EncodeToString(sum[:8])+".zip")
}

func (s *HTTPSource) archive(ctx context.Context) ([]byte, error) {
	cachePath := s.CachePath()
	if cachePath == "" {
		return s.downloadWithRetry(ctx)
	}

	if data, err := os.ReadFile(cachePath); err == nil && len(data) > 0 {
		slog.Debug("template_cache_hit", slog.String("url", s.URL), slog.String("path", cachePath))
		return data, nil
	}

	// Serialize downloads into the same cache entry across processes.
	l := lock.New(cachePath + ".lock")
	if err := l.LockContext(ctx); err != nil {
		return nil, errors.IOError("cannot lock template cache", err).WithDetail("path", cachePath)
	}
	defer func() { _ = l.Unlock() }()

	// Another process may have finished the download while we waited.
	if data, err := os.ReadFile(cachePath); err == nil && len(data) > 0 {
		return data, nil
	}

	data, err := s.downloadWithRetry(ctx)
	if err != nil {
		return nil, err
	}
	if err := writeAtomic(cachePath, data); err != nil {
		slog.Warn("template_cache_write_failed", slog.String("path", cachePath), slog.String("error", err.Error()))
	}
	return data, nil
}

func (s *HTTPSource) downloadWithRetry(ctx context.Context) ([]byte, error) {
	cfg := s.opts.retry
	onRetry := cfg.OnRetry
	cfg.OnRetry = func(attempt int, err error) {
		slog.Warn("template_download_retry",
			slog.String("url", s.URL),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
		if onRetry != nil {
			onRetry(attempt, err)
		}
	}

	start := time.Now()
	data, err := errors.RetryWithResult(ctx, cfg, func() ([]byte, error) {
		return s.download(ctx)
	})
	if err != nil {
		return nil, err
	}
	slog.Info("template_downloaded",
		slog.String("url", s.URL),
		slog.Int("bytes", len(data)),
		slog.Duration("duration", time.Since(start)))
	return data, nil
}

func (s *HTTPSource) download(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		e := errors.New(errors.ErrCodeTemplateDownload, fmt.Sprintf("invalid template URL %s", s.URL), err).
			WithDetail("path", s.URL)
		e.Retryable = false
		return nil, e
	}
	req.Header.Set("User-Agent", version.UserAgent())

	client := s.opts.client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.NetworkError(fmt.Sprintf("failed to download %s", s.URL), err).
			WithDetail("path", s.URL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		e := errors.NetworkError(fmt.Sprintf("download of %s failed with status %s", s.URL, resp.Status), nil).
			WithDetail("path", s.URL)
		if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			// Client errors will not change on retry.
			e.Retryable = false
			e.WithSuggestion("check the template URL or branch name")
		}
		return nil, e
	}

	total := resp.ContentLength
	var buf bytes.Buffer
	if total > 0 {
		buf.Grow(int(total))
	}
	chunk := make([]byte, 32*1024)
	var downloaded int64
	for {
		n, rerr := resp.Body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			downloaded += int64(n)
			if s.opts.progress != nil {
				s.opts.progress(downloaded, total)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, errors.NetworkError(fmt.Sprintf("failed to read %s", s.URL), rerr).
				WithDetail("path", s.URL)
		}
	}
	return buf.Bytes(), nil
}

// writeAtomic writes data to path through a temporary file and rename.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	defer os.Remove(tmp)
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
