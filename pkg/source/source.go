// Package source acquires raw image bytes for conversion.
//
// An image can arrive through three channels: an uploaded file, a remote
// URL, or an embedded data URI. Each channel is a distinct Source variant
// carrying exactly the fields it needs; the Acquirer turns any of them into
// an Image backed by a uniquely named temporary file.
//
// Temporary files are the caller's responsibility to release: every
// successfully acquired Image must have Cleanup called on every exit path.
package source

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// DownloadTimeout bounds remote URL fetches.
const DownloadTimeout = 30 * time.Second

// MaxImageBytes caps the size of any acquired image (50MB, matching the
// server's upload limit).
const MaxImageBytes = 50 << 20

// userAgent identifies URL-mode fetches. Some image hosts reject requests
// without a browser-like agent string.
const userAgent = "Mozilla/5.0 (compatible; svgtrace/1.0; +https://github.com/mkoeppen/svgtrace)"

// AllowedExtensions is the raster formats accepted for conversion.
var AllowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"bmp":  true,
	"gif":  true,
	"webp": true,
	"tiff": true,
}

// Source is an image input channel. Implementations are the Upload,
// RemoteURL, and DataURI variants; dispatch happens by construction, not by
// runtime type inspection at the call site.
type Source interface {
	// Describe returns a short identifier for the source, used as the
	// original name in failure results when acquisition never produced a
	// filename.
	Describe() string

	acquire(ctx context.Context, a *Acquirer) (*Image, error)
}

// Acquirer materializes Sources as temporary files.
// It is safe for concurrent use; every acquisition gets a unique path.
type Acquirer struct {
	dir        string
	client     *http.Client
	logger     *log.Logger
	attempts   int
	retryDelay time.Duration
}

// Option configures an Acquirer.
type Option func(*Acquirer)

// WithHTTPClient replaces the download client (used by tests to shorten
// timeouts).
func WithHTTPClient(c *http.Client) Option {
	return func(a *Acquirer) { a.client = c }
}

// WithLogger sets the acquirer's logger.
func WithLogger(l *log.Logger) Option {
	return func(a *Acquirer) { a.logger = l }
}

// WithRetry overrides the download retry policy. Transient failures (5xx
// responses, timeouts) are attempted up to attempts times with exponential
// backoff starting at delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(a *Acquirer) {
		a.attempts = attempts
		a.retryDelay = delay
	}
}

// NewAcquirer creates an acquirer writing temporary files under dir.
// An empty dir selects a svgtrace subdirectory of the system temp dir.
func NewAcquirer(dir string, opts ...Option) (*Acquirer, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "svgtrace")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	a := &Acquirer{
		dir:        dir,
		client:     &http.Client{Timeout: DownloadTimeout},
		logger:     log.NewWithOptions(io.Discard, log.Options{}),
		attempts:   3,
		retryDelay: time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Acquire obtains the source's bytes and stores them in a uniquely named
// temporary file. The returned Image owns that file; callers must invoke
// Cleanup once the pipeline is done with it, on success and failure alike.
func (a *Acquirer) Acquire(ctx context.Context, src Source) (*Image, error) {
	return src.acquire(ctx, a)
}

// Dir returns the acquirer's temporary directory.
func (a *Acquirer) Dir() string {
	return a.dir
}
