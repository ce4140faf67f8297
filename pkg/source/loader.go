package source

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Loader fetches document bytes from files, an fs.FS or HTTP. HTTP is
// disabled unless a client or the fallback is configured.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
}

type options struct {
	fileSystem        fs.FS
	httpClient        *http.Client
	allowHTTPFallback bool
	requestTimeout    time.Duration
}

// Option configures a Loader.
type Option func(*options)

// WithFileSystem injects the fs.FS used for fs sources.
func WithFileSystem(files fs.FS) Option {
	return func(opts *options) {
		opts.fileSystem = files
	}
}

// WithHTTPClient injects a custom HTTP client for URL sources.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *options) {
		opts.httpClient = client
	}
}

// WithHTTPFallback enables URL sources through a default client with an
// optional timeout.
func WithHTTPFallback(timeout time.Duration) Option {
	return func(opts *options) {
		opts.allowHTTPFallback = true
		opts.requestTimeout = timeout
	}
}

// NewLoader constructs a Loader.
func NewLoader(opts ...Option) *Loader {
	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	var httpClient *http.Client
	switch {
	case cfg.httpClient != nil:
		clone := *cfg.httpClient
		if cfg.requestTimeout > 0 && clone.Timeout == 0 {
			clone.Timeout = cfg.requestTimeout
		}
		httpClient = &clone
	case cfg.allowHTTPFallback:
		httpClient = &http.Client{Timeout: cfg.requestTimeout}
	}

	return &Loader{
		fs:        cfg.fileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   cfg.requestTimeout,
	}
}

// Load returns the bytes behind src.
func (l *Loader) Load(ctx context.Context, src Source) ([]byte, error) {
	if src == nil {
		return nil, errors.New("source loader: source is nil")
	}

	switch src.Kind() {
	case KindFile:
		return loadFile(ctx, src.Location())
	case KindFS:
		return loadFromFS(ctx, l.fs, src.Location())
	case KindURL:
		if !l.allowHTTP {
			return nil, errors.New("source loader: http support disabled")
		}
		return loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		return nil, errors.New("source loader: unsupported source kind")
	}
}

func loadFile(ctx context.Context, path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("source loader: file path is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(abs)
}

func loadFromFS(ctx context.Context, filesystem fs.FS, name string) ([]byte, error) {
	if filesystem == nil {
		return nil, errors.New("source loader: filesystem is not configured")
	}
	if name == "" {
		return nil, errors.New("source loader: fs path is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.ReadFile(filesystem, name)
}

func loadHTTP(ctx context.Context, client *http.Client, url string, timeout time.Duration) ([]byte, error) {
	reqCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New("source loader: unexpected status " + resp.Status)
	}
	return io.ReadAll(resp.Body)
}
