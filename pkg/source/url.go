package source

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/mkoeppen/svgtrace/pkg/cache"
	"github.com/mkoeppen/svgtrace/pkg/errors"
	"github.com/mkoeppen/svgtrace/pkg/httputil"
)

// RemoteURL is an image fetched from an absolute http(s) URL.
type RemoteURL struct {
	URL string
}

// Describe returns the raw URL.
func (r RemoteURL) Describe() string {
	return r.URL
}

func (r RemoteURL) acquire(ctx context.Context, a *Acquirer) (*Image, error) {
	u, err := url.Parse(strings.TrimSpace(r.URL))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidURL, err, "parsing %q", r.URL)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.New(errors.ErrCodeInvalidURL, "URL must be absolute http(s), got %q", r.URL)
	}

	var (
		data        []byte
		contentType string
	)
	fetch := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidURL, err, "building request for %s", u)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := a.client.Do(req)
		if err != nil {
			if isTimeout(err) {
				return &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeTimeout, err, "download from %s timed out", u.Host)}
			}
			return &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeDownload, err, "fetching %s", u)}
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return &httputil.RetryableError{Err: errors.New(errors.ErrCodeDownload, "server returned status %d for %s", resp.StatusCode, u)}
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return errors.New(errors.ErrCodeDownload, "server returned status %d for %s", resp.StatusCode, u)
		}
		contentType = resp.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			return errors.New(errors.ErrCodeNotAnImage, "URL returned %q, expected an image type", contentType)
		}

		data, err = io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes+1))
		if err != nil {
			if isTimeout(err) {
				return &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeTimeout, err, "download from %s timed out", u.Host)}
			}
			return errors.Wrap(errors.ErrCodeDownload, err, "reading response from %s", u.Host)
		}
		if len(data) > MaxImageBytes {
			return errors.New(errors.ErrCodeDownload, "image from %s exceeds the %dMB limit", u.Host, MaxImageBytes>>20)
		}
		return nil
	}

	if err := httputil.Retry(ctx, a.attempts, a.retryDelay, fetch); err != nil {
		var re *httputil.RetryableError
		if stderrors.As(err, &re) {
			err = re.Err
		}
		// A context error surfaced by the backoff wait carries no code yet.
		if errors.GetCode(err) == "" && stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "download from %s timed out", u.Host)
		}
		return nil, err
	}

	format, w, h, ok := sniffImage(data)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotAnImage, "response from %s is not a decodable image", u.Host)
	}

	name := filenameFromURL(u, format)
	id, p, err := a.store(name, data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "storing download %s", name)
	}

	a.logger.Debug("acquired url", "host", u.Host, "name", name, "bytes", len(data))
	return &Image{
		ID:     id,
		Name:   name,
		Path:   p,
		MIME:   contentType,
		Size:   int64(len(data)),
		SHA256: cache.Hash(data),
		Width:  w,
		Height: h,
	}, nil
}

// filenameFromURL derives a safe filename from the URL path, defaulting to a
// generic jpg name when the path carries none. A name whose extension is not
// in the allowed raster set gets the sniffed format appended instead.
func filenameFromURL(u *url.URL, sniffedFormat string) string {
	name := SanitizeFilename(path.Base(u.Path))
	if name == "file" || name == "/" || name == "." {
		name = "download.jpg"
	}
	if !AllowedExtensions[extensionOf(name)] {
		ext := sniffedFormat
		if ext == "" {
			ext = "jpg"
		}
		name += "." + ext
	}
	return name
}

// isTimeout reports whether err stems from a deadline or network timeout.
func isTimeout(err error) bool {
	var ne net.Error
	if stderrors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return stderrors.Is(err, context.DeadlineExceeded)
}
