package source

import (
	"context"
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/mkoeppen/svgtrace/pkg/cache"
	"github.com/mkoeppen/svgtrace/pkg/errors"
)

// DataURI is an image embedded in a data: URI
// (data:<mediatype>[;base64],<payload>).
type DataURI struct {
	URI string
}

// Describe returns a short placeholder; data URIs carry no filename and are
// too long to echo back verbatim.
func (d DataURI) Describe() string {
	return "data URI"
}

// extByMIME maps image media types to output-friendly extensions.
var extByMIME = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/gif":  "gif",
	"image/bmp":  "bmp",
	"image/webp": "webp",
	"image/tiff": "tiff",
}

func (d DataURI) acquire(ctx context.Context, a *Acquirer) (*Image, error) {
	raw, ok := strings.CutPrefix(strings.TrimSpace(d.URI), "data:")
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidDataURI, "missing data: prefix")
	}
	meta, payload, ok := strings.Cut(raw, ",")
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidDataURI, "missing comma separator")
	}

	// The media type defaults to text/plain when absent (RFC 2397).
	mediaType := "text/plain"
	isBase64 := false
	for i, part := range strings.Split(meta, ";") {
		switch {
		case part == "base64":
			isBase64 = true
		case i == 0 && part != "":
			mediaType = strings.ToLower(part)
		}
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return nil, errors.New(errors.ErrCodeNotAnImage, "data URI carries %q, expected an image type", mediaType)
	}

	var data []byte
	var err error
	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDataURI, err, "decoding base64 payload")
		}
	} else {
		decoded, err := url.PathUnescape(payload)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDataURI, err, "decoding percent-encoded payload")
		}
		data = []byte(decoded)
	}
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidDataURI, "empty payload")
	}
	if len(data) > MaxImageBytes {
		return nil, errors.New(errors.ErrCodeInvalidDataURI, "payload exceeds the %dMB limit", MaxImageBytes>>20)
	}

	format, w, h, ok := sniffImage(data)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotAnImage, "data URI payload is not a decodable image")
	}

	ext := extByMIME[mediaType]
	if ext == "" {
		ext = format
	}
	name := "embedded." + ext

	id, p, err := a.store(name, data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "storing data URI payload")
	}

	a.logger.Debug("acquired data uri", "mime", mediaType, "bytes", len(data))
	return &Image{
		ID:     id,
		Name:   name,
		Path:   p,
		MIME:   mediaType,
		Size:   int64(len(data)),
		SHA256: cache.Hash(data),
		Width:  w,
		Height: h,
	}, nil
}
