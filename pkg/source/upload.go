package source

import (
	"context"
	"strings"

	"github.com/mkoeppen/svgtrace/pkg/cache"
	"github.com/mkoeppen/svgtrace/pkg/errors"
)

// Upload is an image delivered directly by the caller, typically from a
// multipart form or a local file read by the CLI.
type Upload struct {
	Filename string
	Data     []byte
}

// Describe returns the uploaded filename.
func (u Upload) Describe() string {
	return u.Filename
}

func (u Upload) acquire(ctx context.Context, a *Acquirer) (*Image, error) {
	name := SanitizeFilename(u.Filename)
	ext := extensionOf(name)
	if !AllowedExtensions[ext] {
		return nil, errors.New(errors.ErrCodeUnsupportedFormat,
			"unsupported file extension %q (allowed: %s)", ext, allowedList())
	}
	if len(u.Data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "file %s is empty", name)
	}
	if len(u.Data) > MaxImageBytes {
		return nil, errors.New(errors.ErrCodeInvalidInput, "file %s exceeds the %dMB limit", name, MaxImageBytes>>20)
	}

	id, path, err := a.store(name, u.Data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "storing upload %s", name)
	}

	img := &Image{
		ID:     id,
		Name:   name,
		Path:   path,
		MIME:   mimeForExtension(ext),
		Size:   int64(len(u.Data)),
		SHA256: cache.Hash(u.Data),
	}
	if format, w, h, ok := sniffImage(u.Data); ok {
		img.Width, img.Height = w, h
		// The decoded format is more trustworthy than the filename.
		if m := mimeByFormat[format]; m != "" {
			img.MIME = m
		}
	}
	a.logger.Debug("acquired upload", "name", name, "bytes", img.Size)
	return img, nil
}

// mimeForExtension maps a file extension to its canonical media type, used
// as a fallback when the bytes cannot be decoded. Notably "jpg" must become
// image/jpeg, not image/jpg.
func mimeForExtension(ext string) string {
	if ext == "jpg" {
		ext = "jpeg"
	}
	return "image/" + ext
}

func allowedList() string {
	return strings.Join([]string{"png", "jpg", "jpeg", "bmp", "gif", "webp", "tiff"}, ", ")
}
