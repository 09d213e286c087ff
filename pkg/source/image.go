package source

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	// Decoders for the allowed raster formats, registered for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image is an acquired raster image backed by a temporary file.
// It is consumed exactly once by the tracing engine and must be released
// with Cleanup afterwards.
type Image struct {
	ID     string // short unique id shared by input and output paths
	Name   string // sanitized original filename
	Path   string // unique temporary file holding the bytes
	MIME   string // declared or sniffed media type
	Size   int64  // byte size
	SHA256 string // content hash, used for result cache keys
	Width  int    // intrinsic pixel width (0 if not sniffed)
	Height int    // intrinsic pixel height (0 if not sniffed)
}

// Cleanup removes the backing temporary file. It is idempotent and safe to
// defer immediately after acquisition.
func (img *Image) Cleanup() {
	if img == nil || img.Path == "" {
		return
	}
	_ = os.Remove(img.Path)
	img.Path = ""
}

// Stem returns the image's filename without its extension, used to derive
// output SVG names.
func (img *Image) Stem() string {
	return strings.TrimSuffix(img.Name, filepath.Ext(img.Name))
}

// store writes data to a uniquely named file in the acquirer's directory.
// The name is prefixed with a short random id so concurrent requests never
// collide on the same path; the id is returned so output files can share it.
func (a *Acquirer) store(name string, data []byte) (id, path string, err error) {
	id = uuid.NewString()[:8]
	path = filepath.Join(a.dir, fmt.Sprintf("%s_%s", id, name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", "", err
	}
	return id, path, nil
}

// mimeByFormat maps the format names reported by image.DecodeConfig to
// canonical media types.
var mimeByFormat = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"webp": "image/webp",
	"tiff": "image/tiff",
}

// sniffImage probes data with the registered image decoders and returns the
// format name and intrinsic dimensions. ok is false when no decoder accepts
// the bytes.
func sniffImage(data []byte) (format string, width, height int, ok bool) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", 0, 0, false
	}
	return format, cfg.Width, cfg.Height, true
}
