package convert

import (
	"github.com/mkoeppen/svgtrace/pkg/errors"
	"github.com/mkoeppen/svgtrace/pkg/source"
)

// Result is the outcome of converting a single source image.
// A batch yields one Result per submitted item, in submission order.
//
// The JSON shape matches the API responses: success results carry the output
// name, markup, and sizes; failure results carry only the original name and
// the error message.
type Result struct {
	Success      bool   `json:"success"`
	OriginalName string `json:"original_name"`
	SVGFilename  string `json:"svg_filename,omitempty"`
	SVGContent   string `json:"svg_content,omitempty"`
	InputSize    int64  `json:"input_size,omitempty"`
	OutputSize   int64  `json:"output_size,omitempty"`
	Cached       bool   `json:"cached,omitempty"`
	Error        string `json:"error,omitempty"`

	err error
}

// Err returns the typed error behind a failure result, or nil on success.
// The structured code is preserved so the HTTP layer can map it to a status.
func (r Result) Err() error {
	return r.err
}

// Failure builds a failure Result for an input that never entered the
// pipeline, such as an upload part that could not be read. The filename is
// sanitized the same way acquisition does it.
func Failure(filename string, err error) Result {
	return failure(source.SanitizeFilename(filename), err)
}

// failure builds a failure Result for the named input.
func failure(name string, err error) Result {
	return Result{
		OriginalName: name,
		Error:        errors.UserMessage(err),
		err:          err,
	}
}
