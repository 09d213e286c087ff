package server

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mkoeppen/svgtrace/pkg/convert"
	"github.com/mkoeppen/svgtrace/pkg/errors"
	"github.com/mkoeppen/svgtrace/pkg/source"
	"github.com/mkoeppen/svgtrace/pkg/trace"
)

// urlRequest is the JSON body for /api/convert/url.
// Exactly one of URL or DataURI must be set.
type urlRequest struct {
	URL      string         `json:"url"`
	DataURI  string         `json:"data_uri"`
	Preset   string         `json:"preset"`
	Settings map[string]any `json:"settings"`
	Optimize bool           `json:"optimize"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, trace.Presets())
}

// handleConvert converts one or more uploaded files in a single batch.
// The response always carries one result entry per submitted file; a bad
// file fails its own entry without aborting the batch.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadMB<<20)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadMB << 20); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "parsing multipart form"))
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "no files provided"))
		return
	}

	settings, err := settingsFromForm(r)
	if err != nil {
		writeError(w, err)
		return
	}

	results := s.convertParts(r.Context(), files, settings, convert.Options{
		Optimize:   formBool(r, "optimize"),
		KeepOutput: true,
	})
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// convertParts converts the uploaded parts in submission order. A part whose
// body cannot be read fails its own entry instead of aborting the batch, the
// same isolation the pipeline gives acquisition failures.
func (s *Server) convertParts(ctx context.Context, files []*multipart.FileHeader, settings trace.Settings, opts convert.Options) []convert.Result {
	results := make([]convert.Result, len(files))
	sources := make([]source.Source, 0, len(files))
	indices := make([]int, 0, len(files))
	for i, fh := range files {
		data, err := readMultipartFile(fh)
		if err != nil {
			results[i] = convert.Failure(fh.Filename,
				errors.Wrap(errors.ErrCodeInvalidInput, err, "reading upload %s", fh.Filename))
			continue
		}
		sources = append(sources, source.Upload{Filename: fh.Filename, Data: data})
		indices = append(indices, i)
	}
	for j, res := range s.converter.ConvertBatch(ctx, sources, settings, opts) {
		results[indices[j]] = res
	}
	return results
}

// handlePreview converts a single file without retaining any output on disk.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadMB<<20)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadMB << 20); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "parsing multipart form"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "no file provided"))
		return
	}
	defer file.Close()

	settings, err := settingsFromForm(r)
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "reading upload %s", header.Filename))
		return
	}

	result := s.converter.Convert(r.Context(),
		source.Upload{Filename: header.Filename, Data: data},
		settings,
		convert.Options{Optimize: formBool(r, "optimize")})
	if !result.Success {
		writeError(w, result.Err())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "svg": result.SVGContent})
}

// handleConvertURL converts an image referenced by URL or embedded as a data
// URI.
func (s *Server) handleConvertURL(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadMB<<20)).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decoding request body"))
		return
	}

	var src source.Source
	switch {
	case req.URL != "" && req.DataURI != "":
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "provide either url or data_uri, not both"))
		return
	case req.URL != "":
		src = source.RemoteURL{URL: req.URL}
	case req.DataURI != "":
		src = source.DataURI{URI: req.DataURI}
	default:
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "url or data_uri is required"))
		return
	}

	settings, err := trace.Resolve(req.Preset, trace.NormalizeOverrides(req.Settings))
	if err != nil {
		writeError(w, err)
		return
	}

	result := s.converter.Convert(r.Context(), src, settings, convert.Options{
		Optimize:   req.Optimize,
		KeepOutput: true,
	})
	if !result.Success {
		writeError(w, result.Err())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleDownload serves a retained output SVG as an attachment.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := source.SanitizeFilename(chi.URLParam(r, "filename"))
	if !strings.HasSuffix(name, ".svg") {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "only .svg downloads are served"))
		return
	}
	path := filepath.Join(s.converter.OutputDir(), name)
	if _, err := os.Stat(path); err != nil {
		writeError(w, errors.New(errors.ErrCodeNotFound, "file %s not found", name))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeFile(w, r, path)
}

// settingsFromForm resolves conversion settings from the preset and override
// form fields of a multipart request.
func settingsFromForm(r *http.Request) (trace.Settings, error) {
	overrides := make(map[string]string)
	for _, field := range trace.SettingFields {
		if v := r.FormValue(field); v != "" {
			overrides[field] = v
		}
	}
	return trace.Resolve(r.FormValue("preset"), overrides)
}

// formBool interprets common truthy form values.
func formBool(r *http.Request, field string) bool {
	switch strings.ToLower(r.FormValue(field)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a pipeline error onto an HTTP status and a JSON error
// body.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, httpStatus(errors.GetCode(err)), map[string]any{
		"success": false,
		"error":   errors.UserMessage(err),
	})
}

// httpStatus maps error codes to HTTP statuses: malformed input is the
// client's fault, timeouts are the upstream's, engine failures are ours.
func httpStatus(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidSetting,
		errors.ErrCodeUnsupportedFormat,
		errors.ErrCodeInvalidURL,
		errors.ErrCodeInvalidDataURI,
		errors.ErrCodeNotAnImage:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeDownload:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
