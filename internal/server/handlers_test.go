package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/mkoeppen/svgtrace/pkg/cache"
	"github.com/mkoeppen/svgtrace/pkg/convert"
	"github.com/mkoeppen/svgtrace/pkg/source"
	"github.com/mkoeppen/svgtrace/pkg/trace"
)

// tinyPNG is a valid 1x1 PNG used as upload payload.
const tinyPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

// fakeEngine writes a fixed SVG document instead of invoking the real binary.
type fakeEngine struct{}

func (fakeEngine) Trace(ctx context.Context, inputPath, outputPath string, s trace.Settings) error {
	return os.WriteFile(outputPath, []byte(`<svg width="1" height="1"><path d="M0 0"/></svg>`), 0644)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	acquirer, err := source.NewAcquirer(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	converter, err := convert.New(fakeEngine{}, acquirer, t.TempDir(),
		convert.WithCache(cache.NewNullCache()))
	if err != nil {
		t.Fatal(err)
	}

	s := &Server{
		cfg:       DefaultConfig(),
		converter: converter,
		resCache:  cache.NewNullCache(),
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
	}
	s.router = s.routes()
	return s
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(tinyPNG)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// multipartBody builds a multipart form with the given files under field and
// extra plain form fields.
func multipartBody(t *testing.T, field string, files map[string][]byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, data := range files {
		fw, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(data)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("body = %v, want status ok", body)
	}
}

func TestIndexServesHTML(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
}

func TestPresetsEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/presets", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var presets map[string]map[string]any
	decodeJSON(t, rec, &presets)
	if len(presets) != 6 {
		t.Errorf("got %d presets, want 6", len(presets))
	}
	if presets["default"]["colormode"] != "color" {
		t.Errorf("default preset = %v, want colormode color", presets["default"])
	}
	if presets["sketch"]["max_iterations"] != float64(15) {
		t.Errorf("sketch preset = %v, want max_iterations 15", presets["sketch"])
	}
}

func TestConvertBatchEndpoint(t *testing.T) {
	s := newTestServer(t)
	body, ct := multipartBody(t, "files", map[string][]byte{
		"dot.png":   pngBytes(t),
		"notes.txt": []byte("not an image"),
	}, map[string]string{"preset": "logo"})

	req := httptest.NewRequest(http.MethodPost, "/api/convert", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body)
	}

	var resp struct {
		Results []convert.Result `json:"results"`
	}
	decodeJSON(t, rec, &resp)
	if len(resp.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(resp.Results))
	}

	byName := map[string]convert.Result{}
	for _, r := range resp.Results {
		byName[r.OriginalName] = r
	}
	good := byName["dot.png"]
	if !good.Success || !strings.HasSuffix(good.SVGFilename, "_dot.svg") {
		t.Errorf("dot.png result = %+v, want success with retained filename", good)
	}
	bad := byName["notes.txt"]
	if bad.Success || bad.Error == "" {
		t.Errorf("notes.txt result = %+v, want failure with error message", bad)
	}
}

func TestConvertPartsUnreadablePart(t *testing.T) {
	s := newTestServer(t)

	// Parse a real request to obtain a readable file header.
	body, ct := multipartBody(t, "files", map[string][]byte{"dot.png": pngBytes(t)}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/convert", body)
	req.Header.Set("Content-Type", ct)
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatal(err)
	}
	readable := req.MultipartForm.File["files"][0]
	// A header with neither in-memory content nor a backing temp file
	// cannot be opened.
	unreadable := &multipart.FileHeader{Filename: "ghost.png"}

	results := s.convertParts(context.Background(),
		[]*multipart.FileHeader{unreadable, readable},
		trace.LookupPreset("default"), convert.Options{})

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Success || results[0].OriginalName != "ghost.png" || results[0].Error == "" {
		t.Errorf("result[0] = %+v, want failure entry for ghost.png", results[0])
	}
	if !results[1].Success || results[1].OriginalName != "dot.png" {
		t.Errorf("result[1] = %+v, want success for dot.png", results[1])
	}
}

func TestConvertEndpointNoFiles(t *testing.T) {
	s := newTestServer(t)
	body, ct := multipartBody(t, "files", nil, map[string]string{"preset": "default"})

	req := httptest.NewRequest(http.MethodPost, "/api/convert", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestConvertEndpointInvalidSetting(t *testing.T) {
	s := newTestServer(t)
	body, ct := multipartBody(t, "files", map[string][]byte{"dot.png": pngBytes(t)},
		map[string]string{"color_precision": "9"})

	req := httptest.NewRequest(http.MethodPost, "/api/convert", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "color_precision") {
		t.Errorf("body = %s, want error naming the field", rec.Body)
	}
}

func TestPreviewEndpoint(t *testing.T) {
	s := newTestServer(t)
	body, ct := multipartBody(t, "file", map[string][]byte{"dot.png": pngBytes(t)}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/preview", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body)
	}
	var resp struct {
		Success bool   `json:"success"`
		SVG     string `json:"svg"`
	}
	decodeJSON(t, rec, &resp)
	if !resp.Success || !strings.Contains(resp.SVG, "<svg") {
		t.Errorf("response = %+v, want inline svg markup", resp)
	}

	// Preview must not retain anything for download.
	entries, err := os.ReadDir(s.converter.OutputDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("preview retained files: %v", entries)
	}
}

func TestConvertURLEndpointDataURI(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/convert/url", map[string]any{
		"data_uri": "data:image/png;base64," + tinyPNG,
		"preset":   "minimal",
		"settings": map[string]any{"filter_speckle": 10},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body)
	}
	var result convert.Result
	decodeJSON(t, rec, &result)
	if !result.Success || result.OriginalName != "embedded.png" {
		t.Errorf("result = %+v, want success for embedded.png", result)
	}
	if result.SVGFilename == "" {
		t.Error("URL conversions must retain the output for download")
	}
}

func TestConvertURLEndpointErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
	}{
		{"empty body", map[string]any{}, http.StatusBadRequest},
		{
			"both url and data uri",
			map[string]any{"url": "http://example.com/a.png", "data_uri": "data:image/png;base64,AA=="},
			http.StatusBadRequest,
		},
		{
			"non-image data uri",
			map[string]any{"data_uri": "data:text/plain;base64,aGVsbG8="},
			http.StatusBadRequest,
		},
		{
			"invalid setting",
			map[string]any{"data_uri": "data:image/png;base64," + tinyPNG, "settings": map[string]any{"colormode": "sepia"}},
			http.StatusBadRequest,
		},
		{
			"relative url",
			map[string]any{"url": "not-a-url"},
			http.StatusBadRequest,
		},
	}

	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/convert/url", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body)
			}
			var body map[string]any
			decodeJSON(t, rec, &body)
			if body["success"] != false || body["error"] == "" {
				t.Errorf("body = %v, want success=false with an error message", body)
			}
		})
	}
}

func TestDownloadEndpoint(t *testing.T) {
	s := newTestServer(t)

	// Convert with retention, then fetch the advertised filename.
	body, ct := multipartBody(t, "files", map[string][]byte{"dot.png": pngBytes(t)}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/convert", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var resp struct {
		Results []convert.Result `json:"results"`
	}
	decodeJSON(t, rec, &resp)
	if len(resp.Results) != 1 || !resp.Results[0].Success {
		t.Fatalf("conversion failed: %s", rec.Body)
	}

	dl := doJSON(t, s, http.MethodGet, "/api/download/"+resp.Results[0].SVGFilename, nil)
	if dl.Code != http.StatusOK {
		t.Fatalf("download status = %d, want 200", dl.Code)
	}
	if got := dl.Header().Get("Content-Disposition"); !strings.Contains(got, resp.Results[0].SVGFilename) {
		t.Errorf("Content-Disposition = %q, want attachment with the filename", got)
	}
	if dl.Body.String() != resp.Results[0].SVGContent {
		t.Error("downloaded bytes differ from the conversion response")
	}
}

func TestDownloadEndpointRejections(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"missing file", "/api/download/nope.svg", http.StatusNotFound},
		{"non-svg name", "/api/download/evil.sh", http.StatusBadRequest},
		{"traversal attempt", "/api/download/..%2F..%2Fetc%2Fpasswd.svg", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodGet, tt.path, nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
