package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	vision "google.golang.org/api/vision/v1"

	apperrors "github.com/adverant/nexus/prescription-ocr/internal/errors"
	"github.com/adverant/nexus/prescription-ocr/internal/logging"
)

var quietLogger = logging.NewLoggerWithWriter("test", io.Discard)

func newTestVisionClient(t *testing.T, endpoint, key string) *VisionClient {
	t.Helper()
	c, err := NewVisionClient(context.Background(), &VisionConfig{
		APIKey:   key,
		Endpoint: endpoint,
		Logger:   quietLogger,
	})
	if err != nil {
		t.Fatalf("failed to create vision client: %v", err)
	}
	return c
}

func TestDetectDocumentTextRequestShape(t *testing.T) {
	var got vision.BatchAnnotateImagesRequest
	var key, method, path string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = r.URL.Query().Get("key")
		method = r.Method
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"responses":[{}]}`)
	}))
	defer srv.Close()

	c := newTestVisionClient(t, srv.URL, "secret-key")
	if _, err := c.DetectDocumentText(context.Background(), "aGVsbG8="); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if method != http.MethodPost {
		t.Errorf("method = %s, want POST", method)
	}
	if path != "/v1/images:annotate" {
		t.Errorf("path = %s, want /v1/images:annotate", path)
	}
	if key != "secret-key" {
		t.Errorf("key query = %q, want the configured credential", key)
	}
	if len(got.Requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(got.Requests))
	}

	r := got.Requests[0]
	if r.Image == nil || r.Image.Content != "aGVsbG8=" {
		t.Errorf("image content not forwarded: %+v", r.Image)
	}
	if len(r.Features) != 1 || r.Features[0].Type != "DOCUMENT_TEXT_DETECTION" || r.Features[0].MaxResults != 1 {
		t.Errorf("features = %+v", r.Features)
	}
	if r.ImageContext == nil || len(r.ImageContext.LanguageHints) != 2 ||
		r.ImageContext.LanguageHints[0] != "ko" || r.ImageContext.LanguageHints[1] != "en" {
		t.Errorf("language hints = %+v", r.ImageContext)
	}
}

func TestDetectDocumentTextParsesAnnotation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"responses":[{"fullTextAnnotation":{
			"text":"아스피린 100mg\n",
			"pages":[{"blocks":[
				{"paragraphs":[{"words":[
					{"boundingBox":{"vertices":[{"x":1,"y":2},{"x":9,"y":2},{"x":9,"y":6},{"x":1,"y":6}]},"symbols":[{"text":"아","confidence":0.99}]},
					{"symbols":[{"text":"1","confidence":0.9}]}
				]}]},
				{"paragraphs":[]}
			]},{"blocks":[{"paragraphs":[]}]}]
		}}]}`)
	}))
	defer srv.Close()

	det, err := newTestVisionClient(t, srv.URL, "k").DetectDocumentText(context.Background(), "eA==")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if det.Text != "아스피린 100mg\n" {
		t.Errorf("text = %q", det.Text)
	}
	if len(det.Blocks) != 2 {
		t.Fatalf("expected only first-page blocks (2), got %d", len(det.Blocks))
	}
	words := det.Blocks[0].Paragraphs[0].Words
	if len(words) != 2 || words[0].BoundingBox.Vertices[1].X != 9 {
		t.Errorf("unexpected words: %+v", words)
	}
}

func TestDetectDocumentTextWithoutAnnotation(t *testing.T) {
	bodies := []string{`{"responses":[{}]}`, `{"responses":[]}`, `{}`}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, body)
			}))
			defer srv.Close()

			det, err := newTestVisionClient(t, srv.URL, "k").DetectDocumentText(context.Background(), "eA==")
			if err != nil {
				t.Fatalf("missing annotation must not be an error: %v", err)
			}
			if det.Text != "" || len(det.Blocks) != 0 {
				t.Errorf("expected empty detection, got %+v", det)
			}
		})
	}
}

func TestDetectDocumentTextErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`)
	}))
	defer srv.Close()

	_, err := newTestVisionClient(t, srv.URL, "bad").DetectDocumentText(context.Background(), "eA==")
	if apperrors.CodeOf(err) != apperrors.ErrorDetectionFailed {
		t.Fatalf("expected DETECTION_FAILED, got %v", err)
	}

	pe := err.(*apperrors.ProcessingError)
	if pe.Details["status_code"] != http.StatusForbidden {
		t.Errorf("status code not carried: %+v", pe.Details)
	}
}

func TestDetectDocumentTextImageError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"responses":[{"error":{"code":3,"message":"Bad image data."}}]}`)
	}))
	defer srv.Close()

	_, err := newTestVisionClient(t, srv.URL, "k").DetectDocumentText(context.Background(), "eA==")
	if apperrors.CodeOf(err) != apperrors.ErrorDetectionFailed {
		t.Fatalf("expected DETECTION_FAILED, got %v", err)
	}
}

func TestDetectDocumentTextNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	_, err := newTestVisionClient(t, endpoint, "k").DetectDocumentText(context.Background(), "eA==")
	if apperrors.CodeOf(err) != apperrors.ErrorDetectionFailed {
		t.Fatalf("expected DETECTION_FAILED, got %v", err)
	}
}

func TestDetectDocumentTextEmptyKeySendsNoCredential(t *testing.T) {
	var hasKey bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasKey = r.URL.Query()["key"]
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestVisionClient(t, srv.URL, "").DetectDocumentText(context.Background(), "eA==")
	if err == nil {
		t.Fatal("expected the provider rejection to surface as an error")
	}
	if hasKey {
		t.Error("no key parameter should be sent when the credential is empty")
	}
}
