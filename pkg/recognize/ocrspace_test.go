package recognize

import (
	"context"
	"errors"
	"image/color"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scale.png")
	img := imaging.New(20, 20, color.White)
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("save test image: %v", err)
	}
	return path
}

func TestOCRSpaceRecognize(t *testing.T) {
	var gotAPIKey string
	var gotBase64 string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("apikey")
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotBase64 = r.FormValue("base64Image")
		if r.FormValue("OCREngine") != "2" {
			t.Errorf("OCREngine = %q, want 2", r.FormValue("OCREngine"))
		}
		w.Write([]byte(`{"ParsedResults":[{"ParsedText":"Weight: 12.5 kg\r\n"}]}`))
	}))
	defer srv.Close()

	c := &OCRSpaceClient{Endpoint: srv.URL, APIKey: "testkey", ResizeWidth: 100, HTTPClient: srv.Client()}
	text, err := c.Recognize(context.Background(), writeTestImage(t))
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if text != "Weight: 12.5 kg" {
		t.Errorf("text = %q, want trimmed parsed text", text)
	}
	if gotAPIKey != "testkey" {
		t.Errorf("apikey header = %q, want testkey", gotAPIKey)
	}
	if !strings.HasPrefix(gotBase64, "data:image/jpeg;base64,") {
		t.Errorf("base64Image field missing data URI prefix: %.40q", gotBase64)
	}
}

func TestOCRSpaceServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ParsedResults":[],"ErrorMessage":"Unable to process the image"}`))
	}))
	defer srv.Close()

	c := &OCRSpaceClient{Endpoint: srv.URL, APIKey: "k", HTTPClient: srv.Client()}
	_, err := c.Recognize(context.Background(), writeTestImage(t))
	if err == nil || !strings.Contains(err.Error(), "Unable to process") {
		t.Fatalf("err = %v, want service error message", err)
	}
}

func TestOCRSpaceEmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ParsedResults":[{"ParsedText":"  "}]}`))
	}))
	defer srv.Close()

	c := &OCRSpaceClient{Endpoint: srv.URL, APIKey: "k", HTTPClient: srv.Client()}
	_, err := c.Recognize(context.Background(), writeTestImage(t))
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("err = %v, want ErrNoText", err)
	}
}

func TestOCRSpaceBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := &OCRSpaceClient{Endpoint: srv.URL, APIKey: "k", HTTPClient: srv.Client()}
	if _, err := c.Recognize(context.Background(), writeTestImage(t)); err == nil {
		t.Fatalf("expected an error for a non-2xx status")
	}
}

func TestOCRSpaceMissingImage(t *testing.T) {
	c := &OCRSpaceClient{Endpoint: "http://127.0.0.1:0", APIKey: "k", HTTPClient: http.DefaultClient}
	if _, err := c.Recognize(context.Background(), "testdata/nope.jpg"); err == nil {
		t.Fatalf("expected an error for an unreadable image")
	}
}
