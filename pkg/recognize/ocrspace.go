package recognize

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"

	"be04/pkg/scale"
)

// defaultResizeWidth bounds the uploaded image width; the remote API charges
// by payload and recognizes scale displays fine at 1000px.
const defaultResizeWidth = 1000

// OCRSpaceClient recognizes text through the OCR.space HTTP API. The image
// is resized, JPEG-encoded and sent base64 inside a multipart form; the
// response carries ParsedResults and an optional ErrorMessage.
type OCRSpaceClient struct {
	Endpoint    string
	APIKey      string
	ResizeWidth int
	HTTPClient  *http.Client
}

// NewOCRSpaceClient reads OCR_SPACE_ENDPOINT, OCR_SPACE_APIKEY and
// OCR_RESIZE_WIDTH from the environment, with the public free-tier defaults.
func NewOCRSpaceClient() *OCRSpaceClient {
	return &OCRSpaceClient{
		Endpoint:    envStr("OCR_SPACE_ENDPOINT", "https://api.ocr.space/parse/image"),
		APIKey:      envStr("OCR_SPACE_APIKEY", "helloworld"),
		ResizeWidth: envInt("OCR_RESIZE_WIDTH", defaultResizeWidth),
		HTTPClient:  http.DefaultClient,
	}
}

func (c *OCRSpaceClient) Name() string { return scale.SourceRemote }

type ocrSpaceResponse struct {
	ParsedResults []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
	ErrorMessage string `json:"ErrorMessage"`
}

// Recognize uploads the image and returns the recognized text. Cancellation
// of ctx (the orchestrator's deadline) aborts the in-flight request.
func (c *OCRSpaceClient) Recognize(ctx context.Context, imagePath string) (string, error) {
	b64, err := c.encodeImage(imagePath)
	if err != nil {
		return "", fmt.Errorf("prepare image: %w", err)
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fields := map[string]string{
		"base64Image":       "data:image/jpeg;base64," + b64,
		"language":          "eng",
		"isOverlayRequired": "false",
		"detectOrientation": "true",
		"scale":             "true",
		"OCREngine":         "2",
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return "", fmt.Errorf("build form: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("apikey", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("ocr service status %d", resp.StatusCode)
	}

	var parsed ocrSpaceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode ocr response: %w", err)
	}
	if parsed.ErrorMessage != "" {
		return "", fmt.Errorf("ocr service error: %s", parsed.ErrorMessage)
	}
	if len(parsed.ParsedResults) > 0 {
		if text := strings.TrimSpace(parsed.ParsedResults[0].ParsedText); text != "" {
			return text, nil
		}
	}
	return "", ErrNoText
}

// encodeImage loads, bounds and JPEG-encodes the image as base64.
func (c *OCRSpaceClient) encodeImage(imagePath string) (string, error) {
	img, err := imaging.Open(imagePath)
	if err != nil {
		return "", err
	}
	width := c.ResizeWidth
	if width <= 0 {
		width = defaultResizeWidth
	}
	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}
	buf := &bytes.Buffer{}
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
