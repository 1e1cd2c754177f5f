/**
 * Mistral OCR API client
 *
 * Thin HTTP wrapper: one call per operation, no retries. Transport failures
 * and non-2xx statuses come back as errors carrying the response body so the
 * pipeline can report them verbatim.
 */

package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Client handles communication with the Mistral API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new Mistral API client
func NewClient(baseURL, apiKey string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With().Str("component", "mistral").Logger(),
	}
}

// Process runs OCR over the referenced document and returns the parsed result
func (c *Client) Process(ctx context.Context, req *OCRRequest) (*OCRResponse, error) {
	c.logger.Debug().
		Str("model", req.Model).
		Str("document_type", req.Document.Type).
		Bool("include_images", req.IncludeImageBase64).
		Msg("requesting OCR")

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal OCR request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/ocr", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.setAuthHeaders(httpReq)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("OCR request failed after %v: %w", time.Since(start), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("OCR endpoint returned HTTP %d: %s", resp.StatusCode, string(body))
	}

	var ocrResp OCRResponse
	if err := json.Unmarshal(body, &ocrResp); err != nil {
		return nil, fmt.Errorf("failed to parse OCR response: %w", err)
	}

	c.logger.Info().
		Str("model", ocrResp.Model).
		Int("pages", len(ocrResp.Pages)).
		Int("billed_pages", ocrResp.UsageInfo.PagesProcessed).
		Dur("duration", time.Since(start)).
		Msg("OCR complete")

	return &ocrResp, nil
}

// UploadFile uploads a document for OCR processing (purpose=ocr) and returns
// the stored file's metadata
func (c *Client) UploadFile(ctx context.Context, filename string, data []byte) (*UploadResponse, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("file data is required: received empty buffer")
	}
	if filename == "" {
		return nil, fmt.Errorf("filename is required: received empty string")
	}

	c.logger.Debug().
		Str("filename", filename).
		Int("bytes", len(data)).
		Msg("uploading file")

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("purpose", "ocr"); err != nil {
		return nil, fmt.Errorf("failed to write purpose field: %w", err)
	}

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file part: %w", err)
	}
	written, err := part.Write(data)
	if err != nil {
		return nil, fmt.Errorf("failed to write file data to form: %w", err)
	}
	if written != len(data) {
		return nil, fmt.Errorf("incomplete file write: expected %d bytes, wrote %d bytes", len(data), written)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/files", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	c.setAuthHeaders(httpReq)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("upload request failed after %v: %w", time.Since(start), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upload failed with HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var result UploadResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse upload response: %w", err)
	}

	if result.ID == "" {
		return nil, fmt.Errorf("upload succeeded but returned empty file ID")
	}

	c.logger.Info().
		Str("file_id", result.ID).
		Str("filename", result.Filename).
		Dur("duration", time.Since(start)).
		Msg("file uploaded")

	return &result, nil
}

// GetSignedURL fetches a temporary download URL for an uploaded file
func (c *Client) GetSignedURL(ctx context.Context, fileID string, expiryHours int) (*SignedURLResponse, error) {
	if fileID == "" {
		return nil, fmt.Errorf("file ID is required")
	}
	if expiryHours <= 0 {
		expiryHours = 24
	}

	endpoint := fmt.Sprintf("%s/v1/files/%s/url?expiry=%d", c.baseURL, fileID, expiryHours)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setAuthHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("signed URL request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("signed URL request returned HTTP %d: %s", resp.StatusCode, string(body))
	}

	var result SignedURLResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse signed URL response: %w", err)
	}

	if result.URL == "" {
		return nil, fmt.Errorf("signed URL response contained no URL")
	}

	return &result, nil
}

// UploadAndSign uploads a document and returns a signed URL the OCR endpoint
// can fetch it from
func (c *Client) UploadAndSign(ctx context.Context, filename string, data []byte, expiryHours int) (string, error) {
	upload, err := c.UploadFile(ctx, filename, data)
	if err != nil {
		return "", err
	}

	signed, err := c.GetSignedURL(ctx, upload.ID, expiryHours)
	if err != nil {
		return "", err
	}

	return signed.URL, nil
}

func (c *Client) setAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Request-Id", uuid.NewString())
}
