package clients

/**
 * Wire types for the Mistral OCR API
 *
 * POST /v1/ocr           process a document
 * POST /v1/files         upload a document (purpose=ocr)
 * GET  /v1/files/:id/url fetch a signed download URL for an upload
 */

// Document reference types accepted by the OCR endpoint
const (
	DocumentTypeURL      = "document_url"
	DocumentTypeImageURL = "image_url"
)

// DocumentInput identifies the document to process. Exactly one of
// DocumentURL or ImageURL is set, matching Type. Both accept data URIs.
type DocumentInput struct {
	Type        string `json:"type"`
	DocumentURL string `json:"document_url,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// OCRRequest represents a request to the OCR endpoint
type OCRRequest struct {
	Model              string        `json:"model"`
	Document           DocumentInput `json:"document"`
	Pages              []int         `json:"pages,omitempty"`
	IncludeImageBase64 bool          `json:"include_image_base64,omitempty"`
}

// OCRImage is one image extracted from a page. ID doubles as the link
// target of the page markdown's placeholder reference.
type OCRImage struct {
	ID           string `json:"id"`
	TopLeftX     int    `json:"top_left_x"`
	TopLeftY     int    `json:"top_left_y"`
	BottomRightX int    `json:"bottom_right_x"`
	BottomRightY int    `json:"bottom_right_y"`
	ImageBase64  string `json:"image_base64,omitempty"`
}

// PageDimensions describes the rendered page size
type PageDimensions struct {
	DPI    int `json:"dpi"`
	Height int `json:"height"`
	Width  int `json:"width"`
}

// OCRPage is a single page of the OCR result
type OCRPage struct {
	Index      int             `json:"index"`
	Markdown   string          `json:"markdown"`
	Images     []OCRImage      `json:"images"`
	Dimensions *PageDimensions `json:"dimensions,omitempty"`
}

// OCRUsageInfo reports what the API billed for
type OCRUsageInfo struct {
	PagesProcessed int   `json:"pages_processed"`
	DocSizeBytes   int64 `json:"doc_size_bytes,omitempty"`
}

// OCRResponse represents the response from the OCR endpoint
type OCRResponse struct {
	Pages     []OCRPage    `json:"pages"`
	Model     string       `json:"model"`
	UsageInfo OCRUsageInfo `json:"usage_info"`
}

// UploadResponse represents the response from uploading a file
type UploadResponse struct {
	ID        string `json:"id"`
	Object    string `json:"object"`
	SizeBytes int64  `json:"size_bytes"`
	Filename  string `json:"filename"`
	Purpose   string `json:"purpose"`
	CreatedAt int64  `json:"created_at"`
}

// SignedURLResponse represents a signed download URL for an uploaded file
type SignedURLResponse struct {
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
}
