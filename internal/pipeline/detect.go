package pipeline

import (
	"bytes"
	"path/filepath"
	"strings"
)

// DetectMIME detects a file's MIME type from its magic bytes. Extensions
// lie often enough (downloads, exports, scans) that content sniffing is the
// authority; the extension only disambiguates zip containers.
func DetectMIME(data []byte, filename string) string {
	if len(data) < 4 {
		return ""
	}

	// PDF: %PDF-
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return "application/pdf"
	}

	// PNG: 0x89 'P' 'N' 'G' 0x0D 0x0A 0x1A 0x0A
	if len(data) >= 8 && bytes.HasPrefix(data, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}) {
		return "image/png"
	}

	// JPEG: 0xFF 0xD8 0xFF
	if bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}) {
		return "image/jpeg"
	}

	// GIF: 'G' 'I' 'F' '8' ('7' or '9') 'a'
	if bytes.HasPrefix(data, []byte("GIF87a")) || bytes.HasPrefix(data, []byte("GIF89a")) {
		return "image/gif"
	}

	// WebP: 'R' 'I' 'F' 'F' .... 'W' 'E' 'B' 'P'
	if len(data) > 12 && bytes.HasPrefix(data, []byte("RIFF")) && string(data[8:12]) == "WEBP" {
		return "image/webp"
	}

	// TIFF: little-endian 'II*\0' or big-endian 'MM\0*'
	if bytes.HasPrefix(data, []byte{0x49, 0x49, 0x2A, 0x00}) || bytes.HasPrefix(data, []byte{0x4D, 0x4D, 0x00, 0x2A}) {
		return "image/tiff"
	}

	// BMP: 'B' 'M'
	if bytes.HasPrefix(data, []byte("BM")) {
		return "image/bmp"
	}

	// ZIP: 'P' 'K' 0x03 0x04 — DOCX and PPTX are zip containers, the
	// extension tells them apart
	if bytes.HasPrefix(data, []byte{0x50, 0x4B, 0x03, 0x04}) {
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".docx":
			return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
		case ".pptx":
			return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
		}
		return "application/zip"
	}

	return ""
}

// imageMIMEs are sent inline as data-URI image_url documents
var imageMIMEs = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
	"image/tiff": true,
	"image/bmp":  true,
}

// IsDocumentMIME reports whether the type is uploaded first and referenced
// by signed URL
func IsDocumentMIME(mime string) bool {
	switch mime {
	case "application/pdf",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation":
		return true
	}
	return false
}

// IsImageMIME reports whether the type is sent inline as an image
func IsImageMIME(mime string) bool {
	return imageMIMEs[mime]
}

// IsSupportedMIME reports whether the OCR API accepts the type
func IsSupportedMIME(mime string) bool {
	return imageMIMEs[mime] || IsDocumentMIME(mime)
}

// supportedExtensions drive directory expansion; explicit file arguments
// bypass this filter and are judged by their magic bytes instead
var supportedExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
	".docx": true,
	".pptx": true,
}

// HasSupportedExtension reports whether a filename looks processable, used
// when expanding directories
func HasSupportedExtension(name string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(name))]
}
