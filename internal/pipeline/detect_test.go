package pipeline

import "testing"

func TestDetectMIME(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		filename string
		want     string
	}{
		{"pdf", []byte("%PDF-1.7\n..."), "doc.pdf", "application/pdf"},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}, "x.png", "image/png"},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}, "x.jpg", "image/jpeg"},
		{"gif87", []byte("GIF87a....."), "x.gif", "image/gif"},
		{"gif89", []byte("GIF89a....."), "x.gif", "image/gif"},
		{"webp", append([]byte("RIFF\x00\x00\x00\x00WEBP"), 0x56), "x.webp", "image/webp"},
		{"tiff le", []byte{0x49, 0x49, 0x2A, 0x00, 0x01}, "x.tif", "image/tiff"},
		{"tiff be", []byte{0x4D, 0x4D, 0x00, 0x2A, 0x01}, "x.tif", "image/tiff"},
		{"bmp", []byte("BM\x00\x00\x00\x00"), "x.bmp", "image/bmp"},
		{"docx", []byte{0x50, 0x4B, 0x03, 0x04, 0x14}, "report.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"pptx", []byte{0x50, 0x4B, 0x03, 0x04, 0x14}, "slides.pptx", "application/vnd.openxmlformats-officedocument.presentationml.presentation"},
		{"bare zip", []byte{0x50, 0x4B, 0x03, 0x04, 0x14}, "archive.zip", "application/zip"},
		{"text", []byte("hello world, plain text"), "x.txt", ""},
		{"too short", []byte("ab"), "x.bin", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectMIME(tt.data, tt.filename); got != tt.want {
				t.Errorf("DetectMIME = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMIMEClassification(t *testing.T) {
	if !IsImageMIME("image/png") || IsImageMIME("application/pdf") {
		t.Error("image classification wrong")
	}
	if !IsDocumentMIME("application/pdf") || IsDocumentMIME("image/png") {
		t.Error("document classification wrong")
	}
	if IsSupportedMIME("application/zip") {
		t.Error("bare zip must not be supported")
	}
	if IsSupportedMIME("") {
		t.Error("unknown content must not be supported")
	}
}

func TestHasSupportedExtension(t *testing.T) {
	for _, name := range []string{"a.pdf", "b.PNG", "c.jpeg", "d.docx", "e.tiff"} {
		if !HasSupportedExtension(name) {
			t.Errorf("%s should be supported", name)
		}
	}
	for _, name := range []string{"a.txt", "b.zip", "noext", "c.md"} {
		if HasSupportedExtension(name) {
			t.Errorf("%s should not be supported", name)
		}
	}
}
