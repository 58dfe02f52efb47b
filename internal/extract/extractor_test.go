package extract

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type fakeImageReader struct {
	text     string
	err      error
	mimeType string
	calls    int
}

func (f *fakeImageReader) ReadImageText(_ context.Context, mimeType string, _ []byte) (string, error) {
	f.calls++
	f.mimeType = mimeType
	return f.text, f.err
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func writeDOCX(t *testing.T, documentXML string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create docx: %v", err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}

func TestExtractPlainText(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("\xef\xbb\xbfhello\nworld"))

	res, err := NewExtractor(nil).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.Text != "hello\nworld" {
		t.Errorf("Text = %q, want %q", res.Text, "hello\nworld")
	}
	if res.Format != FormatText {
		t.Errorf("Format = %q, want %q", res.Format, FormatText)
	}
}

func TestExtractPlainTextInvalidUTF8(t *testing.T) {
	path := writeFile(t, "bad.txt", []byte{0xff, 0xfe, 0xfd})

	_, err := NewExtractor(nil).Extract(context.Background(), path)
	if !errors.Is(err, ErrInvalidEncoding) {
		t.Fatalf("Extract() error = %v, want ErrInvalidEncoding", err)
	}
}

func TestExtractUnsupportedFormat(t *testing.T) {
	path := writeFile(t, "slides.pptx", []byte("irrelevant"))

	_, err := NewExtractor(nil).Extract(context.Background(), path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Extract() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestExtractMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.txt")

	_, err := NewExtractor(nil).Extract(context.Background(), path)
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("Extract() error = %v, want ErrFileNotFound", err)
	}
}

func TestExtractAsUsesNameForFormat(t *testing.T) {
	path := writeFile(t, "5f0c0c1e-upload", []byte("plain"))

	res, err := NewExtractor(nil).ExtractAs(context.Background(), path, "Report.TXT")
	if err != nil {
		t.Fatalf("ExtractAs() error = %v", err)
	}
	if res.Text != "plain" {
		t.Errorf("Text = %q, want %q", res.Text, "plain")
	}
}

func TestExtractDOCXParagraphs(t *testing.T) {
	const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First </w:t></w:r><w:r><w:t>paragraph</w:t></w:r></w:p>
    <w:p></w:p>
    <w:tbl><w:tr><w:tc><w:p><w:r><w:t>in a table</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
    <w:p><w:r><w:t>Second</w:t><w:tab/><w:t>tabbed</w:t></w:r></w:p>
  </w:body>
</w:document>`
	path := writeDOCX(t, documentXML)

	res, err := NewExtractor(nil).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := "First paragraph\n\nSecond\ttabbed\n"
	if res.Text != want {
		t.Errorf("Text = %q, want %q", res.Text, want)
	}
}

func TestExtractDOCXNotAnArchive(t *testing.T) {
	path := writeFile(t, "broken.docx", []byte("not a zip"))

	_, err := NewExtractor(nil).Extract(context.Background(), path)
	if !errors.Is(err, ErrMalformedDocument) {
		t.Fatalf("Extract() error = %v, want ErrMalformedDocument", err)
	}
}

func TestExtractImageUsesOCR(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		wantMIME string
	}{
		{name: "jpeg", file: "scan.jpeg", wantMIME: "image/jpeg"},
		{name: "jpg upper case", file: "SCAN.JPG", wantMIME: "image/jpeg"},
		{name: "png", file: "scan.png", wantMIME: "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ocr := &fakeImageReader{text: "text from image"}
			path := writeFile(t, tt.file, []byte{0x89, 0x50, 0x4e, 0x47})

			res, err := NewExtractor(ocr).Extract(context.Background(), path)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if res.Text != "text from image" {
				t.Errorf("Text = %q", res.Text)
			}
			if ocr.mimeType != tt.wantMIME {
				t.Errorf("mimeType = %q, want %q", ocr.mimeType, tt.wantMIME)
			}
		})
	}
}

func TestExtractImageOCRFailure(t *testing.T) {
	ocr := &fakeImageReader{err: errors.New("quota exceeded")}
	path := writeFile(t, "scan.png", []byte{0x89})

	_, err := NewExtractor(ocr).Extract(context.Background(), path)
	if err == nil || !errors.Is(err, ocr.err) {
		t.Fatalf("Extract() error = %v, want wrapped OCR error", err)
	}
}

func TestExtractImageWithoutReader(t *testing.T) {
	path := writeFile(t, "scan.png", []byte{0x89})

	_, err := NewExtractor(nil).Extract(context.Background(), path)
	if !errors.Is(err, ErrNoImageReader) {
		t.Fatalf("Extract() error = %v, want ErrNoImageReader", err)
	}
}

func TestExtractPDFMalformed(t *testing.T) {
	path := writeFile(t, "broken.pdf", []byte("this is not a pdf"))

	_, err := NewExtractor(nil).Extract(context.Background(), path)
	if !errors.Is(err, ErrMalformedDocument) {
		t.Fatalf("Extract() error = %v, want ErrMalformedDocument", err)
	}
	if errors.Is(err, ErrEncryptedPDF) {
		t.Errorf("malformed pdf reported as encrypted: %v", err)
	}
}

func TestSupported(t *testing.T) {
	for name, want := range map[string]bool{
		"a.txt":  true,
		"a.PDF":  true,
		"a.docx": true,
		"a.jpg":  true,
		"a.png":  true,
		"a.doc":  false,
		"noext":  false,
	} {
		if got := Supported(name); got != want {
			t.Errorf("Supported(%q) = %v, want %v", name, got, want)
		}
	}
}
