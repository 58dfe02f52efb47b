package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// buildPDF writes a minimal PDF with one Helvetica text line per page.
func buildPDF(pages ...string) []byte {
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // page tree, filled below
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}
	var kids bytes.Buffer
	for i, text := range pages {
		pageObj, contentObj := 4+2*i, 5+2*i
		fmt.Fprintf(&kids, "%d 0 R ", pageObj)
		stream := fmt.Sprintf("BT /F1 24 Tf 72 720 Td (%s) Tj ET", text)
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", contentObj),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}
	objs[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", bytes.TrimSpace(kids.Bytes()), len(pages))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, obj := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func encryptPDF(t *testing.T, data []byte, conf *model.Configuration) []byte {
	t.Helper()
	var out bytes.Buffer
	if err := api.Encrypt(bytes.NewReader(data), &out, conf); err != nil {
		t.Fatalf("encrypt fixture: %v", err)
	}
	return out.Bytes()
}

func TestExtractPDFPagesInOrder(t *testing.T) {
	path := writeFile(t, "two-pages.pdf", buildPDF("Hello", "World"))

	res, err := NewExtractor(nil).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.Text != "Hello\nWorld\n" {
		t.Errorf("Text = %q, want %q", res.Text, "Hello\nWorld\n")
	}
	if res.PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", res.PageCount)
	}
	if res.Format != FormatPDF {
		t.Errorf("Format = %q", res.Format)
	}
}

func TestExtractPDFEmptyUserPassword(t *testing.T) {
	for _, keyLength := range []int{128, 256} {
		t.Run(fmt.Sprintf("aes-%d", keyLength), func(t *testing.T) {
			data := encryptPDF(t, buildPDF("Hello", "World"), model.NewAESConfiguration("", "owner", keyLength))
			path := writeFile(t, "locked.pdf", data)

			res, err := NewExtractor(nil).Extract(context.Background(), path)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if res.Text != "Hello\nWorld\n" {
				t.Errorf("Text = %q", res.Text)
			}
		})
	}
}

func TestExtractPDFNeedsPassword(t *testing.T) {
	data := encryptPDF(t, buildPDF("Secret"), model.NewAESConfiguration("secret", "owner", 256))
	path := writeFile(t, "protected.pdf", data)

	_, err := NewExtractor(nil).Extract(context.Background(), path)
	if !errors.Is(err, ErrEncryptedPDF) {
		t.Fatalf("Extract() error = %v, want ErrEncryptedPDF", err)
	}
}

func TestJoinPagesMarksFailedPages(t *testing.T) {
	pages := map[int]string{1: "first", 3: "", 4: "fourth"}
	got := joinPages(slog.Default(), 4, func(num int) (string, error) {
		if num == 2 {
			return "", errors.New("bad content stream")
		}
		return pages[num], nil
	})

	want := "first\n\n[Could not extract text from page 1]\nfourth\n"
	if got != want {
		t.Errorf("joinPages() = %q, want %q", got, want)
	}
}
