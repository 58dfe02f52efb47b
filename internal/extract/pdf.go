package extract

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// pdfcpu would otherwise create a config dir under the user's home.
	api.DisableConfigDir()
}

// extractPDF concatenates the text of every page in order. A page that cannot be
// read is replaced by a marker and extraction carries on.
func extractPDF(logCtx *slog.Logger, data []byte) (*Result, error) {
	reader, err := openPDF(data)
	if err != nil {
		decrypted, derr := decryptPDF(data)
		switch {
		case derr == nil:
			logCtx.Info("Decrypted PDF (no password needed).")
			if reader, err = openPDF(decrypted); err != nil {
				return nil, fmt.Errorf("%w: open decrypted pdf: %w", ErrMalformedDocument, err)
			}
		case errors.Is(err, pdf.ErrInvalidPassword) || isPasswordError(derr):
			return nil, ErrEncryptedPDF
		default:
			return nil, fmt.Errorf("%w: open pdf: %w", ErrMalformedDocument, err)
		}
	}

	numPages := reader.NumPage()
	logCtx.Info("Extracting text from PDF.", "pages", numPages)

	text := joinPages(logCtx, numPages, func(num int) (string, error) {
		return pageText(reader, num)
	})
	return &Result{Text: text, Format: FormatPDF, PageCount: numPages}, nil
}

// joinPages reads pages 1..numPages in order. Each non-empty page is followed
// by a newline; a failed page becomes a marker naming its zero-based index.
func joinPages(logCtx *slog.Logger, numPages int, read func(num int) (string, error)) string {
	var sb strings.Builder
	for i := 0; i < numPages; i++ {
		text, err := read(i + 1)
		if err != nil {
			logCtx.Warn("Could not extract text from page.", "page", i, "error", err)
			fmt.Fprintf(&sb, "\n[Could not extract text from page %d]\n", i)
			continue
		}
		if text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// openPDF also tries the empty user password on encrypted files.
func openPDF(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if p := recover(); p != nil {
			r, err = nil, fmt.Errorf("malformed pdf: %v", p)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

func pageText(r *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("malformed page: %v", p)
		}
	}()
	page := r.Page(num)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

// decryptPDF removes encryption that needs no user password, covering schemes
// (AES-256) the text reader cannot open itself.
func decryptPDF(data []byte) ([]byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.UserPW = ""
	conf.OwnerPW = ""

	var out bytes.Buffer
	if err := api.Decrypt(bytes.NewReader(data), &out, conf); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func isPasswordError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "password")
}
