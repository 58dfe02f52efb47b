package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const wordprocessingNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// extractDOCX returns the text of each top-level body paragraph followed by a
// newline. Paragraphs inside tables and text boxes are not body paragraphs.
func extractDOCX(data []byte) (*Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open docx archive: %w", ErrMalformedDocument, err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: docx archive has no word/document.xml", ErrMalformedDocument)
	}

	rc, err := doc.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open word/document.xml: %w", ErrMalformedDocument, err)
	}
	defer rc.Close()

	text, err := bodyParagraphs(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: parse word/document.xml: %w", ErrMalformedDocument, err)
	}
	return &Result{Text: text, Format: FormatDOCX}, nil
}

func bodyParagraphs(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		out    strings.Builder
		para   strings.Builder
		skip   int // depth inside w:tbl / w:txbxContent
		inPara int
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordprocessingNS {
				continue
			}
			switch t.Name.Local {
			case "tbl", "txbxContent":
				skip++
			case "p":
				if skip == 0 {
					inPara++
					if inPara == 1 {
						para.Reset()
					}
				}
			case "t":
				inText = skip == 0 && inPara > 0
			case "tab":
				if skip == 0 && inPara > 0 {
					para.WriteByte('\t')
				}
			case "br", "cr":
				if skip == 0 && inPara > 0 {
					para.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordprocessingNS {
				continue
			}
			switch t.Name.Local {
			case "tbl", "txbxContent":
				skip--
			case "p":
				if skip == 0 && inPara > 0 {
					inPara--
					if inPara == 0 {
						out.WriteString(para.String())
						out.WriteByte('\n')
					}
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}
	return out.String(), nil
}
