// Package extract turns uploaded document bytes into plain text.
//
// Parser failures are not errors: a corrupt or encrypted file yields "" and the
// caller decides on substitute content. Only an empty buffer is rejected.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"workspace-backend/internal/shared/metrics"
	"workspace-backend/internal/shared/telemetry"
)

// ErrEmptyFile is returned when the buffer has no bytes.
var ErrEmptyFile = errors.New("file is empty")

// Kind is the parser chosen for a payload.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
	KindText Kind = "text"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeDOC  = "application/msword"
)

// Extract returns the text of data. declaredType is the upload's MIME type and
// fileName its original name; either may be empty.
func Extract(data []byte, declaredType string, fileName string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}

	kind := Detect(declaredType, fileName, data)
	var (
		text string
		err  error
	)
	switch kind {
	case KindPDF:
		text, err = extractPDF(data)
	case KindDOCX:
		text, err = extractDOCX(data)
	default:
		return decodeUTF8(data), nil
	}
	if err != nil {
		metrics.IncExtractFailed()
		telemetry.Warn("extract.failed", map[string]any{
			"kind":      string(kind),
			"file_name": fileName,
			"size":      len(data),
			"error":     err,
		})
		return "", nil
	}
	return text, nil
}

// Detect picks the parser: PDF first, then DOCX/DOC, then plain text.
func Detect(declaredType string, fileName string, data []byte) Kind {
	mime := strings.ToLower(strings.TrimSpace(strings.Split(declaredType, ";")[0]))
	ext := strings.ToLower(filepath.Ext(fileName))

	if mime == mimePDF || ext == ".pdf" {
		return KindPDF
	}
	if mime == mimeDOCX || mime == mimeDOC || ext == ".docx" || ext == ".doc" {
		return KindDOCX
	}
	if mime == "application/zip" && zipHasDocument(data) {
		return KindDOCX
	}
	return KindText
}

func extractPDF(data []byte) (text string, err error) {
	// ledongthuc/pdf panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("pdf parser panic: %v", rec)
		}
	}()

	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()
	return stripDocxXML(doc.Editable().GetContent())
}

func stripDocxXML(raw string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("docx xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteByte('\t')
			}
		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "br") && buf.Len() > 0 {
				buf.WriteByte('\n')
			}
		}
	}
	return strings.TrimSpace(buf.String()), nil
}

func zipHasDocument(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return true
		}
	}
	return false
}

func decodeUTF8(data []byte) string {
	return strings.ToValidUTF8(string(data), "�")
}
