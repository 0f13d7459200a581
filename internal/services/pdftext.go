package services

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ExtractText extracts the concatenated plain text of a PDF byte stream.
// It never fails: a document that cannot be opened yields "", and a page
// whose extraction errors (or panics, which malformed content streams can
// trigger in the pdf library) is logged and skipped. Callers must treat an
// empty result as "extraction failed" and skip keyword matching.
func ExtractText(data []byte) string {
	// Validation gate: if pdfcpu cannot read the document even in relaxed
	// mode, treat the whole extraction as failed.
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	pageCount, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		slog.Error("Failed to open PDF document.", "error", err)
		return ""
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		slog.Error("Failed to read PDF document.", "error", err)
		return ""
	}
	if n := reader.NumPage(); n < pageCount {
		pageCount = n
	}

	var parts []string
	for i := 1; i <= pageCount; i++ {
		text, err := pageText(reader.Page(i))
		if err != nil {
			slog.Warn("Failed to extract text from page, skipping.", "page", i, "error", err)
			continue
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func pageText(p pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page extraction panicked: %v", r)
		}
	}()
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}
