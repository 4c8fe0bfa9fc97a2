// Package document reads resumes from uploaded files and writes rebuilt
// resumes as .docx.
package document

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/allencass/aistudio/pkg/apperr"
	"github.com/allencass/aistudio/pkg/resume"
)

// Format is a supported input format.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
)

// Detect picks the format from the file name, falling back to the
// leading magic bytes when the name has no known extension.
func Detect(name string, head []byte) (Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".docx":
		return FormatDOCX, true
	case ".pdf":
		return FormatPDF, true
	}
	switch {
	case bytes.HasPrefix(head, []byte("PK\x03\x04")):
		return FormatDOCX, true
	case bytes.HasPrefix(head, []byte("%PDF-")):
		return FormatPDF, true
	}
	return "", false
}

// Read parses an uploaded resume. Empty, unsupported and unreadable files
// are reported as missing input.
func Read(name string, data []byte) (*resume.Document, error) {
	const op = "document.read"

	if len(data) == 0 {
		return nil, apperr.MissingInput(op, "please upload your resume")
	}

	format, ok := Detect(name, data)
	if !ok {
		return nil, apperr.MissingInput(op, fmt.Sprintf("unsupported resume file %q: upload a .docx or .pdf", filepath.Base(name)))
	}

	r := bytes.NewReader(data)
	var (
		doc *resume.Document
		err error
	)
	switch format {
	case FormatPDF:
		doc, err = ReadPDF(r, int64(len(data)))
	default:
		doc, err = ReadDOCX(r, int64(len(data)))
	}
	if err != nil {
		return nil, &apperr.Error{
			Kind: apperr.KindMissingInput,
			Op:   op,
			Msg:  fmt.Sprintf("could not read %s", filepath.Base(name)),
			Err:  err,
		}
	}
	return doc, nil
}
