package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
	"github.com/xuri/excelize/v2"

	"github.com/huc-edu/insight-engine/internal/core"
)

var _ core.TextExtractor = (*FileExtractor)(nil)

// DetectFileType derives the document type from the file name's extension,
// case-insensitive. Files without an extension come back as "unknown".
func DetectFileType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return "unknown"
	}
	return strings.TrimPrefix(ext, ".")
}

// FileExtractor extracts plain text from local files by type.
//
// The contract is deliberately forgiving: an unknown type produces preview
// placeholder text and a parser or I/O failure on a known type produces
// "[Error reading file: <message>]". Either way the caller gets text back
// and can decide what to do with it.
type FileExtractor struct{}

func NewFileExtractor() *FileExtractor {
	return &FileExtractor{}
}

func (e *FileExtractor) Extract(path string, fileType string) string {
	content, err := extract(path, fileType)
	if err != nil {
		return fmt.Sprintf("[Error reading file: %v]", err)
	}
	return content
}

func extract(path string, fileType string) (string, error) {
	switch fileType {
	case "pdf":
		return convertWith(path, docconv.ConvertPDF)
	case "doc", "docx":
		return convertWith(path, docconv.ConvertDocx)
	case "ppt", "pptx":
		return convertWith(path, docconv.ConvertPptx)
	case "xls", "xlsx":
		return extractWorkbook(path)
	case "csv":
		return extractCSV(path)
	case "txt", "md", "json":
		b, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return fmt.Sprintf("[Preview] File type %s text extraction not fully supported yet.", fileType), nil
	}
}

func convertWith(path string, convert func(r io.Reader) (string, map[string]string, error)) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	body, _, err := convert(f)
	if err != nil {
		return "", err
	}
	return body, nil
}

// extractWorkbook renders every sheet of an Excel workbook as tab-separated
// rows, one sheet after another.
func extractWorkbook(path string) (string, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return "", err
	}
	defer wb.Close()

	var sb strings.Builder
	for _, sheet := range wb.GetSheetList() {
		rows, err := wb.GetRows(sheet)
		if err != nil {
			return "", err
		}
		sb.WriteString(sheet)
		sb.WriteString("\n")
		for _, row := range rows {
			sb.WriteString(strings.Join(row, "\t"))
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

func extractCSV(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, rec := range records {
		sb.WriteString(strings.Join(rec, "\t"))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
