package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Salarlotfi1381/download-free-paid-wordpress-templates/models"
)

// DualWriter writes the same report as CSV and as JSON lines.
type DualWriter struct {
	csv  *CSVWriter
	json *JSONWriter
}

// NewDualWriter creates both report files.
func NewDualWriter(csvFilename, jsonFilename string) (*DualWriter, error) {
	cw, err := NewCSVWriter(csvFilename)
	if err != nil {
		return nil, err
	}
	jw, err := NewJSONWriter(jsonFilename)
	if err != nil {
		cw.Close()
		return nil, err
	}
	return &DualWriter{csv: cw, json: jw}, nil
}

// Write stops at the first failing format.
func (dw *DualWriter) Write(links []*models.ValidLink) error {
	if err := dw.csv.Write(links); err != nil {
		return err
	}
	return dw.json.Write(links)
}

// Close closes both files and joins their errors.
func (dw *DualWriter) Close() error {
	return errors.Join(dw.csv.Close(), dw.json.Close())
}

func (dw *DualWriter) Validate() error {
	return errors.Join(dw.csv.Validate(), dw.json.Validate())
}

// NewWriter returns the report writer for format: csv, json or dual. The
// dual JSON file sits next to filename with a .json extension.
func NewWriter(format, filename string) (OutputWriter, error) {
	switch format {
	case "csv":
		return NewCSVWriter(filename)
	case "json":
		return NewJSONWriter(filename)
	case "dual":
		return NewDualWriter(filename, strings.TrimSuffix(filename, ".csv")+".json")
	default:
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
}
