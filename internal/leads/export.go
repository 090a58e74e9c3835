package leads

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rpattn/leadcrm/internal/domain"
	"github.com/rpattn/leadcrm/internal/ingestion"
)

const exportDateLayout = "02-01-2006"

// ExportFormat selects the file type of a lead export.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ExportCSV:
		return ExportCSV, nil
	case ExportXLSX:
		return ExportXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

func (f ExportFormat) ContentType() string {
	if f == ExportXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// exportWriter receives rows in upload-template column order. Finish
// completes the file; Close releases resources and is safe after Finish.
type exportWriter interface {
	WriteRow(values []string) error
	Finish() error
	Close() error
}

func newExportWriter(format ExportFormat, w io.Writer) (exportWriter, error) {
	switch format {
	case ExportXLSX:
		return newXLSXExportWriter(w)
	default:
		return &csvExportWriter{writer: csv.NewWriter(w)}, nil
	}
}

// exportRow lays a lead out in the default upload template so an export
// can be uploaded again unchanged.
func exportRow(lead domain.Lead) []string {
	row := make([]string, len(ingestion.LeadTemplate.Columns))
	for i, col := range ingestion.LeadTemplate.Columns {
		switch col.Field {
		case ingestion.FieldCustomerName:
			row[i] = lead.CustomerName
		case ingestion.FieldMobileNumber:
			row[i] = lead.MobileNumber
		case ingestion.FieldEmail:
			row[i] = lead.Email
		case ingestion.FieldProduct:
			row[i] = lead.Product
		case ingestion.FieldCity:
			row[i] = lead.City
		case ingestion.FieldLocation:
			row[i] = lead.Location
		case ingestion.FieldLeadType:
			row[i] = lead.LeadType
		case ingestion.FieldAssignedTo:
			if lead.AssignedTo != nil {
				row[i] = *lead.AssignedTo
			}
		case ingestion.FieldStatus:
			row[i] = lead.Status.String()
		case ingestion.FieldDate:
			if lead.LeadDate != nil {
				row[i] = lead.LeadDate.Format(exportDateLayout)
			}
		}
	}
	return row
}

type csvExportWriter struct {
	writer *csv.Writer
}

func (c *csvExportWriter) WriteRow(values []string) error {
	return c.writer.Write(values)
}

func (c *csvExportWriter) Finish() error {
	c.writer.Flush()
	return c.writer.Error()
}

func (c *csvExportWriter) Close() error {
	return nil
}

type xlsxExportWriter struct {
	out    io.Writer
	file   *excelize.File
	stream *excelize.StreamWriter
	row    int
}

func newXLSXExportWriter(w io.Writer) (*xlsxExportWriter, error) {
	f := excelize.NewFile()
	stream, err := f.NewStreamWriter("Sheet1")
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create xlsx stream: %w", err)
	}
	return &xlsxExportWriter{out: w, file: f, stream: stream}, nil
}

func (x *xlsxExportWriter) WriteRow(values []string) error {
	x.row++
	cell, err := excelize.CoordinatesToCellName(1, x.row)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return x.stream.SetRow(cell, cells)
}

func (x *xlsxExportWriter) Finish() error {
	if err := x.stream.Flush(); err != nil {
		return fmt.Errorf("flush xlsx stream: %w", err)
	}
	if err := x.file.Write(x.out); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func (x *xlsxExportWriter) Close() error {
	if x.file == nil {
		return nil
	}
	err := x.file.Close()
	x.file = nil
	return err
}
