package ingestion

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func readAll(t *testing.T, r *Reader) []RawRow {
	t.Helper()
	var rows []RawRow
	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			return rows
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}
}

func TestReaderStreamsCSVRows(t *testing.T) {
	data := "\xEF\xBB\xBFCustomer Name , Mobile Number,Status\n" +
		"Asha,9876543210,open\n" +
		"\n" +
		"  ,  ,  \n" +
		"Ravi,9123456780,contacted\n"

	reader, err := NewReader(strings.NewReader(data), FormatCSV)
	require.NoError(t, err)
	defer reader.Close()

	assert.Equal(t, []string{"Customer Name", "Mobile Number", "Status"}, reader.Header())

	rows := readAll(t, reader)
	require.Len(t, rows, 2)

	assert.Equal(t, 1, rows[0].Index)
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "Asha", rows[0].Get("Customer Name"))

	assert.Equal(t, 2, rows[1].Index)
	assert.Equal(t, 5, rows[1].Line)
	assert.Equal(t, "contacted", rows[1].Get("Status"))
}

func TestReaderAlignsRaggedRows(t *testing.T) {
	data := "a,b,c,a\n1\n1,2,3,4,5\n"

	reader, err := NewReader(strings.NewReader(data), FormatCSV)
	require.NoError(t, err)

	rows := readAll(t, reader)
	require.Len(t, rows, 2)

	assert.Equal(t, map[string]string{"a": "1", "b": "", "c": ""}, rows[0].Values)
	assert.Equal(t, map[string]string{"a": "1", "b": "2", "c": "3"}, rows[1].Values)
	assert.Equal(t, "", rows[0].Get("missing"))
}

func TestReaderHeaderOnlyFileHasNoRows(t *testing.T) {
	reader, err := NewReader(strings.NewReader("Customer Name,Mobile Number\n"), FormatCSV)
	require.NoError(t, err)

	_, err = reader.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderRejectsMissingHeader(t *testing.T) {
	for _, data := range []string{"", "\n\n", " , ,\n"} {
		_, err := NewReader(strings.NewReader(data), FormatCSV)
		assert.ErrorIs(t, err, ErrMissingHeader, "input %q", data)
	}
}

func TestReaderDoesNotPromoteDataRowAfterBlankHeader(t *testing.T) {
	for _, data := range []string{
		",,,\nCustomer Name,Mobile Number\nAsha,9876543210\n",
		" , \nAsha,9876543210\nRavi,9876543211\n",
	} {
		_, err := NewReader(strings.NewReader(data), FormatCSV)
		assert.ErrorIs(t, err, ErrMissingHeader, "input %q", data)
	}
}

func TestReaderRejectsBlankFirstXLSXRow(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Customer Name", "Mobile Number"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"Asha", "9876543210"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = NewReader(bytes.NewReader(buf.Bytes()), FormatXLSX)
	assert.ErrorIs(t, err, ErrMissingHeader)
}

func TestReaderReportsMalformedCSV(t *testing.T) {
	data := "name,mobile\nAsha,98765\nRa\"vi,91234\n"

	reader, err := NewReader(strings.NewReader(data), FormatCSV)
	require.NoError(t, err)

	_, err = reader.Next()
	require.NoError(t, err)

	_, err = reader.Next()
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestReaderWrapsIOFaults(t *testing.T) {
	failing := io.MultiReader(strings.NewReader("name,mobile\nAsha,"), iotestErrReader{})

	reader, err := NewReader(failing, FormatCSV)
	require.NoError(t, err)

	_, err = reader.Next()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedInput)
	assert.ErrorIs(t, err, errConnectionReset)
}

type iotestErrReader struct{}

func (iotestErrReader) Read([]byte) (int, error) { return 0, errConnectionReset }

func TestReaderStreamsXLSXRows(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Customer Name", "Mobile Number"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Asha", "9876543210"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]any{"Ravi"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	reader, err := NewReader(bytes.NewReader(buf.Bytes()), FormatXLSX)
	require.NoError(t, err)
	defer reader.Close()

	rows := readAll(t, reader)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "9876543210", rows[0].Get("Mobile Number"))
	assert.Equal(t, 2, rows[1].Index)
	assert.Equal(t, 4, rows[1].Line)
	assert.Equal(t, "", rows[1].Get("Mobile Number"))
}

func TestReaderRejectsCorruptXLSX(t *testing.T) {
	_, err := NewReader(strings.NewReader("not a zip"), FormatXLSX)
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestFormatFromFileName(t *testing.T) {
	format, err := FormatFromFileName("Leads.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)

	format, err = FormatFromFileName("leads.xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, format)

	_, err = FormatFromFileName("leads.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
