package preview

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type memSource struct {
	name        string
	contentType string
	data        []byte
}

func (m *memSource) Name() string        { return m.name }
func (m *memSource) Size() int64         { return int64(len(m.data)) }
func (m *memSource) ContentType() string { return m.contentType }
func (m *memSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.data)), nil
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		want        Kind
	}{
		{"return.pdf", "application/pdf", KindPDF},
		{"return.pdf", "", KindPDF},
		{"scan", "application/pdf", KindPDF},
		{"receipt.png", "image/png", KindImage},
		{"receipt.jpeg", "", KindImage},
		{"photo", "image/webp", KindImage},
		{"ledger.xlsx", "", KindSpreadsheet},
		{"ledger.csv", "text/csv", KindSpreadsheet},
		{"old-ledger.xls", "", KindSpreadsheet},
		{"notes.txt", "text/plain", KindGeneric},
		{"archive.zip", "application/zip", KindGeneric},
		// PDF wins over a spreadsheet extension hint.
		{"export.pdf", "text/csv", KindPDF},
	}

	for _, tt := range tests {
		got := DetectKind(tt.name, tt.contentType)
		assert.Equal(t, tt.want, got, "DetectKind(%q, %q)", tt.name, tt.contentType)
	}
}

func TestDeriveCSVGrid(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 500; i++ {
		fmt.Fprintf(&b, "row%d,a,b\n", i)
	}
	src := &memSource{name: "big.csv", data: []byte(b.String())}

	h := NewService(nil).Derive(src)
	defer h.Close()

	p := h.Preview()
	require.NotNil(t, p)
	require.Equal(t, KindSpreadsheet, p.Kind)
	require.NotNil(t, p.Grid)

	assert.Len(t, p.Grid.Rows, MaxGridRows)
	assert.Equal(t, 500, p.Grid.TotalRows)
	assert.True(t, p.Grid.Truncated)
	assert.Equal(t, []string{"row0", "a", "b"}, p.Grid.Rows[0])
}

func TestDeriveCSVRaggedAndWide(t *testing.T) {
	data := "a,b\n" +
		"c1,c2,c3,c4,c5,c6,c7,c8,c9,c10,c11,c12\n" +
		"only\n"
	src := &memSource{name: "ragged.csv", data: []byte(data)}

	h := NewService(nil).Derive(src)
	defer h.Close()

	p := h.Preview()
	require.Equal(t, KindSpreadsheet, p.Kind)
	require.Len(t, p.Grid.Rows, 3)

	assert.Equal(t, 3, p.Grid.TotalRows)
	assert.Len(t, p.Grid.Rows[1], MaxGridCols)
	assert.True(t, p.Grid.Truncated)
	assert.Equal(t, []string{"only"}, p.Grid.Rows[2])
}

func TestDeriveWorkbookGrid(t *testing.T) {
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	for row := 1; row <= 120; row++ {
		cell, err := excelize.CoordinatesToCellName(1, row)
		require.NoError(t, err)
		require.NoError(t, wb.SetCellValue(sheet, cell, fmt.Sprintf("v%d", row)))
	}
	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))
	require.NoError(t, wb.Close())

	src := &memSource{name: "ledger.xlsx", data: buf.Bytes()}
	h := NewService(nil).Derive(src)
	defer h.Close()

	p := h.Preview()
	require.Equal(t, KindSpreadsheet, p.Kind)
	require.NotNil(t, p.Grid)

	assert.Equal(t, sheet, p.Grid.SheetName)
	assert.Len(t, p.Grid.Rows, MaxGridRows)
	assert.Equal(t, 120, p.Grid.TotalRows)
	assert.True(t, p.Grid.Truncated)
	assert.Equal(t, "v1", p.Grid.Rows[0][0])
}

func TestDeriveBrokenWorkbookFallsBackToGeneric(t *testing.T) {
	src := &memSource{name: "corrupt.xlsx", data: []byte("not a zip archive")}

	h := NewService(nil).Derive(src)
	defer h.Close()

	p := h.Preview()
	require.NotNil(t, p)
	assert.Equal(t, KindGeneric, p.Kind)
	assert.Nil(t, p.Grid)
	assert.True(t, p.Downloadable)
}

func TestDeriveGenericCard(t *testing.T) {
	src := &memSource{name: "notes.txt", contentType: "text/plain", data: []byte("hi")}

	h := NewService(nil).Derive(src)

	p := h.Preview()
	assert.Equal(t, KindGeneric, p.Kind)
	assert.Equal(t, "notes.txt", p.FileName)
	assert.Equal(t, int64(2), p.SizeBytes)
	assert.True(t, p.Downloadable)
}

func TestHandleCloseIdempotent(t *testing.T) {
	src := &memSource{name: "a.pdf", contentType: "application/pdf"}
	h := NewService(nil).Derive(src)

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	assert.True(t, h.Closed())
	assert.Nil(t, h.Preview())
}
