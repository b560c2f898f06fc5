package importer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"go-patrol/types"
)

var importedAt = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseWorkbook(t *testing.T) {
	buf := workbook(t, [][]any{
		{"ID", "Description", "Location", "Incident Type", "Date", "Time", "Priority", "Notes"},
		{"INC-1", "Theft of motorcycle", "Balanga City", "Theft", "03/14/2024", "9:30 PM", "high", "ignored"},
		{"", "Shabu buy-bust", "Orion, Bataan", "", "2024-04-02", "", "", ""},
		{"INC-3", "", "Limay", "", "2024-04-03", "", "", ""},
		{},
	})

	res, err := ParseWorkbook(buf, importedAt)
	require.NoError(t, err)

	require.Len(t, res.Records, 2)
	first := res.Records[0]
	assert.Equal(t, "INC-1", first.ID)
	assert.Equal(t, "Theft of motorcycle", first.Description)
	assert.Equal(t, "Balanga City", first.Location)
	assert.Equal(t, "Theft", first.IncidentType)
	assert.Equal(t, "2024-03-14", first.Date)
	assert.Equal(t, "9:30 PM", first.Time)
	assert.Equal(t, types.High, first.Priority)
	assert.Equal(t, "2024-05-01T08:00:00Z", first.CreatedAt)
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)

	second := res.Records[1]
	_, err = uuid.Parse(second.ID)
	assert.NoError(t, err, "missing ids get a uuid")
	assert.Equal(t, "Orion, Bataan", second.Location)

	assert.Equal(t, []ImportError{{Row: 4, Reason: "missing description"}}, res.Errors)
}

func TestParseWorkbook_HeaderCaseAndOrder(t *testing.T) {
	buf := workbook(t, [][]any{
		{"  MUNICIPALITY ", "district", "DESCRIPTION", "status"},
		{"Mariveles", "2ND DISTRICT", "Drowning at the cove", "Active"},
	})

	res, err := ParseWorkbook(buf, importedAt)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Mariveles", res.Records[0].Municipality)
	assert.Equal(t, "2ND DISTRICT", res.Records[0].District)
	assert.Equal(t, "Active", res.Records[0].Status)
	assert.Empty(t, res.Errors)
}

func TestParseWorkbook_UnparseableDateKept(t *testing.T) {
	buf := workbook(t, [][]any{
		{"description", "date"},
		{"Theft", "sometime last week"},
	})

	res, err := ParseWorkbook(buf, importedAt)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "sometime last week", res.Records[0].Date)
}

func TestParseWorkbook_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   func(t *testing.T) *bytes.Buffer
		want string
	}{
		{
			name: "not a workbook",
			in:   func(*testing.T) *bytes.Buffer { return bytes.NewBufferString("plain text") },
			want: "failed to open workbook",
		},
		{
			name: "empty sheet",
			in:   func(t *testing.T) *bytes.Buffer { return workbook(t, nil) },
			want: "is empty",
		},
		{
			name: "unknown header",
			in: func(t *testing.T) *bytes.Buffer {
				return workbook(t, [][]any{{"foo", "bar"}, {"1", "2"}})
			},
			want: "no recognised header",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWorkbook(tt.in(t), importedAt)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), err.Error())
		})
	}
}

func TestImportError(t *testing.T) {
	assert.Equal(t, "row 7: missing description", ImportError{Row: 7, Reason: "missing description"}.Error())
}
