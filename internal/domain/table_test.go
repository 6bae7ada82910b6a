package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func mustParse(t *testing.T, content string) Table {
	t.Helper()
	table, err := ParseTable(strings.NewReader(content), ReadOptions{})
	require.NoError(t, err)
	return table
}

func TestParseTable(t *testing.T) {
	t.Run("quoted fields", func(t *testing.T) {
		table := mustParse(t, "name,comment\r\n\"Smith, J\",\"said \"\"box\"\"\"\r\n")

		require.Len(t, table.Rows, 1)
		assert.Equal(t, []string{"name", "comment"}, table.Headers)
		assert.Equal(t, "Smith, J", table.Rows[0]["name"])
		assert.Equal(t, `said "box"`, table.Rows[0]["comment"])
	})

	t.Run("short rows are padded", func(t *testing.T) {
		table := mustParse(t, "lap,lap_time,flag\n1,95.1\n")

		require.Len(t, table.Rows, 1)
		assert.Equal(t, "", table.Rows[0]["flag"])
		assert.Equal(t, "95.1", table.Rows[0]["lap_time"])
	})

	t.Run("blank lines skipped", func(t *testing.T) {
		table := mustParse(t, "\n lap , lap_time \n\n1, 95.1\n\n2,94.0\n")

		assert.Equal(t, []string{"lap", "lap_time"}, table.Headers)
		assert.Len(t, table.Rows, 2)
		assert.Equal(t, "95.1", table.Rows[0]["lap_time"])
	})

	t.Run("row limit truncates silently", func(t *testing.T) {
		var b strings.Builder
		b.WriteString("lap\n")
		for i := 0; i < 20; i++ {
			b.WriteString("1\n")
		}
		table, err := ParseTable(strings.NewReader(b.String()), ReadOptions{Limit: 5})

		require.NoError(t, err)
		assert.Len(t, table.Rows, 5)
	})

	t.Run("semicolon sniffed from header", func(t *testing.T) {
		table := mustParse(t, "AIR_TEMP;RAIN\n21.4;0\n")

		assert.Equal(t, []string{"AIR_TEMP", "RAIN"}, table.Headers)
		assert.Equal(t, "21.4", table.Rows[0]["AIR_TEMP"])
	})

	t.Run("byte order mark stripped", func(t *testing.T) {
		table := mustParse(t, "\xef\xbb\xbflap,lap_time\n1,95\n")

		assert.Equal(t, "lap", table.Headers[0])
	})

	t.Run("header only", func(t *testing.T) {
		table := mustParse(t, "lap,lap_time\n")

		assert.Len(t, table.Headers, 2)
		assert.NotNil(t, table.Rows)
		assert.Empty(t, table.Rows)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ParseTable(strings.NewReader("  \n\n"), ReadOptions{})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptyFile)
		assert.Equal(t, ReasonStructure, ReasonOf(err))
	})
}

func TestParseWorkbook(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"lap", "lap_time"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{1, 95.1}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{2, 94.4}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	table, err := ParseWorkbook(buf, ReadOptions{})

	require.NoError(t, err)
	assert.Equal(t, []string{"lap", "lap_time"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "2", table.Rows[1]["lap"])
	assert.Equal(t, "94.4", table.Rows[1]["lap_time"])
}

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, ';', DetectDelimiter("AIR_TEMP;RAIN"))
	assert.Equal(t, ',', DetectDelimiter("AIR_TEMP,RAIN"))
	assert.Equal(t, ',', DetectDelimiter(""))
}

func TestResolve(t *testing.T) {
	headers := []string{"Lap", "laptime", "lap_time"}

	tests := []struct {
		name       string
		candidates Candidates
		want       string
		found      bool
	}{
		{"first candidate present wins", LapTimeColumns, "lap_time", true},
		{"case sensitive", Candidates{"LAP", "lap"}, "", false},
		{"later candidate", LapColumns, "Lap", true},
		{"none present", TimestampColumns, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(headers, tt.candidates)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
