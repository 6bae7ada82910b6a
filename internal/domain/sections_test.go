package domain

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveSectionSet(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    []string
		found   bool
	}{
		{
			name:    "sector splits without intermediates",
			headers: []string{"lap", "S1.a", "S1.b", "S2.a", "S2.b", "S3.a", "S3.b", "IM1"},
			want:    SectorSplitNames,
			found:   true,
		},
		{
			name:    "intermediates when a sector split is missing",
			headers: []string{"S1.a", "S1.b", "S2.a", "S2.b", "S3.a", "IM1a", "IM1", "IM2a", "IM2", "IM3a", "FL"},
			want:    IntermediateNames,
			found:   true,
		},
		{
			name:    "neither set complete",
			headers: []string{"S1.a", "S1.b", "IM1a", "IM1"},
			found:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ActiveSectionSet(tt.headers)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractSections(t *testing.T) {
	t.Run("sums rows of the same lap", func(t *testing.T) {
		table := mustParse(t, "lap,S1.a,S1.b,S2.a,S2.b,S3.a,S3.b\n"+
			"1,10.1,5,6,7,8,9\n"+
			"1,10.2,,,,,\n"+
			"2,10,5,6,7,8,9\n")

		got, err := ExtractSections(table, SectionOptions{})

		require.NoError(t, err)
		assert.Equal(t, SectorSplitNames, got.Names)
		assert.Equal(t, []int{1, 2}, got.Laps)
		assert.Equal(t, []float64{20.3, 10}, got.Times["S1.a"])
		assert.Equal(t, []float64{9, 9}, got.Times["S3.b"])
	})

	t.Run("semicolon export with millisecond outliers", func(t *testing.T) {
		table := mustParse(t, "NUMBER;LAP_NUMBER;IM1a;IM1;IM2a;IM2;IM3a;FL\n"+
			"78;2;25400;30.1;20;21;22;23\n"+
			"78;1;25.5;30.2;20;21;22;23\n")

		got, err := ExtractSections(table, SectionOptions{})

		require.NoError(t, err)
		assert.Equal(t, IntermediateNames, got.Names)
		assert.Equal(t, []int{1, 2}, got.Laps)
		assert.Equal(t, []float64{25.5, 25.4}, got.Times["IM1a"])
		for _, name := range got.Names {
			assert.Len(t, got.Times[name], len(got.Laps))
		}
	})

	t.Run("vehicle filter", func(t *testing.T) {
		table := mustParse(t, "NUMBER;LAP_NUMBER;IM1a;IM1;IM2a;IM2;IM3a;FL\n"+
			"78;1;25;30;20;21;22;23\n"+
			"13;1;26;31;20;21;22;23\n")

		got, err := ExtractSections(table, SectionOptions{Vehicle: "13"})

		require.NoError(t, err)
		assert.Equal(t, []float64{26}, got.Times["IM1a"])
	})

	t.Run("no sections", func(t *testing.T) {
		_, err := ExtractSections(mustParse(t, "lap,S1.a\n1,2\n"), SectionOptions{})

		require.Error(t, err)
		assert.Equal(t, ReasonSchema, ReasonOf(err))
	})

	t.Run("header only", func(t *testing.T) {
		_, err := ExtractSections(mustParse(t, "IM1a,IM1,IM2a,IM2,IM3a,FL\n"), SectionOptions{})

		require.Error(t, err)
		assert.Equal(t, ReasonNoData, ReasonOf(err))
	})

	t.Run("overflowing sum stays finite", func(t *testing.T) {
		var b strings.Builder
		b.WriteString("LAP_NUMBER,S1.a,S1.b,S2.a,S2.b,S3.a,S3.b\n")
		for range 2000 {
			b.WriteString("1,1.7e308,1,1,1,1,1\n")
		}
		table := mustParse(t, b.String())

		var got SectionSeries
		var err error
		require.NotPanics(t, func() { got, err = ExtractSections(table, SectionOptions{}) })

		require.NoError(t, err)
		require.Len(t, got.Times["S1.a"], 1)
		assert.False(t, math.IsInf(got.Times["S1.a"][0], 0))
		assert.Positive(t, got.Times["S1.a"][0])
		assert.Equal(t, []float64{2000}, got.Times["S1.b"])
	})
}
