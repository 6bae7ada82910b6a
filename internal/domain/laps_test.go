package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLapTimes(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		opts    LapOptions
		want    LapSeries
		wantErr Reason
	}{
		{
			name: "milliseconds column",
			csv:  "lap,lap_time_ms\n1,93200\n2,94100\n",
			want: LapSeries{{1, 93.2}, {2, 94.1}},
		},
		{
			name: "seconds column is not converted again",
			csv:  "lap,lap_time\n1,93.2\n",
			want: LapSeries{{1, 93.2}},
		},
		{
			name: "duplicate lap keeps smaller time",
			csv:  "lap,lap_time\n5,95.1\n5,93.8\n",
			want: LapSeries{{5, 93.8}},
		},
		{
			name: "sorted by lap number",
			csv:  "lap,lap_time\n3,95\n1,97\n2,96\n",
			want: LapSeries{{1, 97}, {2, 96}, {3, 95}},
		},
		{
			name: "non positive and unparsable values dropped",
			csv:  "lap,lap_time\n1,0\n2,-3\n3,n/a\n4,95.5\n",
			want: LapSeries{{4, 95.5}},
		},
		{
			name: "missing lap numbers get sequential index",
			csv:  "lap_time\n95.0\n94.5\n",
			want: LapSeries{{1, 95.0}, {2, 94.5}},
		},
		{
			name: "most complete vehicle selected",
			csv: "NUMBER,LAP_NUMBER,LAP_TIME,value\n" +
				"13,1,,\n" +
				"78,1,,95.1\n" +
				"78,2,,94.2\n" +
				"13,2,,96.0\n" +
				"78,3,,94.0\n",
			want: LapSeries{{1, 95.1}, {2, 94.2}, {3, 94.0}},
		},
		{
			name: "explicit vehicle filter with chassis suffix",
			csv: "vehicle_id,lap,lap_time\n" +
				"GR86-004-78,1,95.1\n" +
				"GR86-010-13,1,93.0\n" +
				"GR86-004-78,2,94.2\n" +
				"GR86-010-13,2,93.5\n",
			opts: LapOptions{Vehicle: "13"},
			want: LapSeries{{1, 93.0}, {2, 93.5}},
		},
		{
			name: "derived from numeric timestamps",
			csv:  "lap,timestamp\n1,0\n1,50\n2,95\n2,150\n3,189.5\n",
			want: LapSeries{{1, 95}, {2, 94.5}},
		},
		{
			name: "derived from millisecond timestamps",
			csv:  "lap,timestamp\n1,1000\n2,96000\n3,190000\n",
			want: LapSeries{{1, 95}, {2, 94}},
		},
		{
			name: "derived from date time strings",
			csv:  "Lap,meta_time\n1,2025-04-05T14:00:00Z\n2,2025-04-05T14:01:35Z\n3,2025-04-05T14:03:09Z\n",
			want: LapSeries{{1, 95}, {2, 94}},
		},
		{
			name: "fallback used when lap time column is empty",
			csv:  "lap,lap_time,timestamp\n1,,0\n2,,95\n3,,190\n",
			want: LapSeries{{1, 95}, {2, 95}},
		},
		{
			name:    "no recognizable columns",
			csv:     "foo,bar\n1,2\n",
			wantErr: ReasonSchema,
		},
		{
			name:    "header only",
			csv:     "lap,lap_time\n",
			wantErr: ReasonNoData,
		},
		{
			name:    "nothing usable",
			csv:     "lap,lap_time\n1,0\n",
			wantErr: ReasonNoData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractLapTimes(mustParse(t, tt.csv), tt.opts)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, ReasonOf(err))
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("laps mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractLapTimesOrdering(t *testing.T) {
	table := mustParse(t, "lap,lap_time\n4,96\n2,95\n4,94\n1,97\n2,99\n")

	got, err := ExtractLapTimes(table, LapOptions{})

	require.NoError(t, err)
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i].Number, got[i-1].Number)
	}
	assert.Equal(t, []int{1, 2, 4}, got.Numbers())
	assert.Equal(t, []float64{97, 95, 94}, got.Times())
}
