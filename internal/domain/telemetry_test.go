package domain

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTelemetry(t *testing.T) {
	t.Run("channels resolve independently", func(t *testing.T) {
		table := mustParse(t, "Speed,gear,aps,pbrake_f,accx_can,accy,Steering_Angle\n"+
			"100.5,3,80,0,0.1,-0.2,12\n"+
			"101,n/a,81,1.5,,0.3,-4\n")

		frame, err := ExtractTelemetry(table, TelemetryOptions{})

		require.NoError(t, err)
		assert.Len(t, frame, len(Channels))
		for _, c := range Channels {
			assert.Len(t, frame[c], 2, "channel %s", c)
		}
		assert.Equal(t, 100.5, *frame[ChannelSpeed][0])
		assert.Nil(t, frame[ChannelGear][1])
		assert.Equal(t, 81.0, *frame[ChannelThrottle][1])
		assert.Nil(t, frame[ChannelAccX][1])
		assert.Equal(t, -4.0, *frame[ChannelSteering][1])
		// brake_r has no column
		assert.Equal(t, []*float64{nil, nil}, frame[ChannelBrakeR])
	})

	t.Run("km/h speed converted", func(t *testing.T) {
		var b strings.Builder
		b.WriteString("speed\n")
		for _, v := range []int{130, 140, 150, 160, 170, 180, 190, 100, 90, 80} {
			fmt.Fprintf(&b, "%d\n", v)
		}

		frame, err := ExtractTelemetry(mustParse(t, b.String()), TelemetryOptions{})

		require.NoError(t, err)
		assert.Equal(t, 80.78, *frame[ChannelSpeed][0])
		assert.Equal(t, 49.71, *frame[ChannelSpeed][9])
	})

	t.Run("row limit", func(t *testing.T) {
		var b strings.Builder
		b.WriteString("Speed\n")
		for i := 0; i < 20; i++ {
			b.WriteString("90\n")
		}

		frame, err := ExtractTelemetry(mustParse(t, b.String()), TelemetryOptions{Limit: 8})

		require.NoError(t, err)
		assert.Equal(t, 8, frame.Len())
		assert.Len(t, frame[ChannelGear], 8)
	})

	t.Run("vehicle filter", func(t *testing.T) {
		table := mustParse(t, "vehicle_id,Speed\nGR86-004-78,90\nGR86-010-13,95\nGR86-004-78,91\n")

		frame, err := ExtractTelemetry(table, TelemetryOptions{Vehicle: "78"})

		require.NoError(t, err)
		require.Equal(t, 2, frame.Len())
		assert.Equal(t, 91.0, *frame[ChannelSpeed][1])
	})

	t.Run("no channel resolves", func(t *testing.T) {
		frame, err := ExtractTelemetry(mustParse(t, "foo\n1\n"), TelemetryOptions{})

		require.Error(t, err)
		assert.Equal(t, ReasonSchema, ReasonOf(err))
		assert.Len(t, frame, len(Channels))
		assert.Equal(t, 0, frame.Len())
	})
}
