package domain

// Channel names one telemetry stream.
type Channel string

const (
	ChannelSpeed    Channel = "speed"
	ChannelGear     Channel = "gear"
	ChannelThrottle Channel = "throttle"
	ChannelBrakeF   Channel = "brake_f"
	ChannelBrakeR   Channel = "brake_r"
	ChannelAccX     Channel = "accx"
	ChannelAccY     Channel = "accy"
	ChannelSteering Channel = "steering"
)

// Channels lists every channel in output order.
var Channels = []Channel{
	ChannelSpeed, ChannelGear, ChannelThrottle, ChannelBrakeF,
	ChannelBrakeR, ChannelAccX, ChannelAccY, ChannelSteering,
}

// ChannelColumns holds each channel's candidate headers. Channels resolve
// independently, so one frame can mix vendor naming conventions.
var ChannelColumns = map[Channel]Candidates{
	ChannelSpeed:    {"Speed", "speed", "mph", "kmh", "km/h"},
	ChannelGear:     {"Gear", "gear"},
	ChannelThrottle: {"ath", "aps", "Throttle", "throttle"},
	ChannelBrakeF:   {"pbrake_f", "brake_f", "brake"},
	ChannelBrakeR:   {"pbrake_r", "brake_r"},
	ChannelAccX:     {"accx_can", "accx"},
	ChannelAccY:     {"accy_can", "accy"},
	ChannelSteering: {"Steering_Angle", "steering", "steering_angle"},
}

// TelemetryFrame maps every channel to a series of equal length. A nil
// element is a missing or unparsable sample.
type TelemetryFrame map[Channel][]*float64

// Len returns the shared series length.
func (f TelemetryFrame) Len() int {
	return len(f[ChannelSpeed])
}

// NewTelemetryFrame returns a frame with every channel present and empty.
func NewTelemetryFrame() TelemetryFrame {
	f := make(TelemetryFrame, len(Channels))
	for _, c := range Channels {
		f[c] = []*float64{}
	}
	return f
}

// TelemetryOptions bounds and filters telemetry extraction. A zero Limit
// means TelemetryRowLimit.
type TelemetryOptions struct {
	Limit   int
	Vehicle string
}

// ExtractTelemetry reads up to the row limit into parallel channel series.
// Channels without a resolved column are filled with nil samples. The speed
// series is converted from km/h to mph when most samples look like km/h.
func ExtractTelemetry(t Table, opts TelemetryOptions) (TelemetryFrame, error) {
	const op = "extract telemetry"

	schema := NewSchema(t.Headers)
	columns := make(map[Channel]string, len(Channels))
	for _, c := range Channels {
		if col, ok := schema.Resolve(ChannelColumns[c]); ok {
			columns[c] = col
		}
	}
	if len(columns) == 0 {
		return NewTelemetryFrame(), extractErr(op, ReasonSchema, ErrNoColumns)
	}

	rows := t.Rows
	if opts.Vehicle != "" {
		if vehicleCol, ok := schema.Resolve(VehicleColumns); ok {
			rows = filterVehicle(rows, vehicleCol, opts.Vehicle)
		}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = TelemetryRowLimit
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}

	frame := make(TelemetryFrame, len(Channels))
	for _, c := range Channels {
		series := make([]*float64, len(rows))
		col, resolved := columns[c]
		if resolved {
			for i, row := range rows {
				if v, ok := ToFloat(row[col]); ok {
					series[i] = &v
				}
			}
		}
		frame[c] = series
	}
	NormalizeSpeed(frame[ChannelSpeed])

	return frame, nil
}
