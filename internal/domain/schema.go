package domain

// Schema names the source columns the normalizer resolves canonical fields
// from. VehicleIDColumns is an ordered rule chain: candidates are checked
// in priority order and the first column present in the table wins.
type Schema struct {
	VehicleIDColumns []string
	TimestampColumn  string
	NOxColumn        string
	O2Column         string
	LatitudeColumn   string
	LongitudeColumn  string
	PositionColumn   string
}

// DefaultSchema matches the vendor CSV variants seen in fleet exports:
// vehicle identity under vehicle_id, vehicle_name, or vehicle_number, and
// position either as separate latitude/longitude columns or a WKT point.
func DefaultSchema() Schema {
	return Schema{
		VehicleIDColumns: []string{"vehicle_id", "vehicle_name", "vehicle_number"},
		TimestampColumn:  "timestamp",
		NOxColumn:        "NOx",
		O2Column:         "O2",
		LatitudeColumn:   "latitude",
		LongitudeColumn:  "longitude",
		PositionColumn:   "position",
	}
}
