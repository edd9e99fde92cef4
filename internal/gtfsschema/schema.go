// Package gtfsschema declares, per GTFS file, the logical type of each
// known column as a lightweight name->type map rather than ORM-style
// structs, since the extractor only ever needs to know how to parse a
// cell, not how to marshal a row into a typed record.
package gtfsschema

// ColumnType is the logical type of a CSV cell.
type ColumnType int

const (
	// Text columns are passed through as-is.
	Text ColumnType = iota
	// Int64 columns are parsed as integers; unparseable cells are missing.
	Int64
	// Float64 columns are parsed as floats; unparseable cells are missing.
	Float64
)

// Columns maps column name to its declared ColumnType for one GTFS file.
type Columns map[string]ColumnType

// Required lists the GTFS files every complete feed must contain.
var Required = []string{
	"agency",
	"calendar",
	"calendar_dates",
	"feed_info",
	"routes",
	"stops",
	"stop_times",
	"trips",
}

// Optional lists the GTFS files the extractor reads when present.
var Optional = []string{
	"shapes",
	"frequencies",
	"transfers",
}

// ByFile holds the declared schema for every file the extractor knows
// about. Extra columns encountered at read time are treated as Text;
// columns named here but absent at read time are simply unavailable.
var ByFile = map[string]Columns{
	"agency": {
		"agency_id":       Text,
		"agency_name":     Text,
		"agency_url":      Text,
		"agency_timezone": Text,
		"agency_lang":     Text,
		"agency_phone":    Text,
		"agency_fare_url": Text,
		"agency_email":    Text,
	},
	"calendar": {
		"service_id": Text,
		"monday":     Int64,
		"tuesday":    Int64,
		"wednesday":  Int64,
		"thursday":   Int64,
		"friday":     Int64,
		"saturday":   Int64,
		"sunday":     Int64,
		"start_date": Text,
		"end_date":   Text,
	},
	"calendar_dates": {
		"service_id":     Text,
		"date":           Text,
		"exception_type": Int64,
	},
	"feed_info": {
		"feed_publisher_name": Text,
		"feed_publisher_url":  Text,
		"feed_lang":           Text,
		"default_lang":        Text,
		"feed_start_date":     Text,
		"feed_end_date":       Text,
		"feed_version":        Text,
		"feed_contact_email":  Text,
		"feed_contact_url":    Text,
	},
	"routes": {
		"route_id":            Text,
		"agency_id":           Text,
		"route_short_name":    Text,
		"route_long_name":     Text,
		"route_desc":          Text,
		"route_type":          Int64,
		"route_url":           Text,
		"route_color":         Text,
		"route_text_color":    Text,
		"route_sort_order":    Int64,
		"continuous_pickup":   Int64,
		"continuous_drop_off": Int64,
	},
	"stops": {
		"stop_id":             Text,
		"stop_code":           Text,
		"stop_name":           Text,
		"stop_desc":           Text,
		"stop_lat":            Float64,
		"stop_lon":            Float64,
		"zone_id":             Text,
		"stop_url":            Text,
		"location_type":       Int64,
		"parent_station":      Text,
		"stop_timezone":       Text,
		"wheelchair_boarding": Int64,
		"level_id":            Text,
		"platform_code":       Text,
	},
	"stop_times": {
		"trip_id":             Text,
		"arrival_time":        Text,
		"departure_time":      Text,
		"stop_id":             Text,
		"stop_sequence":       Int64,
		"stop_headsign":       Text,
		"pickup_type":         Int64,
		"drop_off_type":       Int64,
		"continuous_pickup":   Int64,
		"continuous_drop_off": Int64,
		"shape_dist_traveled": Float64,
		"timepoint":           Int64,
	},
	"trips": {
		"route_id":              Text,
		"service_id":            Text,
		"trip_id":                Text,
		"trip_headsign":         Text,
		"trip_short_name":       Text,
		"direction_id":          Int64,
		"block_id":              Text,
		"shape_id":              Text,
		"wheelchair_accessible": Int64,
		"bikes_allowed":         Int64,
	},
	"shapes": {
		"shape_id":            Text,
		"shape_pt_lat":        Float64,
		"shape_pt_lon":        Float64,
		"shape_pt_sequence":   Int64,
		"shape_dist_traveled": Float64,
	},
	"frequencies": {
		"trip_id":      Text,
		"start_time":   Text,
		"end_time":     Text,
		"headway_secs": Int64,
		"exact_times":  Int64,
	},
	"transfers": {
		"from_stop_id":      Text,
		"to_stop_id":        Text,
		"transfer_type":     Int64,
		"min_transfer_time": Int64,
	},
}
