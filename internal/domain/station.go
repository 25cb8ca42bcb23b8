package domain

// In-situ time-series layout read by station loaders.
const (
	StationConventions = "CF-1.4, epic-insitu-1.0"
	StationHeightName  = "elev"
	StationTimeUnits   = "milliseconds since 1970-01-01 00:00:0.0"
	StationIDName      = "_id"
	StationIDLongName  = "station id variable"
)
