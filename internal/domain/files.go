package domain

import "strings"

// On-disk naming of the three-file model and its NetCDF rendition.
const (
	DataSuffix    = "__data.npy"
	NcmlSuffix    = "__ncml.xml"
	CoordsSuffix  = "__coords.xml"
	NetCDFSuffix  = ".nc"
	StationSuffix = "_time_series"
)

// NetCDFPath appends ".nc" unless path already ends with it.
func NetCDFPath(path string) string {
	if strings.HasSuffix(path, NetCDFSuffix) {
		return path
	}
	return path + NetCDFSuffix
}

// StationBase appends "_time_series" unless base already ends with it.
func StationBase(base string) string {
	if strings.HasSuffix(base, StationSuffix) {
		return base
	}
	return base + StationSuffix
}
