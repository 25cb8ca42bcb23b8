package profile

import (
	"strings"

	"go.ngs.io/ncmodel/internal/check"
	"go.ngs.io/ncmodel/internal/coord"
	"go.ngs.io/ncmodel/internal/domain"
	"go.ngs.io/ncmodel/internal/dtype"
)

// kinds counts float and double variables.
type kinds struct{ float, double int }

func (k kinds) uniform() bool {
	return (k.float != 0) != (k.double != 0)
}

// CheckStation checks m, stored under filename, against the time-series
// station profile.
func (c *Checker) CheckStation(m *domain.Model, filename string) *check.Report {
	rec := check.NewRecorder(c.log.WithField("profile", "station"))

	filename = domain.NetCDFPath(filename)
	if !strings.HasSuffix(filename, domain.StationSuffix+domain.NetCDFSuffix) {
		rec.Warnf(CodeStationFilename, filename, "file name should end with %q to be read as a time series",
			domain.StationSuffix+domain.NetCDFSuffix)
	}

	for _, d := range m.Dimensions {
		role := c.classifier.Classify(d.Name)
		if role == coord.Height && d.Name != domain.StationHeightName {
			rec.Errorf(CodeStationHeightName, d.Name, "height dimension must be named %q, got %q", domain.StationHeightName, d.Name)
		}
		if (role == coord.Height || role == coord.Latitude || role == coord.Longitude) && d.Length != 1 {
			rec.Errorf(CodeStationLength, d.Name, "dimension %q must have length 1, got %d", d.Name, d.Length)
		}
	}

	for _, a := range m.GlobalAttributes {
		if a.Name == "Conventions" && a.Value != domain.StationConventions {
			rec.Errorf(CodeGlobalValue, a.Name, "global attribute Conventions must be %q, got %q", domain.StationConventions, a.Value)
		}
	}

	var coordKinds, dataKinds kinds
	ids, dataVars, withCoordinates := 0, 0, 0
	for _, v := range m.Variables {
		role := c.classifier.Classify(v.Name)
		group, _ := c.registry.Group(v.Type)

		switch role {
		case coord.Time:
			if group != dtype.Double {
				rec.Errorf(CodeVariableType, v.Name, "time variable %q must be double, got %q", v.Name, v.Type)
			}
			if a, ok := v.Attribute("units"); ok && a.Value != domain.StationTimeUnits {
				rec.Warnf(CodeStationTimeUnits, v.Name, "time units %q; %q is recommended", a.Value, domain.StationTimeUnits)
			}
		case coord.Height, coord.Latitude, coord.Longitude:
			if role == coord.Height && (v.Name != domain.StationHeightName || v.Shape != domain.StationHeightName) {
				rec.Errorf(CodeStationHeightName, v.Name, "height variable must be named %q with shape %q, got %q with shape %q",
					domain.StationHeightName, domain.StationHeightName, v.Name, v.Shape)
			}
			if !countKind(&coordKinds, group) {
				rec.Errorf(CodeVariableType, v.Name, "coordinate variable %q must be float or double, got %q", v.Name, v.Type)
			}
		case coord.ID:
			ids++
			if group != dtype.Integer || v.Shape != "" {
				rec.Errorf(CodeIDVariable, v.Name, "id variable %q must be a scalar int, got type %q with shape %q", v.Name, v.Type, v.Shape)
			}
		case coord.Data:
			dataVars++
			if !countKind(&dataKinds, group) {
				rec.Errorf(CodeVariableType, v.Name, "data variable %q must be float or double, got %q", v.Name, v.Type)
			}
			if a, ok := v.Attribute("coordinates"); ok {
				withCoordinates++
				if !c.stationCoordinates(a.Value) {
					rec.Errorf(CodeCoordinatesAttr, v.Name, "coordinates of %q must name time, %s, latitude and longitude in order, got %q",
						v.Name, domain.StationHeightName, a.Value)
				}
			}
		}
	}

	if ids != 1 {
		rec.Errorf(CodeIDCount, "", "found %d id variables; exactly one scalar int id variable is required", ids)
	}
	if withCoordinates != dataVars {
		rec.Errorf(CodeCoordinatesCount, "", "%d of %d data variables have a coordinates attribute", withCoordinates, dataVars)
	}
	if !coordKinds.uniform() {
		rec.Errorf(CodeCoordinateKinds, "", "elev, latitude and longitude must share one type; found %d float and %d double",
			coordKinds.float, coordKinds.double)
	}
	if !dataKinds.uniform() {
		rec.Warnf(CodeDataKinds, "", "data variables should share one type; found %d float and %d double",
			dataKinds.float, dataKinds.double)
	}
	return rec.Report()
}

func countKind(k *kinds, g dtype.Group) bool {
	switch g {
	case dtype.Float:
		k.float++
	case dtype.Double:
		k.double++
	default:
		return false
	}
	return true
}

func (c *Checker) stationCoordinates(value string) bool {
	tokens := strings.Fields(value)
	if len(tokens) != 4 {
		return false
	}
	return c.classifier.Classify(tokens[0]) == coord.Time &&
		tokens[1] == domain.StationHeightName &&
		c.classifier.Classify(tokens[2]) == coord.Latitude &&
		c.classifier.Classify(tokens[3]) == coord.Longitude
}
