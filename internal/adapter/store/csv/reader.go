// Package csv reads delimited station tables into models.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"go.ngs.io/ncmodel/internal/adapter/store/ncml"
	"go.ngs.io/ncmodel/internal/config"
	"go.ngs.io/ncmodel/internal/coord"
	"go.ngs.io/ncmodel/internal/domain"
	"go.ngs.io/ncmodel/internal/dtype"
	"go.ngs.io/ncmodel/internal/shape"
)

// Table is a station table: one column per variable, one row per time step.
type Table struct {
	Names []string
	Data  *domain.Array
}

// Reader parses station tables. Cells that are not numbers are stored as
// the nodata value.
type Reader struct {
	nodata   config.NodataSettings
	registry *dtype.Registry
	log      logrus.FieldLogger
}

// NewReader creates a Reader that fills tables with the nodata dtype.
func NewReader(nodata config.NodataSettings, registry *dtype.Registry, log logrus.FieldLogger) *Reader {
	return &Reader{
		nodata:   nodata,
		registry: registry,
		log:      log.WithField("component", "csv"),
	}
}

// Read parses the table at path. When header is true the first row names
// the columns.
func (r *Reader) Read(path string, header bool) (*Table, error) {
	//nolint:gosec // G304: path comes from the command line.
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.NotFound(path, err)
		}
		return nil, fmt.Errorf("failed to open CSV file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	t, err := r.Decode(file, header)
	if err != nil {
		return nil, domain.Malformed(path, err)
	}
	return t, nil
}

// Decode parses a table from src.
func (r *Reader) Decode(src io.Reader, header bool) (*Table, error) {
	dt, err := r.registry.ArrayDType(r.nodata.Type)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(src)
	reader.TrimLeadingSpace = true

	var names []string
	if header {
		names, err = reader.Read()
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV header: %w", err)
		}
	}

	var vals []float64
	ncol, rows := len(names), 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		if ncol == 0 {
			ncol = len(record)
		}
		if len(record) != ncol {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", rows+1, len(record), ncol)
		}
		for col, cell := range record {
			f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				r.log.WithFields(logrus.Fields{"row": rows + 1, "column": col + 1, "value": cell}).
					Warn("cell is not a number, storing nodata")
				f = r.nodata.Value
			}
			vals = append(vals, f)
		}
		rows++
	}
	if rows == 0 {
		return nil, errors.New("no data rows found in CSV")
	}

	data, err := domain.FromFloat64s(dt, vals, rows, ncol)
	if err != nil {
		return nil, err
	}

	out := make([]string, ncol)
	for k := range out {
		if k < len(names) {
			out[k] = strings.TrimSpace(names[k])
		}
		if out[k] == "" {
			out[k] = ncml.DataVariableName(k)
		}
	}
	r.log.WithFields(logrus.Fields{"rows": rows, "columns": ncol}).Debug("CSV table read")
	return &Table{Names: out, Data: data}, nil
}

// Station locates a table and describes its time axis.
type Station struct {
	Height    float64
	Latitude  float64
	Longitude float64
	ID        int32
	// TimeUnits is "<days|hours|minutes|seconds> since <date>"; the first
	// row is at the reference date and rows are TimeStep units apart.
	TimeUnits string
	TimeStep  float64
}

// StationModel builds an in-situ time-series model around t. Data
// variables take the table's column names and the nodata value as
// _FillValue.
func StationModel(t *Table, s config.Settings, st Station) (*domain.Model, error) {
	m := ncml.Template(s)
	if err := ncml.FillFromArray(m, t.Data, s.Axis); err != nil {
		return nil, err
	}
	classifier := coord.NewClassifier(coord.AliasesFromSettings(s.Aliases))
	fill := strconv.FormatFloat(s.Nodata.Value, 'g', -1, 64)
	for k, v := range classifier.DataVariables(m.Variables) {
		v.Name = t.Names[k]
		v.SetAttribute("_FillValue", fill)
	}
	if err := ncml.ApplyStation(m, s.Axis); err != nil {
		return nil, err
	}

	n := t.Data.Shape()[0]
	times, err := coord.TimeValues(st.TimeUnits, n, st.TimeStep, s.Variable.Time.Units)
	if err != nil {
		return nil, err
	}
	coordData := []struct {
		name string
		dt   domain.DType
		vals []float64
	}{
		{s.Axis.Time, domain.Float64, times},
		{domain.StationHeightName, domain.Float32, []float64{st.Height}},
		{s.Axis.Latitude, domain.Float32, []float64{st.Latitude}},
		{s.Axis.Longitude, domain.Float32, []float64{st.Longitude}},
		{domain.StationIDName, domain.Int32, []float64{float64(st.ID)}},
	}
	for _, c := range coordData {
		v, ok := m.Variable(c.name)
		if !ok {
			return nil, fmt.Errorf("station model has no %q variable", c.name)
		}
		if v.Data, err = domain.FromFloat64s(c.dt, c.vals, len(c.vals)); err != nil {
			return nil, err
		}
	}

	if _, err := shape.New(classifier).Normalize(t.Data, m.Variables); err != nil {
		return nil, fmt.Errorf("failed to attach station data: %w", err)
	}
	return m, nil
}

// StationSource reads tables as station models, satisfying the model
// reader interface used by conversions.
type StationSource struct {
	reader   *Reader
	settings config.Settings
	station  Station
	header   bool
}

// StationSource returns a source that builds every table it reads into a
// station model described by st.
func (r *Reader) StationSource(s config.Settings, st Station, header bool) *StationSource {
	return &StationSource{reader: r, settings: s, station: st, header: header}
}

// Read parses the table at path and builds its station model.
func (s *StationSource) Read(path string) (*domain.Model, error) {
	t, err := s.reader.Read(path, s.header)
	if err != nil {
		return nil, err
	}
	return StationModel(t, s.settings, s.station)
}
