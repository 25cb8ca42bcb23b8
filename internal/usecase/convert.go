package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"go.ngs.io/ncmodel/internal/adapter/store"
	"go.ngs.io/ncmodel/internal/domain"
)

// Format names a model file format.
type Format string

// Supported formats. CSV is read-only.
const (
	FormatModel  Format = "model"
	FormatNetCDF Format = "nc"
	FormatCSV    Format = "csv"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatModel, FormatNetCDF, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q, expected model, nc or csv", s)
	}
}

// ConvertRequest describes one conversion.
type ConvertRequest struct {
	From, To Format
	In, Out  string
	// Station marks the output as a station time series; its base name gets
	// the time-series suffix. Models holding a station id are treated as
	// stations regardless.
	Station bool
	Check   CheckOptions
}

// Converter reads a model in one format, validates it and writes it in
// another.
type Converter struct {
	readers   map[Format]store.ModelReader
	writers   map[Format]store.ModelWriter
	validator *Validator
	abort     bool
	log       logrus.FieldLogger
}

// NewConverter returns a Converter. When abort is true a failed check stops
// the conversion before anything is written.
func NewConverter(readers map[Format]store.ModelReader, writers map[Format]store.ModelWriter, validator *Validator, abort bool, log logrus.FieldLogger) *Converter {
	return &Converter{
		readers:   readers,
		writers:   writers,
		validator: validator,
		abort:     abort,
		log:       log,
	}
}

// Convert runs req and returns the check result and the path written.
func (c *Converter) Convert(ctx context.Context, req ConvertRequest) (*Result, string, error) {
	reader, ok := c.readers[req.From]
	if !ok {
		return nil, "", fmt.Errorf("cannot read format %q", req.From)
	}
	writer, ok := c.writers[req.To]
	if !ok {
		return nil, "", fmt.Errorf("cannot write format %q", req.To)
	}

	log := c.log.WithFields(logrus.Fields{"from": req.From, "to": req.To})
	log.WithField("input", req.In).Info("Converting data model")

	m, err := reader.Read(req.In)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", req.In, err)
	}

	out := req.Out
	if req.Station || IsStation(m) {
		out = StationPath(out, req.To)
	}

	var ncPath string
	if req.From == FormatNetCDF {
		ncPath = req.In
	}
	res, err := c.validator.Validate(ctx, m, out, ncPath, req.Check)
	if err != nil {
		return nil, "", err
	}
	if !res.OK() && c.abort {
		return res, "", fmt.Errorf("%s: %w", req.In, ErrCheckFailed)
	}

	if err := writer.Write(out, m); err != nil {
		return res, "", fmt.Errorf("failed to write %s: %w", out, err)
	}
	log.WithField("output", out).Info("Conversion finished")
	return res, out, nil
}

// IsStation reports whether m carries a station id variable.
func IsStation(m *domain.Model) bool {
	_, ok := m.Variable(domain.StationIDName)
	return ok
}

// StationPath appends the time-series suffix to an output path of format f,
// keeping a NetCDF extension last.
func StationPath(path string, f Format) string {
	if f == FormatNetCDF {
		return domain.NetCDFPath(domain.StationBase(strings.TrimSuffix(path, domain.NetCDFSuffix)))
	}
	return domain.StationBase(path)
}
