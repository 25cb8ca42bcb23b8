// Package ncfile converts models to and from NetCDF-3 files.
package ncfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/fhs/go-netcdf/netcdf"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"go.ngs.io/ncmodel/internal/config"
	"go.ngs.io/ncmodel/internal/coord"
	"go.ngs.io/ncmodel/internal/domain"
	"go.ngs.io/ncmodel/internal/dtype"
)

// MaxRank is the highest variable rank written to a file.
const MaxRank = 4

const fillValueName = "_FillValue"

// Store reads and writes NetCDF files. Paths get ".nc" appended when
// missing.
type Store struct {
	settings   config.Settings
	classifier *coord.Classifier
	registry   *dtype.Registry
	log        logrus.FieldLogger
}

// NewStore returns a Store.
func NewStore(settings config.Settings, classifier *coord.Classifier, registry *dtype.Registry, log logrus.FieldLogger) *Store {
	return &Store{
		settings:   settings,
		classifier: classifier,
		registry:   registry,
		log:        log.WithField("component", "ncfile"),
	}
}

// Write creates the file at path from m, replacing any existing file.
// Unlimited dimensions become record dimensions and the variables using
// them are written as records. Variables are typed by their file code; string-typed attributes are
// written as text and numeric ones are converted to their declared type.
// Attributes with empty values are skipped.
func (s *Store) Write(path string, m *domain.Model) error {
	path = domain.NetCDFPath(path)
	if err := m.Validate(); err != nil {
		return err
	}

	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		return fmt.Errorf("failed to create NetCDF file %s: %w", path, err)
	}
	defer func() { _ = ds.Close() }()

	dims := make(map[string]netcdf.Dim, len(m.Dimensions))
	unlimited := make(map[string]bool)
	for _, d := range m.Dimensions {
		length := uint64(d.Length)
		if d.IsUnlimited {
			length, unlimited[d.Name] = 0, true
		}
		nd, err := ds.AddDim(d.Name, length)
		if err != nil {
			return fmt.Errorf("failed to add dimension %q: %w", d.Name, err)
		}
		dims[d.Name] = nd
	}

	for _, a := range m.GlobalAttributes {
		if err := s.writeAttribute(ds.Attr(a.Name), a, 0); err != nil {
			return fmt.Errorf("failed to write global attribute %q: %w", a.Name, err)
		}
	}

	vars := make([]netcdf.Var, len(m.Variables))
	types := make([]netcdf.Type, len(m.Variables))
	records := make([]bool, len(m.Variables))
	for i, v := range m.Variables {
		names := v.ShapeNames()
		for _, n := range names {
			records[i] = records[i] || unlimited[n]
		}
		if len(names) > MaxRank {
			return &domain.UnsupportedRankError{Rank: len(names), Allowed: []int{0, 1, 2, 3, 4}}
		}
		vdims := make([]netcdf.Dim, len(names))
		for j, n := range names {
			d, ok := dims[n]
			if !ok {
				return fmt.Errorf("variable %q references undeclared dimension %q", v.Name, n)
			}
			vdims[j] = d
		}
		code, err := s.registry.FileCode(v.Type)
		if err != nil {
			return fmt.Errorf("variable %q: %w", v.Name, err)
		}
		t := fileTypes[code]
		nv, err := ds.AddVar(v.Name, t, vdims)
		if err != nil {
			return fmt.Errorf("failed to add variable %q: %w", v.Name, err)
		}
		for _, a := range v.Attributes {
			var as netcdf.Type
			if a.Name == fillValueName {
				as = t
			}
			if err := s.writeAttribute(nv.Attr(a.Name), a, as); err != nil {
				return fmt.Errorf("failed to write attribute %q of %q: %w", a.Name, v.Name, err)
			}
		}
		vars[i], types[i] = nv, t
	}

	if err := ds.EndDef(); err != nil {
		return fmt.Errorf("failed to end define mode: %w", err)
	}

	for i, v := range m.Variables {
		if v.Data == nil {
			continue
		}
		if types[i] == netcdf.CHAR {
			s.log.WithField("variable", v.Name).Warn("skipping data of char variable")
			continue
		}
		if records[i] {
			err = writeRecords(vars[i], types[i], v.Data)
		} else {
			err = writeArray(vars[i], types[i], v.Data)
		}
		if err != nil {
			return fmt.Errorf("failed to write data of %q: %w", v.Name, err)
		}
	}

	s.log.WithFields(logrus.Fields{"file": path, "variables": len(m.Variables)}).Info("NetCDF file written")
	return nil
}

// writeAttribute writes a as text, or as numbers when it carries a type.
// A non-zero as overrides the declared type.
func (s *Store) writeAttribute(na netcdf.Attr, a domain.Attribute, as netcdf.Type) error {
	if strings.TrimSpace(a.Value) == "" {
		s.log.WithField("attribute", a.Name).Debug("skipping empty attribute")
		return nil
	}
	t := as
	if t == 0 && a.Type != "" {
		code, err := s.registry.FileCode(a.Type)
		if err != nil {
			return err
		}
		t = fileTypes[code]
	}
	if t == 0 || t == netcdf.CHAR {
		return na.WriteBytes([]byte(a.Value))
	}

	tokens := a.Values()
	vals := make([]float64, len(tokens))
	for i, tok := range tokens {
		f, err := cast.ToFloat64E(strings.TrimSpace(tok))
		if err != nil {
			return fmt.Errorf("value %q is not numeric: %w", tok, err)
		}
		vals[i] = f
	}
	arr, err := domain.FromFloat64s(domain.Float64, vals, len(vals))
	if err != nil {
		return err
	}
	return writeArray(na, t, arr)
}

// Read loads the file at path. Dimensions are collected from the variable
// shapes in declaration order; a time dimension is flagged unlimited
// according to the settings. Scalar variables are read as 1-element arrays.
func (s *Store) Read(path string) (*domain.Model, error) {
	path = domain.NetCDFPath(path)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, domain.NotFound(path, err)
	}

	ds, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, domain.Malformed(path, fmt.Errorf("failed to open NetCDF file: %w", err))
	}
	defer func() { _ = ds.Close() }()

	m := &domain.Model{}

	nattrs, err := ds.NAttrs()
	if err != nil {
		return nil, fmt.Errorf("failed to count global attributes: %w", err)
	}
	for i := 0; i < nattrs; i++ {
		a, err := ds.AttrN(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read global attribute %d: %w", i, err)
		}
		attr, err := readAttribute(a)
		if err != nil {
			return nil, err
		}
		m.GlobalAttributes = append(m.GlobalAttributes, attr)
	}

	nvars, err := ds.NVars()
	if err != nil {
		return nil, fmt.Errorf("failed to count variables: %w", err)
	}
	for i := 0; i < nvars; i++ {
		v, err := s.readVariable(m, ds.VarN(i))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		m.AddVariable(v)
	}

	s.log.WithFields(logrus.Fields{"file": path, "variables": nvars}).Debug("NetCDF file read")
	return m, nil
}

func (s *Store) readVariable(m *domain.Model, nv netcdf.Var) (*domain.Variable, error) {
	name, err := nv.Name()
	if err != nil {
		return nil, fmt.Errorf("failed to read variable name: %w", err)
	}
	t, err := nv.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get type of %q: %w", name, err)
	}
	tag, ok := typeTags[t]
	if !ok {
		return nil, fmt.Errorf("variable %q has unsupported type %v", name, t)
	}
	dims, err := nv.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions of %q: %w", name, err)
	}

	names := make([]string, len(dims))
	shape := make([]int, len(dims))
	n := 1
	for j, d := range dims {
		dn, err := d.Name()
		if err != nil {
			return nil, fmt.Errorf("failed to get dimension name: %w", err)
		}
		length, err := d.Len()
		if err != nil {
			return nil, fmt.Errorf("failed to get length of %q: %w", dn, err)
		}
		names[j], shape[j] = dn, int(length)
		n *= int(length)
		if _, seen := m.Dimension(dn); !seen {
			unlimited := s.classifier.Classify(dn) == coord.Time && bool(s.settings.Dimension.TimeIsUnlimited)
			m.AddDimension(dn, int(length), unlimited)
		}
	}

	v := domain.NewVariable(name, strings.Join(names, " "), tag)

	nattrs, err := nv.NAttrs()
	if err != nil {
		return nil, fmt.Errorf("failed to count attributes of %q: %w", name, err)
	}
	for i := 0; i < nattrs; i++ {
		a, err := nv.AttrN(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read attribute %d of %q: %w", i, name, err)
		}
		attr, err := readAttribute(a)
		if err != nil {
			return nil, err
		}
		v.Attributes = append(v.Attributes, attr)
	}

	if t == netcdf.CHAR {
		return v, nil
	}
	if len(shape) == 0 {
		shape = []int{1}
	}
	data, err := readArray(nv, t, n, shape...)
	if err != nil {
		return nil, fmt.Errorf("failed to read data of %q: %w", name, err)
	}
	v.Data = data
	return v, nil
}

// readAttribute returns text attributes as untyped values and numeric ones
// tagged with their type; multi-valued attributes become comma lists.
func readAttribute(a netcdf.Attr) (domain.Attribute, error) {
	name := a.Name()
	t, err := a.Type()
	if err != nil {
		return domain.Attribute{}, fmt.Errorf("failed to get type of attribute %q: %w", name, err)
	}
	n, err := a.Len()
	if err != nil {
		return domain.Attribute{}, fmt.Errorf("failed to get length of attribute %q: %w", name, err)
	}

	if t == netcdf.CHAR {
		if n == 0 {
			return domain.Attribute{Name: name}, nil
		}
		buf := make([]byte, n)
		if err := a.ReadBytes(buf); err != nil {
			return domain.Attribute{}, fmt.Errorf("failed to read attribute %q: %w", name, err)
		}
		return domain.Attribute{Name: name, Value: strings.TrimRight(string(buf), "\x00")}, nil
	}

	tag, ok := typeTags[t]
	if !ok {
		return domain.Attribute{}, fmt.Errorf("attribute %q has unsupported type %v", name, t)
	}
	arr, err := readArray(a, t, int(n), int(n))
	if err != nil {
		return domain.Attribute{}, fmt.Errorf("failed to read attribute %q: %w", name, err)
	}
	bits := 64
	if t == netcdf.FLOAT {
		bits = 32
	}
	vals := arr.Float64s()
	tokens := make([]string, len(vals))
	for i, f := range vals {
		tokens[i] = strconv.FormatFloat(f, 'g', -1, bits)
	}
	attr := domain.Attribute{Name: name, Type: tag, Value: strings.Join(tokens, ",")}
	if len(tokens) > 1 {
		attr.Separator = ","
	}
	return attr, nil
}
