// Package modelfile stores a model as three sibling files sharing a base
// path: the NcML schema, the coordinate metadata and the numpy data array.
package modelfile

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"go.ngs.io/ncmodel/internal/adapter/store/coords"
	"go.ngs.io/ncmodel/internal/adapter/store/ncml"
	"go.ngs.io/ncmodel/internal/adapter/store/npy"
	"go.ngs.io/ncmodel/internal/coord"
	"go.ngs.io/ncmodel/internal/domain"
	"go.ngs.io/ncmodel/internal/dtype"
	"go.ngs.io/ncmodel/internal/shape"
)

// Paths returns the schema, coordinate and data file names of base.
func Paths(base string) (schema, coordinates, data string) {
	return base + domain.NcmlSuffix, base + domain.CoordsSuffix, base + domain.DataSuffix
}

// Store reads and writes three-file models.
type Store struct {
	classifier *coord.Classifier
	registry   *dtype.Registry
	normalizer *shape.Normalizer
	log        logrus.FieldLogger
}

// NewStore returns a Store.
func NewStore(classifier *coord.Classifier, registry *dtype.Registry, log logrus.FieldLogger) *Store {
	return &Store{
		classifier: classifier,
		registry:   registry,
		normalizer: shape.New(classifier),
		log:        log.WithField("component", "modelfile"),
	}
}

// Read loads the model stored under base. Data variables receive their
// slice of the canonical array; coordinate variables are rebuilt from the
// compact records, using the axis lengths of the data array.
func (s *Store) Read(base string) (*domain.Model, error) {
	schemaPath, coordsPath, dataPath := Paths(base)

	m, err := ncml.Read(schemaPath)
	if err != nil {
		return nil, err
	}
	recs, err := coords.Read(coordsPath)
	if err != nil {
		return nil, err
	}
	raw, err := npy.ReadFile(dataPath)
	if err != nil {
		return nil, err
	}

	res, err := s.normalizer.Normalize(raw, m.Variables)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize %s: %w", dataPath, err)
	}
	lengths := map[coord.Role]int{
		coord.Time:      res.DimTime,
		coord.Height:    res.DimZ,
		coord.Latitude:  res.DimLat,
		coord.Longitude: res.DimLon,
		coord.ID:        res.DimID,
	}

	for _, v := range m.Variables {
		role := s.classifier.Classify(v.Name)
		if role == coord.Data {
			continue
		}
		dt, err := s.registry.ArrayDType(v.Type)
		if err != nil {
			return nil, fmt.Errorf("coordinate variable %q: %w", v.Name, err)
		}
		a, err := coord.Resolve(role.Tag(), recs[role], lengths[role], dt)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve coordinate variable %q: %w", v.Name, err)
		}
		v.Data = a
	}

	s.log.WithFields(logrus.Fields{
		"base":      base,
		"layout":    res.Layout,
		"variables": res.DimVar,
	}).Debug("model read")
	return m, nil
}

// Write stores m under base. All data variables must hold 4-D arrays of one
// shape and dtype; they are stacked into a rank-5 data file.
func (s *Store) Write(base string, m *domain.Model) error {
	schemaPath, coordsPath, dataPath := Paths(base)

	var slices []*domain.Array
	recs := make(coords.Records)
	for _, v := range m.Variables {
		role := s.classifier.Classify(v.Name)
		if v.Data == nil {
			return fmt.Errorf("variable %q has no data", v.Name)
		}
		if role != coord.Data {
			rec, err := coord.Encode(v.Data)
			if err != nil {
				return fmt.Errorf("failed to encode coordinate variable %q: %w", v.Name, err)
			}
			recs[role] = rec
			continue
		}
		if v.Data.NDim() != 4 {
			return &domain.UnsupportedRankError{Rank: v.Data.NDim(), Allowed: []int{4}}
		}
		if len(slices) > 0 {
			first := slices[0]
			if v.Data.DType() != first.DType() || fmt.Sprint(v.Data.Shape()) != fmt.Sprint(first.Shape()) {
				return fmt.Errorf("data variable %q holds %s; every data variable must match %s", v.Name, v.Data, first)
			}
		}
		slices = append(slices, v.Data)
	}
	if len(slices) == 0 {
		return errors.New("model has no data variables")
	}

	data, err := domain.Stack(slices)
	if err != nil {
		return fmt.Errorf("failed to stack data variables: %w", err)
	}
	if err := npy.WriteFile(dataPath, data); err != nil {
		return err
	}
	if err := coords.Write(coordsPath, recs); err != nil {
		return err
	}
	if err := ncml.Write(schemaPath, m); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"base": base, "shape": data.Shape()}).Debug("model written")
	return nil
}
