// Package store declares the persistence interfaces shared by the model
// file formats.
package store

import "go.ngs.io/ncmodel/internal/domain"

// ModelReader loads a model from a path or base name.
type ModelReader interface {
	// Read loads the model stored at path. Missing inputs wrap
	// domain.ErrNotFound and undecodable ones domain.ErrMalformedInput.
	Read(path string) (*domain.Model, error)
}

// ModelWriter persists a model.
type ModelWriter interface {
	// Write stores m at path, replacing existing files.
	Write(path string, m *domain.Model) error
}

// ModelStore reads and writes one format.
type ModelStore interface {
	ModelReader
	ModelWriter
}
