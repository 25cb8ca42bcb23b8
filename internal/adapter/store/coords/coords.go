// Package coords reads and writes the coordinate metadata file
// (<numpymeta>) that stores each coordinate axis in compact form.
package coords

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"go.ngs.io/ncmodel/internal/coord"
	"go.ngs.io/ncmodel/internal/domain"
)

// Roles lists the elements of a coordinate file in write order.
var Roles = []coord.Role{coord.Time, coord.Height, coord.Latitude, coord.Longitude, coord.ID}

type element struct {
	Min       string `xml:"min,attr"`
	Max       string `xml:"max,attr"`
	Values    string `xml:"values,attr"`
	Separator string `xml:"separator,attr"`
}

type document struct {
	XMLName   xml.Name `xml:"numpymeta"`
	Time      *element `xml:"time"`
	Height    *element `xml:"height"`
	Latitude  *element `xml:"latitude"`
	Longitude *element `xml:"longitude"`
	ID        *element `xml:"id"`
}

func (d *document) slot(r coord.Role) **element {
	switch r {
	case coord.Time:
		return &d.Time
	case coord.Height:
		return &d.Height
	case coord.Latitude:
		return &d.Latitude
	case coord.Longitude:
		return &d.Longitude
	case coord.ID:
		return &d.ID
	default:
		return nil
	}
}

// Records maps a coordinate role to its compact record. Roles without an
// element in the file are absent.
type Records map[coord.Role]coord.Record

// Decode parses a coordinate metadata document.
func Decode(r io.Reader) (Records, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode coordinate metadata: %w", err)
	}
	out := make(Records)
	for _, role := range Roles {
		if e := *doc.slot(role); e != nil {
			out[role] = coord.Record{Min: e.Min, Max: e.Max, Values: e.Values, Separator: e.Separator}
		}
	}
	return out, nil
}

// Encode writes recs as an indented coordinate metadata document.
func Encode(w io.Writer, recs Records) error {
	var doc document
	for _, role := range Roles {
		rec, ok := recs[role]
		if !ok {
			continue
		}
		*doc.slot(role) = &element{Min: rec.Min, Max: rec.Max, Values: rec.Values, Separator: rec.Separator}
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write coordinate metadata header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode coordinate metadata: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Read parses the coordinate metadata file at path.
func Read(path string) (Records, error) {
	//nolint:gosec // G304: path is a model base chosen by the operator.
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NotFound(path, err)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	recs, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, domain.Malformed(path, err)
	}
	return recs, nil
}

// Write stores recs at path, replacing any existing file.
func Write(path string, recs Records) error {
	//nolint:gosec // G304: path is a model base chosen by the operator.
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := Encode(w, recs); err != nil {
		_ = f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
