// Package ncml reads and writes the NcML schema file of a model and builds
// the default schema template.
package ncml

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"go.ngs.io/ncmodel/internal/config"
	"go.ngs.io/ncmodel/internal/domain"
)

// Namespace is the NcML 2.2 namespace written on the root element.
const Namespace = "http://www.unidata.ucar.edu/namespaces/netcdf/ncml-2.2"

type document struct {
	XMLName    xml.Name    `xml:"netcdf"`
	Xmlns      string      `xml:"xmlns,attr,omitempty"`
	Dimensions []dimension `xml:"dimension"`
	Attributes []attribute `xml:"attribute"`
	Variables  []variable  `xml:"variable"`
}

type dimension struct {
	Name        string `xml:"name,attr"`
	Length      string `xml:"length,attr"`
	IsUnlimited string `xml:"isUnlimited,attr,omitempty"`
}

type attribute struct {
	Name      string `xml:"name,attr"`
	Value     string `xml:"value,attr"`
	Type      string `xml:"type,attr,omitempty"`
	Separator string `xml:"separator,attr,omitempty"`
}

type variable struct {
	Name       string      `xml:"name,attr"`
	Shape      string      `xml:"shape,attr"`
	Type       string      `xml:"type,attr"`
	Attributes []attribute `xml:"attribute"`
}

// Decode parses an NcML document into a metadata-only model.
func Decode(r io.Reader) (*domain.Model, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode ncml: %w", err)
	}

	m := &domain.Model{}
	for _, d := range doc.Dimensions {
		length := 0
		if s := strings.TrimSpace(d.Length); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid length %q for dimension %q", d.Length, d.Name)
			}
			length = n
		}
		unlimited, err := config.ParseBool(d.IsUnlimited)
		if err != nil {
			return nil, fmt.Errorf("invalid isUnlimited for dimension %q: %w", d.Name, err)
		}
		m.AddDimension(d.Name, length, unlimited)
	}
	for _, a := range doc.Attributes {
		m.AddGlobalAttribute(a.Name, a.Type, a.Value, a.Separator)
	}
	for _, v := range doc.Variables {
		mv := domain.NewVariable(v.Name, strings.TrimSpace(v.Shape), v.Type)
		for _, a := range v.Attributes {
			mv.AddAttribute(a.Name, a.Type, a.Value, a.Separator)
		}
		m.AddVariable(mv)
	}
	return m, nil
}

// Encode writes the schema of m as an indented NcML document. Data arrays
// are not part of the schema and are ignored.
func Encode(w io.Writer, m *domain.Model) error {
	doc := document{Xmlns: Namespace}
	for _, d := range m.Dimensions {
		dim := dimension{Name: d.Name, Length: strconv.Itoa(d.Length)}
		if d.IsUnlimited {
			dim.IsUnlimited = "true"
		}
		doc.Dimensions = append(doc.Dimensions, dim)
	}
	doc.Attributes = attributes(m.GlobalAttributes)
	for _, v := range m.Variables {
		doc.Variables = append(doc.Variables, variable{
			Name:       v.Name,
			Shape:      v.Shape,
			Type:       v.Type,
			Attributes: attributes(v.Attributes),
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write ncml header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode ncml: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("failed to write ncml: %w", err)
	}
	return nil
}

func attributes(in []domain.Attribute) []attribute {
	if len(in) == 0 {
		return nil
	}
	out := make([]attribute, len(in))
	for i, a := range in {
		out[i] = attribute{Name: a.Name, Value: a.Value, Type: a.Type, Separator: a.Separator}
	}
	return out
}

// Read parses the NcML file at path.
func Read(path string) (*domain.Model, error) {
	//nolint:gosec // G304: path is a model base chosen by the operator.
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NotFound(path, err)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	m, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, domain.Malformed(path, err)
	}
	return m, nil
}

// Write stores the schema of m at path, replacing any existing file.
func Write(path string, m *domain.Model) error {
	//nolint:gosec // G304: path is a model base chosen by the operator.
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := Encode(w, m); err != nil {
		_ = f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
