// Package domain contains the normalized data model: dimensions, attributes,
// variables and the numeric arrays they own.
package domain

import (
	"fmt"
	"strings"
)

// Dimension is a named axis length declaration.
type Dimension struct {
	Name        string
	Length      int
	IsUnlimited bool
}

// Attribute is a name/value record attached to the model or to a variable.
// An empty Type means string-typed; an empty Separator means a scalar value.
type Attribute struct {
	Name      string
	Type      string
	Value     string
	Separator string
}

// Values splits a list attribute on its separator. Scalar attributes yield a
// single element.
func (a Attribute) Values() []string {
	if a.Separator == "" {
		return []string{a.Value}
	}
	parts := strings.Split(a.Value, a.Separator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// Variable is a schema variable, optionally carrying its data array.
type Variable struct {
	Name       string
	Shape      string // Space-joined dimension names; empty for scalars.
	Type       string
	Attributes []Attribute
	Data       *Array
}

// NewVariable creates a metadata-only variable.
func NewVariable(name, shape, typ string) *Variable {
	return &Variable{Name: name, Shape: shape, Type: typ}
}

// AddAttribute appends a local attribute. Duplicates are kept so that the
// consistency checker can report them.
func (v *Variable) AddAttribute(name, typ, value, separator string) {
	v.Attributes = append(v.Attributes, Attribute{Name: name, Type: typ, Value: value, Separator: separator})
}

// Attribute returns the first local attribute with the given name.
func (v *Variable) Attribute(name string) (Attribute, bool) {
	for _, a := range v.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// SetAttribute replaces the value of the first attribute with the given name,
// or appends a string attribute when absent.
func (v *Variable) SetAttribute(name, value string) {
	for i := range v.Attributes {
		if v.Attributes[i].Name == name {
			v.Attributes[i].Value = value
			return
		}
	}
	v.AddAttribute(name, "", value, "")
}

// RemoveAttribute drops every local attribute with the given name.
func (v *Variable) RemoveAttribute(name string) {
	kept := v.Attributes[:0]
	for _, a := range v.Attributes {
		if a.Name != name {
			kept = append(kept, a)
		}
	}
	v.Attributes = kept
}

// ShapeNames returns the dimension names of the variable shape.
func (v *Variable) ShapeNames() []string {
	return SplitList(v.Shape, " ")
}

// SplitList splits s on sep; "" and "None" yield an empty list.
func SplitList(s, sep string) []string {
	parts := strings.Split(s, sep)
	if len(parts) == 1 && (parts[0] == "" || parts[0] == "None") {
		return nil
	}
	return parts
}

// Model is the normalized data model: ordered dimensions, global attributes
// and variables.
type Model struct {
	Dimensions       []Dimension
	GlobalAttributes []Attribute
	Variables        []*Variable
}

// AddDimension appends a dimension.
func (m *Model) AddDimension(name string, length int, unlimited bool) {
	m.Dimensions = append(m.Dimensions, Dimension{Name: name, Length: length, IsUnlimited: unlimited})
}

// AddGlobalAttribute appends a global attribute.
func (m *Model) AddGlobalAttribute(name, typ, value, separator string) {
	m.GlobalAttributes = append(m.GlobalAttributes, Attribute{Name: name, Type: typ, Value: value, Separator: separator})
}

// AddVariable appends a variable and returns it.
func (m *Model) AddVariable(v *Variable) *Variable {
	m.Variables = append(m.Variables, v)
	return v
}

// Dimension returns the first dimension with the given name.
func (m *Model) Dimension(name string) (*Dimension, bool) {
	for i := range m.Dimensions {
		if m.Dimensions[i].Name == name {
			return &m.Dimensions[i], true
		}
	}
	return nil, false
}

// GlobalAttribute returns the first global attribute with the given name.
func (m *Model) GlobalAttribute(name string) (*Attribute, bool) {
	for i := range m.GlobalAttributes {
		if m.GlobalAttributes[i].Name == name {
			return &m.GlobalAttributes[i], true
		}
	}
	return nil, false
}

// SetGlobalAttribute replaces the value of a global attribute or appends it.
func (m *Model) SetGlobalAttribute(name, value string) {
	if a, ok := m.GlobalAttribute(name); ok {
		a.Value = value
		return
	}
	m.AddGlobalAttribute(name, "", value, "")
}

// Variable returns the first variable with the given name.
func (m *Model) Variable(name string) (*Variable, bool) {
	for _, v := range m.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// RenameDimension renames a dimension and rewrites every variable shape that
// references it.
func (m *Model) RenameDimension(from, to string) error {
	d, ok := m.Dimension(from)
	if !ok {
		return fmt.Errorf("dimension %q not found", from)
	}
	d.Name = to
	for _, v := range m.Variables {
		names := v.ShapeNames()
		for i, n := range names {
			if n == from {
				names[i] = to
			}
		}
		v.Shape = strings.Join(names, " ")
	}
	return nil
}

// UndeclaredDimensions returns the shape tokens of v that name no
// dimension of m, in shape order.
func (m *Model) UndeclaredDimensions(v *Variable) []string {
	var out []string
	for _, n := range v.ShapeNames() {
		if _, ok := m.Dimension(n); !ok {
			out = append(out, n)
		}
	}
	return out
}

// Validate checks the structural invariants that hold regardless of
// conventions: every shape token names a declared dimension.
func (m *Model) Validate() error {
	for _, v := range m.Variables {
		if missing := m.UndeclaredDimensions(v); len(missing) > 0 {
			return fmt.Errorf("variable %q references undeclared dimension %q", v.Name, missing[0])
		}
	}
	return nil
}
