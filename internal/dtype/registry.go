// Package dtype maps abstract type tags ("float", "i4", "Int16", ...) onto
// array dtypes, NetCDF-3 file codes and GDAL raster codes.
package dtype

import (
	"fmt"
	"sort"
	"strings"

	"go.ngs.io/ncmodel/internal/domain"
)

// Group is a canonical type family shared by a set of aliases.
type Group string

// Type families.
const (
	Bool     Group = "BOOL"
	Byte     Group = "BYTE"
	UByte    Group = "U_BYTE"
	Short    Group = "SHORT"
	UShort   Group = "U_SHORT"
	Integer  Group = "INTEGER"
	UInteger Group = "U_INTEGER"
	Long     Group = "LONG"
	ULong    Group = "U_LONG"
	Float    Group = "FLOAT"
	Double   Group = "DOUBLE"
	String   Group = "STRING"
)

// Conversion targets named in UnknownTypeError.
const (
	TargetGroup      = "type group"
	TargetArrayDType = "array dtype"
	TargetFileCode   = "file code"
	TargetRasterCode = "raster code"
)

// legacyByteAlias is the capitalized alias that older schema files use for
// 8-bit integers. It collides with GDAL's "Byte" band type name.
const legacyByteAlias = "Byte"

var aliasTable = []struct {
	group   Group
	aliases []string
}{
	{Bool, []string{"bool", "Bool"}},
	{Byte, []string{"byte", "int8", "i1"}},
	{UByte, []string{"ubyte", "UByte", "uint8", "u1"}},
	{Short, []string{"short", "int16", "Int16", "i2"}},
	{UShort, []string{"ushort", "uint16", "UInt16", "u2"}},
	{Integer, []string{"int", "int32", "Int32", "integer", "i4"}},
	{UInteger, []string{"uint", "uint32", "UInt32", "unsigned_integer", "u4"}},
	{Long, []string{"long", "int64", "Int64", "i8"}},
	{ULong, []string{"ulong", "uint64", "UInt64", "u8"}},
	{Float, []string{"float", "float32", "Float32", "f4"}},
	{Double, []string{"float64", "double", "Float64", "f8"}},
	{String, []string{"char", "string", "S1"}},
}

var arrayDTypes = map[Group]domain.DType{
	Byte:     domain.Int8,
	Short:    domain.Int16,
	UShort:   domain.Uint16,
	Integer:  domain.Int32,
	UInteger: domain.Uint32,
	Long:     domain.Int64,
	ULong:    domain.Uint64,
	Float:    domain.Float32,
	Double:   domain.Float64,
}

var fileCodes = map[Group]string{
	Byte:    "i1",
	Short:   "i2",
	Integer: "i4",
	Long:    "i4",
	Float:   "f4",
	Double:  "f8",
	String:  "S1",
}

var rasterCodes = map[Group]string{
	Byte:     "GDT_Byte",
	Short:    "GDT_Int16",
	UShort:   "GDT_UInt16",
	Integer:  "GDT_Int32",
	UInteger: "GDT_UInt32",
	Float:    "GDT_Float32",
	Double:   "GDT_Float64",
}

// UnknownTypeError reports a tag outside the mapping for Target.
type UnknownTypeError struct {
	Tag    string
	Target string
	Legal  []string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type %q for %s; legal types: %s", e.Tag, e.Target, strings.Join(e.Legal, ", "))
}

func (e *UnknownTypeError) Unwrap() error { return domain.ErrUnknownType }

// Option configures a Registry at construction time.
type Option func(*options)

type options struct {
	legacyByte bool
	extra      map[string]Group
}

// WithLegacyByteAlias accepts "Byte" as a BYTE alias.
func WithLegacyByteAlias() Option {
	return func(o *options) { o.legacyByte = true }
}

// WithAlias adds a tag to a type family.
func WithAlias(tag string, g Group) Option {
	return func(o *options) {
		if o.extra == nil {
			o.extra = make(map[string]Group)
		}
		o.extra[tag] = g
	}
}

// Registry resolves type tags. It is immutable after construction.
type Registry struct {
	groups map[string]Group
}

// NewRegistry builds a registry over the built-in alias table. It fails when
// an alias would belong to two families.
func NewRegistry(opts ...Option) (*Registry, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	r := &Registry{groups: make(map[string]Group)}
	add := func(tag string, g Group) error {
		if prev, ok := r.groups[tag]; ok && prev != g {
			return fmt.Errorf("type alias %q is ambiguous: %s and %s", tag, prev, g)
		}
		r.groups[tag] = g
		return nil
	}
	for _, row := range aliasTable {
		for _, a := range row.aliases {
			if err := add(a, row.group); err != nil {
				return nil, err
			}
		}
	}
	if o.legacyByte {
		if err := add(legacyByteAlias, Byte); err != nil {
			return nil, err
		}
	}
	// Sorted for a deterministic error on conflicting extras.
	extras := make([]string, 0, len(o.extra))
	for tag := range o.extra {
		extras = append(extras, tag)
	}
	sort.Strings(extras)
	for _, tag := range extras {
		if err := add(tag, o.extra[tag]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustRegistry is NewRegistry without options; the built-in table never
// conflicts.
func MustRegistry() *Registry {
	r, err := NewRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

// Group returns the type family of tag.
func (r *Registry) Group(tag string) (Group, error) {
	if g, ok := r.groups[tag]; ok {
		return g, nil
	}
	return "", &UnknownTypeError{Tag: tag, Target: TargetGroup, Legal: r.legal(nil)}
}

// ArrayDType maps tag to the in-memory element type.
func (r *Registry) ArrayDType(tag string) (domain.DType, error) {
	g, ok := r.groups[tag]
	if dt, found := arrayDTypes[g]; ok && found {
		return dt, nil
	}
	return domain.Invalid, &UnknownTypeError{Tag: tag, Target: TargetArrayDType, Legal: r.legal(func(g Group) bool {
		_, ok := arrayDTypes[g]
		return ok
	})}
}

// FileCode maps tag to the NetCDF-3 type code (i1, i2, i4, f4, f8, S1).
func (r *Registry) FileCode(tag string) (string, error) {
	g, ok := r.groups[tag]
	if code, found := fileCodes[g]; ok && found {
		return code, nil
	}
	return "", &UnknownTypeError{Tag: tag, Target: TargetFileCode, Legal: r.legal(func(g Group) bool {
		_, ok := fileCodes[g]
		return ok
	})}
}

// RasterCode maps tag to the GDAL band type name. The literal "Byte" always
// resolves to GDT_Byte since it is GDAL's own name for that type.
func (r *Registry) RasterCode(tag string) (string, error) {
	if tag == legacyByteAlias {
		return rasterCodes[Byte], nil
	}
	g, ok := r.groups[tag]
	if code, found := rasterCodes[g]; ok && found {
		return code, nil
	}
	legal := r.legal(func(g Group) bool {
		_, ok := rasterCodes[g]
		return ok
	})
	if !contains(legal, legacyByteAlias) {
		legal = append(legal, legacyByteAlias)
		sort.Strings(legal)
	}
	return "", &UnknownTypeError{Tag: tag, Target: TargetRasterCode, Legal: legal}
}

// IsFloat reports whether tag names a FLOAT or DOUBLE type.
func (r *Registry) IsFloat(tag string) bool {
	g := r.groups[tag]
	return g == Float || g == Double
}

// IsInteger reports whether tag names a signed or unsigned integer type.
func (r *Registry) IsInteger(tag string) bool {
	switch r.groups[tag] {
	case Byte, UByte, Short, UShort, Integer, UInteger, Long, ULong:
		return true
	default:
		return false
	}
}

// DTypeName returns the tag used when a schema is generated from an array.
func DTypeName(dt domain.DType) string {
	return dt.String()
}

// TagForDType returns the canonical tag of the family whose array dtype is dt.
func TagForDType(dt domain.DType) (string, error) {
	for _, row := range aliasTable {
		if arrayDTypes[row.group] == dt && dt != domain.Invalid {
			return row.aliases[0], nil
		}
	}
	return "", fmt.Errorf("no type tag for dtype %s", dt)
}

func (r *Registry) legal(keep func(Group) bool) []string {
	out := make([]string, 0, len(r.groups))
	for tag, g := range r.groups {
		if keep == nil || keep(g) {
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
