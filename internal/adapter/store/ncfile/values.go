package ncfile

import (
	"fmt"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/ncmodel/internal/domain"
)

// fileTypes maps registry file codes onto NetCDF-3 types.
var fileTypes = map[string]netcdf.Type{
	"i1": netcdf.BYTE,
	"i2": netcdf.SHORT,
	"i4": netcdf.INT,
	"f4": netcdf.FLOAT,
	"f8": netcdf.DOUBLE,
	"S1": netcdf.CHAR,
}

// arrayTypes is the in-memory dtype of each numeric NetCDF type.
var arrayTypes = map[netcdf.Type]domain.DType{
	netcdf.BYTE:   domain.Int8,
	netcdf.SHORT:  domain.Int16,
	netcdf.INT:    domain.Int32,
	netcdf.FLOAT:  domain.Float32,
	netcdf.DOUBLE: domain.Float64,
}

// typeTags is the schema type tag recorded for each NetCDF type on read.
var typeTags = map[netcdf.Type]string{
	netcdf.BYTE:   "byte",
	netcdf.SHORT:  "short",
	netcdf.INT:    "int",
	netcdf.FLOAT:  "float",
	netcdf.DOUBLE: "double",
	netcdf.CHAR:   "char",
}

// valueWriter is satisfied by both netcdf.Var and netcdf.Attr.
type valueWriter interface {
	WriteInt8s([]int8) error
	WriteInt16s([]int16) error
	WriteInt32s([]int32) error
	WriteFloat32s([]float32) error
	WriteFloat64s([]float64) error
}

// sliceWriter writes a hyperslab of a variable, growing record dimensions.
type sliceWriter interface {
	WriteInt8Slice(data []int8, start, count []uint64) error
	WriteInt16Slice(data []int16, start, count []uint64) error
	WriteInt32Slice(data []int32, start, count []uint64) error
	WriteFloat32Slice(data []float32, start, count []uint64) error
	WriteFloat64Slice(data []float64, start, count []uint64) error
}

// valueReader is satisfied by both netcdf.Var and netcdf.Attr.
type valueReader interface {
	ReadInt8s([]int8) error
	ReadInt16s([]int16) error
	ReadInt32s([]int32) error
	ReadFloat32s([]float32) error
	ReadFloat64s([]float64) error
}

// writeArray converts a to the NetCDF type t and writes it.
func writeArray(w valueWriter, t netcdf.Type, a *domain.Array) error {
	dt, ok := arrayTypes[t]
	if !ok {
		return fmt.Errorf("cannot write numeric values as %v", t)
	}
	conv, err := a.Convert(dt)
	if err != nil {
		return err
	}
	switch d := conv.Data().(type) {
	case []int8:
		return w.WriteInt8s(d)
	case []int16:
		return w.WriteInt16s(d)
	case []int32:
		return w.WriteInt32s(d)
	case []float32:
		return w.WriteFloat32s(d)
	case []float64:
		return w.WriteFloat64s(d)
	default:
		return fmt.Errorf("unsupported buffer %T", d)
	}
}

// writeRecords converts a to the NetCDF type t and writes it as one
// hyperslab starting at the origin, so record dimensions take the length of
// the data.
func writeRecords(w sliceWriter, t netcdf.Type, a *domain.Array) error {
	dt, ok := arrayTypes[t]
	if !ok {
		return fmt.Errorf("cannot write numeric values as %v", t)
	}
	conv, err := a.Convert(dt)
	if err != nil {
		return err
	}
	shape := conv.Shape()
	start := make([]uint64, len(shape))
	count := make([]uint64, len(shape))
	for i, n := range shape {
		count[i] = uint64(n)
	}
	switch d := conv.Data().(type) {
	case []int8:
		return w.WriteInt8Slice(d, start, count)
	case []int16:
		return w.WriteInt16Slice(d, start, count)
	case []int32:
		return w.WriteInt32Slice(d, start, count)
	case []float32:
		return w.WriteFloat32Slice(d, start, count)
	case []float64:
		return w.WriteFloat64Slice(d, start, count)
	default:
		return fmt.Errorf("unsupported buffer %T", d)
	}
}

// readArray reads n values of NetCDF type t into an array of the given
// shape.
func readArray(r valueReader, t netcdf.Type, n int, shape ...int) (*domain.Array, error) {
	dt, ok := arrayTypes[t]
	if !ok {
		return nil, fmt.Errorf("unsupported var type: %v", t)
	}
	a, err := domain.NewArray(dt, shape...)
	if err != nil {
		return nil, err
	}
	if a.Len() != n {
		return nil, fmt.Errorf("shape %v does not hold %d values", shape, n)
	}
	if n == 0 {
		return a, nil
	}
	switch d := a.Data().(type) {
	case []int8:
		err = r.ReadInt8s(d)
	case []int16:
		err = r.ReadInt16s(d)
	case []int32:
		err = r.ReadInt32s(d)
	case []float32:
		err = r.ReadFloat32s(d)
	case []float64:
		err = r.ReadFloat64s(d)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
