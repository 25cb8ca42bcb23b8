package domain

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
)

// Array is a contiguous, row-major numeric buffer.
//
// The buffer is one of the Go slice types []int8 … []float64 matching DType.
// Views returned by Index and Reshape share the buffer with their parent.
type Array struct {
	dtype DType
	shape []int
	data  any
}

type number interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

// NewArray allocates a zero-filled array.
func NewArray(dt DType, shape ...int) (*Array, error) {
	n, err := elementCount(shape)
	if err != nil {
		return nil, err
	}
	data, err := makeBuffer(dt, n)
	if err != nil {
		return nil, err
	}
	return &Array{dtype: dt, shape: append([]int(nil), shape...), data: data}, nil
}

// FromSlice wraps a typed slice without copying. The dtype is inferred from
// the slice element type.
func FromSlice(data any, shape ...int) (*Array, error) {
	dt := dtypeOf(data)
	if dt == Invalid {
		return nil, fmt.Errorf("unsupported buffer type %T", data)
	}
	n, err := elementCount(shape)
	if err != nil {
		return nil, err
	}
	if l := reflect.ValueOf(data).Len(); l != n {
		return nil, fmt.Errorf("buffer length %d does not match shape %v", l, shape)
	}
	return &Array{dtype: dt, shape: append([]int(nil), shape...), data: data}, nil
}

// FromFloat64s converts vals to dt. Integer targets truncate toward zero,
// matching a numpy astype cast.
func FromFloat64s(dt DType, vals []float64, shape ...int) (*Array, error) {
	a, err := NewArray(dt, shape...)
	if err != nil {
		return nil, err
	}
	if len(vals) != a.Len() {
		return nil, fmt.Errorf("got %d values for shape %v", len(vals), shape)
	}
	switch d := a.data.(type) {
	case []int8:
		castInto(d, vals)
	case []uint8:
		castInto(d, vals)
	case []int16:
		castInto(d, vals)
	case []uint16:
		castInto(d, vals)
	case []int32:
		castInto(d, vals)
	case []uint32:
		castInto(d, vals)
	case []int64:
		castInto(d, vals)
	case []uint64:
		castInto(d, vals)
	case []float32:
		castInto(d, vals)
	case []float64:
		copy(d, vals)
	}
	return a, nil
}

// DType returns the element type.
func (a *Array) DType() DType { return a.dtype }

// Shape returns a copy of the array shape.
func (a *Array) Shape() []int { return append([]int(nil), a.shape...) }

// NDim returns the rank.
func (a *Array) NDim() int { return len(a.shape) }

// Len returns the total number of elements.
func (a *Array) Len() int { return reflect.ValueOf(a.data).Len() }

// Data returns the underlying typed slice.
func (a *Array) Data() any { return a.data }

// Index returns the sub-array at position k along axis 0 as a view.
func (a *Array) Index(k int) (*Array, error) {
	if len(a.shape) == 0 {
		return nil, fmt.Errorf("cannot index a scalar array")
	}
	if k < 0 || k >= a.shape[0] {
		return nil, fmt.Errorf("index %d out of range for axis of length %d", k, a.shape[0])
	}
	sub := a.shape[1:]
	stride := 1
	for _, s := range sub {
		stride *= s
	}
	v := reflect.ValueOf(a.data).Slice(k*stride, (k+1)*stride)
	return &Array{dtype: a.dtype, shape: append([]int(nil), sub...), data: v.Interface()}, nil
}

// Reshape returns a view with a new shape of the same element count.
func (a *Array) Reshape(shape ...int) (*Array, error) {
	n, err := elementCount(shape)
	if err != nil {
		return nil, err
	}
	if n != a.Len() {
		return nil, fmt.Errorf("cannot reshape %v into %v", a.shape, shape)
	}
	return &Array{dtype: a.dtype, shape: append([]int(nil), shape...), data: a.data}, nil
}

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	src := reflect.ValueOf(a.data)
	dst := reflect.MakeSlice(src.Type(), src.Len(), src.Len())
	reflect.Copy(dst, src)
	return &Array{dtype: a.dtype, shape: a.Shape(), data: dst.Interface()}
}

// CopyElement copies src[si] into a[di]. Both arrays must share the dtype.
func (a *Array) CopyElement(di int, src *Array, si int) error {
	if a.dtype != src.dtype {
		return fmt.Errorf("dtype mismatch: %s vs %s", a.dtype, src.dtype)
	}
	reflect.ValueOf(a.data).Index(di).Set(reflect.ValueOf(src.data).Index(si))
	return nil
}

// Float64s returns the elements converted to float64.
func (a *Array) Float64s() []float64 {
	switch d := a.data.(type) {
	case []int8:
		return toFloat64s(d)
	case []uint8:
		return toFloat64s(d)
	case []int16:
		return toFloat64s(d)
	case []uint16:
		return toFloat64s(d)
	case []int32:
		return toFloat64s(d)
	case []uint32:
		return toFloat64s(d)
	case []int64:
		return toFloat64s(d)
	case []uint64:
		return toFloat64s(d)
	case []float32:
		return toFloat64s(d)
	case []float64:
		return append([]float64(nil), d...)
	}
	return nil
}

// Convert returns a copy of the array cast to dt.
func (a *Array) Convert(dt DType) (*Array, error) {
	if dt == a.dtype {
		return a.Clone(), nil
	}
	return FromFloat64s(dt, a.Float64s(), a.shape...)
}

// Bytes encodes the buffer in the given byte order.
func (a *Array) Bytes(order binary.ByteOrder) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(a.Len() * a.dtype.Size())
	if err := binary.Write(&buf, order, a.data); err != nil {
		return nil, fmt.Errorf("failed to encode %s buffer: %w", a.dtype, err)
	}
	return buf.Bytes(), nil
}

// Equal reports whether b has the same dtype, shape and bit-identical elements.
func (a *Array) Equal(b *Array) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.dtype != b.dtype || !reflect.DeepEqual(a.shape, b.shape) {
		return false
	}
	ab, err := a.Bytes(binary.LittleEndian)
	if err != nil {
		return false
	}
	bb, err := b.Bytes(binary.LittleEndian)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

// String summarizes the array without dumping its contents.
func (a *Array) String() string {
	return fmt.Sprintf("array(shape=%v, dtype=%s)", a.shape, a.dtype)
}

// ElementCount returns the number of elements a shape holds. It fails on
// negative dimensions and on counts that overflow int.
func ElementCount(shape []int) (int, error) {
	return elementCount(shape)
}

func elementCount(shape []int) (int, error) {
	n := 1
	for _, s := range shape {
		if s < 0 {
			return 0, fmt.Errorf("negative dimension in shape %v", shape)
		}
		if s != 0 && n > math.MaxInt/s {
			return 0, fmt.Errorf("shape %v holds too many elements", shape)
		}
		n *= s
	}
	return n, nil
}

func makeBuffer(dt DType, n int) (any, error) {
	switch dt {
	case Int8:
		return make([]int8, n), nil
	case Uint8:
		return make([]uint8, n), nil
	case Int16:
		return make([]int16, n), nil
	case Uint16:
		return make([]uint16, n), nil
	case Int32:
		return make([]int32, n), nil
	case Uint32:
		return make([]uint32, n), nil
	case Int64:
		return make([]int64, n), nil
	case Uint64:
		return make([]uint64, n), nil
	case Float32:
		return make([]float32, n), nil
	case Float64:
		return make([]float64, n), nil
	default:
		return nil, fmt.Errorf("unsupported dtype %v", dt)
	}
}

func dtypeOf(data any) DType {
	switch data.(type) {
	case []int8:
		return Int8
	case []uint8:
		return Uint8
	case []int16:
		return Int16
	case []uint16:
		return Uint16
	case []int32:
		return Int32
	case []uint32:
		return Uint32
	case []int64:
		return Int64
	case []uint64:
		return Uint64
	case []float32:
		return Float32
	case []float64:
		return Float64
	default:
		return Invalid
	}
}

func toFloat64s[T number](s []T) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = float64(v)
	}
	return out
}

func castInto[T number](dst []T, vals []float64) {
	for i, v := range vals {
		dst[i] = T(v)
	}
}

// Stack joins arrays of identical shape and dtype along a new leading axis.
func Stack(arrays []*Array) (*Array, error) {
	if len(arrays) == 0 {
		return nil, fmt.Errorf("nothing to stack")
	}
	first := arrays[0]
	out, err := NewArray(first.dtype, append([]int{len(arrays)}, first.shape...)...)
	if err != nil {
		return nil, err
	}
	dst := reflect.ValueOf(out.data)
	n := first.Len()
	for k, a := range arrays {
		if a.dtype != first.dtype || !reflect.DeepEqual(a.shape, first.shape) {
			return nil, fmt.Errorf("cannot stack %s onto %s", a, first)
		}
		reflect.Copy(dst.Slice(k*n, (k+1)*n), reflect.ValueOf(a.data))
	}
	return out, nil
}
